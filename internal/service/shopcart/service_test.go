package shopcart

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/query"
	shopcartrepo "github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/repository/shopcart"
)

// memoryRepo is an in-memory Repository used by the service tests.
type memoryRepo struct {
	nextCartID int64
	nextItemID int64
	carts      map[int64]*domain.Shopcart
	saveCalls  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{carts: map[int64]*domain.Shopcart{}}
}

func cloneCart(cart *domain.Shopcart) *domain.Shopcart {
	copied := *cart
	copied.Items = append([]domain.ShopcartItem(nil), cart.Items...)
	return &copied
}

func (r *memoryRepo) Create(_ context.Context, cart *domain.Shopcart) (*domain.Shopcart, error) {
	for _, existing := range r.carts {
		if existing.CustomerID == cart.CustomerID {
			return nil, domain.ErrConflict
		}
	}
	r.nextCartID++
	stored := cloneCart(cart)
	stored.ID = r.nextCartID
	now := time.Now().UTC()
	stored.CreatedDate = now
	stored.LastModified = now
	for i := range stored.Items {
		r.nextItemID++
		stored.Items[i].ID = r.nextItemID
		stored.Items[i].ShopcartID = stored.ID
	}
	r.carts[stored.ID] = stored
	return cloneCart(stored), nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*domain.Shopcart, error) {
	cart, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCart(cart), nil
}

func (r *memoryRepo) GetByCustomerID(_ context.Context, customerID int64) (*domain.Shopcart, error) {
	for _, cart := range r.carts {
		if cart.CustomerID == customerID {
			return cloneCart(cart), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) List(_ context.Context, q shopcartrepo.ListQuery) ([]domain.Shopcart, error) {
	var carts []domain.Shopcart
	for _, cart := range r.carts {
		if q.Status != nil && cart.Status != *q.Status {
			continue
		}
		if q.CustomerID != nil && cart.CustomerID != *q.CustomerID {
			continue
		}
		if q.CreatedBefore != nil && !cart.CreatedDate.Before(*q.CreatedBefore) {
			continue
		}
		if q.CreatedAfter != nil && !cart.CreatedDate.After(*q.CreatedAfter) {
			continue
		}
		carts = append(carts, *cloneCart(cart))
	}
	return carts, nil
}

func (r *memoryRepo) Save(_ context.Context, cart *domain.Shopcart) (*domain.Shopcart, error) {
	r.saveCalls++
	if _, ok := r.carts[cart.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	stored := cloneCart(cart)
	for i := range stored.Items {
		if stored.Items[i].ID == 0 {
			r.nextItemID++
			stored.Items[i].ID = r.nextItemID
		}
		stored.Items[i].ShopcartID = stored.ID
	}
	r.carts[stored.ID] = stored
	return cloneCart(stored), nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.carts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.carts, id)
	return nil
}

func (r *memoryRepo) FindItemByID(_ context.Context, itemID int64) (*domain.ShopcartItem, error) {
	for _, cart := range r.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				item := cart.Items[i]
				return &item, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return New(repo), repo
}

func TestCreateDefaultsToActive(t *testing.T) {
	svc, _ := newTestService()

	cart, err := svc.Create(context.Background(), CreateInput{CustomerID: 12345})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cart.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", cart.Status)
	}
	if cart.ID == 0 {
		t.Fatal("expected an assigned cart id")
	}
}

func TestCreateWithItems(t *testing.T) {
	svc, _ := newTestService()

	cart, err := svc.Create(context.Background(), CreateInput{
		CustomerID: 12345,
		Items: []domain.ItemPayload{
			{ProductID: 1001, Quantity: 2, Price: "19.99", Description: "Wireless mouse"},
			{ProductID: 2002, Quantity: 1, Price: "12.50"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(cart.Items) != 2 || cart.TotalItems != 3 {
		t.Fatalf("items = %d, total_items = %d, want 2 and 3", len(cart.Items), cart.TotalItems)
	}
}

func TestCreateDuplicateCustomerConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{CustomerID: 12345}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateInput{CustomerID: 12345})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if !strings.Contains(err.Error(), "shopcart for customer '12345' already exists") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestCreateRejectsBadCustomerID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{CustomerID: "bob"})
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestAddItemIncrementsQuantityAndKeepsPrice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{CustomerID: 12345}); err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := svc.AddItem(ctx, 12345, AddItemInput{ProductID: 1001, Quantity: 2, Price: "19.99"})
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", item.Quantity)
	}

	// second add omits the price; the stored price carries over and the
	// quantity is incremented, not replaced
	item, err = svc.AddItem(ctx, 12345, AddItemInput{ProductID: 1001, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", item.Quantity)
	}
	if want, _ := decimal.NewFromString("19.99"); !item.Price.Equal(want) {
		t.Fatalf("price = %s, want 19.99", item.Price)
	}

	cart, err := svc.Find(ctx, 12345)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if cart.TotalItems != 5 {
		t.Fatalf("total_items = %d, want 5", cart.TotalItems)
	}
}

func TestAddItemValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{CustomerID: 12345}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name    string
		input   AddItemInput
		message string
	}{
		{"missing product id", AddItemInput{Quantity: 1, Price: "1.00"}, "product_id is required and must be an integer."},
		{"zero quantity", AddItemInput{ProductID: 1001, Quantity: 0, Price: "1.00"}, "quantity must be a positive integer."},
		{"negative quantity", AddItemInput{ProductID: 1001, Quantity: -1, Price: "1.00"}, "quantity must be a positive integer."},
		{"missing price on new product", AddItemInput{ProductID: 1001, Quantity: 1}, "price is required."},
		{"bad price", AddItemInput{ProductID: 1001, Quantity: 1, Price: "free"}, "price is invalid."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, 12345, tc.input)
			if !domain.IsValidation(err) {
				t.Fatalf("err = %v, want validation", err)
			}
			if err.Error() != tc.message {
				t.Fatalf("message = %q, want %q", err.Error(), tc.message)
			}
		})
	}
}

func TestAbandonedCartBlocksItemMutation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items:      []domain.ItemPayload{{ProductID: 1001, Quantity: 2, Price: "19.99"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Transition(ctx, 12345, domain.StatusAbandoned); err != nil {
		t.Fatalf("transition: %v", err)
	}

	if _, err := svc.AddItem(ctx, 12345, AddItemInput{ProductID: 2002, Quantity: 1, Price: "5.00"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("add item err = %v, want conflict", err)
	}
	if _, err := svc.UpdateItem(ctx, 12345, 1001, UpdateItemInput{Quantity: 3}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("update item err = %v, want conflict", err)
	}
	if err := svc.RemoveItem(ctx, 12345, 1001); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("remove item err = %v, want conflict", err)
	}

	// locked and expired carts stay mutable
	if _, err := svc.Transition(ctx, 12345, domain.StatusLocked); err != nil {
		t.Fatalf("transition locked: %v", err)
	}
	if _, err := svc.AddItem(ctx, 12345, AddItemInput{ProductID: 2002, Quantity: 1, Price: "5.00"}); err != nil {
		t.Fatalf("add item on locked cart: %v", err)
	}
}

func TestTransitionNoOpSkipsSave(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{CustomerID: 12345}); err != nil {
		t.Fatalf("create: %v", err)
	}

	before := repo.saveCalls
	cart, err := svc.Transition(ctx, 12345, domain.StatusActive)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if cart.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", cart.Status)
	}
	if repo.saveCalls != before {
		t.Fatal("transition to the current status must not persist")
	}
}

func TestUpdateReactivatesThenReplacesItems(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items:      []domain.ItemPayload{{ProductID: 1001, Quantity: 2, Price: "19.99"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Transition(ctx, 12345, domain.StatusAbandoned); err != nil {
		t.Fatalf("transition: %v", err)
	}

	// the status change applies before the item guard, so one request can
	// reactivate an abandoned cart and replace its items
	active := string(domain.StatusActive)
	cart, err := svc.Update(ctx, 12345, UpdateInput{
		Status: &active,
		Items:  []domain.ItemPayload{{ProductID: 2002, Quantity: 4, Price: "3.00"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", cart.Status)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != 2002 || cart.TotalItems != 4 {
		t.Fatalf("unexpected items after replace: %+v", cart.Items)
	}
}

func TestUpdateItemByProductAndBySurrogateID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items:      []domain.ItemPayload{{ProductID: 1001, Quantity: 2, Price: "19.99"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := svc.GetItem(ctx, 12345, 1001)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	surrogate := item.ID

	updated, err := svc.UpdateItem(ctx, 12345, 1001, UpdateItemInput{Quantity: 3})
	if err != nil {
		t.Fatalf("update by product id: %v", err)
	}
	if updated.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", updated.Quantity)
	}

	updated, err = svc.UpdateItem(ctx, 12345, surrogate, UpdateItemInput{Quantity: 7})
	if err != nil {
		t.Fatalf("update by item id: %v", err)
	}
	if updated.Quantity != 7 || updated.ProductID != 1001 {
		t.Fatalf("unexpected item after surrogate update: %+v", updated)
	}

	// a surrogate id from another customer's cart must not resolve here
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 67890,
		Items:      []domain.ItemPayload{{ProductID: 3003, Quantity: 1, Price: "5.25"}},
	}); err != nil {
		t.Fatalf("create second cart: %v", err)
	}
	foreign, err := svc.GetItem(ctx, 67890, 3003)
	if err != nil {
		t.Fatalf("get foreign item: %v", err)
	}
	if _, err := svc.UpdateItem(ctx, 12345, foreign.ID, UpdateItemInput{Quantity: 9}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-cart update err = %v, want not found", err)
	}
}

func TestUpdateItemZeroQuantityDeletes(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items:      []domain.ItemPayload{{ProductID: 1001, Quantity: 2, Price: "19.99"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := svc.UpdateItem(ctx, 12345, 1001, UpdateItemInput{Quantity: 0})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item != nil {
		t.Fatalf("item = %+v, want nil after delete", item)
	}

	cart, err := svc.Find(ctx, 12345)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalItems != 0 {
		t.Fatalf("cart not emptied: %+v", cart)
	}
}

func TestUpdateItemQuantityBounds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items:      []domain.ItemPayload{{ProductID: 1001, Quantity: 2, Price: "19.99"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.UpdateItem(ctx, 12345, 1001, UpdateItemInput{Quantity: 100})
	if !domain.IsValidation(err) || err.Error() != "invalid quantity" {
		t.Fatalf("err = %v, want invalid quantity", err)
	}
	_, err = svc.UpdateItem(ctx, 12345, 1001, UpdateItemInput{Quantity: -1})
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestListFiltersDerivedTotal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// 2 x 19.99 + 1 x 12.50 = 52.48
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items: []domain.ItemPayload{
			{ProductID: 1001, Quantity: 2, Price: "19.99"},
			{ProductID: 2002, Quantity: 1, Price: "12.50"},
		},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// 2 x 12.75 = 25.50
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 67890,
		Items:      []domain.ItemPayload{{ProductID: 3003, Quantity: 2, Price: "12.75"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	minTotal, maxTotal := dec("25"), dec("30")
	carts, err := svc.List(ctx, query.CartFilters{MinTotal: &minTotal, MaxTotal: &maxTotal})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(carts) != 1 || carts[0].CustomerID != 67890 {
		t.Fatalf("carts = %+v, want only customer 67890", carts)
	}

	low := dec("20")
	carts, err = svc.List(ctx, query.CartFilters{MaxTotal: &low})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(carts) != 0 {
		t.Fatalf("carts = %+v, want none under 20", carts)
	}
}

func TestListItemsStatusMismatchYieldsEmpty(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items:      []domain.ItemPayload{{ProductID: 1001, Quantity: 2, Price: "19.99"}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	locked := "locked"
	items, err := svc.ListItems(ctx, 12345, query.ItemFilters{Status: &locked})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %+v, want empty on status mismatch", items)
	}

	active := "active"
	items, err = svc.ListItems(ctx, 12345, query.ItemFilters{Status: &active})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %+v, want one item", items)
	}
}

func TestFindAndDeleteNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Find(ctx, 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("find err = %v, want not found", err)
	}
	if !strings.Contains(err.Error(), "shopcart for customer '404' was not found") {
		t.Fatalf("unexpected message: %v", err)
	}
	if err := svc.Delete(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete err = %v, want not found", err)
	}
}

func TestTotals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateInput{
		CustomerID: 12345,
		Items: []domain.ItemPayload{
			{ProductID: 1001, Quantity: 2, Price: "19.99"},
			{ProductID: 2002, Quantity: 1, Price: "12.50"},
		},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	totals, err := svc.Totals(ctx, 12345)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.ItemCount != 2 || totals.TotalQuantity != 3 {
		t.Fatalf("totals = %+v", totals)
	}
	if !totals.Total.Equal(dec("52.48")) {
		t.Fatalf("total = %s, want 52.48", totals.Total)
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
