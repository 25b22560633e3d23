// Package shopcart implements the shopcart operation contract on top of the
// aggregate in internal/domain and a Repository.
package shopcart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/query"
	shopcartrepo "github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/repository/shopcart"
)

// Service coordinates aggregate mutations and listing. Each operation loads
// the aggregate, mutates it in memory and persists through Repository.Save;
// concurrency across requests is the storage layer's concern.
type Service struct {
	repo shopcartrepo.Repository
	now  func() time.Time
}

func New(repo shopcartrepo.Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput mirrors the create payload. CustomerID arrives untyped so the
// service owns its validation.
type CreateInput struct {
	CustomerID any                  `json:"customer_id"`
	Status     string               `json:"status"`
	Items      []domain.ItemPayload `json:"items"`
}

// Create makes a new shopcart; at most one cart may exist per customer.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Shopcart, error) {
	customerID, err := domain.ToInt64(in.CustomerID)
	if err != nil {
		return nil, domain.NewValidationError("customer_id", "customer_id is required and must be an integer.")
	}

	status := domain.StatusActive
	if in.Status != "" {
		if status, err = domain.ParseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.GetByCustomerID(ctx, customerID); err == nil {
		return nil, fmt.Errorf("%w: shopcart for customer '%d' already exists", domain.ErrConflict, customerID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	cart := &domain.Shopcart{CustomerID: customerID, Status: status}
	if len(in.Items) > 0 {
		if err := cart.SetItems(in.Items); err != nil {
			return nil, err
		}
	}
	return s.repo.Create(ctx, cart)
}

// Find returns the shopcart owned by the given customer.
func (s *Service) Find(ctx context.Context, customerID int64) (*domain.Shopcart, error) {
	cart, err := s.repo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFoundForCustomer(customerID)
		}
		return nil, err
	}
	return cart, nil
}

// List returns shopcarts matching the validated filters. Status, customer id
// and creation-date bounds are pushed down to storage; the total-price bounds
// apply to a derived value and are evaluated here on the recomputed totals.
func (s *Service) List(ctx context.Context, filters query.CartFilters) ([]domain.Shopcart, error) {
	carts, err := s.repo.List(ctx, shopcartrepo.ListQuery{
		Status:        filters.Status,
		CustomerID:    filters.CustomerID,
		CreatedBefore: filters.CreatedBefore,
		CreatedAfter:  filters.CreatedAfter,
	})
	if err != nil {
		return nil, err
	}
	if filters.MinTotal == nil && filters.MaxTotal == nil {
		return carts, nil
	}
	filtered := make([]domain.Shopcart, 0, len(carts))
	for _, cart := range carts {
		total := cart.Totals().Total
		if filters.MaxTotal != nil && total.GreaterThan(*filters.MaxTotal) {
			continue
		}
		if filters.MinTotal != nil && total.LessThan(*filters.MinTotal) {
			continue
		}
		filtered = append(filtered, cart)
	}
	return filtered, nil
}

// Delete removes the customer's shopcart; owned items cascade with it.
func (s *Service) Delete(ctx context.Context, customerID int64) error {
	cart, err := s.Find(ctx, customerID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, cart.ID)
}

// Transition sets the cart's status. A transition to the current status is a
// no-op and does not touch last_modified.
func (s *Service) Transition(ctx context.Context, customerID int64, target domain.Status) (*domain.Shopcart, error) {
	cart, err := s.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !cart.Transition(target, s.now()) {
		return cart, nil
	}
	return s.repo.Save(ctx, cart)
}

// UpdateInput carries a partial cart update: an optional status change and an
// optional bulk item replacement. A nil Items slice means "leave items alone".
type UpdateInput struct {
	Status *string              `json:"status"`
	Items  []domain.ItemPayload `json:"items"`
}

// Update applies status and/or bulk item changes to the customer's cart. The
// status change applies first, so reactivating and replacing items in one
// request works on an abandoned cart.
func (s *Service) Update(ctx context.Context, customerID int64, in UpdateInput) (*domain.Shopcart, error) {
	cart, err := s.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		status, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		cart.Status = status
	}
	if in.Items != nil {
		if err := cart.GuardItemMutation(); err != nil {
			return nil, err
		}
		if err := cart.SetItems(in.Items); err != nil {
			return nil, err
		}
	}
	cart.LastModified = s.now()
	return s.repo.Save(ctx, cart)
}

// SetItems bulk-applies item entries to the customer's cart.
func (s *Service) SetItems(ctx context.Context, customerID int64, payload []domain.ItemPayload) (*domain.Shopcart, error) {
	cart, err := s.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := cart.GuardItemMutation(); err != nil {
		return nil, err
	}
	if err := cart.SetItems(payload); err != nil {
		return nil, err
	}
	cart.LastModified = s.now()
	return s.repo.Save(ctx, cart)
}

// AddItemInput is the add-or-increment payload. Price may be omitted when the
// product already exists in the cart.
type AddItemInput struct {
	ProductID   any     `json:"product_id"`
	Quantity    any     `json:"quantity"`
	Price       any     `json:"price"`
	Description *string `json:"description"`
}

// AddItem increments the quantity for a product, creating the line item on
// first add. The quantity in the payload is an increment, not an absolute.
func (s *Service) AddItem(ctx context.Context, customerID int64, in AddItemInput) (*domain.ShopcartItem, error) {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := cart.GuardItemMutation(); err != nil {
		return nil, err
	}

	productID, err := domain.ToInt64(in.ProductID)
	if err != nil {
		return nil, domain.NewValidationError("product_id", "product_id is required and must be an integer.")
	}
	increment, err := domain.ToInt(in.Quantity)
	if err != nil {
		return nil, domain.NewValidationError("quantity", "quantity must be an integer.")
	}
	if increment <= 0 {
		return nil, domain.NewValidationError("quantity", "quantity must be a positive integer.")
	}

	existing := cart.FindItemByProduct(productID)

	var price decimal.Decimal
	switch {
	case in.Price != nil:
		if price, err = domain.ToDecimal(in.Price); err != nil {
			return nil, domain.NewValidationError("price", "price is invalid.")
		}
	case existing != nil:
		price = existing.Price
	default:
		return nil, domain.NewValidationError("price", "price is required.")
	}

	quantity := increment
	description := ""
	if existing != nil {
		quantity += existing.Quantity
		description = existing.Description
	}
	if in.Description != nil {
		description = *in.Description
	}

	cart.UpsertItem(productID, quantity, price, description)
	cart.LastModified = s.now()

	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return nil, err
	}
	item := saved.FindItemByProduct(productID)
	if item == nil {
		return nil, fmt.Errorf("unable to persist cart item for product %d", productID)
	}
	return item, nil
}

// GetItem reads one item, resolving the ambiguous identifier.
func (s *Service) GetItem(ctx context.Context, customerID, identifier int64) (*domain.ShopcartItem, error) {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	item, _, err := domain.ResolveItem(ctx, cart, identifier, s.repo)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFoundForProduct(identifier)
	}
	return item, nil
}

// UpdateItemInput is a partial single-item update. Quantity 0 deletes the
// item; omitted fields keep their current values.
type UpdateItemInput struct {
	Quantity    any     `json:"quantity"`
	Price       any     `json:"price"`
	Description *string `json:"description"`
}

// UpdateItem updates one item located via the ambiguous identifier. It
// returns the updated item, or (nil, nil) when quantity 0 deleted it.
func (s *Service) UpdateItem(ctx context.Context, customerID, identifier int64, in UpdateItemInput) (*domain.ShopcartItem, error) {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := cart.GuardItemMutation(); err != nil {
		return nil, err
	}

	item, match, err := domain.ResolveItem(ctx, cart, identifier, s.repo)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFoundForProduct(identifier)
	}
	productID := item.ProductID

	quantity := item.Quantity
	if in.Quantity != nil {
		if quantity, err = domain.ToInt(in.Quantity); err != nil {
			return nil, domain.NewValidationError("quantity", "quantity must be an integer.")
		}
	}
	if quantity < 0 || quantity > 99 {
		return nil, domain.NewValidationError("quantity", "invalid quantity")
	}

	if quantity == 0 {
		cart.RemoveItem(productID)
		cart.LastModified = s.now()
		if _, err := s.repo.Save(ctx, cart); err != nil {
			return nil, err
		}
		return nil, nil
	}

	price := item.Price
	if in.Price != nil {
		if price, err = domain.ToDecimal(in.Price); err != nil {
			return nil, domain.NewValidationError("price", "price is invalid.")
		}
	}
	description := item.Description
	if in.Description != nil {
		description = *in.Description
	}

	cart.UpsertItem(productID, quantity, price, description)
	cart.LastModified = s.now()

	saved, err := s.repo.Save(ctx, cart)
	if err != nil {
		return nil, err
	}
	if match == domain.ItemByID {
		updated, err := s.repo.FindItemByID(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve updated item %d: %w", identifier, err)
		}
		return updated, nil
	}
	updated := saved.FindItemByProduct(productID)
	if updated == nil {
		return nil, fmt.Errorf("unable to retrieve updated item for product %d", productID)
	}
	return updated, nil
}

// RemoveItem deletes one item located via the ambiguous identifier.
func (s *Service) RemoveItem(ctx context.Context, customerID, identifier int64) error {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return err
	}
	if err := cart.GuardItemMutation(); err != nil {
		return err
	}
	item, _, err := domain.ResolveItem(ctx, cart, identifier, s.repo)
	if err != nil {
		return err
	}
	if item == nil {
		return notFoundForProduct(identifier)
	}
	cart.RemoveItem(item.ProductID)
	cart.LastModified = s.now()
	_, err = s.repo.Save(ctx, cart)
	return err
}

// ListItems lists the cart's items under the validated filters. A status
// filter that does not match the parent cart yields an empty list.
func (s *Service) ListItems(ctx context.Context, customerID int64, filters query.ItemFilters) ([]domain.ShopcartItem, error) {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ShopcartItem, 0, len(cart.Items))
	if !filters.MatchCartStatus(cart.Status) {
		return items, nil
	}
	for _, item := range cart.Items {
		if filters.MatchItem(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

// Totals computes the aggregate totals for the customer's cart.
func (s *Service) Totals(ctx context.Context, customerID int64) (domain.CartTotals, error) {
	cart, err := s.findCart(ctx, customerID)
	if err != nil {
		return domain.CartTotals{}, err
	}
	return cart.Totals(), nil
}

// findCart resolves the ambiguous path identifier for a cart: customer id
// first, then the cart's own id. A compatibility shim kept from the previous
// identifier scheme.
func (s *Service) findCart(ctx context.Context, customerID int64) (*domain.Shopcart, error) {
	cart, err := s.repo.GetByCustomerID(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	cart, err = s.repo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFoundForCustomer(customerID)
		}
		return nil, err
	}
	return cart, nil
}

func notFoundForCustomer(customerID int64) error {
	return fmt.Errorf("%w: shopcart for customer '%d' was not found", domain.ErrNotFound, customerID)
}

func notFoundForProduct(identifier int64) error {
	return fmt.Errorf("%w: product with id '%d' not found in this shopcart", domain.ErrNotFound, identifier)
}
