package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Shopcart is the per-customer aggregate root. At most one cart exists per
// customer. TotalItems caches the sum of item quantities and is recomputed
// after every item mutation; it is never trusted from caller input.
type Shopcart struct {
	ID           int64          `json:"id"`
	CustomerID   int64          `json:"customer_id"`
	Status       Status         `json:"status"`
	CreatedDate  time.Time      `json:"created_date"`
	LastModified time.Time      `json:"last_modified"`
	TotalItems   int            `json:"total_items"`
	Items        []ShopcartItem `json:"items"`
}

// ShopcartItem is one product line owned by exactly one cart. A cart holds at
// most one item per product id.
type ShopcartItem struct {
	ID          int64           `json:"id"`
	ShopcartID  int64           `json:"shopcart_id"`
	ProductID   int64           `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// FindItemByProduct returns the cart's item for the given product id, or nil.
func (c *Shopcart) FindItemByProduct(productID int64) *ShopcartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// UpsertItem merges one product line into the cart:
//   - quantity <= 0 removes the item if present and is a no-op otherwise
//   - a new product id appends an item
//   - an existing product id gets quantity and price overwritten; the
//     description is only overwritten when a non-empty one is supplied
//
// TotalItems is recomputed unconditionally, including on the delete branch.
// The mutation is in-memory only; persisting it is the caller's concern.
func (c *Shopcart) UpsertItem(productID int64, quantity int, price decimal.Decimal, description string) {
	existing := c.FindItemByProduct(productID)
	switch {
	case quantity <= 0:
		if existing != nil {
			c.detachItem(productID)
		}
	case existing == nil:
		c.Items = append(c.Items, ShopcartItem{
			ShopcartID:  c.ID,
			ProductID:   productID,
			Quantity:    quantity,
			Price:       price,
			Description: description,
		})
	default:
		existing.Quantity = quantity
		existing.Price = price
		if description != "" {
			existing.Description = description
		}
	}
	c.recomputeTotalItems()
}

// RemoveItem drops the product line if present. Never fails.
func (c *Shopcart) RemoveItem(productID int64) {
	c.UpsertItem(productID, 0, decimal.Zero, "")
}

func (c *Shopcart) detachItem(productID int64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

func (c *Shopcart) recomputeTotalItems() {
	total := 0
	for i := range c.Items {
		total += c.Items[i].Quantity
	}
	c.TotalItems = total
}

// ItemPayload is one entry of a bulk item update. The numeric fields arrive
// untyped from JSON and are validated by SetItems.
type ItemPayload struct {
	ProductID   any    `json:"product_id"`
	Quantity    any    `json:"quantity"`
	Price       any    `json:"price"`
	Description string `json:"description"`
}

// SetItems applies a list of item entries in payload order; later entries for
// the same product win. Quantity <= 0 removes the product. The operation is
// idempotent: re-applying the same payload yields the same cart state.
func (c *Shopcart) SetItems(payload []ItemPayload) error {
	for _, entry := range payload {
		productID, err := ToInt64(entry.ProductID)
		if err != nil {
			return NewValidationError("product_id", "Invalid product_id: %v", entry.ProductID)
		}
		quantity, err := ToInt(entry.Quantity)
		if err != nil {
			return NewValidationError("quantity", "Invalid quantity: %v", entry.Quantity)
		}
		price := decimal.Zero
		if entry.Price != nil {
			if price, err = ToDecimal(entry.Price); err != nil {
				return NewValidationError("price", "Invalid price: %v", entry.Price)
			}
		}
		if quantity <= 0 {
			c.RemoveItem(productID)
		} else {
			c.UpsertItem(productID, quantity, price, entry.Description)
		}
	}
	c.recomputeTotalItems()
	return nil
}

// CartTotals is the aggregate totals view. Total is never stored; it is
// always Σ(quantity × unit price) over the currently-owned items.
type CartTotals struct {
	ItemCount     int
	TotalQuantity int
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

// Totals computes the derived totals for the cart.
func (c *Shopcart) Totals() CartTotals {
	totalQuantity := 0
	subtotal := decimal.Zero
	for i := range c.Items {
		totalQuantity += c.Items[i].Quantity
		subtotal = subtotal.Add(c.Items[i].Price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity))))
	}
	discount := decimal.Zero
	return CartTotals{
		ItemCount:     len(c.Items),
		TotalQuantity: totalQuantity,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         subtotal.Sub(discount),
	}
}

// ToInt64 coerces a JSON-decoded value into an int64.
func ToInt64(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing value")
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("not an integer: %v", v)
}

// ToInt coerces a JSON-decoded value into an int.
func ToInt(v any) (int, error) {
	n, err := ToInt64(v)
	return int(n), err
}

// ToDecimal coerces a JSON-decoded value into a fixed-point decimal.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case decimal.Decimal:
		return n, nil
	}
	return decimal.Zero, fmt.Errorf("not a decimal: %v", v)
}
