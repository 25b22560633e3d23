package httpserver

import (
	"time"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
)

type itemView struct {
	ID          int64   `json:"id"`
	ShopcartID  int64   `json:"shopcart_id"`
	ProductID   int64   `json:"product_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type cartView struct {
	ID           int64      `json:"id"`
	CustomerID   int64      `json:"customer_id"`
	CreatedDate  string     `json:"created_date"`
	LastModified string     `json:"last_modified"`
	Status       string     `json:"status"`
	TotalItems   int        `json:"total_items"`
	Items        []itemView `json:"items"`
}

// customerItemView and customerCartView are the camelCase customer-facing
// representation with computed totals.
type customerItemView struct {
	ItemID      int64   `json:"itemId"`
	ProductID   int64   `json:"productId"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type customerCartView struct {
	CustomerID   int64              `json:"customerId"`
	CreatedDate  string             `json:"createdDate"`
	LastModified string             `json:"lastModified"`
	Status       string             `json:"status"`
	TotalItems   int                `json:"totalItems"`
	TotalPrice   float64            `json:"totalPrice"`
	Items        []customerItemView `json:"items"`
}

type totalsView struct {
	CustomerID    int64   `json:"customer_id"`
	ItemCount     int     `json:"item_count"`
	TotalQuantity int     `json:"total_quantity"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
}

func toItemView(item domain.ShopcartItem) itemView {
	return itemView{
		ID:          item.ID,
		ShopcartID:  item.ShopcartID,
		ProductID:   item.ProductID,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price.InexactFloat64(),
	}
}

func toCartView(cart domain.Shopcart) cartView {
	items := make([]itemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, toItemView(item))
	}
	return cartView{
		ID:           cart.ID,
		CustomerID:   cart.CustomerID,
		CreatedDate:  formatTime(cart.CreatedDate),
		LastModified: formatTime(cart.LastModified),
		Status:       string(cart.Status),
		TotalItems:   cart.TotalItems,
		Items:        items,
	}
}

func toCustomerView(cart domain.Shopcart) customerCartView {
	totals := cart.Totals()
	items := make([]customerItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, customerItemView{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price.InexactFloat64(),
		})
	}
	return customerCartView{
		CustomerID:   cart.CustomerID,
		CreatedDate:  formatTime(cart.CreatedDate),
		LastModified: formatTime(cart.LastModified),
		Status:       string(cart.Status),
		TotalItems:   totals.TotalQuantity,
		TotalPrice:   totals.Total.InexactFloat64(),
		Items:        items,
	}
}

func toTotalsView(customerID int64, totals domain.CartTotals) totalsView {
	return totalsView{
		CustomerID:    customerID,
		ItemCount:     totals.ItemCount,
		TotalQuantity: totals.TotalQuantity,
		Subtotal:      totals.Subtotal.InexactFloat64(),
		Discount:      totals.Discount.InexactFloat64(),
		Total:         totals.Total.InexactFloat64(),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
