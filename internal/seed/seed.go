package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type itemSeed struct {
	ProductID   int64
	Quantity    int
	Price       string
	Description string
}

type cartSeed struct {
	CustomerID int64
	Status     string
	Items      []itemSeed
}

// Apply inserts demo shopcarts for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	carts := []cartSeed{
		{
			CustomerID: 12345,
			Status:     "active",
			Items: []itemSeed{
				{ProductID: 1001, Quantity: 2, Price: "19.99", Description: "Wireless mouse"},
				{ProductID: 2002, Quantity: 1, Price: "12.50", Description: "USB-C cable"},
			},
		},
		{
			CustomerID: 67890,
			Status:     "abandoned",
			Items: []itemSeed{
				{ProductID: 3003, Quantity: 3, Price: "5.25", Description: "Spiral notebook"},
			},
		},
	}

	for _, cart := range carts {
		if err := upsertCart(ctx, pool, cart); err != nil {
			return fmt.Errorf("upsert shopcart for customer %d: %w", cart.CustomerID, err)
		}
	}
	return nil
}

func upsertCart(ctx context.Context, pool *pgxpool.Pool, cart cartSeed) error {
	totalItems := 0
	for _, item := range cart.Items {
		totalItems += item.Quantity
	}

	const q = `
INSERT INTO shopcarts (customer_id, status, total_items)
VALUES ($1, $2, $3)
ON CONFLICT (customer_id) DO UPDATE SET status = EXCLUDED.status, total_items = EXCLUDED.total_items
RETURNING id
`
	var cartID int64
	if err := pool.QueryRow(ctx, q, cart.CustomerID, cart.Status, totalItems).Scan(&cartID); err != nil {
		return err
	}

	for _, item := range cart.Items {
		if _, err := pool.Exec(ctx, `
INSERT INTO shopcart_items (shopcart_id, product_id, description, quantity, price)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (shopcart_id, product_id)
DO UPDATE SET description = EXCLUDED.description, quantity = EXCLUDED.quantity, price = EXCLUDED.price
`, cartID, item.ProductID, item.Description, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("upsert item %d: %w", item.ProductID, err)
		}
	}
	return nil
}
