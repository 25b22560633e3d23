package shopcart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
)

const uniqueViolation = "23505"

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const cartColumns = `id, customer_id, status, total_items, created_date, last_modified`

func (r *postgresRepo) Create(ctx context.Context, cart *domain.Shopcart) (*domain.Shopcart, error) {
	r.logger.Printf("creating shopcart for customer %d", cart.CustomerID)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status := cart.Status
	if status == "" {
		status = domain.StatusActive
	}

	var id int64
	err = tx.QueryRow(ctx, `
INSERT INTO shopcarts (customer_id, status, total_items)
VALUES ($1, $2, $3)
RETURNING id
`, cart.CustomerID, string(status), cart.TotalItems).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: shopcart for customer '%d' already exists", domain.ErrConflict, cart.CustomerID)
		}
		return nil, err
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		if _, err := tx.Exec(ctx, `
INSERT INTO shopcart_items (shopcart_id, product_id, description, quantity, price)
VALUES ($1, $2, $3, $4, $5)
`, id, item.ProductID, item.Description, item.Quantity, item.Price.StringFixed(2)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Shopcart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM shopcarts WHERE id = $1`, id)
}

func (r *postgresRepo) GetByCustomerID(ctx context.Context, customerID int64) (*domain.Shopcart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM shopcarts WHERE customer_id = $1`, customerID)
}

func (r *postgresRepo) List(ctx context.Context, q ListQuery) ([]domain.Shopcart, error) {
	var (
		clauses []string
		args    []any
	)
	if q.Status != nil {
		args = append(args, string(*q.Status))
		clauses = append(clauses, fmt.Sprintf("lower(status) = $%d", len(args)))
	}
	if q.CustomerID != nil {
		args = append(args, *q.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if q.CreatedBefore != nil {
		args = append(args, *q.CreatedBefore)
		clauses = append(clauses, fmt.Sprintf("created_date <= $%d", len(args)))
	}
	if q.CreatedAfter != nil {
		args = append(args, *q.CreatedAfter)
		clauses = append(clauses, fmt.Sprintf("created_date >= $%d", len(args)))
	}

	sql := `SELECT ` + cartColumns + ` FROM shopcarts`
	if len(clauses) > 0 {
		sql += " WHERE " + strings.Join(clauses, " AND ")
	}
	sql += " ORDER BY id ASC"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []domain.Shopcart
	for rows.Next() {
		var cart domain.Shopcart
		if err := scanCart(rows, &cart); err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range carts {
		items, err := r.fetchItems(ctx, carts[i].ID)
		if err != nil {
			return nil, err
		}
		carts[i].Items = items
	}
	return carts, nil
}

func (r *postgresRepo) Save(ctx context.Context, cart *domain.Shopcart) (*domain.Shopcart, error) {
	r.logger.Printf("saving shopcart %d", cart.ID)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE shopcarts
SET status = $1, total_items = $2, last_modified = $3
WHERE id = $4
`, string(cart.Status), cart.TotalItems, cart.LastModified, cart.ID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	productIDs := make([]int64, 0, len(cart.Items))
	for i := range cart.Items {
		productIDs = append(productIDs, cart.Items[i].ProductID)
	}
	// Items the aggregate no longer owns are deleted; the rest are upserted
	// keyed by (shopcart_id, product_id).
	if _, err := tx.Exec(ctx, `
DELETE FROM shopcart_items
WHERE shopcart_id = $1 AND NOT (product_id = ANY($2))
`, cart.ID, productIDs); err != nil {
		return nil, err
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		if _, err := tx.Exec(ctx, `
INSERT INTO shopcart_items (shopcart_id, product_id, description, quantity, price)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (shopcart_id, product_id)
DO UPDATE SET description = EXCLUDED.description, quantity = EXCLUDED.quantity, price = EXCLUDED.price
`, cart.ID, item.ProductID, item.Description, item.Quantity, item.Price.StringFixed(2)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, cart.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	r.logger.Printf("deleting shopcart %d", id)
	// shopcart_items has ON DELETE CASCADE, so owned items go with the cart.
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shopcarts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) FindItemByID(ctx context.Context, itemID int64) (*domain.ShopcartItem, error) {
	const q = `
SELECT id, shopcart_id, product_id, description, quantity, price::text
FROM shopcart_items
WHERE id = $1
`
	var (
		item     domain.ShopcartItem
		priceRaw string
	)
	err := r.pool.QueryRow(ctx, q, itemID).Scan(
		&item.ID,
		&item.ShopcartID,
		&item.ProductID,
		&item.Description,
		&item.Quantity,
		&priceRaw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if item.Price, err = decimal.NewFromString(priceRaw); err != nil {
		return nil, fmt.Errorf("parse item price: %w", err)
	}
	return &item, nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, sql string, args ...any) (*domain.Shopcart, error) {
	var cart domain.Shopcart
	if err := scanCart(r.pool.QueryRow(ctx, sql, args...), &cart); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.fetchItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, cartID int64) ([]domain.ShopcartItem, error) {
	const q = `
SELECT id, shopcart_id, product_id, description, quantity, price::text
FROM shopcart_items
WHERE shopcart_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ShopcartItem
	for rows.Next() {
		var (
			item     domain.ShopcartItem
			priceRaw string
		)
		if err := rows.Scan(
			&item.ID,
			&item.ShopcartID,
			&item.ProductID,
			&item.Description,
			&item.Quantity,
			&priceRaw,
		); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(priceRaw); err != nil {
			return nil, fmt.Errorf("parse item price: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCart(row rowScanner, cart *domain.Shopcart) error {
	var status string
	if err := row.Scan(
		&cart.ID,
		&cart.CustomerID,
		&status,
		&cart.TotalItems,
		&cart.CreatedDate,
		&cart.LastModified,
	); err != nil {
		return err
	}
	cart.Status = domain.Status(status)
	return nil
}
