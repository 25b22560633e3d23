package shopcart

import (
	"context"
	"time"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
)

// ListQuery carries the predicates the store can index. Bounds on the derived
// monetary total are not part of it; those are evaluated in memory by the
// service after the candidate carts are fetched.
type ListQuery struct {
	Status        *domain.Status
	CustomerID    *int64
	CreatedBefore *time.Time
	CreatedAfter  *time.Time
}

// Repository persists Shopcart aggregates. Save applies the full in-memory
// aggregate state within a single transaction.
type Repository interface {
	Create(ctx context.Context, cart *domain.Shopcart) (*domain.Shopcart, error)
	GetByID(ctx context.Context, id int64) (*domain.Shopcart, error)
	GetByCustomerID(ctx context.Context, customerID int64) (*domain.Shopcart, error)
	List(ctx context.Context, q ListQuery) ([]domain.Shopcart, error)
	Save(ctx context.Context, cart *domain.Shopcart) (*domain.Shopcart, error)
	Delete(ctx context.Context, id int64) error
	FindItemByID(ctx context.Context, itemID int64) (*domain.ShopcartItem, error)
}
