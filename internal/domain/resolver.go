package domain

import (
	"context"
	"errors"
)

// ItemMatch tags how a single-item identifier was resolved.
type ItemMatch int

const (
	// ItemNotFound means the identifier matched nothing in this cart.
	ItemNotFound ItemMatch = iota
	// ItemByProduct means the identifier matched an item's product id.
	ItemByProduct
	// ItemByID means the identifier matched an item's own id within this cart.
	ItemByID
)

// ItemFinder looks an item up by its surrogate id across all carts. It must
// return ErrNotFound when no such item exists.
type ItemFinder interface {
	FindItemByID(ctx context.Context, itemID int64) (*ShopcartItem, error)
}

// ResolveItem disambiguates a path identifier that may be either a product id
// or an item's own id. Product-id match within the cart always wins; the
// surrogate-id fallback only counts when the item belongs to this cart, so a
// valid item id from another cart resolves to not-found rather than leaking
// across carts. Every single-item read/update/delete path uses this lookup.
func ResolveItem(ctx context.Context, cart *Shopcart, identifier int64, finder ItemFinder) (*ShopcartItem, ItemMatch, error) {
	if item := cart.FindItemByProduct(identifier); item != nil {
		return item, ItemByProduct, nil
	}
	item, err := finder.FindItemByID(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ItemNotFound, nil
		}
		return nil, ItemNotFound, err
	}
	if item == nil || item.ShopcartID != cart.ID {
		return nil, ItemNotFound, nil
	}
	return item, ItemByID, nil
}
