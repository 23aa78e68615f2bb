package app

import (
	"context"

	catalogdomain "github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	"github.com/dwikikusuma/shoe-store/internal/wishlist/domain"
)

type WishlistRepo interface {
	Get(ctx context.Context, userID string) (domain.Wishlist, error)
	// Add is a no-op when the product is already listed.
	Add(ctx context.Context, userID string, item domain.Item) error
	Remove(ctx context.Context, userID, productID string) error
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}
