package app

import (
	"context"

	"github.com/dwikikusuma/shoe-store/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shoe-store/internal/catalog/domain"
)

// CartRepo line mutations report false when the line does not exist.
type CartRepo interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (domain.Cart, error)
	AddItem(ctx context.Context, cartID string, item domain.CartItem) error
	SetItemQuantity(ctx context.Context, cartID, productID string, quantity int32) (bool, error)
	AdjustQuantity(ctx context.Context, cartID, productID string, delta int32) (bool, error)
	RemoveItem(ctx context.Context, cartID, productID string) (bool, error)
	Clear(ctx context.Context, cartID string) error
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}
