package app

import (
	"context"

	cartdomain "github.com/dwikikusuma/shoe-store/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
)

// Inventory is the stock side of the catalog. ConditionalDecrement is the only
// way checkout changes stock.
type Inventory interface {
	GetMany(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error)
	ConditionalDecrement(ctx context.Context, id string, qty int32) (bool, error)
}

type CartStore interface {
	GetForUpdate(ctx context.Context, userID string) (cartdomain.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type OrderWriter interface {
	Create(ctx context.Context, o orderdomain.Order) (orderdomain.Order, error)
}

type Stores struct {
	Inventory Inventory
	Carts     CartStore
	Orders    OrderWriter
	Outbox    outbox.Writer
}

// UnitOfWork runs fn against stores bound to one transaction. A non-nil error
// from fn rolls back every write made through those stores.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// CartReader and CatalogReader back Quote, which reads outside any unit of
// work.
type CartReader interface {
	GetCart(ctx context.Context, userID string) ([]CartItem, error)
}

type CartItem struct {
	ProductID  string
	Name       string
	UnitAmount int64
	Quantity   int32
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID     string
	Name   string
	Amount int64
	Stock  int32
}
