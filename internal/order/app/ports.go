package app

import (
	"context"

	"github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
)

type OrderReader interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// OrderStore is the transactional side of the order repository.
type OrderStore interface {
	GetForUpdate(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
	UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus, reference string) (domain.Order, error)
}

type StockRestorer interface {
	Increment(ctx context.Context, productID string, qty int32) (bool, error)
}

type Stores struct {
	Orders    OrderStore
	Inventory StockRestorer
	Outbox    outbox.Writer
}

// UnitOfWork runs fn against stores bound to one transaction. A non-nil error
// from fn rolls back every write made through those stores.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
