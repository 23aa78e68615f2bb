package adapter

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cartpg "github.com/dwikikusuma/shoe-store/internal/cart/infra/postgres"
	catalogpg "github.com/dwikikusuma/shoe-store/internal/catalog/infra/postgres"
	checkoutapp "github.com/dwikikusuma/shoe-store/internal/checkout/app"
	orderpg "github.com/dwikikusuma/shoe-store/internal/order/infra/postgres"
	"github.com/dwikikusuma/shoe-store/internal/storage/memory"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
)

// PostgresUnitOfWork binds every checkout store to one pgx transaction.
type PostgresUnitOfWork struct {
	pool  *pgxpool.Pool
	topic string
}

func NewPostgresUnitOfWork(pool *pgxpool.Pool, topic string) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool, topic: topic}
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s checkoutapp.Stores) error) error {
	return postgres.InTx(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(ctx, checkoutapp.Stores{
			Inventory: catalogpg.NewProductRepo(tx),
			Carts:     cartpg.NewCartRepo(tx),
			Orders:    orderpg.NewOrderRepo(tx),
			Outbox:    outbox.NewPostgresStore(tx, u.topic),
		})
	})
}

type MemoryUnitOfWork struct {
	db *memory.DB
}

func NewMemoryUnitOfWork(db *memory.DB) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{db: db}
}

func (u *MemoryUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s checkoutapp.Stores) error) error {
	return u.db.InTx(ctx, func(tx *memory.Tx) error {
		return fn(ctx, checkoutapp.Stores{
			Inventory: memory.NewProductRepo(tx),
			Carts:     memory.NewCartRepo(tx),
			Orders:    memory.NewOrderRepo(tx),
			Outbox:    memory.NewOutboxStore(tx),
		})
	})
}
