package adapter

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogpg "github.com/dwikikusuma/shoe-store/internal/catalog/infra/postgres"
	orderapp "github.com/dwikikusuma/shoe-store/internal/order/app"
	orderpg "github.com/dwikikusuma/shoe-store/internal/order/infra/postgres"
	"github.com/dwikikusuma/shoe-store/internal/storage/memory"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
)

// PostgresUnitOfWork runs status changes, stock restores and their outbox
// events in one pgx transaction.
type PostgresUnitOfWork struct {
	pool  *pgxpool.Pool
	topic string
}

func NewPostgresUnitOfWork(pool *pgxpool.Pool, topic string) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool, topic: topic}
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s orderapp.Stores) error) error {
	return postgres.InTx(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(ctx, orderapp.Stores{
			Orders:    orderpg.NewOrderRepo(tx),
			Inventory: catalogpg.NewProductRepo(tx),
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

func (u *MemoryUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s orderapp.Stores) error) error {
	return u.db.InTx(ctx, func(tx *memory.Tx) error {
		return fn(ctx, orderapp.Stores{
			Orders:    memory.NewOrderRepo(tx),
			Inventory: memory.NewProductRepo(tx),
			Outbox:    memory.NewOutboxStore(tx),
		})
	})
}
