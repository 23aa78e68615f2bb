package api

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	cartapp "github.com/dwikikusuma/shoe-store/internal/cart/app"
	cartpg "github.com/dwikikusuma/shoe-store/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/shoe-store/internal/catalog/app"
	catalogpg "github.com/dwikikusuma/shoe-store/internal/catalog/infra/postgres"
	checkoutapp "github.com/dwikikusuma/shoe-store/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/shoe-store/internal/checkout/infra/adapter"
	orderapp "github.com/dwikikusuma/shoe-store/internal/order/app"
	orderadapter "github.com/dwikikusuma/shoe-store/internal/order/infra/adapter"
	orderpg "github.com/dwikikusuma/shoe-store/internal/order/infra/postgres"
	"github.com/dwikikusuma/shoe-store/internal/storage/memory"
	wishlistapp "github.com/dwikikusuma/shoe-store/internal/wishlist/app"
	wishlistpg "github.com/dwikikusuma/shoe-store/internal/wishlist/infra/postgres"
)

// Backend is one storage implementation of every repository and unit of
// work the services need.
type Backend struct {
	Products    catalogapp.ProductRepo
	Carts       cartapp.CartRepo
	Wishlists   wishlistapp.WishlistRepo
	Orders      orderapp.OrderReader
	CheckoutUoW checkoutapp.UnitOfWork
	OrderUoW    orderapp.UnitOfWork
	Ping        func(ctx context.Context) error
}

func PostgresBackend(pool *pgxpool.Pool, topic string) Backend {
	return Backend{
		Products:    catalogpg.NewProductRepo(pool),
		Carts:       cartpg.NewCartRepo(pool),
		Wishlists:   wishlistpg.NewWishlistRepo(pool),
		Orders:      orderpg.NewOrderRepo(pool),
		CheckoutUoW: checkoutadapter.NewPostgresUnitOfWork(pool, topic),
		OrderUoW:    orderadapter.NewPostgresUnitOfWork(pool, topic),
		Ping:        pool.Ping,
	}
}

func MemoryBackend(db *memory.DB) Backend {
	return Backend{
		Products:    memory.NewProductRepo(db),
		Carts:       memory.NewCartRepo(db),
		Wishlists:   memory.NewWishlistRepo(db),
		Orders:      memory.NewOrderRepo(db),
		CheckoutUoW: checkoutadapter.NewMemoryUnitOfWork(db),
		OrderUoW:    orderadapter.NewMemoryUnitOfWork(db),
		Ping:        func(context.Context) error { return nil },
	}
}
