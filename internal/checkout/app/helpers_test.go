package app_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	cartdomain "github.com/dwikikusuma/shoe-store/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	"github.com/dwikikusuma/shoe-store/internal/checkout/app"
	"github.com/dwikikusuma/shoe-store/internal/checkout/infra/adapter"
	orderdomain "github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/internal/storage/memory"
	"github.com/dwikikusuma/shoe-store/pkg/contracts"
	"github.com/dwikikusuma/shoe-store/pkg/logger"
)

type fixture struct {
	db  *memory.DB
	uow *countingUoW
	svc *app.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	uow := &countingUoW{inner: adapter.NewMemoryUnitOfWork(db)}
	return &fixture{
		db:  db,
		uow: uow,
		svc: app.NewService(uow, nil, nil, app.Options{Currency: "USD", Logger: logger.Discard()}),
	}
}

func (f *fixture) withUoW(uow app.UnitOfWork) *app.Service {
	return app.NewService(uow, nil, nil, app.Options{Currency: "USD", Logger: logger.Discard()})
}

func (f *fixture) product(t *testing.T, id string, price int64, stock int32) {
	t.Helper()
	_, err := memory.NewProductRepo(f.db).Create(context.Background(), catalogdomain.Product{
		ID: id, Name: "Shoe " + id, Price: price, Stock: stock, Category: catalogdomain.CategorySports,
	})
	require.NoError(t, err)
}

// addToCart snapshots name and price the way the cart service does.
func (f *fixture) addToCart(t *testing.T, userID, productID, name string, price int64, qty int32) {
	t.Helper()
	ctx := context.Background()
	carts := memory.NewCartRepo(f.db)
	cart, err := carts.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, carts.AddItem(ctx, cart.ID, cartdomain.CartItem{
		ProductID: productID, Name: name, UnitAmount: price, Quantity: qty,
	}))
}

func (f *fixture) stock(t *testing.T, id string) int32 {
	t.Helper()
	p, err := memory.NewProductRepo(f.db).Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) cart(t *testing.T, userID string) cartdomain.Cart {
	t.Helper()
	c, err := memory.NewCartRepo(f.db).Get(context.Background(), userID)
	require.NoError(t, err)
	return c
}

func (f *fixture) orders(t *testing.T) []orderdomain.Order {
	t.Helper()
	out, err := memory.NewOrderRepo(f.db).List(context.Background())
	require.NoError(t, err)
	return out
}

func (f *fixture) events(t *testing.T) []contracts.Event {
	t.Helper()
	out, err := memory.NewOutboxStore(f.db).Events(context.Background())
	require.NoError(t, err)
	return out
}

type storeSnapshot struct {
	Products []catalogdomain.Product
	Carts    map[string]cartdomain.Cart
	Orders   []orderdomain.Order
	Events   int
}

func (f *fixture) snapshot(t *testing.T, users ...string) storeSnapshot {
	t.Helper()
	products, _, err := memory.NewProductRepo(f.db).List(context.Background(), catalogdomain.ListFilter{Limit: 1000})
	require.NoError(t, err)

	carts := map[string]cartdomain.Cart{}
	for _, u := range users {
		c, err := memory.NewCartRepo(f.db).Get(context.Background(), u)
		if err == nil {
			carts[u] = c
		}
	}
	return storeSnapshot{Products: products, Carts: carts, Orders: f.orders(t), Events: len(f.events(t))}
}

func validRequest() app.PlaceOrderRequest {
	return app.PlaceOrderRequest{
		ShippingAddress: app.ShippingAddressInput{
			Address:    "221B Baker Street",
			City:       "London",
			PostalCode: "12345",
			Country:    "US",
		},
		PaymentMethod: "stripe",
	}
}

type countingUoW struct {
	mu    sync.Mutex
	calls int
	inner app.UnitOfWork
}

func (u *countingUoW) Do(ctx context.Context, fn func(ctx context.Context, s app.Stores) error) error {
	u.mu.Lock()
	u.calls++
	u.mu.Unlock()
	return u.inner.Do(ctx, fn)
}

func (u *countingUoW) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// wrapInventory swaps the inventory of every unit of work.
type wrapInventory struct {
	inner app.UnitOfWork
	wrap  func(app.Inventory) app.Inventory
}

func (u wrapInventory) Do(ctx context.Context, fn func(ctx context.Context, s app.Stores) error) error {
	return u.inner.Do(ctx, func(ctx context.Context, s app.Stores) error {
		s.Inventory = u.wrap(s.Inventory)
		return fn(ctx, s)
	})
}

// failingInventory returns err from the nth ConditionalDecrement call.
type failingInventory struct {
	app.Inventory
	failOn int
	err    error
	calls  int
}

func (i *failingInventory) ConditionalDecrement(ctx context.Context, id string, qty int32) (bool, error) {
	i.calls++
	if i.calls == i.failOn {
		return false, i.err
	}
	return i.Inventory.ConditionalDecrement(ctx, id, qty)
}

// racingInventory simulates a concurrent checkout draining the product
// between the stock check and the decrement.
type racingInventory struct {
	app.Inventory
	drained string
}

func (i *racingInventory) ConditionalDecrement(ctx context.Context, id string, qty int32) (bool, error) {
	if id == i.drained {
		return false, nil
	}
	return i.Inventory.ConditionalDecrement(ctx, id, qty)
}

// wrapCarts swaps the cart store of every unit of work.
type wrapCarts struct {
	inner app.UnitOfWork
	wrap  func(app.CartStore) app.CartStore
}

func (u wrapCarts) Do(ctx context.Context, fn func(ctx context.Context, s app.Stores) error) error {
	return u.inner.Do(ctx, func(ctx context.Context, s app.Stores) error {
		s.Carts = u.wrap(s.Carts)
		return fn(ctx, s)
	})
}

// corruptCart overrides the quantity of one line as it is loaded.
type corruptCart struct {
	app.CartStore
	productID string
	quantity  int32
}

func (c corruptCart) GetForUpdate(ctx context.Context, userID string) (cartdomain.Cart, error) {
	cart, err := c.CartStore.GetForUpdate(ctx, userID)
	if err != nil {
		return cart, err
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == c.productID {
			cart.Items[i].Quantity = c.quantity
		}
	}
	return cart, nil
}
