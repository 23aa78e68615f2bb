// Package memory is a single-process store with the same repository surface
// as the Postgres adapters. A transaction holds the store lock for its whole
// duration and keeps an undo log, so a failed unit of work leaves every map
// exactly as it found it.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	cartdomain "github.com/dwikikusuma/shoe-store/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/shoe-store/internal/order/domain"
	wishlistdomain "github.com/dwikikusuma/shoe-store/internal/wishlist/domain"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
)

type DB struct {
	mu sync.Mutex

	now   func() time.Time
	last  time.Time
	topic string

	products  map[string]catalogdomain.Product
	carts     map[string]cartdomain.Cart
	wishlists map[string][]wishlistdomain.Item
	orders    map[string]orderdomain.Order
	outbox    []outbox.Record
	outboxSeq int64
}

type Option func(*DB)

func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

func WithTopic(topic string) Option {
	return func(db *DB) { db.topic = topic }
}

func NewDB(opts ...Option) *DB {
	db := &DB{
		now:       time.Now,
		topic:     "shoestore.events",
		products:  map[string]catalogdomain.Product{},
		carts:     map[string]cartdomain.Cart{},
		wishlists: map[string][]wishlistdomain.Item{},
		orders:    map[string]orderdomain.Order{},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Tx is an open unit of work. It is only valid inside the InTx callback.
type Tx struct {
	db   *DB
	undo []func()
}

// Scope is where a repository runs its statements: directly on the DB (each
// call is its own transaction) or inside an open Tx.
type Scope interface {
	run(ctx context.Context, fn func(tx *Tx) error) error
}

// InTx runs fn under the store lock. Repositories bound to tx must be used
// only inside fn, and repositories bound to the DB must not be used there.
func (db *DB) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	return db.run(ctx, fn)
}

func (db *DB) run(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx := &Tx{db: db}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (tx *Tx) run(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(tx)
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *Tx) onRollback(f func()) {
	tx.undo = append(tx.undo, f)
}

// stamp returns a strictly increasing timestamp with microsecond precision,
// matching timestamptz.
func (db *DB) stamp() time.Time {
	t := db.now().UTC().Truncate(time.Microsecond)
	if !t.After(db.last) {
		t = db.last.Add(time.Microsecond)
	}
	db.last = t
	return t
}

func put[K comparable, V any](tx *Tx, m map[K]V, k K, v V) {
	prev, had := m[k]
	tx.onRollback(func() {
		if had {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

func del[K comparable, V any](tx *Tx, m map[K]V, k K) bool {
	prev, had := m[k]
	if !had {
		return false
	}
	tx.onRollback(func() { m[k] = prev })
	delete(m, k)
	return true
}

func cloneProduct(p catalogdomain.Product) catalogdomain.Product {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

func cloneCart(c cartdomain.Cart) cartdomain.Cart {
	c.Items = slices.Clone(c.Items)
	if c.Items == nil {
		c.Items = []cartdomain.CartItem{}
	}
	return c
}

func cloneOrder(o orderdomain.Order) orderdomain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
