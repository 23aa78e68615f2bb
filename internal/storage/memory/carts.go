package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	cartdomain "github.com/dwikikusuma/shoe-store/internal/cart/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

var errLineQuantity = apperr.Validation("quantity",
	fmt.Sprintf("line quantity must be between 1 and %d", cartdomain.MaxLineQuantity))

// CartRepo keys carts by user id. Every write stores a fresh Items slice so
// the undo log can keep the previous one.
type CartRepo struct {
	s Scope
}

func NewCartRepo(s Scope) *CartRepo {
	return &CartRepo{s: s}
}

func (r *CartRepo) Get(ctx context.Context, userID string) (cartdomain.Cart, error) {
	var out cartdomain.Cart
	err := r.s.run(ctx, func(tx *Tx) error {
		c, ok := tx.db.carts[userID]
		if !ok {
			return apperr.NotFound("cart", userID)
		}
		out = cloneCart(c)
		return nil
	})
	return out, err
}

// GetForUpdate is Get; the transaction already holds the store lock.
func (r *CartRepo) GetForUpdate(ctx context.Context, userID string) (cartdomain.Cart, error) {
	return r.Get(ctx, userID)
}

func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (cartdomain.Cart, error) {
	var out cartdomain.Cart
	err := r.s.run(ctx, func(tx *Tx) error {
		c, ok := tx.db.carts[userID]
		if !ok {
			now := tx.db.stamp()
			c = cartdomain.Cart{ID: uuid.NewString(), UserID: userID, Items: []cartdomain.CartItem{}, CreatedAt: now, UpdatedAt: now}
			put(tx, tx.db.carts, userID, c)
		}
		out = cloneCart(c)
		return nil
	})
	return out, err
}

func (r *CartRepo) AddItem(ctx context.Context, cartID string, item cartdomain.CartItem) error {
	return r.s.run(ctx, func(tx *Tx) error {
		c, err := cartByID(tx, cartID)
		if err != nil {
			return err
		}
		items := slices.Clone(c.Items)
		if i := slices.IndexFunc(items, func(it cartdomain.CartItem) bool { return it.ProductID == item.ProductID }); i >= 0 {
			sum := int64(items[i].Quantity) + int64(item.Quantity)
			if sum < 1 || sum > int64(cartdomain.MaxLineQuantity) {
				return errLineQuantity
			}
			items[i].Quantity = int32(sum)
		} else {
			if item.Quantity < 1 || item.Quantity > cartdomain.MaxLineQuantity {
				return errLineQuantity
			}
			item.AddedAt = tx.db.stamp()
			items = append(items, item)
		}
		save(tx, c, items)
		return nil
	})
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, cartID, productID string, quantity int32) (bool, error) {
	return r.updateLine(ctx, cartID, productID, func(int32) int32 { return quantity })
}

func (r *CartRepo) AdjustQuantity(ctx context.Context, cartID, productID string, delta int32) (bool, error) {
	return r.updateLine(ctx, cartID, productID, func(q int32) int32 { return q + delta })
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, productID string) (bool, error) {
	return r.updateLine(ctx, cartID, productID, func(int32) int32 { return 0 })
}

// updateLine drops the line when the new quantity is below one and rejects
// one above the line limit.
func (r *CartRepo) updateLine(ctx context.Context, cartID, productID string, next func(int32) int32) (bool, error) {
	var found bool
	err := r.s.run(ctx, func(tx *Tx) error {
		c, err := cartByID(tx, cartID)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(c.Items, func(it cartdomain.CartItem) bool { return it.ProductID == productID })
		if i < 0 {
			return nil
		}
		found = true

		items := slices.Clone(c.Items)
		switch q := next(items[i].Quantity); {
		case q < 1:
			items = slices.Delete(items, i, i+1)
		case q > cartdomain.MaxLineQuantity:
			return errLineQuantity
		default:
			items[i].Quantity = q
		}
		save(tx, c, items)
		return nil
	})
	return found, err
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	return r.s.run(ctx, func(tx *Tx) error {
		c, err := cartByID(tx, cartID)
		if err != nil {
			return err
		}
		save(tx, c, []cartdomain.CartItem{})
		return nil
	})
}

func cartByID(tx *Tx, cartID string) (cartdomain.Cart, error) {
	for _, c := range tx.db.carts {
		if c.ID == cartID {
			return c, nil
		}
	}
	return cartdomain.Cart{}, apperr.NotFound("cart", cartID)
}

func save(tx *Tx, c cartdomain.Cart, items []cartdomain.CartItem) {
	c.Items = items
	c.UpdatedAt = tx.db.stamp()
	put(tx, tx.db.carts, c.UserID, c)
}
