package memory

import (
	"context"
	"slices"

	wishlistdomain "github.com/dwikikusuma/shoe-store/internal/wishlist/domain"
)

type WishlistRepo struct {
	s Scope
}

func NewWishlistRepo(s Scope) *WishlistRepo {
	return &WishlistRepo{s: s}
}

func (r *WishlistRepo) Get(ctx context.Context, userID string) (wishlistdomain.Wishlist, error) {
	out := wishlistdomain.Wishlist{UserID: userID, Items: []wishlistdomain.Item{}}
	err := r.s.run(ctx, func(tx *Tx) error {
		out.Items = append(out.Items, tx.db.wishlists[userID]...)
		return nil
	})
	return out, err
}

func (r *WishlistRepo) Add(ctx context.Context, userID string, item wishlistdomain.Item) error {
	return r.s.run(ctx, func(tx *Tx) error {
		items := tx.db.wishlists[userID]
		if slices.ContainsFunc(items, func(it wishlistdomain.Item) bool { return it.ProductID == item.ProductID }) {
			return nil
		}
		item.AddedAt = tx.db.stamp()
		put(tx, tx.db.wishlists, userID, append(slices.Clone(items), item))
		return nil
	})
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, productID string) error {
	return r.s.run(ctx, func(tx *Tx) error {
		items := slices.DeleteFunc(slices.Clone(tx.db.wishlists[userID]), func(it wishlistdomain.Item) bool {
			return it.ProductID == productID
		})
		put(tx, tx.db.wishlists, userID, items)
		return nil
	})
}
