package postgres

import (
	"context"
	"fmt"

	"github.com/dwikikusuma/shoe-store/internal/wishlist/domain"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
)

type WishlistRepo struct {
	db postgres.DBTX
}

func NewWishlistRepo(db postgres.DBTX) *WishlistRepo {
	return &WishlistRepo{db: db}
}

func (r *WishlistRepo) Get(ctx context.Context, userID string) (domain.Wishlist, error) {
	rows, err := r.db.Query(ctx,
		`SELECT product_id, name, unit_amount, added_at
		   FROM wishlist_items WHERE user_id=$1 ORDER BY added_at, product_id`, userID)
	if err != nil {
		return domain.Wishlist{}, err
	}
	defer rows.Close()

	w := domain.Wishlist{UserID: userID, Items: []domain.Item{}}
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitAmount, &it.AddedAt); err != nil {
			return domain.Wishlist{}, err
		}
		w.Items = append(w.Items, it)
	}
	return w, rows.Err()
}

func (r *WishlistRepo) Add(ctx context.Context, userID string, item domain.Item) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO wishlist_items (user_id, product_id, name, unit_amount)
		 VALUES ($1, $2, $3, $4) ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, item.ProductID, item.Name, item.UnitAmount)
	if err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}
