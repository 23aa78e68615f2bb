package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dwikikusuma/shoe-store/internal/cart/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
)

var errLineQuantity = apperr.Validation("quantity",
	fmt.Sprintf("line quantity must be between 1 and %d", domain.MaxLineQuantity))

type CartRepo struct {
	db postgres.DBTX
}

func NewCartRepo(db postgres.DBTX) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) Get(ctx context.Context, userID string) (domain.Cart, error) {
	return r.get(ctx, userID, false)
}

// GetForUpdate locks the cart row until the surrounding transaction ends, so
// two checkouts of the same cart serialize.
func (r *CartRepo) GetForUpdate(ctx context.Context, userID string) (domain.Cart, error) {
	return r.get(ctx, userID, true)
}

func (r *CartRepo) get(ctx context.Context, userID string, forUpdate bool) (domain.Cart, error) {
	q := `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1`
	if forUpdate {
		q += ` FOR UPDATE`
	}

	var cart domain.Cart
	err := r.db.QueryRow(ctx, q, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if postgres.IsNoRows(err) {
		return domain.Cart{}, apperr.NotFound("cart", userID)
	}
	if err != nil {
		return domain.Cart{}, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT product_id, name, unit_amount, quantity, added_at
		   FROM cart_items WHERE cart_id=$1 ORDER BY added_at, product_id`, cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitAmount, &it.Quantity, &it.AddedAt); err != nil {
			return domain.Cart{}, err
		}
		cart.Items = append(cart.Items, it)
	}
	return cart, rows.Err()
}

func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := r.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !apperr.IsNotFound(err) {
		return domain.Cart{}, err
	}

	// a concurrent creator wins the unique constraint; both then read its row
	_, err = r.db.Exec(ctx,
		`INSERT INTO carts (id, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		uuid.NewString(), userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return r.Get(ctx, userID)
}

// AddItem inserts the line or adds to its quantity. A sum outside
// 1..MaxLineQuantity leaves the line untouched.
func (r *CartRepo) AddItem(ctx context.Context, cartID string, item domain.CartItem) error {
	if item.Quantity < 1 || item.Quantity > domain.MaxLineQuantity {
		return errLineQuantity
	}
	tag, err := r.db.Exec(ctx,
		`INSERT INTO cart_items (cart_id, product_id, name, unit_amount, quantity)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		 WHERE cart_items.quantity + EXCLUDED.quantity <= $6`,
		cartID, item.ProductID, item.Name, item.UnitAmount, item.Quantity, domain.MaxLineQuantity)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errLineQuantity
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, cartID, productID string, quantity int32) (bool, error) {
	if quantity < 1 || quantity > domain.MaxLineQuantity {
		return false, errLineQuantity
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE cart_items SET quantity=$3 WHERE cart_id=$1 AND product_id=$2`,
		cartID, productID, quantity)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, r.touch(ctx, cartID)
}

// AdjustQuantity applies delta atomically and drops the line when the result
// would fall below one.
func (r *CartRepo) AdjustQuantity(ctx context.Context, cartID, productID string, delta int32) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2 AND quantity + $3 < 1`,
		cartID, productID, delta)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, r.touch(ctx, cartID)
	}

	tag, err = r.db.Exec(ctx,
		`UPDATE cart_items SET quantity = quantity + $3
		 WHERE cart_id=$1 AND product_id=$2 AND quantity + $3 <= $4`,
		cartID, productID, delta, domain.MaxLineQuantity)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, r.touch(ctx, cartID)
	}

	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cart_items WHERE cart_id=$1 AND product_id=$2)`,
		cartID, productID).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		return true, errLineQuantity
	}
	return false, nil
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, productID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2`, cartID, productID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, r.touch(ctx, cartID)
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.db.Exec(ctx, `UPDATE carts SET updated_at=now() WHERE id=$1`, cartID)
	return err
}
