package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	orderdomain "github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

type OrderRepo struct {
	s Scope
}

func NewOrderRepo(s Scope) *OrderRepo {
	return &OrderRepo{s: s}
}

func (r *OrderRepo) Create(ctx context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	var out orderdomain.Order
	err := r.s.run(ctx, func(tx *Tx) error {
		for i, it := range o.Items {
			if it.LineTotalAmount != it.UnitAmount*int64(it.Quantity) {
				return fmt.Errorf("item %d: line total mismatch", i)
			}
		}
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		now := tx.db.stamp()
		o.CreatedAt, o.UpdatedAt = now, now
		put(tx, tx.db.orders, o.ID, cloneOrder(o))
		out = cloneOrder(o)
		return nil
	})
	return out, err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (orderdomain.Order, error) {
	var out orderdomain.Order
	err := r.s.run(ctx, func(tx *Tx) error {
		o, ok := tx.db.orders[id]
		if !ok {
			return apperr.NotFound("order", id)
		}
		out = cloneOrder(o)
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (orderdomain.Order, error) {
	return r.Get(ctx, id)
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]orderdomain.Order, error) {
	return r.list(ctx, func(o orderdomain.Order) bool { return o.UserID == userID })
}

func (r *OrderRepo) List(ctx context.Context) ([]orderdomain.Order, error) {
	return r.list(ctx, func(orderdomain.Order) bool { return true })
}

// list returns newest first.
func (r *OrderRepo) list(ctx context.Context, keep func(orderdomain.Order) bool) ([]orderdomain.Order, error) {
	out := []orderdomain.Order{}
	err := r.s.run(ctx, func(tx *Tx) error {
		for _, o := range tx.db.orders {
			if keep(o) {
				out = append(out, cloneOrder(o))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status orderdomain.Status) (orderdomain.Order, error) {
	return r.update(ctx, id, func(o *orderdomain.Order) { o.Status = status })
}

func (r *OrderRepo) UpdatePayment(ctx context.Context, id string, status orderdomain.PaymentStatus, reference string) (orderdomain.Order, error) {
	return r.update(ctx, id, func(o *orderdomain.Order) {
		o.PaymentStatus = status
		o.PaymentReference = reference
	})
}

func (r *OrderRepo) update(ctx context.Context, id string, fn func(o *orderdomain.Order)) (orderdomain.Order, error) {
	var out orderdomain.Order
	err := r.s.run(ctx, func(tx *Tx) error {
		o, ok := tx.db.orders[id]
		if !ok {
			return apperr.NotFound("order", id)
		}
		o = cloneOrder(o)
		fn(&o)
		o.UpdatedAt = tx.db.stamp()
		put(tx, tx.db.orders, id, o)
		out = cloneOrder(o)
		return nil
	})
	return out, err
}
