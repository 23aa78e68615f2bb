package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dwikikusuma/shoe-store/internal/order/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
)

const orderColumns = `id, user_id, items, shipping_address, payment_method, payment_status, payment_reference,
	status, currency, total_amount, created_at, updated_at`

// OrderRepo stores the item snapshot and shipping address as JSONB so an order
// row is self-contained and never joins back to live product data.
type OrderRepo struct {
	db postgres.DBTX
}

func NewOrderRepo(db postgres.DBTX) *OrderRepo {
	return &OrderRepo{db: db}
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o                    domain.Order
		items, addr          []byte
		method, pstat, ostat string
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &addr, &method, &pstat, &o.PaymentReference,
		&ostat, &o.Currency, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return domain.Order{}, fmt.Errorf("decode shipping address: %w", err)
	}
	o.PaymentMethod = domain.PaymentMethod(method)
	o.PaymentStatus = domain.PaymentStatus(pstat)
	o.Status = domain.Status(ostat)
	return o, nil
}

func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	for i, it := range o.Items {
		if it.LineTotalAmount != it.UnitAmount*int64(it.Quantity) {
			return domain.Order{}, fmt.Errorf("item %d: line total mismatch", i)
		}
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode order items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode shipping address: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, items, shipping_address, payment_method, payment_status,
		                     status, currency, total_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+orderColumns,
		o.ID, o.UserID, items, addr, string(o.PaymentMethod), string(o.PaymentStatus),
		string(o.Status), o.Currency, o.TotalAmount,
	)
	created, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	return created, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	return r.getOne(ctx, id, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (domain.Order, error) {
	return r.getOne(ctx, id, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
}

func (r *OrderRepo) getOne(ctx context.Context, id, q string, args ...any) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, q, args...))
	if postgres.IsNoRows(err) {
		return domain.Order{}, apperr.NotFound("order", id)
	}
	return o, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id`, userID)
}

func (r *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
}

func (r *OrderRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	return r.getOne(ctx, id,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 RETURNING `+orderColumns,
		id, string(status))
}

func (r *OrderRepo) UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus, reference string) (domain.Order, error) {
	return r.getOne(ctx, id,
		`UPDATE orders SET payment_status=$2, payment_reference=$3, updated_at=now() WHERE id=$1 RETURNING `+orderColumns,
		id, string(status), reference)
}
