package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	catalogdomain "github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

var errStockQuantity = apperr.Validation("quantity", "must be a positive integer")

type ProductRepo struct {
	s Scope
}

func NewProductRepo(s Scope) *ProductRepo {
	return &ProductRepo{s: s}
}

func (r *ProductRepo) Create(ctx context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	var out catalogdomain.Product
	err := r.s.run(ctx, func(tx *Tx) error {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, exists := tx.db.products[p.ID]; exists {
			return apperr.Validation("id", "already exists")
		}
		now := tx.db.stamp()
		p.CreatedAt, p.UpdatedAt = now, now
		out = cloneProduct(p)
		put(tx, tx.db.products, p.ID, cloneProduct(p))
		return nil
	})
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	var out catalogdomain.Product
	err := r.s.run(ctx, func(tx *Tx) error {
		p, ok := tx.db.products[id]
		if !ok {
			return apperr.NotFound("product", id)
		}
		out = cloneProduct(p)
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(ctx context.Context, f catalogdomain.ListFilter) ([]catalogdomain.Product, string, error) {
	var out []catalogdomain.Product
	err := r.s.run(ctx, func(tx *Tx) error {
		q := strings.ToLower(f.Query)
		for _, p := range tx.db.products {
			if f.Cursor != "" && p.ID <= f.Cursor {
				continue
			}
			if f.Category != "" && p.Category != f.Category {
				continue
			}
			if f.Featured && !p.IsFeatured {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.Description), q) &&
				!strings.Contains(strings.ToLower(p.Brand), q) {
				continue
			}
			out = append(out, cloneProduct(p))
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	var next string
	if f.Limit > 0 && len(out) == f.Limit {
		next = out[len(out)-1].ID
	}
	if out == nil {
		out = []catalogdomain.Product{}
	}
	return out, next, nil
}

func (r *ProductRepo) Update(ctx context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	var out catalogdomain.Product
	err := r.s.run(ctx, func(tx *Tx) error {
		cur, ok := tx.db.products[p.ID]
		if !ok {
			return apperr.NotFound("product", p.ID)
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = tx.db.stamp()
		out = cloneProduct(p)
		put(tx, tx.db.products, p.ID, cloneProduct(p))
		return nil
	})
	return out, err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.s.run(ctx, func(tx *Tx) error {
		if !del(tx, tx.db.products, id) {
			return apperr.NotFound("product", id)
		}
		return nil
	})
}

func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error) {
	out := make(map[string]catalogdomain.Product, len(ids))
	err := r.s.run(ctx, func(tx *Tx) error {
		for _, id := range ids {
			if p, ok := tx.db.products[id]; ok {
				out[id] = cloneProduct(p)
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) ConditionalDecrement(ctx context.Context, id string, qty int32) (bool, error) {
	if qty < 1 {
		return false, errStockQuantity
	}
	var ok bool
	err := r.s.run(ctx, func(tx *Tx) error {
		p, found := tx.db.products[id]
		if !found || p.Stock < qty {
			return nil
		}
		p.Stock -= qty
		p.UpdatedAt = tx.db.stamp()
		put(tx, tx.db.products, id, p)
		ok = true
		return nil
	})
	return ok, err
}

func (r *ProductRepo) Increment(ctx context.Context, id string, qty int32) (bool, error) {
	if qty < 1 {
		return false, errStockQuantity
	}
	var ok bool
	err := r.s.run(ctx, func(tx *Tx) error {
		p, found := tx.db.products[id]
		if !found {
			return nil
		}
		p.Stock += qty
		p.UpdatedAt = tx.db.stamp()
		put(tx, tx.db.products, id, p)
		ok = true
		return nil
	})
	return ok, err
}
