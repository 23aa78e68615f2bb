package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dwikikusuma/shoe-store/internal/catalog/domain"
	"github.com/dwikikusuma/shoe-store/pkg/apperr"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
)

var errStockQuantity = apperr.Validation("quantity", "must be a positive integer")

const productColumns = `id, name, description, price, stock, category, brand, tags, is_featured, created_at, updated_at`

// ProductRepo is both the catalog repository and the inventory store. Bound
// to a pgx.Tx it takes part in a checkout or cancellation unit of work.
type ProductRepo struct {
	db postgres.DBTX
}

func NewProductRepo(db postgres.DBTX) *ProductRepo {
	return &ProductRepo{db: db}
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var category string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &category,
		&p.Brand, &p.Tags, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	p.Category = domain.Category(category)
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO products (id, name, description, price, stock, category, brand, tags, is_featured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.Stock, string(p.Category), p.Brand, p.Tags, p.IsFeatured,
	)
	created, err := scanProduct(row)
	if postgres.IsUniqueViolation(err) {
		return domain.Product{}, apperr.Validation("id", "already exists")
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if postgres.IsNoRows(err) {
		return domain.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// List pages by id; the returned cursor is empty on the last page.
func (r *ProductRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.Product, string, error) {
	var (
		where []string
		args  []any
	)
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR brand ILIKE $%d)", n, n, n))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Featured {
		where = append(where, "is_featured")
	}
	if f.Cursor != "" {
		args = append(args, f.Cursor)
		where = append(where, fmt.Sprintf("id > $%d", len(args)))
	}

	q := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit)
	q += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, f.Limit)
	var nextCursor string
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p)
		nextCursor = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < f.Limit {
		nextCursor = ""
	}
	return out, nextCursor, nil
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	row := r.db.QueryRow(ctx,
		`UPDATE products
		    SET name=$2, description=$3, price=$4, stock=$5, category=$6, brand=$7, tags=$8,
		        is_featured=$9, updated_at=now()
		  WHERE id=$1
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.Stock, string(p.Category), p.Brand, p.Tags, p.IsFeatured,
	)
	updated, err := scanProduct(row)
	if postgres.IsNoRows(err) {
		return domain.Product{}, apperr.NotFound("product", p.ID)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

// GetMany loads the given products in one round trip. Missing ids are simply
// absent from the result.
func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ConditionalDecrement subtracts qty only while stock >= qty at write time.
// It reports false when the guard did not hold.
func (r *ProductRepo) ConditionalDecrement(ctx context.Context, id string, qty int32) (bool, error) {
	if qty < 1 {
		return false, errStockQuantity
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`,
		id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Increment adds qty unconditionally. It reports false when the product no
// longer exists.
func (r *ProductRepo) Increment(ctx context.Context, id string, qty int32) (bool, error) {
	if qty < 1 {
		return false, errStockQuantity
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("increment stock %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}
