package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
)

// Repository provides PostgreSQL backed persistence for products and batches.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads one product with its batches in creation order.
func (r *Repository) Get(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, company, hsn_code, gst_rate_id, units_per_strip, sold_by_strip, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Company, &p.HSNCode, &p.GstRateID, &p.UnitsPerStrip, &p.SoldByStrip, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, batch_no, expiry, stock_qty, opening_stock, mrp, purchase_price, version, created_at, updated_at
		 FROM batches WHERE product_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.BatchNo, &b.Expiry, &b.StockQty, &b.OpeningStock, &b.MRP, &b.PurchasePrice, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		p.Batches = append(p.Batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products matching the filters, without batches.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	filters.Normalize()

	where := ""
	args := []any{}
	if s := strings.TrimSpace(filters.Search); s != "" {
		where = "WHERE lower(name) LIKE $1 OR lower(company) LIKE $1"
		args = append(args, "%"+strings.ToLower(s)+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM products %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT id, name, company, hsn_code, gst_rate_id, units_per_strip, sold_by_strip, created_at, updated_at
		FROM products %s ORDER BY name LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Company, &p.HSNCode, &p.GstRateID, &p.UnitsPerStrip, &p.SoldByStrip, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, company, hsn_code, gst_rate_id, units_per_strip, sold_by_strip)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Name, p.Company, p.HSNCode, p.GstRateID, p.UnitsPerStrip, p.SoldByStrip).Scan(&id)
	return id, err
}

// Update overwrites the product's descriptive fields.
func (r *Repository) Update(ctx context.Context, id int64, p Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $1, company = $2, hsn_code = $3, gst_rate_id = $4,
		 units_per_strip = $5, sold_by_strip = $6, updated_at = NOW() WHERE id = $7`,
		p.Name, p.Company, p.HSNCode, p.GstRateID, p.UnitsPerStrip, p.SoldByStrip, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a product; batches cascade. Products referenced by bill or
// purchase lines are protected by foreign keys.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shared.ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddBatch appends a batch to an existing product.
func (r *Repository) AddBatch(ctx context.Context, b Batch) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO batches (id, product_id, batch_no, expiry, stock_qty, opening_stock, mrp, purchase_price)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.ProductID, b.BatchNo, b.Expiry, b.StockQty, b.OpeningStock, b.MRP, b.PurchasePrice)
	return err
}

// UpdateBatch overwrites batch descriptive fields; stock stays untouched here.
func (r *Repository) UpdateBatch(ctx context.Context, id string, b Batch) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE batches SET batch_no = $1, expiry = $2, mrp = $3, purchase_price = $4, updated_at = NOW()
		 WHERE id = $5`,
		b.BatchNo, b.Expiry, b.MRP, b.PurchasePrice, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExpiringBatches lists batches whose expiry month falls on or before the cutoff.
func (r *Repository) ExpiringBatches(ctx context.Context, cutoff time.Time) ([]Batch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, batch_no, expiry, stock_qty, opening_stock, mrp, purchase_price, version, created_at, updated_at
		 FROM batches WHERE expiry <> '' AND expiry <= $1 AND stock_qty > 0 ORDER BY expiry`,
		cutoff.Format("2006-01"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.BatchNo, &b.Expiry, &b.StockQty, &b.OpeningStock, &b.MRP, &b.PurchasePrice, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
