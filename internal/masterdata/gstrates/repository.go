package gstrates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
)

// Repository provides PostgreSQL backed persistence for GST rates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all rates ordered by value.
func (r *Repository) List(ctx context.Context) ([]GstRate, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, rate, created_at, updated_at FROM gst_rates ORDER BY rate`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rates []GstRate
	for rows.Next() {
		var g GstRate
		if err := rows.Scan(&g.ID, &g.Name, &g.Rate, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, g)
	}
	return rates, rows.Err()
}

// Get loads one rate.
func (r *Repository) Get(ctx context.Context, id int64) (*GstRate, error) {
	var g GstRate
	err := r.pool.QueryRow(ctx, `SELECT id, name, rate, created_at, updated_at FROM gst_rates WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Rate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Create inserts a rate.
func (r *Repository) Create(ctx context.Context, g GstRate) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO gst_rates (name, rate) VALUES ($1, $2) RETURNING id`, g.Name, g.Rate).Scan(&id)
	return id, err
}

// Update overwrites a rate.
func (r *Repository) Update(ctx context.Context, id int64, g GstRate) error {
	tag, err := r.pool.Exec(ctx, `UPDATE gst_rates SET name = $1, rate = $2, updated_at = NOW() WHERE id = $3`, g.Name, g.Rate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReferenceCount counts products pointing at the rate.
func (r *Repository) ReferenceCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE gst_rate_id = $1`, id).Scan(&count)
	return count, err
}

// Delete removes a rate.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gst_rates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
