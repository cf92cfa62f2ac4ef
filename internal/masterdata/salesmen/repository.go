package salesmen

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
)

// Repository provides PostgreSQL backed persistence for salesmen.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all salesmen by name.
func (r *Repository) List(ctx context.Context) ([]Salesman, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(phone, ''), created_at, updated_at FROM salesmen ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Salesman
	for rows.Next() {
		var s Salesman
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Create inserts a salesman.
func (r *Repository) Create(ctx context.Context, name, phone string) (*Salesman, error) {
	var s Salesman
	err := r.pool.QueryRow(ctx,
		`INSERT INTO salesmen (name, phone) VALUES ($1, $2) RETURNING id, name, COALESCE(phone, ''), created_at, updated_at`,
		name, phone).Scan(&s.ID, &s.Name, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a salesman.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM salesmen WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
