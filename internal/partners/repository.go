package partners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/platform/db"
	"github.com/medipos-erp/medipos/internal/shared"
)

// Repository provides PostgreSQL backed persistence for counterparties.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func table(kind Kind) string {
	if kind == KindSupplier {
		return "suppliers"
	}
	return "customers"
}

const partyColumns = `id, name, phone, address, gstin, opening_balance, balance, version, created_at, updated_at`

func scanParty(row pgx.Row) (*Party, error) {
	var p Party
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.GSTIN, &p.OpeningBalance, &p.Balance, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Get loads one counterparty.
func (r *Repository) Get(ctx context.Context, kind Kind, id int64) (*Party, error) {
	return scanParty(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, partyColumns, table(kind)), id))
}

// List returns counterparties matching the search, with pagination.
func (r *Repository) List(ctx context.Context, kind Kind, search string, page shared.Pagination) ([]Party, int, error) {
	where := ""
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		where = "WHERE lower(name) LIKE $1 OR phone LIKE $1"
		args = append(args, "%"+strings.ToLower(s)+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, table(kind), where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY name LIMIT $%d OFFSET $%d`,
		partyColumns, table(kind), where, len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.GSTIN, &p.OpeningBalance, &p.Balance, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// Create inserts a counterparty; the running balance starts at the opening
// balance.
func (r *Repository) Create(ctx context.Context, kind Kind, form PartyForm) (*Party, error) {
	return scanParty(r.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, phone, address, gstin, opening_balance, balance)
			 VALUES ($1, $2, $3, $4, $5, $5) RETURNING %s`, table(kind), partyColumns),
		form.Name, form.Phone, form.Address, form.GSTIN, form.OpeningBalance))
}

// Update overwrites contact fields and applies the opening-balance delta to
// the running balance, preserving activity recorded since the opening was
// first set. The version check rejects concurrent edits.
func (r *Repository) Update(ctx context.Context, kind Kind, id int64, form PartyForm, expectedVersion int64) (*Party, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE %s SET name = $1, phone = $2, address = $3, gstin = $4,
			 balance = balance + ($5 - opening_balance), opening_balance = $5,
			 version = version + 1, updated_at = NOW()
			 WHERE id = $6 AND version = $7 RETURNING %s`, table(kind), partyColumns),
		form.Name, form.Phone, form.Address, form.GSTIN, form.OpeningBalance, id, expectedVersion)
	p, err := scanParty(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Distinguish a missing row from a version miss.
			if _, getErr := r.Get(ctx, kind, id); getErr == nil {
				return nil, db.ErrVersionConflict
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a counterparty with no referencing bills, purchases or
// vouchers.
func (r *Repository) Delete(ctx context.Context, kind Kind, id int64) error {
	var refs int
	var query string
	if kind == KindCustomer {
		query = `SELECT (SELECT COUNT(*) FROM bills WHERE customer_id = $1) +
			(SELECT COUNT(*) FROM payment_vouchers WHERE party_type = 'CUSTOMER' AND party_id = $1)`
	} else {
		query = `SELECT (SELECT COUNT(*) FROM purchases WHERE supplier_id = $1) +
			(SELECT COUNT(*) FROM payment_vouchers WHERE party_type = 'SUPPLIER' AND party_id = $1)`
	}
	if err := r.pool.QueryRow(ctx, query, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrInUse
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table(kind)), id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
