package jobs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/ledger"
)

// Repository backs the scan jobs with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func partyTable(party ledger.PartyType) string {
	if party == ledger.PartySupplier {
		return "suppliers"
	}
	return "customers"
}

// PartyIDs lists all counterparty ids of one kind.
func (r *Repository) PartyIDs(ctx context.Context, party ledger.PartyType) ([]int64, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id FROM %s ORDER BY id`, partyTable(party)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RepairBalance overwrites a stored balance with the recomputed value.
func (r *Repository) RepairBalance(ctx context.Context, party ledger.PartyType, id int64, balance float64) error {
	_, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET balance = $1, version = version + 1, updated_at = NOW() WHERE id = $2`,
			partyTable(party)), balance, id)
	return err
}

// DriftedBatches compares each batch's stock against opening stock minus the
// quantities on current bill lines. Purchases set opening stock at batch
// creation, so the sales log is the only legitimate source of decrease.
func (r *Repository) DriftedBatches(ctx context.Context) ([]BatchDrift, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.batch_no, b.stock_qty,
		        b.opening_stock - COALESCE(SUM(l.qty), 0) AS expected
		 FROM batches b
		 LEFT JOIN bill_lines l ON l.batch_id = b.id
		 GROUP BY b.id, b.batch_no, b.stock_qty, b.opening_stock
		 HAVING ABS(b.stock_qty - (b.opening_stock - COALESCE(SUM(l.qty), 0))) > 0.005
		 ORDER BY b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchDrift
	for rows.Next() {
		var d BatchDrift
		if err := rows.Scan(&d.BatchID, &d.BatchNo, &d.Stored, &d.Expected); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
