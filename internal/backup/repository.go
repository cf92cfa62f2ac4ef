package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables included in the snapshot, in export order. Lines ride along with
// their parent records as separate collections so the export stays flat.
var snapshotTables = []string{
	"gst_rates",
	"companies",
	"salesmen",
	"products",
	"batches",
	"customers",
	"suppliers",
	"bills",
	"bill_lines",
	"purchases",
	"purchase_lines",
	"payment_vouchers",
	"company_profile",
	"system_config",
}

// Repository loads collections with server-side JSON aggregation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Collections returns every table as a JSON array keyed by table name.
func (r *Repository) Collections(ctx context.Context) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(snapshotTables))
	for _, table := range snapshotTables {
		var raw []byte
		query := fmt.Sprintf(`SELECT COALESCE(jsonb_agg(to_jsonb(t) ORDER BY t.id), '[]'::jsonb) FROM %s t`, table)
		if err := r.pool.QueryRow(ctx, query).Scan(&raw); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", table, err)
		}
		out[table] = json.RawMessage(raw)
	}
	return out, nil
}
