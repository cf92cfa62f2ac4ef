package settings

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the singleton rows. Reads return zero-value defaults
// when the row has never been saved.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetProfile loads the company profile.
func (r *Repository) GetProfile(ctx context.Context) (*CompanyProfile, error) {
	var p CompanyProfile
	err := r.pool.QueryRow(ctx,
		`SELECT name, address, phone, gstin, dl_number, footer, updated_at FROM company_profile WHERE id = 1`).
		Scan(&p.Name, &p.Address, &p.Phone, &p.GSTIN, &p.DLNumber, &p.Footer, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &CompanyProfile{}, nil
		}
		return nil, err
	}
	return &p, nil
}

// SaveProfile upserts the company profile.
func (r *Repository) SaveProfile(ctx context.Context, p CompanyProfile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO company_profile (id, name, address, phone, gstin, dl_number, footer, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (id) DO UPDATE SET name = $1, address = $2, phone = $3, gstin = $4, dl_number = $5, footer = $6, updated_at = NOW()`,
		p.Name, p.Address, p.Phone, p.GSTIN, p.DLNumber, p.Footer)
	return err
}

// GetConfig loads the system config, defaulting when absent.
func (r *Repository) GetConfig(ctx context.Context) (*SystemConfig, error) {
	var c SystemConfig
	err := r.pool.QueryRow(ctx,
		`SELECT bill_prefix, low_stock_threshold, expiry_warn_months, updated_at FROM system_config WHERE id = 1`).
		Scan(&c.BillPrefix, &c.LowStockThreshold, &c.ExpiryWarnMonths, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &SystemConfig{BillPrefix: "B", LowStockThreshold: 10, ExpiryWarnMonths: 3}, nil
		}
		return nil, err
	}
	return &c, nil
}

// LowStockThreshold exposes the configured threshold to report consumers.
func (r *Repository) LowStockThreshold(ctx context.Context) (float64, error) {
	c, err := r.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.LowStockThreshold, nil
}

// ExpiryWarnMonths exposes the configured expiry horizon to report consumers.
func (r *Repository) ExpiryWarnMonths(ctx context.Context) (int, error) {
	c, err := r.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	return c.ExpiryWarnMonths, nil
}

// SaveConfig upserts the system config.
func (r *Repository) SaveConfig(ctx context.Context, c SystemConfig) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO system_config (id, bill_prefix, low_stock_threshold, expiry_warn_months, updated_at)
		 VALUES (1, $1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE SET bill_prefix = $1, low_stock_threshold = $2, expiry_warn_months = $3, updated_at = NOW()`,
		c.BillPrefix, c.LowStockThreshold, c.ExpiryWarnMonths)
	return err
}
