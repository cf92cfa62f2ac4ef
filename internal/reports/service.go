package reports

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// RepositoryPort abstracts the report queries.
type RepositoryPort interface {
	SalesRows(ctx context.Context, r DateRange) ([]SalesRow, error)
	GstSlabs(ctx context.Context, r DateRange) ([]GstSlab, error)
	ItemSales(ctx context.Context, r DateRange) ([]ItemSalesRow, error)
	LowStock(ctx context.Context, threshold float64) ([]LowStockRow, error)
	ExpiringBatches(ctx context.Context, cutoff string) ([]ExpiryRow, error)
}

// ConfigPort supplies the report thresholds from system configuration.
type ConfigPort interface {
	LowStockThreshold(ctx context.Context) (float64, error)
	ExpiryWarnMonths(ctx context.Context) (int, error)
}

// Service assembles reports.
type Service struct {
	repo   RepositoryPort
	config ConfigPort
	now    func() time.Time
}

// NewService builds a reports service. config may be nil, in which case the
// built-in defaults apply.
func NewService(repo RepositoryPort, config ConfigPort) *Service {
	return &Service{repo: repo, config: config, now: time.Now}
}

const (
	defaultLowStockThreshold = 10
	defaultExpiryWarnMonths  = 3
)

// ParseRange parses from/to query values. An empty from falls back to the
// first of the current month, an empty to falls back to today.
func (s *Service) ParseRange(from, to string) (DateRange, error) {
	now := s.now().UTC()
	r := DateRange{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   now.Truncate(24 * time.Hour),
	}
	var err error
	if from != "" {
		if r.From, err = time.Parse("2006-01-02", from); err != nil {
			return DateRange{}, fmt.Errorf("reports: invalid from: %w", err)
		}
	}
	if to != "" {
		if r.To, err = time.Parse("2006-01-02", to); err != nil {
			return DateRange{}, fmt.Errorf("reports: invalid to: %w", err)
		}
	}
	if r.To.Before(r.From) {
		return DateRange{}, fmt.Errorf("reports: to precedes from")
	}
	return r, nil
}

// SalesRegister builds the per-bill sales report with payment-mode totals.
func (s *Service) SalesRegister(ctx context.Context, r DateRange) (*SalesRegister, error) {
	rows, err := s.repo.SalesRows(ctx, r)
	if err != nil {
		return nil, err
	}
	report := &SalesRegister{
		Range:      r,
		From:       r.From.Format("2006-01-02"),
		To:         r.To.Format("2006-01-02"),
		Rows:       rows,
		ModeTotals: map[string]float64{},
	}
	for _, row := range rows {
		report.Subtotal += row.Subtotal
		report.TaxTotal += row.TaxTotal
		report.GrandTotal += row.GrandTotal
		report.ModeTotals[row.PaymentMode] += row.GrandTotal
	}
	return report, nil
}

// GstSummary builds the per-slab tax report.
func (s *Service) GstSummary(ctx context.Context, r DateRange) (*GstSummary, error) {
	slabs, err := s.repo.GstSlabs(ctx, r)
	if err != nil {
		return nil, err
	}
	sort.Slice(slabs, func(i, j int) bool { return slabs[i].GstPct < slabs[j].GstPct })
	report := &GstSummary{
		From:  r.From.Format("2006-01-02"),
		To:    r.To.Format("2006-01-02"),
		Slabs: slabs,
	}
	for _, slab := range slabs {
		report.TotalTaxable += slab.TaxableValue
		report.TotalTax += slab.TaxAmount
	}
	return report, nil
}

// ItemSales builds the per-product sales aggregation, highest revenue first.
func (s *Service) ItemSales(ctx context.Context, r DateRange) ([]ItemSalesRow, error) {
	rows, err := s.repo.ItemSales(ctx, r)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	return rows, nil
}

// LowStock lists products at or below the configured stock threshold.
func (s *Service) LowStock(ctx context.Context) ([]LowStockRow, error) {
	threshold := float64(defaultLowStockThreshold)
	if s.config != nil {
		v, err := s.config.LowStockThreshold(ctx)
		if err == nil && v > 0 {
			threshold = v
		}
	}
	return s.repo.LowStock(ctx, threshold)
}

// Expiry lists batches expiring within the configured warning horizon.
func (s *Service) Expiry(ctx context.Context) ([]ExpiryRow, error) {
	months := defaultExpiryWarnMonths
	if s.config != nil {
		v, err := s.config.ExpiryWarnMonths(ctx)
		if err == nil && v > 0 {
			months = v
		}
	}
	cutoff := s.now().UTC().AddDate(0, months, 0).Format("2006-01")
	return s.repo.ExpiringBatches(ctx, cutoff)
}
