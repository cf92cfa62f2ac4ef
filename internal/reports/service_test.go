package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryReportRepo struct {
	sales   []SalesRow
	slabs   []GstSlab
	items   []ItemSalesRow
	low     []LowStockRow
	expiry  []ExpiryRow
	lastCut string
	lastThr float64
}

func (m *memoryReportRepo) SalesRows(ctx context.Context, r DateRange) ([]SalesRow, error) {
	return m.sales, nil
}

func (m *memoryReportRepo) GstSlabs(ctx context.Context, r DateRange) ([]GstSlab, error) {
	return m.slabs, nil
}

func (m *memoryReportRepo) ItemSales(ctx context.Context, r DateRange) ([]ItemSalesRow, error) {
	return m.items, nil
}

func (m *memoryReportRepo) LowStock(ctx context.Context, threshold float64) ([]LowStockRow, error) {
	m.lastThr = threshold
	return m.low, nil
}

func (m *memoryReportRepo) ExpiringBatches(ctx context.Context, cutoff string) ([]ExpiryRow, error) {
	m.lastCut = cutoff
	return m.expiry, nil
}

type staticConfig struct {
	threshold float64
	months    int
}

func (c staticConfig) LowStockThreshold(ctx context.Context) (float64, error) {
	return c.threshold, nil
}

func (c staticConfig) ExpiryWarnMonths(ctx context.Context) (int, error) {
	return c.months, nil
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestSalesRegisterTotalsByMode(t *testing.T) {
	repo := &memoryReportRepo{sales: []SalesRow{
		{Number: "B00001", BillDate: day(1), PaymentMode: "CASH", Subtotal: 100, TaxTotal: 12, GrandTotal: 112},
		{Number: "B00002", BillDate: day(2), PaymentMode: "CREDIT", Subtotal: 200, TaxTotal: 24, GrandTotal: 224},
		{Number: "B00003", BillDate: day(2), PaymentMode: "CASH", Subtotal: 50, TaxTotal: 0, GrandTotal: 50},
	}}
	svc := NewService(repo, nil)

	report, err := svc.SalesRegister(context.Background(), DateRange{From: day(1), To: day(2)})
	require.NoError(t, err)
	require.InDelta(t, 350, report.Subtotal, 1e-9)
	require.InDelta(t, 36, report.TaxTotal, 1e-9)
	require.InDelta(t, 386, report.GrandTotal, 1e-9)
	require.InDelta(t, 162, report.ModeTotals["CASH"], 1e-9)
	require.InDelta(t, 224, report.ModeTotals["CREDIT"], 1e-9)
}

func TestGstSummarySortsSlabsAndTotals(t *testing.T) {
	repo := &memoryReportRepo{slabs: []GstSlab{
		{GstPct: 18, TaxableValue: 1000, TaxAmount: 180},
		{GstPct: 5, TaxableValue: 400, TaxAmount: 20},
	}}
	svc := NewService(repo, nil)

	report, err := svc.GstSummary(context.Background(), DateRange{From: day(1), To: day(2)})
	require.NoError(t, err)
	require.Equal(t, 5.0, report.Slabs[0].GstPct)
	require.Equal(t, 18.0, report.Slabs[1].GstPct)
	require.InDelta(t, 1400, report.TotalTaxable, 1e-9)
	require.InDelta(t, 200, report.TotalTax, 1e-9)
}

func TestItemSalesOrderedByRevenue(t *testing.T) {
	repo := &memoryReportRepo{items: []ItemSalesRow{
		{ProductName: "Cough Syrup", Revenue: 100},
		{ProductName: "Paracetamol", Revenue: 900},
	}}
	svc := NewService(repo, nil)

	rows, err := svc.ItemSales(context.Background(), DateRange{From: day(1), To: day(2)})
	require.NoError(t, err)
	require.Equal(t, "Paracetamol", rows[0].ProductName)
}

func TestThresholdsComeFromConfig(t *testing.T) {
	repo := &memoryReportRepo{}
	svc := NewService(repo, staticConfig{threshold: 25, months: 6})
	svc.now = func() time.Time { return day(1) }

	_, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 25, repo.lastThr, 1e-9)

	_, err = svc.Expiry(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-09", repo.lastCut)
}

func TestParseRangeRejectsInvertedWindow(t *testing.T) {
	svc := NewService(&memoryReportRepo{}, nil)
	_, err := svc.ParseRange("2025-03-10", "2025-03-01")
	require.Error(t, err)
}

func TestSalesRegisterCSVShape(t *testing.T) {
	report := &SalesRegister{
		From: "2025-03-01",
		To:   "2025-03-02",
		Rows: []SalesRow{
			{Number: "B00001", BillDate: day(1), CustomerName: `Sharma "Med" Stores`, PaymentMode: "CASH", Subtotal: 100000, TaxTotal: 12000, GrandTotal: 112000},
		},
		ModeTotals: map[string]float64{"CASH": 112000},
		Subtotal:   100000,
		TaxTotal:   12000,
		GrandTotal: 112000,
	}

	var sb strings.Builder
	require.NoError(t, WriteSalesRegisterCSV(&sb, report))
	out := sb.String()

	require.True(t, strings.HasPrefix(out, "# Report: Sales Register"))
	require.Contains(t, out, "Bill No,Date,Customer,Mode,Subtotal,Tax,Grand Total")
	// Quoted field with embedded quotes, RFC 4180 doubling.
	require.Contains(t, out, `"Sharma ""Med"" Stores"`)
	// en-IN digit grouping forces quoting of amounts.
	require.Contains(t, out, `"1,00,000.00"`)
	require.Contains(t, out, "\r\n")
}

func TestExpiryCSVShape(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteExpiryCSV(&sb, []ExpiryRow{
		{ProductName: "Azithro 250", BatchNo: "AZ101", Expiry: "2025-06", StockQty: 40},
	}))
	require.Contains(t, sb.String(), "Azithro 250,AZ101,2025-06,40")
}
