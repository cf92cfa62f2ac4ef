package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the report queries against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesRows returns bills within the window, oldest first.
func (r *Repository) SalesRows(ctx context.Context, dr DateRange) ([]SalesRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, bill_date, customer_name, payment_mode, subtotal, tax_total, grand_total
		 FROM bills WHERE bill_date >= $1 AND bill_date <= $2
		 ORDER BY bill_date, id`, dr.From, dr.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalesRow
	for rows.Next() {
		var row SalesRow
		if err := rows.Scan(&row.BillID, &row.Number, &row.BillDate, &row.CustomerName,
			&row.PaymentMode, &row.Subtotal, &row.TaxTotal, &row.GrandTotal); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GstSlabs aggregates bill lines by GST percentage within the window.
func (r *Repository) GstSlabs(ctx context.Context, dr DateRange) ([]GstSlab, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.gst_pct,
		        SUM(l.qty * l.rate)                       AS taxable,
		        SUM(l.qty * l.rate * l.gst_pct / 100.0)   AS tax
		 FROM bill_lines l
		 JOIN bills b ON b.id = l.bill_id
		 WHERE b.bill_date >= $1 AND b.bill_date <= $2
		 GROUP BY l.gst_pct`, dr.From, dr.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GstSlab
	for rows.Next() {
		var slab GstSlab
		if err := rows.Scan(&slab.GstPct, &slab.TaxableValue, &slab.TaxAmount); err != nil {
			return nil, err
		}
		out = append(out, slab)
	}
	return out, rows.Err()
}

// ItemSales aggregates sold quantity and revenue per product.
func (r *Repository) ItemSales(ctx context.Context, dr DateRange) ([]ItemSalesRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.product_id, MAX(l.product_name), SUM(l.qty), SUM(l.line_total)
		 FROM bill_lines l
		 JOIN bills b ON b.id = l.bill_id
		 WHERE b.bill_date >= $1 AND b.bill_date <= $2
		 GROUP BY l.product_id`, dr.From, dr.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemSalesRow
	for rows.Next() {
		var row ItemSalesRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.QtySold, &row.Revenue); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LowStock returns products whose summed batch stock is at or below the
// threshold, lowest first.
func (r *Repository) LowStock(ctx context.Context, threshold float64) ([]LowStockRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.company, COALESCE(SUM(b.stock_qty), 0) AS total_stock
		 FROM products p
		 LEFT JOIN batches b ON b.product_id = p.id
		 GROUP BY p.id, p.name, p.company
		 HAVING COALESCE(SUM(b.stock_qty), 0) <= $1
		 ORDER BY total_stock, p.name`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LowStockRow
	for rows.Next() {
		var row LowStockRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Company, &row.TotalStock); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ExpiringBatches returns stocked batches whose YYYY-MM expiry falls on or
// before the cutoff month, soonest first. The lexicographic comparison is
// exact for the fixed-width format.
func (r *Repository) ExpiringBatches(ctx context.Context, cutoff string) ([]ExpiryRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, b.id, b.batch_no, b.expiry, b.stock_qty
		 FROM batches b
		 JOIN products p ON p.id = b.product_id
		 WHERE b.expiry <> '' AND b.expiry <= $1 AND b.stock_qty > 0
		 ORDER BY b.expiry, p.name`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExpiryRow
	for rows.Next() {
		var row ExpiryRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.BatchID, &row.BatchNo,
			&row.Expiry, &row.StockQty); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
