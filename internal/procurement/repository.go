package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for purchases.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InTx runs fn against a transactional port.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get loads one purchase with its lines.
func (r *Repository) Get(ctx context.Context, id int64) (*Purchase, error) {
	return loadPurchase(ctx, r.pool, id)
}

// List returns purchases for the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.From != "" {
		conds = append(conds, "invoice_date >= "+arg(filter.From))
	}
	if filter.To != "" {
		conds = append(conds, "invoice_date <= "+arg(filter.To))
	}
	if filter.SupplierID > 0 {
		conds = append(conds, "supplier_id = "+arg(filter.SupplierID))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		conds = append(conds, "(invoice_no ILIKE "+arg("%"+s+"%")+" OR supplier_name ILIKE "+arg("%"+s+"%")+")")
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchases "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT %s FROM purchases %s ORDER BY invoice_date DESC, id DESC LIMIT %s OFFSET %s`,
		purchaseColumns, where, arg(limit), arg((page-1)*limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, err
		}
		purchases = append(purchases, *p)
	}
	return purchases, total, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

const purchaseColumns = `id, supplier_id, supplier_name, invoice_no, invoice_date, payment_mode, total, created_at, updated_at`

func scanPurchase(row pgx.Row) (*Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.InvoiceNo, &p.InvoiceDate,
		&p.PaymentMode, &p.Total, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadPurchase(ctx context.Context, q querier, id int64) (*Purchase, error) {
	purchase, err := scanPurchase(q.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM purchases WHERE id = $1`, purchaseColumns), id))
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx,
		`SELECT id, purchase_id, product_id, batch_id, qty, units_per_strip, purchase_price, mrp, gst_pct, line_total
		 FROM purchase_lines WHERE purchase_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.ProductID, &l.BatchID, &l.Qty,
			&l.UnitsPerStrip, &l.PurchasePrice, &l.MRP, &l.GstPct, &l.LineTotal); err != nil {
			return nil, err
		}
		purchase.Lines = append(purchase.Lines, l)
	}
	return purchase, rows.Err()
}

func (t *txRepository) GetPurchase(ctx context.Context, id int64) (*Purchase, error) {
	return loadPurchase(ctx, t.tx, id)
}

func (t *txRepository) InsertPurchase(ctx context.Context, p *Purchase) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO purchases (supplier_id, supplier_name, invoice_no, invoice_date, payment_mode, total)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		p.SupplierID, p.SupplierName, p.InvoiceNo, p.InvoiceDate, p.PaymentMode, p.Total,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (t *txRepository) InsertLine(ctx context.Context, line *PurchaseLine) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO purchase_lines (purchase_id, product_id, batch_id, qty, units_per_strip, purchase_price, mrp, gst_pct, line_total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		line.PurchaseID, line.ProductID, line.BatchID, line.Qty, line.UnitsPerStrip,
		line.PurchasePrice, line.MRP, line.GstPct, line.LineTotal,
	).Scan(&line.ID)
}

func (t *txRepository) DeletePurchase(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) GetProduct(ctx context.Context, id int64) (*ProductRef, error) {
	var p ProductRef
	err := t.tx.QueryRow(ctx,
		`SELECT id, name, units_per_strip, sold_by_strip FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.UnitsPerStrip, &p.SoldByStrip)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *txRepository) CreateProduct(ctx context.Context, form NewProductForm) (*ProductRef, error) {
	var p ProductRef
	err := t.tx.QueryRow(ctx,
		`INSERT INTO products (name, company, hsn_code, gst_rate_id, units_per_strip, sold_by_strip)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, name, units_per_strip, sold_by_strip`,
		form.Name, form.Company, form.HSNCode, form.GstRateID, form.UnitsPerStrip, form.SoldByStrip,
	).Scan(&p.ID, &p.Name, &p.UnitsPerStrip, &p.SoldByStrip)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *txRepository) CreateBatch(ctx context.Context, batch NewBatch) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO batches (id, product_id, batch_no, expiry, stock_qty, opening_stock, mrp, purchase_price)
		 VALUES ($1, $2, $3, $4, $5, $5, $6, $7)`,
		batch.ID, batch.ProductID, batch.BatchNo, batch.Expiry, batch.StockQty, batch.MRP, batch.PurchasePrice)
	return err
}

func (t *txRepository) GetSupplier(ctx context.Context, id int64) (*SupplierRef, error) {
	var s SupplierRef
	err := t.tx.QueryRow(ctx, `SELECT id, name FROM suppliers WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (t *txRepository) FindSupplierByName(ctx context.Context, name string) (*SupplierRef, error) {
	var s SupplierRef
	err := t.tx.QueryRow(ctx,
		`SELECT id, name FROM suppliers WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`, name,
	).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (t *txRepository) CreateSupplier(ctx context.Context, name string) (*SupplierRef, error) {
	var s SupplierRef
	err := t.tx.QueryRow(ctx,
		`INSERT INTO suppliers (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&s.ID, &s.Name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AdjustSupplierBalance applies an additive balance delta in one atomic
// statement.
func (t *txRepository) AdjustSupplierBalance(ctx context.Context, id int64, delta float64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE suppliers SET balance = balance + $1, version = version + 1, updated_at = NOW() WHERE id = $2`,
		delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
