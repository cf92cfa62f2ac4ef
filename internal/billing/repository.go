package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for bills.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InTx runs fn against a transactional port. All stock, balance and bill
// writes of one user action share the transaction.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get loads one bill with its lines.
func (r *Repository) Get(ctx context.Context, id int64) (*Bill, error) {
	return loadBill(ctx, r.pool, id)
}

// List returns bills for the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Bill, int, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.From != "" {
		conds = append(conds, "bill_date >= "+arg(filter.From))
	}
	if filter.To != "" {
		conds = append(conds, "bill_date <= "+arg(filter.To))
	}
	if filter.CustomerID > 0 {
		conds = append(conds, "customer_id = "+arg(filter.CustomerID))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		conds = append(conds, "(number ILIKE "+arg("%"+s+"%")+" OR customer_name ILIKE "+arg("%"+s+"%")+")")
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM bills "+where, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM bills %s ORDER BY bill_date DESC, id DESC LIMIT %s OFFSET %s`,
		billColumns, where, arg(limit), arg((page-1)*limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		bills = append(bills, *b)
	}
	return bills, total, rows.Err()
}

// txRepository implements TxPort over one open transaction.
type txRepository struct {
	tx pgx.Tx
}

const billColumns = `id, number, bill_date, customer_id, customer_name, salesman_id,
	payment_mode, subtotal, tax_total, grand_total, version, created_at, updated_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.Number, &b.BillDate, &b.CustomerID, &b.CustomerName, &b.SalesmanID,
		&b.PaymentMode, &b.Subtotal, &b.TaxTotal, &b.GrandTotal, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadBill(ctx context.Context, q querier, id int64) (*Bill, error) {
	bill, err := scanBill(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM bills WHERE id = $1`, billColumns), id))
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx,
		`SELECT id, bill_id, product_id, batch_id, product_name, batch_no, qty, rate, gst_pct, line_total
		 FROM bill_lines WHERE bill_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l BillLine
		if err := rows.Scan(&l.ID, &l.BillID, &l.ProductID, &l.BatchID, &l.ProductName, &l.BatchNo,
			&l.Qty, &l.Rate, &l.GstPct, &l.LineTotal); err != nil {
			return nil, err
		}
		bill.Lines = append(bill.Lines, l)
	}
	return bill, rows.Err()
}

// NextBillNumber derives the next bill number from the maximum numeric suffix
// of existing numbers. Runs inside the mutation transaction so concurrent
// creates serialize on the unique constraint instead of silently colliding.
func (t *txRepository) NextBillNumber(ctx context.Context, prefix string) (string, error) {
	var maxSeq int64
	err := t.tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(NULLIF(regexp_replace(number, '\D', '', 'g'), '')::BIGINT), 0) FROM bills`,
	).Scan(&maxSeq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, maxSeq+1), nil
}

func (t *txRepository) GetBill(ctx context.Context, id int64) (*Bill, error) {
	return loadBill(ctx, t.tx, id)
}

func (t *txRepository) InsertBill(ctx context.Context, bill *Bill) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO bills (number, bill_date, customer_id, customer_name, salesman_id,
			payment_mode, subtotal, tax_total, grand_total, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		bill.Number, bill.BillDate, bill.CustomerID, bill.CustomerName, bill.SalesmanID,
		bill.PaymentMode, bill.Subtotal, bill.TaxTotal, bill.GrandTotal, bill.Version,
	).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)
}

func (t *txRepository) UpdateBill(ctx context.Context, bill *Bill, expectedVersion int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE bills SET bill_date = $1, customer_id = $2, customer_name = $3, salesman_id = $4,
			payment_mode = $5, subtotal = $6, tax_total = $7, grand_total = $8,
			version = version + 1, updated_at = NOW()
		 WHERE id = $9 AND version = $10`,
		bill.BillDate, bill.CustomerID, bill.CustomerName, bill.SalesmanID,
		bill.PaymentMode, bill.Subtotal, bill.TaxTotal, bill.GrandTotal,
		bill.ID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrVersionConflict
	}
	return nil
}

func (t *txRepository) DeleteBill(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) ReplaceLines(ctx context.Context, billID int64, lines []BillLine) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM bill_lines WHERE bill_id = $1`, billID); err != nil {
		return err
	}
	for i := range lines {
		l := &lines[i]
		l.BillID = billID
		err := t.tx.QueryRow(ctx,
			`INSERT INTO bill_lines (bill_id, product_id, batch_id, product_name, batch_no, qty, rate, gst_pct, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			l.BillID, l.ProductID, l.BatchID, l.ProductName, l.BatchNo, l.Qty, l.Rate, l.GstPct, l.LineTotal,
		).Scan(&l.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepository) GetBatch(ctx context.Context, batchID string) (*BatchStock, error) {
	var b BatchStock
	err := t.tx.QueryRow(ctx,
		`SELECT id, product_id, batch_no, stock_qty, version FROM batches WHERE id = $1`, batchID,
	).Scan(&b.ID, &b.ProductID, &b.BatchNo, &b.StockQty, &b.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return &b, nil
}

// AdjustBatchStock applies a signed stock delta with a version check. The
// stock_qty CHECK constraint is the final guard against going negative.
func (t *txRepository) AdjustBatchStock(ctx context.Context, batchID string, delta float64, expectedVersion int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE batches SET stock_qty = stock_qty + $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND version = $3`, delta, batchID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrVersionConflict
	}
	return nil
}

func (t *txRepository) GetCustomer(ctx context.Context, id int64) (*CustomerRef, error) {
	var c CustomerRef
	err := t.tx.QueryRow(ctx, `SELECT id, name FROM customers WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t *txRepository) FindCustomerByName(ctx context.Context, name string) (*CustomerRef, error) {
	var c CustomerRef
	err := t.tx.QueryRow(ctx,
		`SELECT id, name FROM customers WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`, name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t *txRepository) CreateCustomer(ctx context.Context, name string) (*CustomerRef, error) {
	var c CustomerRef
	err := t.tx.QueryRow(ctx,
		`INSERT INTO customers (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AdjustCustomerBalance applies an additive balance delta. The update is a
// single atomic statement, so it needs no read-modify-write version check;
// the version still advances to signal the change to other writers.
func (t *txRepository) AdjustCustomerBalance(ctx context.Context, id int64, delta float64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE customers SET balance = balance + $1, version = version + 1, updated_at = NOW() WHERE id = $2`,
		delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
