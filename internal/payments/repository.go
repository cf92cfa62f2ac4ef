package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medipos-erp/medipos/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for vouchers.
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

const voucherColumns = `id, number, party_type, party_id, voucher_date, amount, method, remarks, created_at, updated_at`

func scanVoucher(row pgx.Row) (*Voucher, error) {
	var v Voucher
	err := row.Scan(&v.ID, &v.Number, &v.PartyType, &v.PartyID, &v.VoucherDate,
		&v.Amount, &v.Method, &v.Remarks, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Get loads one voucher.
func (r *Repository) Get(ctx context.Context, id int64) (*Voucher, error) {
	return scanVoucher(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM payment_vouchers WHERE id = $1`, voucherColumns), id))
}

// List returns vouchers for the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Voucher, int, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.PartyType != "" {
		conds = append(conds, "party_type = "+arg(filter.PartyType))
	}
	if filter.PartyID > 0 {
		conds = append(conds, "party_id = "+arg(filter.PartyID))
	}
	if filter.From != "" {
		conds = append(conds, "voucher_date >= "+arg(filter.From))
	}
	if filter.To != "" {
		conds = append(conds, "voucher_date <= "+arg(filter.To))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payment_vouchers "+where, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`SELECT %s FROM payment_vouchers %s ORDER BY voucher_date DESC, id DESC LIMIT %s OFFSET %s`,
		voucherColumns, where, arg(limit), arg((page-1)*limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vouchers []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, 0, err
		}
		vouchers = append(vouchers, *v)
	}
	return vouchers, total, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// NextVoucherNumber draws from a database sequence, so concurrent creates
// never collide.
func (t *txRepository) NextVoucherNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := t.tx.QueryRow(ctx, `SELECT nextval('payment_voucher_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("PV-%06d", seq), nil
}

func (t *txRepository) GetVoucher(ctx context.Context, id int64) (*Voucher, error) {
	return scanVoucher(t.tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM payment_vouchers WHERE id = $1`, voucherColumns), id))
}

func (t *txRepository) InsertVoucher(ctx context.Context, v *Voucher) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO payment_vouchers (number, party_type, party_id, voucher_date, amount, method, remarks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
		v.Number, v.PartyType, v.PartyID, v.VoucherDate, v.Amount, v.Method, v.Remarks,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (t *txRepository) UpdateVoucher(ctx context.Context, v *Voucher) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE payment_vouchers SET party_type = $1, party_id = $2, voucher_date = $3,
			amount = $4, method = $5, remarks = $6, updated_at = NOW()
		 WHERE id = $7`,
		v.PartyType, v.PartyID, v.VoucherDate, v.Amount, v.Method, v.Remarks, v.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) DeleteVoucher(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM payment_vouchers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func partyTable(party PartyType) string {
	if party == PartySupplier {
		return "suppliers"
	}
	return "customers"
}

func (t *txRepository) PartyExists(ctx context.Context, party PartyType, id int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, partyTable(party)), id,
	).Scan(&exists)
	return exists, err
}

func (t *txRepository) AdjustPartyBalance(ctx context.Context, party PartyType, id int64, delta float64) error {
	tag, err := t.tx.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET balance = balance + $1, version = version + 1, updated_at = NOW() WHERE id = $2`,
			partyTable(party)), delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPartyNotFound
	}
	return nil
}
