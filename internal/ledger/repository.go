package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads counterparty records and their full transaction history.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Party is the stored counterparty row the fold starts from.
type Party struct {
	ID             int64
	Name           string
	OpeningBalance float64
	Balance        float64
}

// GetParty loads a customer or supplier record.
func (r *Repository) GetParty(ctx context.Context, party PartyType, id int64) (*Party, error) {
	table := "customers"
	if party == PartySupplier {
		table = "suppliers"
	}
	var p Party
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, name, opening_balance, balance FROM %s WHERE id = $1`, table), id,
	).Scan(&p.ID, &p.Name, &p.OpeningBalance, &p.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListEntries returns the full merged history for one counterparty: credit
// bills or credit purchases plus every payment voucher against the party.
// Seq is the row id of the source record, which makes same-day ordering
// deterministic.
func (r *Repository) ListEntries(ctx context.Context, party PartyType, id int64) ([]Entry, error) {
	var creditQuery string
	if party == PartyCustomer {
		creditQuery = `SELECT id, number, bill_date, grand_total FROM bills WHERE payment_mode = 'CREDIT' AND customer_id = $1`
	} else {
		creditQuery = `SELECT id, COALESCE(NULLIF(invoice_no, ''), 'PUR-' || id::text), invoice_date, total FROM purchases WHERE payment_mode = 'CREDIT' AND supplier_id = $1`
	}

	var entries []Entry
	rows, err := r.pool.Query(ctx, creditQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		e := Entry{Kind: KindCredit}
		var at time.Time
		if err := rows.Scan(&e.Seq, &e.Number, &at, &e.Amount); err != nil {
			return nil, err
		}
		e.At = at
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	payRows, err := r.pool.Query(ctx,
		`SELECT id, number, voucher_date, amount, remarks FROM payment_vouchers WHERE party_type = $1 AND party_id = $2`,
		string(party), id)
	if err != nil {
		return nil, err
	}
	defer payRows.Close()
	for payRows.Next() {
		e := Entry{Kind: KindSettlement}
		var at time.Time
		if err := payRows.Scan(&e.Seq, &e.Number, &at, &e.Amount, &e.Note); err != nil {
			return nil, err
		}
		e.At = at
		entries = append(entries, e)
	}
	if err := payRows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
