package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryLedgerRepo struct {
	parties map[int64]*Party
	entries map[int64][]Entry
}

func (r *memoryLedgerRepo) GetParty(ctx context.Context, party PartyType, id int64) (*Party, error) {
	p, ok := r.parties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *memoryLedgerRepo) ListEntries(ctx context.Context, party PartyType, id int64) ([]Entry, error) {
	return r.entries[id], nil
}

func TestServiceStatement(t *testing.T) {
	repo := &memoryLedgerRepo{
		parties: map[int64]*Party{
			7: {ID: 7, Name: "Sharma Medical", OpeningBalance: 1000},
		},
		entries: map[int64][]Entry{
			7: {
				{Kind: KindCredit, Number: "B00001", At: day(1), Seq: 1, Amount: 500},
				{Kind: KindSettlement, Number: "PV-000001", At: day(2), Seq: 1, Amount: 300},
			},
		},
	}
	svc := NewService(repo, NewCache(nil, 0))
	svc.now = func() time.Time { return day(10) }

	stmt, err := svc.CustomerStatement(context.Background(), 7, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, "Sharma Medical", stmt.Party.Name)
	require.InDelta(t, 1200, stmt.Statement.Closing, 1e-9)
	require.Equal(t, "1,200.00 Dr", stmt.ClosingDisplay)
}

func TestServiceStatementMissingParty(t *testing.T) {
	repo := &memoryLedgerRepo{parties: map[int64]*Party{}}
	svc := NewService(repo, NewCache(nil, 0))

	_, err := svc.SupplierStatement(context.Background(), 99, time.Time{}, time.Time{})
	require.ErrorIs(t, err, ErrNotFound)
}
