package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medipos-erp/medipos/internal/ledger"
)

type fakeLedgerRepo struct {
	parties map[int64]*ledger.Party
	entries map[int64][]ledger.Entry
}

func (f *fakeLedgerRepo) GetParty(ctx context.Context, party ledger.PartyType, id int64) (*ledger.Party, error) {
	p, ok := f.parties[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return p, nil
}

func (f *fakeLedgerRepo) ListEntries(ctx context.Context, party ledger.PartyType, id int64) ([]ledger.Entry, error) {
	return f.entries[id], nil
}

type fakeDriftRepo struct {
	customerIDs []int64
	repairs     map[int64]float64
}

func (f *fakeDriftRepo) PartyIDs(ctx context.Context, party ledger.PartyType) ([]int64, error) {
	if party == ledger.PartyCustomer {
		return f.customerIDs, nil
	}
	return nil, nil
}

func (f *fakeDriftRepo) RepairBalance(ctx context.Context, party ledger.PartyType, id int64, balance float64) error {
	if f.repairs == nil {
		f.repairs = map[int64]float64{}
	}
	f.repairs[id] = balance
	return nil
}

func entry(kind ledger.EntryKind, amount float64) ledger.Entry {
	return ledger.Entry{Kind: kind, At: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Amount: amount}
}

func TestDriftScanRepairsDivergedBalance(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{
		parties: map[int64]*ledger.Party{
			// Stored balance 900 but the log says 1000 + 500 - 300 = 1200.
			1: {ID: 1, Name: "Sharma Medical", OpeningBalance: 1000, Balance: 900},
		},
		entries: map[int64][]ledger.Entry{
			1: {entry(ledger.KindCredit, 500), entry(ledger.KindSettlement, 300)},
		},
	}
	driftRepo := &fakeDriftRepo{customerIDs: []int64{1}}
	scanner := NewDriftScanner(ledgerRepo, driftRepo, nil, nil, slog.Default())

	repaired, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repaired)
	require.InDelta(t, 1200, driftRepo.repairs[1], 1e-9)
}

func TestDriftScanLeavesConsistentBalanceAlone(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{
		parties: map[int64]*ledger.Party{
			1: {ID: 1, Name: "Sharma Medical", OpeningBalance: 1000, Balance: 1200},
		},
		entries: map[int64][]ledger.Entry{
			1: {entry(ledger.KindCredit, 500), entry(ledger.KindSettlement, 300)},
		},
	}
	driftRepo := &fakeDriftRepo{customerIDs: []int64{1}}
	scanner := NewDriftScanner(ledgerRepo, driftRepo, nil, nil, slog.Default())

	repaired, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Zero(t, repaired)
	require.Empty(t, driftRepo.repairs)
}

type fakeStockRepo struct {
	drifted []BatchDrift
}

func (f *fakeStockRepo) DriftedBatches(ctx context.Context) ([]BatchDrift, error) {
	return f.drifted, nil
}

func TestStockScanReportsWithoutRepair(t *testing.T) {
	repo := &fakeStockRepo{drifted: []BatchDrift{
		{BatchID: "b1", BatchNo: "AZ101", Stored: 95, Expected: 100},
	}}
	scanner := NewStockScanner(repo, nil, slog.Default())

	found, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, found)
}
