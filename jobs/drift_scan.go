package jobs

import (
	"context"
	"log/slog"
	"math"

	"github.com/hibiken/asynq"

	"github.com/medipos-erp/medipos/internal/ledger"
	"github.com/medipos-erp/medipos/internal/observability"
)

// Denormalized balances are float64 sums of float64 amounts; anything under
// half a paisa is accumulation noise, not drift.
const driftTolerance = 0.005

// DriftRepo lists counterparties and repairs stored balances.
type DriftRepo interface {
	PartyIDs(ctx context.Context, party ledger.PartyType) ([]int64, error)
	RepairBalance(ctx context.Context, party ledger.PartyType, id int64, balance float64) error
}

// DriftScanner recomputes every counterparty balance from the transaction
// log and overwrites the stored value when it diverged. The same fold that
// renders statements defines the truth, so a repaired balance is by
// construction what the statement endpoint would report.
type DriftScanner struct {
	ledger  ledger.RepositoryPort
	repo    DriftRepo
	cache   *ledger.Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewDriftScanner constructs a scanner. cache and metrics may be nil.
func NewDriftScanner(ledgerRepo ledger.RepositoryPort, repo DriftRepo, cache *ledger.Cache, metrics *observability.Metrics, logger *slog.Logger) *DriftScanner {
	return &DriftScanner{ledger: ledgerRepo, repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Handler adapts the scanner to an asynq task handler.
func (s *DriftScanner) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		_, err := s.Scan(ctx)
		return err
	}
}

// Scan checks both ledgers and returns the number of repaired balances.
func (s *DriftScanner) Scan(ctx context.Context) (int, error) {
	repaired := 0
	for _, party := range []ledger.PartyType{ledger.PartyCustomer, ledger.PartySupplier} {
		n, err := s.scanParty(ctx, party)
		repaired += n
		if err != nil {
			return repaired, err
		}
	}
	s.logger.Info("ledger drift scan complete", slog.Int("repaired", repaired))
	return repaired, nil
}

func (s *DriftScanner) scanParty(ctx context.Context, party ledger.PartyType) (int, error) {
	ids, err := s.repo.PartyIDs(ctx, party)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, id := range ids {
		stored, err := s.ledger.GetParty(ctx, party, id)
		if err != nil {
			return repaired, err
		}
		entries, err := s.ledger.ListEntries(ctx, party, id)
		if err != nil {
			return repaired, err
		}

		expected := ledger.CloseBalance(stored.OpeningBalance, entries)
		if math.Abs(expected-stored.Balance) <= driftTolerance {
			continue
		}

		s.logger.Warn("balance drift detected",
			slog.String("party", string(party)),
			slog.Int64("id", id),
			slog.Float64("stored", stored.Balance),
			slog.Float64("expected", expected))
		if err := s.repo.RepairBalance(ctx, party, id, expected); err != nil {
			return repaired, err
		}
		repaired++
		if s.metrics != nil {
			s.metrics.ObserveBalanceDrift(string(party))
		}
		s.invalidate(ctx, party, id)
	}
	return repaired, nil
}

func (s *DriftScanner) invalidate(ctx context.Context, party ledger.PartyType, id int64) {
	if s.cache == nil {
		return
	}
	if party == ledger.PartyCustomer {
		s.cache.InvalidateCustomer(ctx, id)
		return
	}
	s.cache.InvalidateSupplier(ctx, id)
}
