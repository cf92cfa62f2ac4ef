package ledger

import (
	"context"
	"time"
)

// RepositoryPort defines data access for statement building.
type RepositoryPort interface {
	GetParty(ctx context.Context, party PartyType, id int64) (*Party, error)
	ListEntries(ctx context.Context, party PartyType, id int64) ([]Entry, error)
}

// Service reconciles counterparty ledgers on demand.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	now   func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// CustomerStatement reconciles one customer ledger over [from, to].
func (s *Service) CustomerStatement(ctx context.Context, id int64, from, to time.Time) (*PartyStatement, error) {
	return s.statement(ctx, PartyCustomer, id, from, to)
}

// SupplierStatement reconciles one supplier ledger over [from, to].
func (s *Service) SupplierStatement(ctx context.Context, id int64, from, to time.Time) (*PartyStatement, error) {
	return s.statement(ctx, PartySupplier, id, from, to)
}

func (s *Service) statement(ctx context.Context, party PartyType, id int64, from, to time.Time) (*PartyStatement, error) {
	if to.IsZero() {
		// Entries carry date granularity, so "now" rounds to today's midnight.
		// This also keeps the cache key stable for the default window.
		to = s.now().UTC().Truncate(24 * time.Hour)
	}

	key, err := s.cache.Key(ctx, party, id, from, to)
	if err != nil {
		return nil, err
	}

	var stmt PartyStatement
	err = s.cache.Fetch(ctx, key, &stmt, func(ctx context.Context) (*PartyStatement, error) {
		return s.build(ctx, party, id, from, to)
	})
	if err != nil {
		return nil, err
	}
	return &stmt, nil
}

func (s *Service) build(ctx context.Context, party PartyType, id int64, from, to time.Time) (*PartyStatement, error) {
	p, err := s.repo.GetParty(ctx, party, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, party, id)
	if err != nil {
		return nil, err
	}
	stmt := BuildStatement(p.OpeningBalance, entries, from, to)
	return &PartyStatement{
		Party:          PartyRef{Type: party, ID: p.ID, Name: p.Name},
		Statement:      stmt,
		ClosingDisplay: FormatAmount(stmt.Closing, party),
	}, nil
}
