package partners

import (
	"context"
	"errors"
	"strings"

	"github.com/medipos-erp/medipos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, kind Kind, id int64) (*Party, error)
	List(ctx context.Context, kind Kind, search string, page shared.Pagination) ([]Party, int, error)
	Create(ctx context.Context, kind Kind, form PartyForm) (*Party, error)
	Update(ctx context.Context, kind Kind, id int64, form PartyForm, expectedVersion int64) (*Party, error)
	Delete(ctx context.Context, kind Kind, id int64) error
}

// Service handles counterparty master data.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns one counterparty.
func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Party, error) {
	return s.repo.Get(ctx, kind, id)
}

// List returns counterparties for the search.
func (s *Service) List(ctx context.Context, kind Kind, search string, page shared.Pagination) ([]Party, int, error) {
	return s.repo.List(ctx, kind, search, page)
}

// Create validates and stores a counterparty.
func (s *Service) Create(ctx context.Context, kind Kind, form PartyForm) (*Party, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	form.Name = strings.TrimSpace(form.Name)
	return s.repo.Create(ctx, kind, form)
}

// Update overwrites counterparty fields. The opening-balance delta, not the
// absolute value, is applied to the running balance so activity recorded
// after the opening was set survives the edit.
func (s *Service) Update(ctx context.Context, kind Kind, id int64, form PartyForm) (*Party, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	form.Name = strings.TrimSpace(form.Name)
	existing, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, kind, id, form, existing.Version)
}

// Delete removes a counterparty with no ledger activity.
func (s *Service) Delete(ctx context.Context, kind Kind, id int64) error {
	return s.repo.Delete(ctx, kind, id)
}

func validate(form PartyForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}
