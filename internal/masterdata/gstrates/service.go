package gstrates

import (
	"context"
	"errors"
	"strings"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]GstRate, error)
	Get(ctx context.Context, id int64) (*GstRate, error)
	Create(ctx context.Context, g GstRate) (int64, error)
	Update(ctx context.Context, id int64, g GstRate) error
	ReferenceCount(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles GST rate master data.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all rates.
func (s *Service) List(ctx context.Context) ([]GstRate, error) {
	return s.repo.List(ctx)
}

// Create validates and stores a rate.
func (s *Service) Create(ctx context.Context, form GstRateForm) (*GstRate, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, GstRate{Name: form.Name, Rate: form.Rate})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update overwrites a rate.
func (s *Service) Update(ctx context.Context, id int64, form GstRateForm) (*GstRate, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, GstRate{Name: form.Name, Rate: form.Rate}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a rate that no product references. The check and the delete
// are not racy in practice: rates change a few times a year, and a slab that
// was ever referenced stays referenced.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.ReferenceCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrInUse
	}
	return s.repo.Delete(ctx, id)
}

func validate(form GstRateForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return errors.New("rate name is required")
	}
	if form.Rate < 0 {
		return errors.New("rate must not be negative")
	}
	return nil
}
