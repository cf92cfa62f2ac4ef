package products

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Create(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, id int64, p Product) error
	Delete(ctx context.Context, id int64) error
	AddBatch(ctx context.Context, b Batch) error
	UpdateBatch(ctx context.Context, id string, b Batch) error
	ExpiringBatches(ctx context.Context, cutoff time.Time) ([]Batch, error)
}

// Service handles product and batch master data.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns a product with batches.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns products for the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, form ProductForm) (*Product, error) {
	p := fromForm(form)
	if err := s.validate(p); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update overwrites descriptive fields of an existing product.
func (s *Service) Update(ctx context.Context, id int64, form ProductForm) (*Product, error) {
	p := fromForm(form)
	if err := s.validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a product that is not referenced by any bill or purchase.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddBatch appends a manually entered batch, stock set to its opening stock.
func (s *Service) AddBatch(ctx context.Context, productID int64, form BatchForm) (*Product, error) {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return nil, err
	}
	b := Batch{
		ID:            uuid.NewString(),
		ProductID:     productID,
		BatchNo:       form.BatchNo,
		Expiry:        form.Expiry,
		StockQty:      form.OpeningStock,
		OpeningStock:  form.OpeningStock,
		MRP:           form.MRP,
		PurchasePrice: form.PurchasePrice,
	}
	if err := validateBatch(b); err != nil {
		return nil, err
	}
	if err := s.repo.AddBatch(ctx, b); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, productID)
}

// UpdateBatch edits batch number, expiry and prices. Stock counts are owned
// by billing and procurement.
func (s *Service) UpdateBatch(ctx context.Context, productID int64, batchID string, form BatchForm) (*Product, error) {
	b := Batch{
		BatchNo:       form.BatchNo,
		Expiry:        form.Expiry,
		MRP:           form.MRP,
		PurchasePrice: form.PurchasePrice,
	}
	if err := validateBatch(b); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBatch(ctx, batchID, b); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, productID)
}

// ExpiringBatches lists in-stock batches expiring within the given months.
func (s *Service) ExpiringBatches(ctx context.Context, months int) ([]Batch, error) {
	if months < 1 {
		months = 3
	}
	cutoff := time.Now().AddDate(0, months, 0)
	return s.repo.ExpiringBatches(ctx, cutoff)
}

func fromForm(form ProductForm) Product {
	units := form.UnitsPerStrip
	if units < 1 {
		units = 1
	}
	return Product{
		Name:          form.Name,
		Company:       form.Company,
		HSNCode:       form.HSNCode,
		GstRateID:     form.GstRateID,
		UnitsPerStrip: units,
		SoldByStrip:   form.SoldByStrip,
	}
}
