package procurement

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/medipos-erp/medipos/internal/shared"
)

// ProductRef is the slice of a product the purchase paths need.
type ProductRef struct {
	ID            int64
	Name          string
	UnitsPerStrip int
	SoldByStrip   bool
}

// NewBatch describes a batch created by a purchase line.
type NewBatch struct {
	ID            string
	ProductID     int64
	BatchNo       string
	Expiry        string
	StockQty      float64
	PurchasePrice float64
	MRP           float64
}

// SupplierRef is the slice of a supplier the purchase paths need.
type SupplierRef struct {
	ID   int64
	Name string
}

// TxPort is the set of persistence operations available inside one purchase
// transaction.
type TxPort interface {
	GetPurchase(ctx context.Context, id int64) (*Purchase, error)
	InsertPurchase(ctx context.Context, p *Purchase) error
	InsertLine(ctx context.Context, line *PurchaseLine) error
	DeletePurchase(ctx context.Context, id int64) error

	GetProduct(ctx context.Context, id int64) (*ProductRef, error)
	CreateProduct(ctx context.Context, form NewProductForm) (*ProductRef, error)
	CreateBatch(ctx context.Context, batch NewBatch) error

	GetSupplier(ctx context.Context, id int64) (*SupplierRef, error)
	FindSupplierByName(ctx context.Context, name string) (*SupplierRef, error)
	CreateSupplier(ctx context.Context, name string) (*SupplierRef, error)
	AdjustSupplierBalance(ctx context.Context, id int64, delta float64) error
}

// RepositoryPort abstracts purchase persistence for the service.
type RepositoryPort interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error
	Get(ctx context.Context, id int64) (*Purchase, error)
	List(ctx context.Context, filter ListFilter) ([]Purchase, int, error)
}

// Invalidator drops cached supplier statements after a committed mutation.
type Invalidator interface {
	InvalidateSupplier(ctx context.Context, id int64)
}

// Service orchestrates purchase entry.
type Service struct {
	repo       RepositoryPort
	validate   *validator.Validate
	invalidate Invalidator
}

// NewService builds a procurement service. invalidate may be nil.
func NewService(repo RepositoryPort, invalidate Invalidator) *Service {
	return &Service{
		repo:       repo,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		invalidate: invalidate,
	}
}

// Get returns one purchase with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Purchase, error) {
	return s.repo.Get(ctx, id)
}

// List returns purchases for the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	return s.repo.List(ctx, filter)
}

// Create stores a purchase. Each line appends a new batch to an existing
// product or creates the product first; received stock is the ordered
// quantity multiplied by units-per-strip for strip-sold products. CREDIT
// purchases add the total to the supplier's running balance.
func (s *Service) Create(ctx context.Context, form PurchaseForm) (*Purchase, []shared.ApplyOutcome, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, nil, fmt.Errorf("procurement: invalid payload: %w", err)
	}
	invoiceDate, err := time.Parse("2006-01-02", form.InvoiceDate)
	if err != nil {
		return nil, nil, fmt.Errorf("procurement: invalid invoice_date: %w", err)
	}
	for i, lf := range form.Lines {
		if lf.ProductID == 0 && lf.NewProduct == nil {
			return nil, nil, fmt.Errorf("procurement: line %d names no product", i+1)
		}
	}

	purchase := &Purchase{
		SupplierName: strings.TrimSpace(form.SupplierName),
		InvoiceNo:    strings.TrimSpace(form.InvoiceNo),
		InvoiceDate:  invoiceDate,
		PaymentMode:  form.PaymentMode,
	}

	var outcomes []shared.ApplyOutcome
	err = s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		supplier, outcome, err := s.resolveSupplier(ctx, tx, form)
		if err != nil {
			return err
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
		if supplier != nil {
			purchase.SupplierID = &supplier.ID
			if purchase.SupplierName == "" {
				purchase.SupplierName = supplier.Name
			}
		}

		var lines []PurchaseLine
		for _, lf := range form.Lines {
			product, err := s.resolveProduct(ctx, tx, lf)
			if err != nil {
				return err
			}

			stock := lf.Qty
			units := 1
			if product.SoldByStrip && product.UnitsPerStrip > 1 {
				units = product.UnitsPerStrip
				stock = lf.Qty * float64(units)
			}

			batch := NewBatch{
				ID:            uuid.NewString(),
				ProductID:     product.ID,
				BatchNo:       lf.BatchNo,
				Expiry:        lf.Expiry,
				StockQty:      stock,
				PurchasePrice: lf.PurchasePrice,
				MRP:           lf.MRP,
			}
			if err := tx.CreateBatch(ctx, batch); err != nil {
				return err
			}
			outcomes = append(outcomes, shared.Applied("batch:"+batch.ID))

			net := lf.Qty * lf.PurchasePrice
			total := round2(net * (1 + lf.GstPct/100))
			purchase.Total += total
			lines = append(lines, PurchaseLine{
				ProductID:     product.ID,
				BatchID:       batch.ID,
				Qty:           lf.Qty,
				UnitsPerStrip: units,
				PurchasePrice: lf.PurchasePrice,
				MRP:           lf.MRP,
				GstPct:        lf.GstPct,
				LineTotal:     total,
			})
		}
		purchase.Total = round2(purchase.Total)

		if err := tx.InsertPurchase(ctx, purchase); err != nil {
			return err
		}
		for i := range lines {
			lines[i].PurchaseID = purchase.ID
			if err := tx.InsertLine(ctx, &lines[i]); err != nil {
				return err
			}
		}
		purchase.Lines = lines

		if purchase.PaymentMode == ModeCredit && supplier != nil {
			if err := tx.AdjustSupplierBalance(ctx, supplier.ID, purchase.Total); err != nil {
				return err
			}
			outcomes = append(outcomes, shared.Applied(fmt.Sprintf("supplier:%d", supplier.ID)))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.invalidateSupplier(ctx, purchase.SupplierID)
	return purchase, outcomes, nil
}

// Delete removes a purchase. The stock its lines added stays in place; only
// the supplier's credit balance effect is reversed. Callers are expected to
// confirm the no-revert policy with the operator before invoking this.
func (s *Service) Delete(ctx context.Context, id int64) ([]shared.ApplyOutcome, error) {
	var outcomes []shared.ApplyOutcome
	var supplierID *int64
	err := s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		existing, err := tx.GetPurchase(ctx, id)
		if err != nil {
			return err
		}
		supplierID = existing.SupplierID

		if existing.PaymentMode == ModeCredit && existing.SupplierID != nil {
			if err := tx.AdjustSupplierBalance(ctx, *existing.SupplierID, -existing.Total); err != nil {
				return err
			}
			outcomes = append(outcomes, shared.Applied(fmt.Sprintf("supplier:%d", *existing.SupplierID)))
		}
		for _, line := range existing.Lines {
			outcomes = append(outcomes, shared.Skipped("batch:"+line.BatchID, "purchase deletion does not revert received stock"))
		}
		return tx.DeletePurchase(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSupplier(ctx, supplierID)
	return outcomes, nil
}

func (s *Service) resolveProduct(ctx context.Context, tx TxPort, lf PurchaseLineForm) (*ProductRef, error) {
	if lf.ProductID > 0 {
		product, err := tx.GetProduct(ctx, lf.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, lf.ProductID)
		}
		return product, nil
	}
	np := *lf.NewProduct
	if np.UnitsPerStrip < 1 {
		np.UnitsPerStrip = 1
	}
	return tx.CreateProduct(ctx, np)
}

func (s *Service) resolveSupplier(ctx context.Context, tx TxPort, form PurchaseForm) (*SupplierRef, *shared.ApplyOutcome, error) {
	if form.SupplierID != nil {
		supplier, err := tx.GetSupplier(ctx, *form.SupplierID)
		if err != nil {
			outcome := shared.Skipped(fmt.Sprintf("supplier:%d", *form.SupplierID), "supplier not found")
			return nil, &outcome, nil
		}
		return supplier, nil, nil
	}

	name := strings.TrimSpace(form.SupplierName)
	if name == "" {
		if form.PaymentMode == ModeCredit {
			outcome := shared.Skipped("supplier", "credit purchase has no supplier reference")
			return nil, &outcome, nil
		}
		return nil, nil, nil
	}

	supplier, err := tx.FindSupplierByName(ctx, name)
	if err == nil {
		return supplier, nil, nil
	}
	supplier, err = tx.CreateSupplier(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return supplier, nil, nil
}

func (s *Service) invalidateSupplier(ctx context.Context, id *int64) {
	if s.invalidate == nil || id == nil {
		return
	}
	s.invalidate.InvalidateSupplier(ctx, *id)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
