package billing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/medipos-erp/medipos/internal/platform/db"
	"github.com/medipos-erp/medipos/internal/shared"
)

// BatchStock is the slice of a batch the billing paths read and mutate.
type BatchStock struct {
	ID        string
	ProductID int64
	BatchNo   string
	StockQty  float64
	Version   int64
}

// CustomerRef is the slice of a customer the billing paths need.
type CustomerRef struct {
	ID   int64
	Name string
}

// TxPort is the set of persistence operations available inside one
// transactional unit. Every stock and balance adjustment of a bill mutation
// goes through a single InTx call, so they commit together or not at all.
type TxPort interface {
	NextBillNumber(ctx context.Context, prefix string) (string, error)
	GetBill(ctx context.Context, id int64) (*Bill, error)
	InsertBill(ctx context.Context, bill *Bill) error
	UpdateBill(ctx context.Context, bill *Bill, expectedVersion int64) error
	DeleteBill(ctx context.Context, id int64) error
	ReplaceLines(ctx context.Context, billID int64, lines []BillLine) error

	GetBatch(ctx context.Context, batchID string) (*BatchStock, error)
	AdjustBatchStock(ctx context.Context, batchID string, delta float64, expectedVersion int64) error

	GetCustomer(ctx context.Context, id int64) (*CustomerRef, error)
	FindCustomerByName(ctx context.Context, name string) (*CustomerRef, error)
	CreateCustomer(ctx context.Context, name string) (*CustomerRef, error)
	AdjustCustomerBalance(ctx context.Context, id int64, delta float64) error
}

// RepositoryPort abstracts bill persistence for the service.
type RepositoryPort interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error
	Get(ctx context.Context, id int64) (*Bill, error)
	List(ctx context.Context, filter ListFilter) ([]Bill, int, error)
}

// Invalidator drops cached ledger statements after a committed mutation.
type Invalidator interface {
	InvalidateCustomer(ctx context.Context, id int64)
}

// Service orchestrates bill mutations.
type Service struct {
	repo       RepositoryPort
	validate   *validator.Validate
	invalidate Invalidator
	prefix     string
	now        func() time.Time
}

// NewService builds a billing service. prefix is the bill-number prefix from
// system configuration; invalidate may be nil.
func NewService(repo RepositoryPort, invalidate Invalidator, prefix string) *Service {
	if prefix == "" {
		prefix = "B"
	}
	return &Service{
		repo:       repo,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		invalidate: invalidate,
		prefix:     prefix,
		now:        time.Now,
	}
}

// Get returns one bill with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Bill, error) {
	return s.repo.Get(ctx, id)
}

// List returns bills for the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Bill, int, error) {
	return s.repo.List(ctx, filter)
}

// Create stores a bill, decrements each sold batch's stock, and for CREDIT
// bills adds the grand total to the customer's running balance. The bill
// number is assigned inside the transaction from the current maximum.
func (s *Service) Create(ctx context.Context, form BillForm) (*Bill, []shared.ApplyOutcome, error) {
	bill, err := s.buildBill(form)
	if err != nil {
		return nil, nil, err
	}

	var outcomes []shared.ApplyOutcome
	err = s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		number, err := tx.NextBillNumber(ctx, s.prefix)
		if err != nil {
			return err
		}
		bill.Number = number

		if err := s.takeStock(ctx, tx, bill.Lines); err != nil {
			return err
		}

		customer, outcome, err := s.resolveCustomer(ctx, tx, form)
		if err != nil {
			return err
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
		if customer != nil {
			bill.CustomerID = &customer.ID
			if bill.CustomerName == "" {
				bill.CustomerName = customer.Name
			}
		} else {
			// An unresolved reference is reported via the outcome; the bill
			// keeps only the free-text name.
			bill.CustomerID = nil
		}

		if err := tx.InsertBill(ctx, bill); err != nil {
			return err
		}
		if err := tx.ReplaceLines(ctx, bill.ID, bill.Lines); err != nil {
			return err
		}

		if bill.PaymentMode == ModeCredit && customer != nil {
			if err := tx.AdjustCustomerBalance(ctx, customer.ID, bill.GrandTotal); err != nil {
				outcomes = append(outcomes, shared.Failed(balanceTarget(customer.ID), err))
				return err
			}
			outcomes = append(outcomes, shared.Applied(balanceTarget(customer.ID)))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.invalidateCustomer(ctx, bill.CustomerID)
	return bill, outcomes, nil
}

// Update replaces a bill's fields and lines, applying the per-batch stock
// delta between the stored lines and the new ones, and moving the credit
// balance effect between counterparties when the customer or payment mode
// changed. A version mismatch rejects the edit.
func (s *Service) Update(ctx context.Context, id int64, form BillForm) (*Bill, []shared.ApplyOutcome, error) {
	bill, err := s.buildBill(form)
	if err != nil {
		return nil, nil, err
	}

	var outcomes []shared.ApplyOutcome
	var previousCustomer *int64
	err = s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		existing, err := tx.GetBill(ctx, id)
		if err != nil {
			return err
		}
		if existing.Version != form.Version {
			return db.ErrVersionConflict
		}
		previousCustomer = existing.CustomerID

		deltas := stockDeltas(existing.Lines, bill.Lines)
		applied, err := s.applyDeltas(ctx, tx, deltas)
		outcomes = append(outcomes, applied...)
		if err != nil {
			return err
		}

		customer, outcome, err := s.resolveCustomer(ctx, tx, form)
		if err != nil {
			return err
		}
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
		if customer != nil {
			bill.CustomerID = &customer.ID
			if bill.CustomerName == "" {
				bill.CustomerName = customer.Name
			}
		} else {
			// An unresolved reference is reported via the outcome; the bill
			// keeps only the free-text name.
			bill.CustomerID = nil
		}

		// Reverse the stored credit effect, then apply the new one. When
		// neither side changed this nets to a single delta on one customer.
		if existing.PaymentMode == ModeCredit && existing.CustomerID != nil {
			if err := tx.AdjustCustomerBalance(ctx, *existing.CustomerID, -existing.GrandTotal); err != nil {
				return err
			}
			outcomes = append(outcomes, shared.Applied(balanceTarget(*existing.CustomerID)))
		}
		if bill.PaymentMode == ModeCredit && customer != nil {
			if err := tx.AdjustCustomerBalance(ctx, customer.ID, bill.GrandTotal); err != nil {
				return err
			}
			outcomes = append(outcomes, shared.Applied(balanceTarget(customer.ID)))
		}

		bill.ID = existing.ID
		bill.Number = existing.Number
		bill.Version = existing.Version + 1
		if err := tx.UpdateBill(ctx, bill, existing.Version); err != nil {
			return err
		}
		return tx.ReplaceLines(ctx, bill.ID, bill.Lines)
	})
	if err != nil {
		return nil, nil, err
	}

	s.invalidateCustomer(ctx, previousCustomer)
	s.invalidateCustomer(ctx, bill.CustomerID)
	return bill, outcomes, nil
}

// Delete removes a bill, restores each line's stock, and reverses the credit
// balance effect. A restore onto a batch that no longer exists is reported as
// skipped rather than failing the whole deletion.
func (s *Service) Delete(ctx context.Context, id int64) ([]shared.ApplyOutcome, error) {
	var outcomes []shared.ApplyOutcome
	var customerID *int64
	err := s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		existing, err := tx.GetBill(ctx, id)
		if err != nil {
			return err
		}
		customerID = existing.CustomerID

		deltas := stockDeltas(existing.Lines, nil)
		applied, err := s.applyDeltas(ctx, tx, deltas)
		outcomes = append(outcomes, applied...)
		if err != nil {
			return err
		}

		if existing.PaymentMode == ModeCredit && existing.CustomerID != nil {
			if err := tx.AdjustCustomerBalance(ctx, *existing.CustomerID, -existing.GrandTotal); err != nil {
				return err
			}
			outcomes = append(outcomes, shared.Applied(balanceTarget(*existing.CustomerID)))
		}
		return tx.DeleteBill(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCustomer(ctx, customerID)
	return outcomes, nil
}

func (s *Service) buildBill(form BillForm) (*Bill, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("billing: invalid payload: %w", err)
	}
	billDate, err := time.Parse("2006-01-02", form.BillDate)
	if err != nil {
		return nil, fmt.Errorf("billing: invalid bill_date: %w", err)
	}

	bill := &Bill{
		BillDate:     billDate,
		CustomerID:   form.CustomerID,
		CustomerName: strings.TrimSpace(form.CustomerName),
		SalesmanID:   form.SalesmanID,
		PaymentMode:  form.PaymentMode,
		Version:      1,
	}
	for _, lf := range form.Lines {
		net := lf.Qty * lf.Rate
		tax := net * lf.GstPct / 100
		bill.Subtotal += net
		bill.TaxTotal += tax
		bill.Lines = append(bill.Lines, BillLine{
			ProductID:   lf.ProductID,
			BatchID:     lf.BatchID,
			ProductName: lf.ProductName,
			BatchNo:     lf.BatchNo,
			Qty:         lf.Qty,
			Rate:        lf.Rate,
			GstPct:      lf.GstPct,
			LineTotal:   round2(net + tax),
		})
	}
	bill.Subtotal = round2(bill.Subtotal)
	bill.TaxTotal = round2(bill.TaxTotal)
	bill.GrandTotal = round2(bill.Subtotal + bill.TaxTotal)
	return bill, nil
}

// takeStock decrements each sold batch. A missing batch or a decrement below
// zero fails the sale; selling from a reference that cannot be resolved is a
// data-entry error, not something to skip over.
func (s *Service) takeStock(ctx context.Context, tx TxPort, lines []BillLine) error {
	deltas := stockDeltas(nil, lines)
	for _, d := range deltas {
		batch, err := tx.GetBatch(ctx, d.batchID)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrBatchNotFound, d.batchID)
		}
		if batch.StockQty+d.delta < 0 {
			return fmt.Errorf("%w: batch %s has %.0f, need %.0f", ErrInsufficientStock, batch.BatchNo, batch.StockQty, -d.delta)
		}
		if err := tx.AdjustBatchStock(ctx, d.batchID, d.delta, batch.Version); err != nil {
			return err
		}
	}
	return nil
}

// applyDeltas applies a signed stock delta per batch. Restores (positive
// deltas) onto vanished batches are skipped and reported; decrements that
// would go negative or reference a vanished batch fail.
func (s *Service) applyDeltas(ctx context.Context, tx TxPort, deltas []batchDelta) ([]shared.ApplyOutcome, error) {
	var outcomes []shared.ApplyOutcome
	for _, d := range deltas {
		if d.delta == 0 {
			continue
		}
		batch, err := tx.GetBatch(ctx, d.batchID)
		if err != nil {
			if d.delta > 0 {
				outcomes = append(outcomes, shared.Skipped(stockTarget(d.batchID), "batch no longer exists"))
				continue
			}
			return outcomes, fmt.Errorf("%w: %s", ErrBatchNotFound, d.batchID)
		}
		if batch.StockQty+d.delta < 0 {
			return outcomes, fmt.Errorf("%w: batch %s has %.0f, need %.0f", ErrInsufficientStock, batch.BatchNo, batch.StockQty, -d.delta)
		}
		if err := tx.AdjustBatchStock(ctx, d.batchID, d.delta, batch.Version); err != nil {
			outcomes = append(outcomes, shared.Failed(stockTarget(d.batchID), err))
			return outcomes, err
		}
		outcomes = append(outcomes, shared.Applied(stockTarget(d.batchID)))
	}
	return outcomes, nil
}

// resolveCustomer resolves the bill's counterparty: by id, else by
// case-insensitive exact name, else by creating a record for CREDIT bills.
// A CREDIT bill with no customer reference at all is reported as a skipped
// balance adjustment, never silently dropped.
func (s *Service) resolveCustomer(ctx context.Context, tx TxPort, form BillForm) (*CustomerRef, *shared.ApplyOutcome, error) {
	if form.CustomerID != nil {
		customer, err := tx.GetCustomer(ctx, *form.CustomerID)
		if err != nil {
			outcome := shared.Skipped(balanceTarget(*form.CustomerID), "customer not found")
			return nil, &outcome, nil
		}
		return customer, nil, nil
	}

	name := strings.TrimSpace(form.CustomerName)
	if name == "" {
		if form.PaymentMode == ModeCredit {
			outcome := shared.Skipped("customer", "credit bill has no customer reference")
			return nil, &outcome, nil
		}
		return nil, nil, nil
	}

	customer, err := tx.FindCustomerByName(ctx, name)
	if err == nil {
		return customer, nil, nil
	}
	if form.PaymentMode != ModeCredit {
		// Cash sales keep the free-text name only.
		return nil, nil, nil
	}
	customer, err = tx.CreateCustomer(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return customer, nil, nil
}

func (s *Service) invalidateCustomer(ctx context.Context, id *int64) {
	if s.invalidate == nil || id == nil {
		return
	}
	s.invalidate.InvalidateCustomer(ctx, *id)
}

type batchDelta struct {
	batchID string
	delta   float64
}

// stockDeltas computes the signed per-batch stock adjustment that moves the
// stored lines to the new lines: restore the old quantities, take the new
// ones. Batches that appear only on one side fall out of the same map.
func stockDeltas(oldLines, newLines []BillLine) []batchDelta {
	sums := map[string]float64{}
	var order []string
	add := func(batchID string, qty float64) {
		if _, ok := sums[batchID]; !ok {
			order = append(order, batchID)
		}
		sums[batchID] += qty
	}
	for _, l := range oldLines {
		add(l.BatchID, l.Qty)
	}
	for _, l := range newLines {
		add(l.BatchID, -l.Qty)
	}

	deltas := make([]batchDelta, 0, len(order))
	for _, id := range order {
		deltas = append(deltas, batchDelta{batchID: id, delta: sums[id]})
	}
	return deltas
}

func stockTarget(batchID string) string {
	return "batch:" + batchID
}

func balanceTarget(customerID int64) string {
	return fmt.Sprintf("customer:%d", customerID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
