package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// TxPort is the set of persistence operations available inside one voucher
// transaction.
type TxPort interface {
	NextVoucherNumber(ctx context.Context) (string, error)
	GetVoucher(ctx context.Context, id int64) (*Voucher, error)
	InsertVoucher(ctx context.Context, v *Voucher) error
	UpdateVoucher(ctx context.Context, v *Voucher) error
	DeleteVoucher(ctx context.Context, id int64) error

	PartyExists(ctx context.Context, party PartyType, id int64) (bool, error)
	AdjustPartyBalance(ctx context.Context, party PartyType, id int64, delta float64) error
}

// RepositoryPort abstracts voucher persistence for the service.
type RepositoryPort interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error
	Get(ctx context.Context, id int64) (*Voucher, error)
	List(ctx context.Context, filter ListFilter) ([]Voucher, int, error)
}

// Invalidator drops cached ledger statements after a committed mutation.
type Invalidator interface {
	InvalidateCustomer(ctx context.Context, id int64)
	InvalidateSupplier(ctx context.Context, id int64)
}

// Service orchestrates settlement vouchers.
type Service struct {
	repo       RepositoryPort
	validate   *validator.Validate
	invalidate Invalidator
}

// NewService builds a payments service. invalidate may be nil.
func NewService(repo RepositoryPort, invalidate Invalidator) *Service {
	return &Service{
		repo:       repo,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		invalidate: invalidate,
	}
}

// Get returns one voucher.
func (s *Service) Get(ctx context.Context, id int64) (*Voucher, error) {
	return s.repo.Get(ctx, id)
}

// List returns vouchers for the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Voucher, int, error) {
	return s.repo.List(ctx, filter)
}

// Create stores a voucher and subtracts its amount from the counterparty's
// balance in the same transaction.
func (s *Service) Create(ctx context.Context, form VoucherForm) (*Voucher, error) {
	voucher, err := s.build(form)
	if err != nil {
		return nil, err
	}

	err = s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		ok, err := tx.PartyExists(ctx, voucher.PartyType, voucher.PartyID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s %d", ErrPartyNotFound, voucher.PartyType, voucher.PartyID)
		}

		number, err := tx.NextVoucherNumber(ctx)
		if err != nil {
			return err
		}
		voucher.Number = number

		if err := tx.InsertVoucher(ctx, voucher); err != nil {
			return err
		}
		return tx.AdjustPartyBalance(ctx, voucher.PartyType, voucher.PartyID, -voucher.Amount)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateParty(ctx, voucher.PartyType, voucher.PartyID)
	return voucher, nil
}

// Update edits a voucher: the stored amount is restored to the stored
// counterparty, then the new amount is taken from the new one. Keeps the
// voucher number.
func (s *Service) Update(ctx context.Context, id int64, form VoucherForm) (*Voucher, error) {
	voucher, err := s.build(form)
	if err != nil {
		return nil, err
	}

	var previous *Voucher
	err = s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		existing, err := tx.GetVoucher(ctx, id)
		if err != nil {
			return err
		}
		previous = existing

		ok, err := tx.PartyExists(ctx, voucher.PartyType, voucher.PartyID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s %d", ErrPartyNotFound, voucher.PartyType, voucher.PartyID)
		}

		if err := tx.AdjustPartyBalance(ctx, existing.PartyType, existing.PartyID, existing.Amount); err != nil {
			return err
		}
		if err := tx.AdjustPartyBalance(ctx, voucher.PartyType, voucher.PartyID, -voucher.Amount); err != nil {
			return err
		}

		voucher.ID = existing.ID
		voucher.Number = existing.Number
		return tx.UpdateVoucher(ctx, voucher)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateParty(ctx, previous.PartyType, previous.PartyID)
	s.invalidateParty(ctx, voucher.PartyType, voucher.PartyID)
	return voucher, nil
}

// Delete removes a voucher and restores its amount to the counterparty.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var previous *Voucher
	err := s.repo.InTx(ctx, func(ctx context.Context, tx TxPort) error {
		existing, err := tx.GetVoucher(ctx, id)
		if err != nil {
			return err
		}
		previous = existing

		if err := tx.AdjustPartyBalance(ctx, existing.PartyType, existing.PartyID, existing.Amount); err != nil {
			return err
		}
		return tx.DeleteVoucher(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateParty(ctx, previous.PartyType, previous.PartyID)
	return nil
}

func (s *Service) build(form VoucherForm) (*Voucher, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("payments: invalid payload: %w", err)
	}
	voucherDate, err := time.Parse("2006-01-02", form.VoucherDate)
	if err != nil {
		return nil, fmt.Errorf("payments: invalid voucher_date: %w", err)
	}
	method := form.Method
	if method == "" {
		method = "CASH"
	}
	return &Voucher{
		PartyType:   form.PartyType,
		PartyID:     form.PartyID,
		VoucherDate: voucherDate,
		Amount:      form.Amount,
		Method:      method,
		Remarks:     form.Remarks,
	}, nil
}

func (s *Service) invalidateParty(ctx context.Context, party PartyType, id int64) {
	if s.invalidate == nil {
		return
	}
	if party == PartyCustomer {
		s.invalidate.InvalidateCustomer(ctx, id)
		return
	}
	s.invalidate.InvalidateSupplier(ctx, id)
}
