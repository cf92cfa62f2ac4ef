// Package payments implements settlement vouchers. A voucher records money
// received from a customer or paid to a supplier; either way it reduces the
// counterparty's outstanding balance by its amount.
package payments

import (
	"errors"
	"time"
)

// PartyType selects the counterparty side of a voucher.
type PartyType string

const (
	// PartyCustomer settles a customer receivable.
	PartyCustomer PartyType = "CUSTOMER"
	// PartySupplier settles a supplier payable.
	PartySupplier PartyType = "SUPPLIER"
)

// Voucher is one settlement record. Numbers come from a database sequence,
// so they are collision-free under concurrent writes.
type Voucher struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	PartyType   PartyType `json:"party_type"`
	PartyID     int64     `json:"party_id"`
	VoucherDate time.Time `json:"voucher_date"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	Remarks     string    `json:"remarks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VoucherForm is the create/update payload.
type VoucherForm struct {
	PartyType   PartyType `json:"party_type" validate:"required,oneof=CUSTOMER SUPPLIER"`
	PartyID     int64     `json:"party_id" validate:"required,gt=0"`
	VoucherDate string    `json:"voucher_date" validate:"required,datetime=2006-01-02"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Method      string    `json:"method" validate:"omitempty,oneof=CASH CHEQUE UPI BANK"`
	Remarks     string    `json:"remarks"`
}

// ListFilter narrows the voucher listing.
type ListFilter struct {
	PartyType PartyType
	PartyID   int64
	From      string
	To        string
	Page      int
	Limit     int
}

var (
	// ErrNotFound indicates the voucher does not exist.
	ErrNotFound = errors.New("payments: voucher not found")
	// ErrPartyNotFound indicates the counterparty could not be resolved.
	ErrPartyNotFound = errors.New("payments: counterparty not found")
)
