// Package partners manages customer and supplier records, including the
// denormalized running balance that billing, procurement and payments adjust.
package partners

import (
	"errors"
	"time"
)

// Kind selects the counterparty table.
type Kind string

const (
	// KindCustomer rows live in customers; positive balance is receivable.
	KindCustomer Kind = "CUSTOMER"
	// KindSupplier rows live in suppliers; positive balance is payable.
	KindSupplier Kind = "SUPPLIER"
)

// Party is a customer or supplier.
type Party struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	GSTIN          string    `json:"gstin"`
	OpeningBalance float64   `json:"opening_balance"`
	Balance        float64   `json:"balance"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PartyForm is the create/update payload.
type PartyForm struct {
	Name           string  `json:"name" validate:"required"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	GSTIN          string  `json:"gstin"`
	OpeningBalance float64 `json:"opening_balance"`
}

var (
	// ErrNotFound indicates the counterparty does not exist.
	ErrNotFound = errors.New("partners: record not found")
	// ErrInUse indicates ledger activity references the counterparty.
	ErrInUse = errors.New("partners: record has ledger activity")
)
