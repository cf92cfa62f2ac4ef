// Package ledger computes counterparty statements: opening balance for an
// arbitrary date window, running balance per row and period totals, derived
// from credit transactions (bills/purchases) and settlements (payments).
package ledger

import (
	"errors"
	"time"
)

// PartyType distinguishes the two ledger directions.
type PartyType string

const (
	// PartyCustomer ledgers: positive balance = amount owed to the shop (Dr).
	PartyCustomer PartyType = "CUSTOMER"
	// PartySupplier ledgers: positive balance = amount owed by the shop (Cr).
	PartySupplier PartyType = "SUPPLIER"
)

// EntryKind tags one merged ledger row.
type EntryKind string

const (
	// KindCredit raises the amount owed (credit bill or credit purchase).
	KindCredit EntryKind = "CREDIT"
	// KindSettlement lowers the amount owed (payment voucher).
	KindSettlement EntryKind = "SETTLEMENT"
)

// Entry is one transaction in a counterparty's merged ledger.
type Entry struct {
	Kind   EntryKind `json:"kind"`
	Number string    `json:"number"`
	At     time.Time `json:"at"`
	Seq    int64     `json:"seq"`
	Amount float64   `json:"amount"`
	Note   string    `json:"note,omitempty"`
}

// Row is an entry with the running balance after it was applied.
type Row struct {
	Entry
	Balance float64 `json:"balance"`
}

// Statement is the reconciled view of one counterparty over a window.
type Statement struct {
	Opening         float64   `json:"opening"`
	Rows            []Row     `json:"rows"`
	TotalCredit     float64   `json:"total_credit"`
	TotalSettlement float64   `json:"total_settlement"`
	Closing         float64   `json:"closing"`
	From            time.Time `json:"from,omitempty"`
	To              time.Time `json:"to"`
}

// PartyRef identifies the counterparty a statement belongs to.
type PartyRef struct {
	Type PartyType `json:"type"`
	ID   int64     `json:"id"`
	Name string    `json:"name"`
}

// PartyStatement pairs the counterparty with its reconciled statement.
type PartyStatement struct {
	Party          PartyRef  `json:"party"`
	Statement      Statement `json:"statement"`
	ClosingDisplay string    `json:"closing_display"`
}

// ErrNotFound is returned when the counterparty record does not exist. A
// missing record is surfaced instead of degrading to an empty ledger.
var ErrNotFound = errors.New("ledger: counterparty not found")
