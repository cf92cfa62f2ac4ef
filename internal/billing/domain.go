// Package billing implements point-of-sale bills: creation with stock
// decrement, edits with per-batch delta reconciliation, deletion with full
// restoration, and credit-sale balance propagation onto the customer record.
package billing

import (
	"errors"
	"time"
)

// Payment modes accepted on a bill. CREDIT is the only mode that touches the
// customer's running balance.
const (
	ModeCash   = "CASH"
	ModeCredit = "CREDIT"
	ModeUPI    = "UPI"
	ModeCard   = "CARD"
)

// Bill is one point-of-sale invoice.
type Bill struct {
	ID           int64      `json:"id"`
	Number       string     `json:"number"`
	BillDate     time.Time  `json:"bill_date"`
	CustomerID   *int64     `json:"customer_id,omitempty"`
	CustomerName string     `json:"customer_name"`
	SalesmanID   *int64     `json:"salesman_id,omitempty"`
	PaymentMode  string     `json:"payment_mode"`
	Subtotal     float64    `json:"subtotal"`
	TaxTotal     float64    `json:"tax_total"`
	GrandTotal   float64    `json:"grand_total"`
	Version      int64      `json:"version"`
	Lines        []BillLine `json:"lines"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BillLine is one sold product/batch position.
type BillLine struct {
	ID          int64   `json:"id"`
	BillID      int64   `json:"bill_id"`
	ProductID   int64   `json:"product_id"`
	BatchID     string  `json:"batch_id"`
	ProductName string  `json:"product_name"`
	BatchNo     string  `json:"batch_no"`
	Qty         float64 `json:"qty"`
	Rate        float64 `json:"rate"`
	GstPct      float64 `json:"gst_pct"`
	LineTotal   float64 `json:"line_total"`
}

var (
	// ErrNotFound indicates the bill does not exist.
	ErrNotFound = errors.New("billing: bill not found")
	// ErrBatchNotFound indicates a sold batch reference could not be resolved.
	ErrBatchNotFound = errors.New("billing: batch not found")
	// ErrInsufficientStock indicates a sale would drive a batch negative.
	ErrInsufficientStock = errors.New("billing: insufficient stock")
)
