// Package procurement implements purchase entry: goods received from a
// supplier grow batch stock, optionally introducing new products and batches,
// and credit purchases grow the supplier's running balance. Stock added by a
// purchase is never taken back when the purchase is deleted.
package procurement

import (
	"errors"
	"time"
)

// Payment modes on a purchase. CREDIT is the only mode that touches the
// supplier's running balance.
const (
	ModeCash   = "CASH"
	ModeCredit = "CREDIT"
)

// Purchase is one goods-received entry.
type Purchase struct {
	ID           int64          `json:"id"`
	SupplierID   *int64         `json:"supplier_id,omitempty"`
	SupplierName string         `json:"supplier_name"`
	InvoiceNo    string         `json:"invoice_no"`
	InvoiceDate  time.Time      `json:"invoice_date"`
	PaymentMode  string         `json:"payment_mode"`
	Total        float64        `json:"total"`
	Lines        []PurchaseLine `json:"lines"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// PurchaseLine is one received product/batch position. UnitsPerStrip records
// the conversion used when the stock was computed so the entry stays
// auditable even if the product's packing changes later.
type PurchaseLine struct {
	ID            int64   `json:"id"`
	PurchaseID    int64   `json:"purchase_id"`
	ProductID     int64   `json:"product_id"`
	BatchID       string  `json:"batch_id"`
	Qty           float64 `json:"qty"`
	UnitsPerStrip int     `json:"units_per_strip"`
	PurchasePrice float64 `json:"purchase_price"`
	MRP           float64 `json:"mrp"`
	GstPct        float64 `json:"gst_pct"`
	LineTotal     float64 `json:"line_total"`
}

var (
	// ErrNotFound indicates the purchase does not exist.
	ErrNotFound = errors.New("procurement: purchase not found")
	// ErrProductNotFound indicates a referenced product could not be resolved.
	ErrProductNotFound = errors.New("procurement: product not found")
)
