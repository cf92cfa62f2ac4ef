// Package reports builds the read-only sales and inventory views: sales
// register, GST summary, item-wise sales, low stock and near-expiry, each
// with a CSV export.
package reports

import "time"

// DateRange bounds a report window, inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// SalesRow is one bill in the sales register.
type SalesRow struct {
	BillID       int64     `json:"bill_id"`
	Number       string    `json:"number"`
	BillDate     time.Time `json:"bill_date"`
	CustomerName string    `json:"customer_name"`
	PaymentMode  string    `json:"payment_mode"`
	Subtotal     float64   `json:"subtotal"`
	TaxTotal     float64   `json:"tax_total"`
	GrandTotal   float64   `json:"grand_total"`
}

// SalesRegister is the sales report for a window.
type SalesRegister struct {
	Range      DateRange          `json:"-"`
	From       string             `json:"from"`
	To         string             `json:"to"`
	Rows       []SalesRow         `json:"rows"`
	ModeTotals map[string]float64 `json:"mode_totals"`
	Subtotal   float64            `json:"subtotal"`
	TaxTotal   float64            `json:"tax_total"`
	GrandTotal float64            `json:"grand_total"`
}

// GstSlab aggregates taxable value and tax for one GST percentage.
type GstSlab struct {
	GstPct       float64 `json:"gst_pct"`
	TaxableValue float64 `json:"taxable_value"`
	TaxAmount    float64 `json:"tax_amount"`
}

// GstSummary is the per-slab tax report for a window.
type GstSummary struct {
	From         string    `json:"from"`
	To           string    `json:"to"`
	Slabs        []GstSlab `json:"slabs"`
	TotalTaxable float64   `json:"total_taxable"`
	TotalTax     float64   `json:"total_tax"`
}

// ItemSalesRow aggregates quantity and revenue per product.
type ItemSalesRow struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	QtySold     float64 `json:"qty_sold"`
	Revenue     float64 `json:"revenue"`
}

// LowStockRow is a product whose combined batch stock sits at or below the
// configured threshold.
type LowStockRow struct {
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Company    string  `json:"company"`
	TotalStock float64 `json:"total_stock"`
}

// ExpiryRow is a batch expiring within the warning horizon.
type ExpiryRow struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	BatchID     string  `json:"batch_id"`
	BatchNo     string  `json:"batch_no"`
	Expiry      string  `json:"expiry"`
	StockQty    float64 `json:"stock_qty"`
}
