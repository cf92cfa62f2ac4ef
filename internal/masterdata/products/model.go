package products

import "time"

// Product represents a sellable item. Batches are owned exclusively by their
// product and listed in creation order.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Company       string    `json:"company"`
	HSNCode       string    `json:"hsn_code"`
	GstRateID     *int64    `json:"gst_rate_id,omitempty"`
	UnitsPerStrip int       `json:"units_per_strip"`
	SoldByStrip   bool      `json:"sold_by_strip"`
	Batches       []Batch   `json:"batches,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Batch is one lot of a product with its own expiry, cost and stock count.
// Stock mutates only through the billing and procurement transaction paths;
// the version column guards those writes against concurrent overwrites.
type Batch struct {
	ID            string    `json:"id"`
	ProductID     int64     `json:"product_id"`
	BatchNo       string    `json:"batch_no"`
	Expiry        string    `json:"expiry"` // YYYY-MM
	StockQty      float64   `json:"stock_qty"`
	OpeningStock  float64   `json:"opening_stock"`
	MRP           float64   `json:"mrp"`
	PurchasePrice float64   `json:"purchase_price"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
