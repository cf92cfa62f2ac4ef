package procurement

// PurchaseForm is the create payload. Purchases are not editable; a wrong
// entry is deleted and re-entered, with the no-revert stock policy applied.
type PurchaseForm struct {
	SupplierID   *int64             `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	SupplierName string             `json:"supplier_name"`
	InvoiceNo    string             `json:"invoice_no"`
	InvoiceDate  string             `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	PaymentMode  string             `json:"payment_mode" validate:"required,oneof=CASH CREDIT"`
	Lines        []PurchaseLineForm `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseLineForm is one received position. ProductID selects an existing
// product; when zero, NewProduct must describe the product to create.
type PurchaseLineForm struct {
	ProductID  int64           `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	NewProduct *NewProductForm `json:"new_product,omitempty"`

	BatchNo       string  `json:"batch_no" validate:"required"`
	Expiry        string  `json:"expiry"`
	Qty           float64 `json:"qty" validate:"required,gt=0"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	MRP           float64 `json:"mrp" validate:"gte=0"`
	GstPct        float64 `json:"gst_pct" validate:"gte=0,lte=100"`
}

// NewProductForm describes a product introduced by a purchase line.
type NewProductForm struct {
	Name          string `json:"name" validate:"required"`
	Company       string `json:"company"`
	HSNCode       string `json:"hsn_code"`
	GstRateID     *int64 `json:"gst_rate_id,omitempty"`
	UnitsPerStrip int    `json:"units_per_strip" validate:"omitempty,gte=1"`
	SoldByStrip   bool   `json:"sold_by_strip"`
}

// ListFilter narrows the purchase listing.
type ListFilter struct {
	From       string
	To         string
	SupplierID int64
	Search     string
	Page       int
	Limit      int
}
