package billing

// BillForm is the create/update payload. Version is ignored on create and
// required on update, where it guards against concurrent edits.
type BillForm struct {
	BillDate     string         `json:"bill_date" validate:"required,datetime=2006-01-02"`
	CustomerID   *int64         `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	CustomerName string         `json:"customer_name"`
	SalesmanID   *int64         `json:"salesman_id,omitempty" validate:"omitempty,gt=0"`
	PaymentMode  string         `json:"payment_mode" validate:"required,oneof=CASH CREDIT UPI CARD"`
	Lines        []BillLineForm `json:"lines" validate:"required,min=1,dive"`
	Version      int64          `json:"version,omitempty"`
}

// BillLineForm is one sold position in the payload.
type BillLineForm struct {
	ProductID   int64   `json:"product_id" validate:"required,gt=0"`
	BatchID     string  `json:"batch_id" validate:"required,uuid4"`
	ProductName string  `json:"product_name" validate:"required"`
	BatchNo     string  `json:"batch_no"`
	Qty         float64 `json:"qty" validate:"required,gt=0"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	GstPct      float64 `json:"gst_pct" validate:"gte=0,lte=100"`
}

// ListFilter narrows the bill listing.
type ListFilter struct {
	From       string
	To         string
	CustomerID int64
	Search     string
	Page       int
	Limit      int
}
