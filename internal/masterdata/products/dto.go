package products

// ProductForm is the create/update payload.
type ProductForm struct {
	Name          string `json:"name" validate:"required"`
	Company       string `json:"company"`
	HSNCode       string `json:"hsn_code"`
	GstRateID     *int64 `json:"gst_rate_id"`
	UnitsPerStrip int    `json:"units_per_strip" validate:"omitempty,min=1"`
	SoldByStrip   bool   `json:"sold_by_strip"`
}

// BatchForm is the payload for adding or editing a batch by hand. Purchases
// create batches through their own path.
type BatchForm struct {
	BatchNo       string  `json:"batch_no" validate:"required"`
	Expiry        string  `json:"expiry" validate:"omitempty,len=7"`
	OpeningStock  float64 `json:"opening_stock" validate:"gte=0"`
	MRP           float64 `json:"mrp" validate:"gte=0"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
}
