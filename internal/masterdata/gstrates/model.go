package gstrates

import "time"

// GstRate is a named tax slab referenced by products.
type GstRate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GstRateForm is the create/update payload.
type GstRateForm struct {
	Name string  `json:"name" validate:"required"`
	Rate float64 `json:"rate" validate:"gte=0"`
}
