package salesmen

import "time"

// Salesman is a lookup record attached to bills for commission reporting.
type Salesman struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
