// Package settings manages the two singleton configuration records: the shop
// profile printed on documents and the behavioural system config.
package settings

import "time"

// CompanyProfile is the shop identity shown on bills and statements.
type CompanyProfile struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	GSTIN     string    `json:"gstin"`
	DLNumber  string    `json:"dl_number"`
	Footer    string    `json:"footer"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SystemConfig holds tunable behaviour.
type SystemConfig struct {
	BillPrefix        string    `json:"bill_prefix"`
	LowStockThreshold float64   `json:"low_stock_threshold"`
	ExpiryWarnMonths  int       `json:"expiry_warn_months"`
	UpdatedAt         time.Time `json:"updated_at"`
}
