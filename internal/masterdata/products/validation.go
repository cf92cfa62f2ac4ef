package products

import (
	"errors"
	"regexp"
	"strings"
)

var expiryPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if p.UnitsPerStrip < 1 {
		return errors.New("units per strip must be at least 1")
	}
	return nil
}

func validateBatch(b Batch) error {
	if strings.TrimSpace(b.BatchNo) == "" {
		return errors.New("batch number is required")
	}
	if b.Expiry != "" && !expiryPattern.MatchString(b.Expiry) {
		return errors.New("expiry must be YYYY-MM")
	}
	if b.OpeningStock < 0 {
		return errors.New("opening stock must not be negative")
	}
	if b.MRP < 0 || b.PurchasePrice < 0 {
		return errors.New("prices must not be negative")
	}
	return nil
}
