// Package shared holds helpers common to the masterdata modules.
package shared

import "errors"

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("masterdata: record not found")
	// ErrInUse indicates the record is referenced and cannot be deleted.
	ErrInUse = errors.New("masterdata: record is referenced")
)
