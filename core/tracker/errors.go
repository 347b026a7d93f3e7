package tracker

import "errors"

var (
	// ErrMissingVisitorID is returned when a browser visit is recorded
	// without a visitor identifier. This is a caller error, not a value to
	// be defaulted.
	ErrMissingVisitorID = errors.New("visitor id is required")
)
