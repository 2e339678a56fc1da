package encoding

import "errors"

// Sentinel kinds for encoding errors.
var (
	ErrInvalidLabel   = errors.New("invalid label value")
	ErrMissingValue   = errors.New("missing numeric value")
	ErrColumnMismatch = errors.New("feature columns do not match")
)
