package forest

import "errors"

// Sentinel kinds for model errors.
var (
	ErrEmptyInput     = errors.New("empty training input")
	ErrShapeMismatch  = errors.New("shape mismatch")
	ErrInvalidLabel   = errors.New("label must be 0 or 1")
	ErrInvalidFeature = errors.New("feature value is not finite")
	ErrInvalidParams  = errors.New("invalid forest parameters")
)
