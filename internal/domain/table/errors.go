package table

import "errors"

// Sentinel kinds for table errors.
var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrRowWidth        = errors.New("row width does not match schema")
	ErrKindMismatch    = errors.New("value kind does not match column kind")
)
