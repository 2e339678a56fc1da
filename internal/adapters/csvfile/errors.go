package csvfile

import (
	"errors"
	"fmt"
)

// Sentinel kinds for delimited-file errors.
var (
	ErrDataNotFound    = errors.New("data file not found")
	ErrMalformedHeader = errors.New("malformed header")
	ErrMalformedRow    = errors.New("malformed row")
)

// NotFoundError reports a missing input source. It matches ErrDataNotFound
// with errors.Is and unwraps to the underlying file system error.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDataNotFound, e.Path)
}

// Is reports whether target is ErrDataNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrDataNotFound }

func (e *NotFoundError) Unwrap() error { return e.Err }
