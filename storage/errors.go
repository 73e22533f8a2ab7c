package storage

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by every backend variant.
// Callers match them with errors.Is; the driver cause stays wrapped alongside.
var (
	ErrConnectionUnavailable = errors.New("connection unavailable")
	ErrQueryFailed           = errors.New("query failed")
	ErrRecordNotFound        = errors.New("record not found")
	ErrUnsupportedBackend    = errors.New("unsupported backend")
)

// QueryFailed wraps a driver error as ErrQueryFailed for the named operation.
func QueryFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrQueryFailed, op, err)
}
