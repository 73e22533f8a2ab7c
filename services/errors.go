package services

import "errors"

// Common service-level errors
var (
	// ErrRecordNotHeld is returned when an operation names a record the working set does not hold.
	ErrRecordNotHeld = errors.New("record not held by working set")
)
