package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors, never retried.
var (
	ErrInvalidInterval = errors.New("interval end must be after start")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidPattern  = errors.New("unknown repetition pattern")
)

// Not-found errors, never retried.
var (
	ErrSpaceNotFound   = errors.New("space not found")
	ErrWindowNotFound  = errors.New("availability window not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// ErrStoreUnavailable marks transient I/O failures against the backing
// store. The reservation path retries these a bounded number of times before
// surfacing them.
var ErrStoreUnavailable = errors.New("backing store unavailable")

// ConflictError means the requested interval was not free at commit time.
// It is a definitive outcome, not retried.
type ConflictError struct {
	SpaceID int64
	Date    time.Time
	Start   time.Time
	End     time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("space %d is not free on %s between %s and %s",
		e.SpaceID, e.Date.Format("2006-01-02"), e.Start.Format("15:04"), e.End.Format("15:04"))
}

// IsValidation reports whether err is one of the validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInterval) || errors.Is(err, ErrInvalidPrice) || errors.Is(err, ErrInvalidPattern)
}

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSpaceNotFound) || errors.Is(err, ErrWindowNotFound) || errors.Is(err, ErrBookingNotFound)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
