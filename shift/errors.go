package shift

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when an interval does not end strictly
	// after it starts.
	ErrInvalidInterval = errors.New("invalid interval: end must be after start")

	// ErrInvalidClockTime is returned for clock values outside 24-hour HH:mm.
	ErrInvalidClockTime = errors.New("time values must be in 24-hour HH:mm format")

	// ErrFutureDate is returned when a local date lies after today in the
	// tenant's zone.
	ErrFutureDate = errors.New("cannot create time entries for future dates")

	// ErrBackdateLimitExceeded is returned when a local date lies further in
	// the past than the user's backdate window allows.
	ErrBackdateLimitExceeded = errors.New("backdate limit exceeded")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DateViolationError describes which date failed the backdate/future guard.
type DateViolationError struct {
	Date      Date
	Today     Date
	LimitDays int
	Reason    error // ErrFutureDate or ErrBackdateLimitExceeded
}

func (e *DateViolationError) Error() string {
	if errors.Is(e.Reason, ErrFutureDate) {
		return fmt.Sprintf("%v: %s is after %s", e.Reason, e.Date, e.Today)
	}
	return fmt.Sprintf("cannot create entries older than %d days: %s (today %s)",
		e.LimitDays, e.Date, e.Today)
}

func (e *DateViolationError) Unwrap() error {
	return e.Reason
}
