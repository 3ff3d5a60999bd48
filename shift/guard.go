package shift

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultBackdateLimitDays is the backdate window given to new users.
const DefaultBackdateLimitDays = 7

// Guard enforces the "no future dates" and backdate-window rules against
// the current date in a tenant's zone.
type Guard struct {
	Clock    clockwork.Clock
	Location *time.Location
}

// NewGuard creates a Guard. A nil clock means the real wall clock.
func NewGuard(clock clockwork.Clock, loc *time.Location) *Guard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Guard{Clock: clock, Location: loc}
}

// Today returns the current calendar date in the guard's zone.
func (g *Guard) Today() Date {
	return DateOf(g.Clock.Now(), g.Location)
}

// Check fails when date is after today, or more than backdateLimitDays
// whole days before it. The limit is inclusive: a date exactly
// backdateLimitDays ago passes.
func (g *Guard) Check(date Date, backdateLimitDays int) error {
	today := g.Today()

	if date.After(today) {
		return &DateViolationError{Date: date, Today: today, LimitDays: backdateLimitDays, Reason: ErrFutureDate}
	}
	if DaysBetween(date, today) > backdateLimitDays {
		return &DateViolationError{Date: date, Today: today, LimitDays: backdateLimitDays, Reason: ErrBackdateLimitExceeded}
	}
	return nil
}

// CheckSegments runs Check on every segment's local date, stopping at the
// first violation.
func (g *Guard) CheckSegments(segments []Segment, backdateLimitDays int) error {
	for _, seg := range segments {
		if err := g.Check(seg.LocalDate, backdateLimitDays); err != nil {
			return err
		}
	}
	return nil
}

// CheckNotFuture fails when the instant t is later than now.
func (g *Guard) CheckNotFuture(t time.Time) error {
	now := g.Clock.Now()
	if t.After(now) {
		return &DateViolationError{Date: DateOf(t, g.Location), Today: DateOf(now, g.Location), Reason: ErrFutureDate}
	}
	return nil
}
