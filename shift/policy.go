/*
Package shift implements the time-entry normalization and shift-differential
math.

PURPOSE:
  Everything in this package is pure: no storage, no I/O, no hidden clock.
  Callers hand in instants, a time zone and a Policy; they get back
  calendar-day segments and decimal hour figures.

PIPELINE:
  Split      (start, end, zone)     -> []Segment   split.go
  Summarize  (segment, policy)      -> Summary     summary.go
  OverlapHours (minutes, window)    -> hours       overlap.go
  Guard.Check (local date, limit)   -> error       guard.go

PRECISION:
  Hours are decimal.Decimal rounded to 2 places, half away from zero.
  Parent figures are sums of already rounded segment figures.

SEE ALSO:
  - timesheet/service.go: drives the pipeline and persists the result
*/
package shift

// Policy holds the four shift-boundary clock times active for a tenant.
// A window whose start is not before its end wraps past midnight.
type Policy struct {
	EveningStart ClockTime `json:"evening_start"`
	EveningEnd   ClockTime `json:"evening_end"`
	NightStart   ClockTime `json:"night_start"`
	NightEnd     ClockTime `json:"night_end"`
}

// DefaultPolicy is used when a tenant has no active policy yet
// (bootstrap): evening 18:00-22:00, night 22:00-06:00.
func DefaultPolicy() Policy {
	return Policy{
		EveningStart: MustParseClock("18:00"),
		EveningEnd:   MustParseClock("22:00"),
		NightStart:   MustParseClock("22:00"),
		NightEnd:     MustParseClock("06:00"),
	}
}

// ParsePolicy builds a Policy from four HH:mm strings.
func ParsePolicy(eveningStart, eveningEnd, nightStart, nightEnd string) (Policy, error) {
	var p Policy
	fields := []struct {
		raw string
		dst *ClockTime
	}{
		{eveningStart, &p.EveningStart},
		{eveningEnd, &p.EveningEnd},
		{nightStart, &p.NightStart},
		{nightEnd, &p.NightEnd},
	}
	for _, f := range fields {
		c, err := ParseClock(f.raw)
		if err != nil {
			return Policy{}, err
		}
		*f.dst = c
	}
	return p, nil
}
