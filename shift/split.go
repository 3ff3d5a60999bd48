package shift

import (
	"fmt"
	"time"
)

// Segment is one calendar-day-bounded piece of a work interval.
// Start and End are UTC instants; LocalDate is the date of Start in the
// zone the interval was split in. A segment never crosses local midnight.
type Segment struct {
	Start     time.Time
	End       time.Time
	LocalDate Date
}

// Split decomposes [start, end) into chronologically ordered segments, one
// per local calendar day touched. An interval that stays within one local
// day comes back as a single segment with the input instants unchanged.
func Split(start, end time.Time, loc *time.Location) ([]Segment, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidInterval,
			start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}

	var segments []Segment
	cursor := start.In(loc)
	endLocal := end.In(loc)

	for cursor.Before(endLocal) {
		day := DateOf(cursor, loc)
		nextMidnight := day.AddDays(1).Midnight(loc)

		segmentEnd := endLocal
		if nextMidnight.Before(endLocal) {
			segmentEnd = nextMidnight
		}

		segments = append(segments, Segment{
			Start:     cursor.UTC(),
			End:       segmentEnd.UTC(),
			LocalDate: day,
		})
		cursor = segmentEnd
	}

	return segments, nil
}
