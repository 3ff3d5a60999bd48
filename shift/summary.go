package shift

import (
	"time"

	"github.com/shopspring/decimal"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Summary holds the hour figures of a segment, an entry or a report.
type Summary struct {
	TotalHours   decimal.Decimal `json:"total_hours"`
	EveningHours decimal.Decimal `json:"evening_hours"`
	NightHours   decimal.Decimal `json:"night_hours"`
}

// Add returns the field-wise sum without rounding.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		TotalHours:   s.TotalHours.Add(o.TotalHours),
		EveningHours: s.EveningHours.Add(o.EveningHours),
		NightHours:   s.NightHours.Add(o.NightHours),
	}
}

// Round rounds every field to 2 decimal places.
func (s Summary) Round() Summary {
	return Summary{
		TotalHours:   s.TotalHours.Round(2),
		EveningHours: s.EveningHours.Round(2),
		NightHours:   s.NightHours.Round(2),
	}
}

// Aggregate sums report rows. The inputs are already 2dp so the result is
// exact.
func Aggregate(items []Summary) Summary {
	total := Summary{}
	for _, item := range items {
		total = total.Add(item)
	}
	return total
}

// Summarize computes total, evening and night hours for one segment under
// policy p, using wall-clock arithmetic in loc.
//
// A segment that ends exactly at the following local midnight is measured
// with an end of 24:00 (1440 minutes). Without that, the overlap math would
// see an empty window at the end of the day and drop night hours.
func Summarize(seg Segment, p Policy, loc *time.Location) Summary {
	startLocal := seg.Start.In(loc)
	endLocal := seg.End.In(loc)

	startMinutes := startLocal.Hour()*60 + startLocal.Minute()
	endMinutes := endLocal.Hour()*60 + endLocal.Minute()

	startWall := sinceMidnight(startLocal)
	endWall := sinceMidnight(endLocal)

	if days := DaysBetween(DateOf(startLocal, loc), DateOf(endLocal, loc)); days > 0 {
		endWall += time.Duration(days) * 24 * time.Hour
		if endMinutes == 0 {
			endMinutes = minutesPerDay
		}
	}

	total := decimal.NewFromInt(int64(endWall - startWall)).Div(nanosPerHour).Round(2)

	return Summary{
		TotalHours:   total,
		EveningHours: OverlapHours(startMinutes, endMinutes, p.EveningStart.Minutes(), p.EveningEnd.Minutes()),
		NightHours:   OverlapHours(startMinutes, endMinutes, p.NightStart.Minutes(), p.NightEnd.Minutes()),
	}
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
