package shift

import "github.com/shopspring/decimal"

var sixty = decimal.NewFromInt(60)

// OverlapHours returns how many hours of the segment [segStart, segEnd)
// fall inside the shift window [shiftStart, shiftEnd). All arguments are
// minutes since local midnight; segEnd may be 1440 for a segment that runs
// through midnight.
//
// A window with shiftStart >= shiftEnd wraps: it is treated as the two
// sub-windows [shiftStart, 1440) and [0, shiftEnd) of the same day.
// Ranges that do not intersect contribute nothing.
func OverlapHours(segStart, segEnd, shiftStart, shiftEnd int) decimal.Decimal {
	var overlap int
	if shiftStart < shiftEnd {
		overlap = clip(segStart, segEnd, shiftStart, shiftEnd)
	} else {
		overlap = clip(segStart, segEnd, shiftStart, minutesPerDay) +
			clip(segStart, segEnd, 0, shiftEnd)
	}
	return MinutesToHours(overlap)
}

// MinutesToHours converts whole minutes to hours rounded to 2 places.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

func clip(segStart, segEnd, winStart, winEnd int) int {
	start := max(segStart, winStart)
	end := min(segEnd, winEnd)
	if start < end {
		return end - start
	}
	return 0
}
