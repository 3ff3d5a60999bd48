package shift

import "time"

// LocalInterval turns a local calendar date and a pair of clock times into
// a UTC interval. An end clock at or before the start clock is taken to be
// on the following day, so 22:00-06:00 is an overnight shift.
func LocalInterval(date Date, from, to ClockTime, loc *time.Location) (start, end time.Time) {
	start = at(date, from, loc)
	end = at(date, to, loc)
	if !end.After(start) {
		end = at(date.AddDays(1), to, loc)
	}
	return start.UTC(), end.UTC()
}

func at(date Date, c ClockTime, loc *time.Location) time.Time {
	return time.Date(date.Year, date.Month, date.Day, c.Hour(), c.Minute(), 0, 0, loc)
}
