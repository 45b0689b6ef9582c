package dateutil

import "time"

// A reputation week begins at Tuesday 11:00:00 America/Denver and ends at the
// next such instant. The anchor is civil time, so weeks containing a DST
// transition are 167 or 169 hours long.
const (
	resetWeekday = time.Tuesday
	resetHour    = 11
)

// WeekStart returns the largest reset instant less than or equal to t.
func WeekStart(t time.Time) time.Time {
	t = t.In(Zone())

	daysBack := (int(t.Weekday()) - int(resetWeekday) + 7) % 7
	start := time.Date(t.Year(), t.Month(), t.Day()-daysBack, resetHour, 0, 0, 0, Zone())
	if t.Before(start) {
		start = time.Date(t.Year(), t.Month(), t.Day()-daysBack-7, resetHour, 0, 0, 0, Zone())
	}

	return start
}

// NextWeekStart returns the smallest reset instant greater than t.
func NextWeekStart(t time.Time) time.Time {
	return WeekStart(t.In(Zone()).AddDate(0, 0, 7))
}

// TimeUntilReset returns how long until the next weekly reset. At the exact
// reset instant it returns one full week.
func TimeUntilReset(now time.Time) time.Duration {
	return NextWeekStart(now).Sub(now)
}
