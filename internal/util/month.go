package util

import "time"

// CurrentPeriod returns the calendar month (1-12) and year of now in loc
func CurrentPeriod(now time.Time, loc *time.Location) (month, year int) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return int(local.Month()), local.Year()
}

// MonthRange returns the half-open interval [start, end) covering the given month in loc
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// InMonth reports whether t falls inside the given month in loc
func InMonth(t time.Time, year, month int, loc *time.Location) bool {
	start, end := MonthRange(year, month, loc)
	return !t.Before(start) && t.Before(end)
}

// IsValidMonth reports whether month uses the 1-12 convention
func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}
