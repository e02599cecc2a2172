package storage

import "time"

// monthRange returns the half-open interval [start, end) covering the
// calendar month (year, month) in UTC.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// previousMonthRange returns the interval covering the calendar month
// preceding (year, month). time.Date normalizes month 0 to December of
// the prior year, so the January wrap needs no special case.
func previousMonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
