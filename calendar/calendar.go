// Package calendar provides pure date arithmetic for view windows:
// week/month window computation, range membership, and month-length
// helpers. All functions preserve the location of their input and have
// no side effects.
package calendar

import "time"

// Day truncates t to midnight of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// WeekWindow returns the 7-day window containing t. Weeks start on
// Sunday; the window runs from midnight of that Sunday through
// end-of-day of the following Saturday.
func WeekWindow(t time.Time) (start, end time.Time) {
	start = Day(t).AddDate(0, 0, -int(t.Weekday()))
	end = EndOfDay(start.AddDate(0, 0, 6))
	return start, end
}

// MonthWindow returns the window from the first calendar day of t's
// month through end-of-day of its last calendar day.
func MonthWindow(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = EndOfDay(start.AddDate(0, 1, -1))
	return start, end
}

// InRange reports whether t lies in [start, end], inclusive on both
// ends.
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths advances a (year, month) pair by n months without ever
// spilling into a neighbouring month the way day-preserving time
// arithmetic can.
func AddMonths(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - 1 + n
	y := year + m/12
	m = m % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, time.Month(m + 1)
}
