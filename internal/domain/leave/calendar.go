package leave

import "time"

// DateLayout is the wire format for all leave dates.
const DateLayout = "2006-01-02"

// BusinessDays returns the inclusive count of weekdays between a and b,
// excluding Saturdays and Sundays. The arguments are symmetric: if a is
// later than b the pair is swapped before counting.
func BusinessDays(a, b time.Time) int {
	a = DateOf(a)
	b = DateOf(b)
	if b.Before(a) {
		a, b = b, a
	}

	count := 0
	for d := a; !d.After(b); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// DateOf returns the calendar date of t, read in t's own location, as a UTC
// midnight. That is the same representation DateLayout strings parse to, so
// the result compares exactly against stored request dates.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
