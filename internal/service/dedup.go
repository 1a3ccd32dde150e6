package service

import "time"

// WasNotifiedToday reports whether last falls on the same calendar day as now
// in loc. A nil marker means never notified. Calendar fields are compared in
// one explicit location, so behavior does not depend on host local time.
func WasNotifiedToday(last *time.Time, now time.Time, loc *time.Location) bool {
	if last == nil {
		return false
	}
	y1, m1, d1 := last.In(loc).Date()
	y2, m2, d2 := now.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
