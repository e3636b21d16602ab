package session

import "time"

// SameLocalDay reports whether a and b fall on the same calendar day in loc.
// It compares year, month and day fields, so a day that is 23 or 25 hours long
// across a DST change is still one day.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	a, b = a.In(loc), b.In(loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
