package rules

import "time"

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// CanSpin reports whether a user whose last spin was lastSpin may spin at now.
func CanSpin(lastSpin *time.Time, now time.Time, loc *time.Location) bool {
	if lastSpin == nil {
		return true
	}
	return !SameDay(*lastSpin, now, loc)
}
