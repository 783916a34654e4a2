package streak

import "time"

// Clock is the source of "now" for every day boundary decision
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// DaysSince counts the local midnights crossed between a and b, so 23:59
// followed by 00:01 is one day even though only two minutes passed.
// A b before a counts as zero.
func DaysSince(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()

	// compare the dates as UTC midnights, DST never shifts them
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// StartOfDay returns the local midnight that begins t's day
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
