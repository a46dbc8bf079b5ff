package goals

import "time"

// WeekStartLayout is the storage and wire format of a week key.
const WeekStartLayout = "2006-01-02"

// WeekStart returns the Monday of the ISO week containing now, as seen in loc,
// with the time of day zeroed.
func WeekStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	offset := (int(local.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	y, m, d := local.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}

// WeekKey is WeekStart formatted as YYYY-MM-DD.
func WeekKey(now time.Time, loc *time.Location) string {
	return WeekStart(now, loc).Format(WeekStartLayout)
}
