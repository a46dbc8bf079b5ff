package goals

import (
	"testing"
	"time"
)

func TestWeekStartAlignsToMonday(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"monday", time.Date(2026, 10, 12, 9, 0, 0, 0, ny), "2026-10-12"},
		{"wednesday", time.Date(2026, 10, 14, 23, 59, 0, 0, ny), "2026-10-12"},
		{"sunday", time.Date(2026, 10, 18, 12, 0, 0, 0, ny), "2026-10-12"},
		{"next monday", time.Date(2026, 10, 19, 0, 0, 0, 0, ny), "2026-10-19"},
		// 03:00 UTC Monday is still Sunday evening in New York
		{"utc monday is local sunday", time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC), "2026-10-12"},
		{"month boundary", time.Date(2026, 11, 1, 10, 0, 0, 0, ny), "2026-10-26"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeekKey(tc.now, ny); got != tc.want {
				t.Fatalf("WeekKey: want=%s got=%s", tc.want, got)
			}
		})
	}
}

func TestWeekStartZeroesTimeOfDay(t *testing.T) {
	ws := WeekStart(time.Date(2026, 10, 15, 17, 30, 45, 99, time.UTC), nil)
	if ws.Hour() != 0 || ws.Minute() != 0 || ws.Second() != 0 || ws.Nanosecond() != 0 {
		t.Fatalf("time of day not zeroed: %v", ws)
	}
	if ws.Weekday() != time.Monday {
		t.Fatalf("weekday: want=Monday got=%v", ws.Weekday())
	}
}

func TestTargetDate(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	got := TargetDate("3_months", now)
	if got == nil || !got.Equal(now.AddDate(0, 3, 0)) {
		t.Fatalf("TargetDate 3_months: got=%v", got)
	}
	if TargetDate("someday", now) != nil {
		t.Fatalf("unknown timeline should have no target date")
	}
}
