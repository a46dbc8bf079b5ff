package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "nope")
	if got := Int("ENVUTIL_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", " 12 ")
	if got := Int("ENVUTIL_TEST_INT", 7, nil); got != 12 {
		t.Fatalf("Int: want=12 got=%d", got)
	}
}

func TestBoolAndDuration(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "on")
	if !Bool("ENVUTIL_TEST_BOOL", false, nil) {
		t.Fatalf("Bool: want=true")
	}
	if got := String("ENVUTIL_TEST_MISSING", "dflt", nil); got != "dflt" {
		t.Fatalf("String: want=dflt got=%q", got)
	}
	t.Setenv("ENVUTIL_TEST_MS", "250")
	if got := DurationMS("ENVUTIL_TEST_MS", time.Second, nil); got != 250*time.Millisecond {
		t.Fatalf("DurationMS: got=%v", got)
	}
	t.Setenv("ENVUTIL_TEST_MS", "-1")
	if got := DurationMS("ENVUTIL_TEST_MS", time.Second, nil); got != time.Second {
		t.Fatalf("DurationMS negative: got=%v", got)
	}
}

func TestFloatClampsAndFallsBack(t *testing.T) {
	cases := map[string]float64{"": 0.1, "0.25": 0.25, "7": 1, "-3": 0, "half": 0.1}
	for raw, want := range cases {
		t.Setenv("ENVUTIL_TEST_FLOAT", raw)
		if got := Float("ENVUTIL_TEST_FLOAT", 0.1, 0, 1, nil); got != want {
			t.Fatalf("Float(%q) = %v, want %v", raw, got, want)
		}
	}
}
