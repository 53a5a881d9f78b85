package util

import (
	"testing"
	"time"
)

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-07-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDate(d) != "2026-07-04" {
		t.Fatalf("round trip gave %q", FormatDate(d))
	}
	if _, err := ParseDate("04/07/2026"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	b := time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 3 {
		t.Fatalf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(a, a); got != 1 {
		t.Fatalf("same day = %d, want 1", got)
	}
	if got := DaysBetween(b, a); got != 0 {
		t.Fatalf("inverted range = %d, want 0", got)
	}
}
