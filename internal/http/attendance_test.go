package http

import (
	"net/url"
	"testing"
	"time"
)

func TestAttendanceRange(t *testing.T) {
	from, to, err := attendanceRange(url.Values{
		"from_date": {"2026-01-01"},
		"to_date":   {"2026-01-31"},
	})
	if err != nil {
		t.Fatalf("bounded range: %v", err)
	}
	if !from.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	if !to.Equal(time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v", to)
	}
}

func TestAttendanceRangeIsOptional(t *testing.T) {
	from, to, err := attendanceRange(url.Values{})
	if err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if !from.IsZero() {
		t.Errorf("default from = %v, want zero", from)
	}
	if to.Year() != 9999 {
		t.Errorf("default to = %v, want open upper bound", to)
	}

	// One-sided bounds keep the other end open.
	from, to, err = attendanceRange(url.Values{"from_date": {"2026-02-01"}})
	if err != nil {
		t.Fatal(err)
	}
	if from.IsZero() || to.Year() != 9999 {
		t.Errorf("from-only range = [%v, %v]", from, to)
	}
}

func TestAttendanceRangeRejectsBadDates(t *testing.T) {
	for _, values := range []url.Values{
		{"from_date": {"01/02/2026"}},
		{"to_date": {"not-a-date"}},
		{"from_date": {"2026-01-01"}, "to_date": {"2026-13-40"}},
	} {
		if _, _, err := attendanceRange(values); err == nil {
			t.Errorf("accepted %v", values)
		}
	}
}
