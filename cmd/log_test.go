package cmd

import (
	"testing"
	"time"
)

func TestParseClockMinutes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{" 14:30 ", 870, false},
		{"9am", 0, true},
		{"25:00", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := parseClockMinutes(tc.value)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseClockMinutes(%q): expected error", tc.value)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseClockMinutes(%q): %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("parseClockMinutes(%q): expected %d, got %d", tc.value, tc.want, got)
		}
	}
}

func TestResolveLogWindow(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 6, 10, 17, 45, 0, 0, time.Local)

	start, end, err := resolveLogWindow(day, "09:00", "11:30")
	if err != nil {
		t.Fatalf("resolve log window: %v", err)
	}
	if start.Hour() != 9 || start.Minute() != 0 {
		t.Fatalf("expected 09:00 start, got %v", start)
	}
	if end.Sub(start) != 150*time.Minute {
		t.Fatalf("expected 2h30m window, got %v", end.Sub(start))
	}
	if start.Day() != 10 || start.Month() != time.June {
		t.Fatalf("expected window on the given day, got %v", start)
	}

	if _, _, err := resolveLogWindow(day, "11:00", "09:00"); err == nil {
		t.Fatalf("expected error for backwards window")
	}
	if _, _, err := resolveLogWindow(day, "09:00", "09:00"); err == nil {
		t.Fatalf("expected error for empty window")
	}
	if _, _, err := resolveLogWindow(day, "morning", "11:00"); err == nil {
		t.Fatalf("expected error for malformed from")
	}
}
