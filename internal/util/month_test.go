package util

import (
	"testing"
	"time"
)

func TestCurrentPeriod(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	month, year := CurrentPeriod(now, nil)
	if month != 10 || year != 2026 {
		t.Errorf("CurrentPeriod() = (%d, %d), want (10, 2026)", month, year)
	}
}

func TestCurrentPeriod_LocationShiftsMonth(t *testing.T) {
	// 23:30 UTC on Dec 31 is already January in Tokyo
	now := time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)

	month, year := CurrentPeriod(now, tokyo)
	if month != 1 || year != 2026 {
		t.Errorf("CurrentPeriod() in JST = (%d, %d), want (1, 2026)", month, year)
	}
}

func TestMonthRange_YearBoundary(t *testing.T) {
	start, end := MonthRange(2025, 12, time.UTC)

	wantStart := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("MonthRange(2025, 12) = (%v, %v), want (%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestInMonth(t *testing.T) {
	tests := []struct {
		name     string
		t        time.Time
		expected bool
	}{
		{"first instant", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"last day", time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), true},
		{"next month", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"previous month", time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InMonth(tt.t, 2026, 2, time.UTC); got != tt.expected {
				t.Errorf("InMonth(%v) = %v, want %v", tt.t, got, tt.expected)
			}
		})
	}
}

func TestIsValidMonth(t *testing.T) {
	for _, m := range []int{1, 6, 12} {
		if !IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = false, want true", m)
		}
	}
	for _, m := range []int{0, 13, -1} {
		if IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = true, want false", m)
		}
	}
}
