package utils

import (
	"math"
	"testing"
	"time"
)

func TestNextMonthlyExpiration(t *testing.T) {
	cases := []struct {
		now  string
		want string
	}{
		{"2026-01-02", "2026-01-16"}, // early in the month
		{"2026-01-09", "2026-02-20"}, // expiration week has started
		{"2026-01-20", "2026-02-20"}, // past the third Friday
		{"2026-12-28", "2027-01-15"}, // year rollover
	}

	for _, tc := range cases {
		now, _ := time.Parse(DateLayout, tc.now)
		got := NextMonthlyExpiration(now).Format(DateLayout)
		if got != tc.want {
			t.Errorf("NextMonthlyExpiration(%s) = %s, want %s", tc.now, got, tc.want)
		}
	}
}

func TestYearsToExpiration(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	years, err := YearsToExpiration("2027-01-01", now)
	if err != nil {
		t.Fatalf("YearsToExpiration failed: %v", err)
	}
	if math.Abs(years-1.0) > 1e-12 {
		t.Errorf("years = %v, want 1", years)
	}

	past, err := YearsToExpiration("2025-12-01", now)
	if err != nil {
		t.Fatalf("YearsToExpiration failed: %v", err)
	}
	if past >= 0 {
		t.Errorf("past expiry should be negative, got %v", past)
	}

	if _, err := YearsToExpiration("16/01/2026", now); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestYearsToMonthlyExpiration(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	years, err := YearsToExpiration(MonthlyExpiry, now)
	if err != nil {
		t.Fatalf("YearsToExpiration failed: %v", err)
	}
	if want := 14.0 / 365.0; math.Abs(years-want) > 1e-12 {
		t.Errorf("years = %v, want %v", years, want)
	}
}
