package utils

import (
	"fmt"
	"time"
)

// DateLayout is the expiration date format accepted by the front ends
const DateLayout = "2006-01-02"

// MonthlyExpiry can be passed instead of a date to mean the next monthly expiration
const MonthlyExpiry = "monthly"

const daysPerYear = 365.0

// NextMonthlyExpiration returns the next standard monthly expiration (third Friday).
// Once the week leading into this month's third Friday has started, next month's is used.
func NextMonthlyExpiration(now time.Time) time.Time {
	thirdFriday := thirdFridayOf(now.Year(), now.Month(), now.Location())

	weekStart := thirdFriday.AddDate(0, 0, -7)
	if !now.Before(weekStart) {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		return thirdFridayOf(next.Year(), next.Month(), now.Location())
	}

	return thirdFriday
}

// YearsToExpiration converts a YYYY-MM-DD expiration (or MonthlyExpiry) into an
// ACT/365 year fraction measured from now. Past dates give a negative value, which
// prices as expired.
func YearsToExpiration(expiry string, now time.Time) (float64, error) {
	if expiry == MonthlyExpiry {
		return NextMonthlyExpiration(now).Sub(now).Hours() / 24 / daysPerYear, nil
	}
	expirationTime, err := time.ParseInLocation(DateLayout, expiry, now.Location())
	if err != nil {
		return 0, fmt.Errorf("invalid expiration date format: %w", err)
	}
	return expirationTime.Sub(now).Hours() / 24 / daysPerYear, nil
}

func thirdFridayOf(year int, month time.Month, loc *time.Location) time.Time {
	firstFriday := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for firstFriday.Weekday() != time.Friday {
		firstFriday = firstFriday.AddDate(0, 0, 1)
	}
	return firstFriday.AddDate(0, 0, 14)
}
