// Package calendar provides the pure date arithmetic used by the
// recurrence engine: UTC-midnight normalization, calendar-correct
// month/year stepping with day clamping, and fixed-offset local time
// conversion. All functions operate on and return UTC times.
package calendar

import "time"

// UTCMidnight truncates t to midnight of its UTC calendar day.
func UTCMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddDays adds n calendar days to t's UTC midnight.
func AddDays(t time.Time, n int) time.Time {
	return UTCMidnight(t).AddDate(0, 0, n)
}

// AddWeeks adds n weeks to t's UTC midnight.
func AddWeeks(t time.Time, n int) time.Time {
	return AddDays(t, 7*n)
}

// AddMonthsClamped advances t by n calendar months, landing on anchorDay
// clamped to the target month's length (Jan 31 + 1 month = last day of
// February). An anchorDay of 0 means "t's own day of month".
func AddMonthsClamped(t time.Time, n int, anchorDay int) time.Time {
	x := UTCMidnight(t)
	if anchorDay == 0 {
		anchorDay = x.Day()
	}
	// first of the target month, letting time.Date normalize the overflow
	first := time.Date(x.Year(), x.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := anchorDay
	if dim := DaysInMonth(first.Year(), first.Month()); day > dim {
		day = dim
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddYearsClamped advances t by n years keeping the same month and day,
// clamping to the target month's length (Feb 29 becomes Feb 28 in
// non-leap years).
func AddYearsClamped(t time.Time, n int) time.Time {
	x := UTCMidnight(t)
	y := x.Year() + n
	day := x.Day()
	if dim := DaysInMonth(y, x.Month()); day > dim {
		day = dim
	}
	return time.Date(y, x.Month(), day, 0, 0, 0, 0, time.UTC)
}

// ToLocal shifts a UTC instant into the naive local frame of a fixed
// offset: the returned time carries local wall-clock values but is still
// tagged UTC, which keeps the day arithmetic above applicable.
func ToLocal(utc time.Time, offsetMinutes int) time.Time {
	return utc.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
}

// ToUTC converts a naive local-frame time (as produced by ToLocal or the
// midnight helpers) back into the real UTC instant.
func ToUTC(local time.Time, offsetMinutes int) time.Time {
	return local.Add(-time.Duration(offsetMinutes) * time.Minute)
}

// LocalMidnight returns the naive local-frame midnight of the local day
// containing the given UTC instant.
func LocalMidnight(utc time.Time, offsetMinutes int) time.Time {
	return UTCMidnight(ToLocal(utc, offsetMinutes))
}
