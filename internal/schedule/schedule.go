// Package schedule computes timezone-correct recurring call dates.
// Every function takes the reference instant and location explicitly so
// callers (and tests) control the clock; nothing here reads time.Now.
package schedule

import (
	"time"

	"github.com/kamtrack/lead-api/internal/domain"
)

// NextCallDate returns the next scheduled call instant for a lead.
//
// The reference instant is resolved into its calendar day in loc, advanced
// by the frequency's offset (MONTHLY is month-length-aware, not 30 days),
// and the result is local start of day normalized back to an absolute
// instant. Unrecognized frequencies fall back to WEEKLY rather than
// erroring; the API boundary validates the enum so anything unknown here
// is legacy data, and scheduling a call beats dropping one.
func NextCallDate(frequency domain.CallFrequency, ref time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := ref.In(loc).Date()

	switch frequency {
	case domain.CallFrequencyDaily:
		day++
	case domain.CallFrequencyBiweekly:
		day += 14
	case domain.CallFrequencyMonthly:
		return startOfMonthOffset(year, month, day, loc)
	case domain.CallFrequencyWeekly:
		day += 7
	default:
		day += 7
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// startOfMonthOffset advances one calendar month, clamping the day to the
// target month's length (Jan 31 -> Feb 28/29).
func startOfMonthOffset(year int, month time.Month, day int, loc *time.Location) time.Time {
	month++
	if month > time.December {
		month = time.January
		year++
	}
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month normalizes to this month's last day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// IsWorkingHours reports whether t falls on Monday-Friday, 09:00-18:00 local.
func IsWorkingHours(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	hour := local.Hour()
	return hour >= 9 && hour < 18
}

// NextWorkingDay returns the start of the first weekday on or after t's
// local day.
func NextWorkingDay(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
