package schedule_test

import (
	"testing"
	"time"

	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestNextCallDate_Offsets(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// 2024-03-01 15:00 local
	ref := time.Date(2024, 3, 1, 15, 0, 0, 0, loc)

	tests := []struct {
		name string
		freq domain.CallFrequency
		want time.Time
	}{
		{"daily", domain.CallFrequencyDaily, time.Date(2024, 3, 2, 0, 0, 0, 0, loc)},
		{"weekly", domain.CallFrequencyWeekly, time.Date(2024, 3, 8, 0, 0, 0, 0, loc)},
		{"biweekly", domain.CallFrequencyBiweekly, time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"monthly", domain.CallFrequencyMonthly, time.Date(2024, 4, 1, 0, 0, 0, 0, loc)},
		{"unknown falls back to weekly", domain.CallFrequency("QUARTERLY"), time.Date(2024, 3, 8, 0, 0, 0, 0, loc)},
		{"empty falls back to weekly", domain.CallFrequency(""), time.Date(2024, 3, 8, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.NextCallDate(tt.freq, ref, loc)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

// The result must always be strictly after the reference and aligned to a
// local midnight, for every frequency and timezone.
func TestNextCallDate_AlwaysFutureLocalMidnight(t *testing.T) {
	zones := []string{"UTC", "America/New_York", "Europe/Oslo", "Asia/Tokyo", "Australia/Sydney", "Pacific/Kiritimati"}
	freqs := []domain.CallFrequency{
		domain.CallFrequencyDaily,
		domain.CallFrequencyWeekly,
		domain.CallFrequencyBiweekly,
		domain.CallFrequencyMonthly,
		domain.CallFrequency("BOGUS"),
	}
	refs := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC),
	}

	for _, zone := range zones {
		loc := mustLoc(t, zone)
		for _, freq := range freqs {
			for _, ref := range refs {
				got := schedule.NextCallDate(freq, ref, loc)
				assert.True(t, got.After(ref),
					"%s/%s from %v: %v is not after reference", zone, freq, ref, got)

				local := got.In(loc)
				h, m, s := local.Clock()
				assert.Zero(t, h+m+s, "%s/%s from %v: %v is not local midnight", zone, freq, ref, local)
			}
		}
	}
}

func TestNextCallDate_MonthlyClampsToMonthLength(t *testing.T) {
	loc := mustLoc(t, "Europe/Oslo")

	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			"Jan 31 lands on Feb 29 in a leap year",
			time.Date(2024, 1, 31, 10, 0, 0, 0, loc),
			time.Date(2024, 2, 29, 0, 0, 0, 0, loc),
		},
		{
			"Jan 31 lands on Feb 28 otherwise",
			time.Date(2023, 1, 31, 10, 0, 0, 0, loc),
			time.Date(2023, 2, 28, 0, 0, 0, 0, loc),
		},
		{
			"May 31 lands on Jun 30",
			time.Date(2024, 5, 31, 8, 0, 0, 0, loc),
			time.Date(2024, 6, 30, 0, 0, 0, 0, loc),
		},
		{
			"Dec 15 rolls into January of next year",
			time.Date(2024, 12, 15, 8, 0, 0, 0, loc),
			time.Date(2025, 1, 15, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.NextCallDate(domain.CallFrequencyMonthly, tt.ref, loc)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestNextCallDate_UsesCallerTimezoneDay(t *testing.T) {
	tokyo := mustLoc(t, "Asia/Tokyo")
	// 23:30 UTC on March 1 is already March 2 in Tokyo, so the next daily
	// call lands on March 3 Tokyo time.
	ref := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	got := schedule.NextCallDate(domain.CallFrequencyDaily, ref, tokyo)
	want := time.Date(2024, 3, 3, 0, 0, 0, 0, tokyo)
	assert.True(t, got.Equal(want), "got %v, want %v", got, want)
}

func TestNextCallDate_NilLocationDefaultsToUTC(t *testing.T) {
	ref := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	got := schedule.NextCallDate(domain.CallFrequencyDaily, ref, nil)
	assert.True(t, got.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestStartOfDay(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	ref := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) // 15:00 in NY
	got := schedule.StartOfDay(ref, ny)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, ny)))
}

func TestIsWorkingHours(t *testing.T) {
	oslo := mustLoc(t, "Europe/Oslo")

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday morning", time.Date(2024, 3, 4, 9, 0, 0, 0, oslo), true},
		{"friday late afternoon", time.Date(2024, 3, 8, 17, 59, 0, 0, oslo), true},
		{"friday evening", time.Date(2024, 3, 8, 18, 0, 0, 0, oslo), false},
		{"before opening", time.Date(2024, 3, 4, 8, 59, 0, 0, oslo), false},
		{"saturday", time.Date(2024, 3, 9, 11, 0, 0, 0, oslo), false},
		{"sunday", time.Date(2024, 3, 10, 11, 0, 0, 0, oslo), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.IsWorkingHours(tt.at, oslo))
		})
	}
}

func TestNextWorkingDay(t *testing.T) {
	oslo := mustLoc(t, "Europe/Oslo")

	// Saturday skips to Monday
	sat := time.Date(2024, 3, 9, 14, 0, 0, 0, oslo)
	got := schedule.NextWorkingDay(sat, oslo)
	assert.True(t, got.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, oslo)))

	// A weekday stays on its own day
	wed := time.Date(2024, 3, 6, 14, 0, 0, 0, oslo)
	got = schedule.NextWorkingDay(wed, oslo)
	assert.True(t, got.Equal(time.Date(2024, 3, 6, 0, 0, 0, 0, oslo)))
}

func TestLoadLocation(t *testing.T) {
	assert.Equal(t, time.UTC, schedule.LoadLocation(""))
	assert.Equal(t, time.UTC, schedule.LoadLocation("Not/AZone"))
	assert.Equal(t, "America/New_York", schedule.LoadLocation("America/New_York").String())
}
