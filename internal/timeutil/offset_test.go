package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in       string
		want     Offset
		wantErr  bool
		duration time.Duration
	}{
		{in: "+02:00", want: Offset{Hours: 2}, duration: 2 * time.Hour},
		{in: "-05:30", want: Offset{Negative: true, Hours: 5, Minutes: 30}, duration: -(5*time.Hour + 30*time.Minute)},
		{in: "+00:00", want: Offset{}, duration: 0},
		{in: "GMT+05:45", want: Offset{Hours: 5, Minutes: 45}, duration: 5*time.Hour + 45*time.Minute},
		{in: "02:00", wantErr: true},
		{in: "+2:00", wantErr: true},
		{in: "+02-00", wantErr: true},
		{in: "+15:00", wantErr: true},
		{in: "+02:75", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseOffset(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.duration, got.Duration())
		})
	}
}

func TestOffsetApplyInvertRoundTrip(t *testing.T) {
	off, err := ParseOffset("-03:30")
	require.NoError(t, err)

	utc := time.Date(2026, 3, 10, 1, 15, 0, 0, time.UTC)
	local := off.Apply(utc)

	assert.Equal(t, time.Date(2026, 3, 9, 21, 45, 0, 0, time.UTC), local)
	assert.Equal(t, utc, off.Invert(local))
}

func TestOffsetString(t *testing.T) {
	assert.Equal(t, "+05:45", Offset{Hours: 5, Minutes: 45}.String())
	assert.Equal(t, "-08:00", Offset{Negative: true, Hours: 8}.String())
}

func TestWeekdayKey(t *testing.T) {
	// 2026-03-10 is a Tuesday.
	assert.Equal(t, "tuesday", WeekdayKey(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "sunday", WeekdayKey(time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)))
}

func TestAtClock(t *testing.T) {
	date := time.Date(2026, 3, 10, 14, 55, 12, 0, time.UTC)

	got, err := AtClock(date, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC), got)

	_, err = AtClock(date, "9h30")
	require.Error(t, err)
}

func TestSameDate(t *testing.T) {
	a := time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	c := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(b, c))
}
