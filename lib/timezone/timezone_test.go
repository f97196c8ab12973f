package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	loc, err := Load("")
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)

	loc, err = Load("UTC")
	require.NoError(t, err)
	require.Equal(t, "UTC", loc.String())

	_, err = Load("Not/AZone")
	require.Error(t, err)
}

func TestFromEpoch(t *testing.T) {
	cases := []struct {
		seconds float64
		expect  time.Time
	}{
		{seconds: 0, expect: time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{seconds: 1662249831.5, expect: time.Date(2022, time.September, 4, 0, 3, 51, 500_000_000, time.UTC)},
		{seconds: 1662163200, expect: time.Date(2022, time.September, 3, 0, 0, 0, 0, time.UTC)},
	}

	for _, test := range cases {
		require.True(t, test.expect.Equal(FromEpoch(test.seconds)), test.seconds)
	}
}

func TestWeekdayIndex(t *testing.T) {
	cases := []struct {
		day    time.Weekday
		expect int
	}{
		{day: time.Monday, expect: 0},
		{day: time.Wednesday, expect: 2},
		{day: time.Saturday, expect: 5},
		{day: time.Sunday, expect: 6},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, WeekdayIndex(test.day))
	}
}
