package timezone

import (
	"fmt"
	"math"
	"time"
)

// Load resolves an IANA zone name, "" and "Local" are the system zone.
func Load(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// FromEpoch converts fractional unix seconds, the api sends timestamps
// like 1662249831.5.
func FromEpoch(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*1e9))
}

// WeekdayIndex numbers the days of the week from Monday = 0 to Sunday = 6.
func WeekdayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}
