package timeutil

import (
	"os"
	"sync"
	"time"
)

const defaultLocation = "America/Cancun"

var (
	once sync.Once
	loc  *time.Location
)

// Location returns the site's local timezone, read once from
// TZ_LOCATION. All attendance day boundaries and schedule clocks are
// interpreted in this location, never in server-local time.
func Location() *time.Location {
	once.Do(func() {
		name := os.Getenv("TZ_LOCATION")
		if name == "" {
			name = defaultLocation
		}
		l, err := time.LoadLocation(name)
		if err != nil {
			l = time.UTC
		}
		loc = l
	})
	return loc
}

func Now() time.Time {
	return time.Now().In(Location())
}

// DateString formats a time as the calendar date it falls on in the
// site timezone.
func DateString(t time.Time) string {
	return t.In(Location()).Format("2006-01-02")
}

// AtClock returns the given clock time ("15:04" or "15:04:05") on the
// same calendar date as ref, in the site timezone.
func AtClock(ref time.Time, clock string) (time.Time, error) {
	layout := "15:04"
	if len(clock) == 8 {
		layout = "15:04:05"
	}
	c, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, err
	}
	ref = ref.In(Location())
	return time.Date(ref.Year(), ref.Month(), ref.Day(), c.Hour(), c.Minute(), c.Second(), 0, Location()), nil
}
