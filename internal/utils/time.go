package utils

import (
	"fmt"
	"time"
	_ "time/tzdata" // zoneinfo for hosts without a system database

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/models"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// "Local" and the empty string map to the system timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// LocationFromSettings returns the configured location, falling back to
// time.Local when the stored name no longer resolves.
func LocationFromSettings(settings models.Settings) *time.Location {
	loc, err := LoadLocation(settings.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
