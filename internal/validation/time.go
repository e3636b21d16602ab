package validation

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/julianstephens/dayreflect/internal/models"
)

var timeInputPattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// ParseTimeInput parses a strict two-digit HH:MM string into a reminder time.
func ParseTimeInput(input string) (models.ReminderTime, error) {
	m := timeInputPattern.FindStringSubmatch(input)
	if m == nil {
		return models.ReminderTime{}, fmt.Errorf("invalid time %q: expected HH:MM", input)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	t := models.ReminderTime{Hour: hour, Minute: minute}
	if !t.Valid() {
		return models.ReminderTime{}, fmt.Errorf("invalid time %q: hour must be 00-23 and minute 00-59", input)
	}
	return t, nil
}
