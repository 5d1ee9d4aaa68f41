package enums

import (
	"fmt"
	"strings"
)

// DayOfWeek is one of the seven weekday identifiers used by opening hours.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var validDaysOfWeek = []DayOfWeek{
	Monday,
	Tuesday,
	Wednesday,
	Thursday,
	Friday,
	Saturday,
	Sunday,
}

// DaysOfWeek returns the week in Monday-first order.
func DaysOfWeek() []DayOfWeek {
	out := make([]DayOfWeek, len(validDaysOfWeek))
	copy(out, validDaysOfWeek)
	return out
}

func (d DayOfWeek) String() string {
	return string(d)
}

func (d DayOfWeek) IsValid() bool {
	for _, candidate := range validDaysOfWeek {
		if candidate == d {
			return true
		}
	}
	return false
}

// Index returns the Monday-based position of the day, or -1 when unknown.
func (d DayOfWeek) Index() int {
	for i, candidate := range validDaysOfWeek {
		if candidate == d {
			return i
		}
	}
	return -1
}

// ParseDayOfWeek accepts the canonical identifiers in any case.
func ParseDayOfWeek(value string) (DayOfWeek, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validDaysOfWeek {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid day of week %q", value)
}
