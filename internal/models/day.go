package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/common"
)

// Day is a day of the university week.
type Day string

const (
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

// Week lists the days in university order. Saturday opens the week.
var Week = []Day{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

// ParseDay matches a day name case-insensitively; short forms ("sat") work too.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, d := range Week {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Short()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown day %q", common.ErrMalformedSchedule, s)
}

// Short returns the three letter form, e.g. "Sat".
func (d Day) Short() string {
	if len(d) < 3 {
		return string(d)
	}
	return string(d[:3])
}

// Order is the 1-based position in Week, 0 for unknown days.
func (d Day) Order() int {
	for i, w := range Week {
		if strings.EqualFold(string(d), string(w)) {
			return i + 1
		}
	}
	return 0
}

// IsOffDay reports whether no classes are held on d.
func (d Day) IsOffDay() bool {
	return strings.EqualFold(string(d), string(Friday))
}

// WorkingDays returns Week without off days.
func WorkingDays() []Day {
	days := make([]Day, 0, len(Week))
	for _, d := range Week {
		if !d.IsOffDay() {
			days = append(days, d)
		}
	}
	return days
}

// DayOf returns the university day t falls on in t's location.
func DayOf(t time.Time) Day {
	switch t.Weekday() {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	default:
		return Friday
	}
}
