package models

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/common"
)

// Schedule is the full routine of one department for one semester.
// Version is unix milliseconds of the last remote write; 0 means never synced.
type Schedule struct {
	ID            string    `json:"id"`
	Semester      string    `json:"semester"`
	Department    string    `json:"department"`
	EffectiveFrom string    `json:"effective_from"`
	Entries       []Entry   `json:"schedule"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsEmpty reports whether the schedule has no classes at all.
func (s *Schedule) IsEmpty() bool {
	return s == nil || len(s.Entries) == 0
}

// ForUser returns the entries u attends, in stored order.
func (s *Schedule) ForUser(u User) []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, 0)
	for _, e := range s.Entries {
		if e.MatchesUser(u) {
			out = append(out, e)
		}
	}
	return out
}

// ForDay returns u's classes on day sorted by start time. It fails with
// ErrMalformedSchedule when a matching entry has an unknown day or an
// unparsable start time.
func (s *Schedule) ForDay(day Day, u User) ([]Entry, error) {
	type timed struct {
		entry Entry
		start int
	}
	var matched []timed

	for _, e := range s.ForUser(u) {
		if e.Day.Order() == 0 {
			return nil, fmt.Errorf("%w: entry %s has unknown day %q", common.ErrMalformedSchedule, e.ID, e.Day)
		}
		if !strings.EqualFold(string(e.Day), string(day)) {
			continue
		}
		start, err := e.Start()
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		matched = append(matched, timed{entry: e, start: start})
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].start < matched[j].start })

	out := make([]Entry, len(matched))
	for i, m := range matched {
		out[i] = m.entry
	}
	return out, nil
}

// ActiveDays lists the working days on which u has at least one class,
// in week order.
func (s *Schedule) ActiveDays(u User) []Day {
	seen := make(map[Day]bool)
	for _, e := range s.ForUser(u) {
		if e.Day.Order() == 0 || e.Day.IsOffDay() {
			continue
		}
		seen[Week[e.Day.Order()-1]] = true
	}

	days := make([]Day, 0, len(seen))
	for _, d := range Week {
		if seen[d] {
			days = append(days, d)
		}
	}
	return days
}

// TimeSlots returns the distinct slots used anywhere in the schedule,
// ordered by start time. Entries with unparsable times sort last.
func (s *Schedule) TimeSlots() []string {
	if s == nil {
		return nil
	}
	type slot struct {
		label string
		start int
	}
	seen := make(map[string]bool)
	var slots []slot
	for _, e := range s.Entries {
		label := e.Slot()
		if seen[label] {
			continue
		}
		seen[label] = true
		start, err := e.Start()
		if err != nil {
			start = 24 * 60
		}
		slots = append(slots, slot{label: label, start: start})
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].start < slots[j].start })

	out := make([]string, len(slots))
	for i, sl := range slots {
		out[i] = sl.label
	}
	return out
}

var (
	courseCodeRe = regexp.MustCompile(`^[A-Za-z]{2,4}\s?\d{3}[A-Za-z]?$`)
	roomRe       = regexp.MustCompile(`^[A-Za-z0-9\-\s/]{1,20}$`)
)

// Validate checks a schedule before it is published. Structural problems
// (no department, unknown day, unparsable time) are returned as an error;
// cosmetic ones (odd course code or room) come back as warnings.
func Validate(s *Schedule) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: schedule is nil", common.ErrValidation)
	}

	var problems, warnings []string
	if strings.TrimSpace(s.Department) == "" {
		problems = append(problems, "department is empty")
	}

	for i, e := range s.Entries {
		if e.Day.Order() == 0 {
			problems = append(problems, fmt.Sprintf("entry %d: unknown day %q", i, e.Day))
		}
		if _, err := parseClock(e.StartTime); err != nil {
			problems = append(problems, fmt.Sprintf("entry %d: bad start time %q", i, e.StartTime))
		}
		if _, err := parseClock(e.EndTime); err != nil {
			problems = append(problems, fmt.Sprintf("entry %d: bad end time %q", i, e.EndTime))
		}
		if !strings.EqualFold(e.Department, s.Department) {
			problems = append(problems, fmt.Sprintf("entry %d: department %q differs from %q", i, e.Department, s.Department))
		}
		if !courseCodeRe.MatchString(strings.TrimSpace(e.CourseCode)) {
			warnings = append(warnings, fmt.Sprintf("entry %d: unusual course code %q", i, e.CourseCode))
		}
		if !roomRe.MatchString(strings.TrimSpace(e.Room)) {
			warnings = append(warnings, fmt.Sprintf("entry %d: unusual room %q", i, e.Room))
		}
	}

	if len(problems) > 0 {
		return warnings, fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(problems, "; "))
	}
	return warnings, nil
}
