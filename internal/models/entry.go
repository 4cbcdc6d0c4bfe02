package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/common"
)

var clockLayouts = []string{"03:04 PM", "3:04 PM", "03:04PM", "15:04"}

// Entry is one timetabled class.
type Entry struct {
	ID             string `json:"id"`
	Day            Day    `json:"day"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Room           string `json:"room"`
	CourseCode     string `json:"course_code"`
	CourseTitle    string `json:"course_title,omitempty"`
	TeacherInitial string `json:"teacher_initial"`
	Batch          string `json:"batch"`
	Section        string `json:"section"`
	LabSection     string `json:"lab_section,omitempty"`
	Semester       string `json:"semester,omitempty"`
	Department     string `json:"department"`
	EffectiveFrom  string `json:"effective_from,omitempty"`
}

// Key identifies an entry for deduplication: day, start time, course and room.
func (e Entry) Key() string {
	return strings.Join([]string{
		strings.ToLower(string(e.Day)),
		strings.TrimSpace(e.StartTime),
		strings.ToUpper(strings.TrimSpace(e.CourseCode)),
		strings.ToUpper(strings.TrimSpace(e.Room)),
	}, "|")
}

// Slot renders the time range the way it is printed on the routine sheet.
func (e Entry) Slot() string {
	return e.StartTime + " - " + e.EndTime
}

// Start parses StartTime into minutes since midnight.
func (e Entry) Start() (int, error) {
	return parseClock(e.StartTime)
}

// Duration is the class length, or 0 when either bound is unparsable.
func (e Entry) Duration() time.Duration {
	start, err := parseClock(e.StartTime)
	if err != nil {
		return 0
	}
	end, err := parseClock(e.EndTime)
	if err != nil || end < start {
		return 0
	}
	return time.Duration(end-start) * time.Minute
}

// MatchesUser reports whether the entry belongs to u's routine.
//
// Students match on department, batch and section. A student with a lab
// section ("J1") sees the main section ("J") and their own lab section only.
// A student without one sees the section and all of its lab sections.
// Teachers match on department and initial.
func (e Entry) MatchesUser(u User) bool {
	if !strings.EqualFold(strings.TrimSpace(e.Department), strings.TrimSpace(u.Department)) {
		return false
	}

	switch u.Role {
	case RoleTeacher:
		return strings.EqualFold(strings.TrimSpace(e.TeacherInitial), strings.TrimSpace(u.Initial))
	case RoleStudent:
		if !strings.EqualFold(strings.TrimSpace(e.Batch), strings.TrimSpace(u.Batch)) {
			return false
		}
		return sectionMatches(e.Section, u.Section, u.LabSection)
	default:
		return false
	}
}

func sectionMatches(itemSection, userSection, userLab string) bool {
	item := strings.ToUpper(strings.TrimSpace(itemSection))
	sec := strings.ToUpper(strings.TrimSpace(userSection))
	lab := strings.ToUpper(strings.TrimSpace(userLab))

	switch {
	case item == sec:
		return true
	case lab != "":
		return item == lab
	case len(sec) == 1 && len(item) > 1 && strings.HasPrefix(item, sec):
		return isDigits(item[1:])
	default:
		return false
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func parseClock(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: bad time %q", common.ErrMalformedSchedule, s)
}
