package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func student(section, lab string) User {
	return User{ID: "s1", Department: "CSE", Role: RoleStudent, Batch: "61", Section: section, LabSection: lab}
}

func TestEntry_Key_IgnoresNonIdentityFields(t *testing.T) {
	a := Entry{Day: Monday, StartTime: "08:30 AM", CourseCode: "CSE101", Room: "AB-301", TeacherInitial: "MHR"}
	b := Entry{Day: "monday", StartTime: "08:30 AM", CourseCode: "cse101", Room: "ab-301", TeacherInitial: "XYZ", Section: "B"}
	require.Equal(t, a.Key(), b.Key())

	c := a
	c.Room = "AB-302"
	require.NotEqual(t, a.Key(), c.Key())
}

func TestEntry_SlotAndDuration(t *testing.T) {
	e := Entry{StartTime: "08:30 AM", EndTime: "10:00 AM"}
	require.Equal(t, "08:30 AM - 10:00 AM", e.Slot())
	require.Equal(t, 90*time.Minute, e.Duration())

	start, err := e.Start()
	require.NoError(t, err)
	require.Equal(t, 8*60+30, start)

	bad := Entry{StartTime: "soon", EndTime: "10:00 AM"}
	require.Zero(t, bad.Duration())
	_, err = bad.Start()
	require.Error(t, err)
}

func TestEntry_MatchesUser_Student(t *testing.T) {
	base := Entry{Department: "cse", Batch: "61", Section: "J"}

	tests := []struct {
		name    string
		section string
		user    User
		want    bool
	}{
		{"exact section", "J", student("J", ""), true},
		{"lab section of own section without lab set", "J1", student("J", ""), true},
		{"lab section with own lab set", "J1", student("J", "J1"), true},
		{"other lab section with own lab set", "J2", student("J", "J1"), false},
		{"main section with lab set", "J", student("J", "J1"), true},
		{"other section", "K", student("J", ""), false},
		{"non digit suffix", "JX", student("J", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			e.Section = tt.section
			require.Equal(t, tt.want, e.MatchesUser(tt.user))
		})
	}
}

func TestEntry_MatchesUser_DepartmentAndBatch(t *testing.T) {
	e := Entry{Department: "CSE", Batch: "61", Section: "J"}

	u := student("J", "")
	u.Department = "EEE"
	require.False(t, e.MatchesUser(u))

	u = student("J", "")
	u.Batch = "62"
	require.False(t, e.MatchesUser(u))
}

func TestEntry_MatchesUser_Teacher(t *testing.T) {
	e := Entry{Department: "CSE", TeacherInitial: " mhr "}
	require.True(t, e.MatchesUser(User{Department: "CSE", Role: RoleTeacher, Initial: "MHR"}))
	require.False(t, e.MatchesUser(User{Department: "CSE", Role: RoleTeacher, Initial: "ABC"}))
	require.False(t, e.MatchesUser(User{Department: "CSE", Role: "guest", Initial: "MHR"}))
}

func TestUser_Validate(t *testing.T) {
	require.NoError(t, student("J", "J1").Validate())
	require.NoError(t, User{ID: "t1", Department: "CSE", Role: RoleTeacher, Initial: "MHR"}.Validate())

	err := User{ID: "s", Department: "CSE", Role: RoleStudent, Batch: "six", Section: "JJ"}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "batch")
	require.Contains(t, err.Error(), "section")

	require.Error(t, User{ID: "x", Department: "CSE", Role: "guest"}.Validate())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("STUDENT")
	require.NoError(t, err)
	require.Equal(t, RoleStudent, r)

	_, err = ParseRole("dean")
	require.Error(t, err)
}
