package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/campusroutine/internal/common"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// ParseRole accepts either case ("STUDENT", "teacher").
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTeacher:
		return RoleTeacher, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", common.ErrValidation, s)
}

// User is the principal a routine is filtered for. ID scopes in-memory
// caches, Department selects the local snapshot.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       Role   `json:"role"`
	Batch      string `json:"batch,omitempty"`
	Section    string `json:"section,omitempty"`
	LabSection string `json:"lab_section,omitempty"`
	Initial    string `json:"initial,omitempty"`
}

// Validate checks that the profile carries what filtering needs for its role.
func (u User) Validate() error {
	var problems []string

	if strings.TrimSpace(u.ID) == "" {
		problems = append(problems, "id is empty")
	}
	if strings.TrimSpace(u.Department) == "" {
		problems = append(problems, "department is empty")
	}

	switch u.Role {
	case RoleStudent:
		if !isDigits(strings.TrimSpace(u.Batch)) {
			problems = append(problems, "batch must be a number")
		}
		sec := strings.TrimSpace(u.Section)
		if len(sec) != 1 || !isLetter(sec[0]) {
			problems = append(problems, "section must be a single letter")
		}
		if lab := strings.TrimSpace(u.LabSection); lab != "" {
			if len(lab) > 10 || !isLetter(lab[0]) || (len(lab) > 1 && !isDigits(lab[1:])) {
				problems = append(problems, "lab section must be a letter followed by digits")
			}
		}
	case RoleTeacher:
		ini := strings.TrimSpace(u.Initial)
		if len(ini) < 2 || len(ini) > 6 {
			problems = append(problems, "initial must be 2-6 letters")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown role %q", u.Role))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
