package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/client/cache"
	"github.com/dmitrijs2005/campusroutine/internal/client/services"
	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/models"
)

func table(write func(w *tabwriter.Writer)) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	write(w)
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderEntries(w *tabwriter.Writer, items []models.Entry) {
	for _, e := range items {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", e.Slot(), e.CourseCode, e.CourseTitle, e.Room, e.TeacherInitial)
	}
}

func renderDay(day models.Day, items []models.Entry) string {
	if len(items) == 0 {
		return fmt.Sprintf("%s: no classes.", day)
	}
	return table(func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "%s\n", day)
		renderEntries(w, items)
	})
}

func renderWeek(items []models.Entry) string {
	if len(items) == 0 {
		return "No classes this week."
	}
	return table(func(w *tabwriter.Writer) {
		var current models.Day
		for _, e := range items {
			if e.Day != current {
				current = e.Day
				fmt.Fprintf(w, "%s\n", current)
			}
			renderEntries(w, []models.Entry{e})
		}
	})
}

func renderDays(days []models.Day) string {
	if len(days) == 0 {
		return "No class days."
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.Short()
	}
	return "Class days: " + strings.Join(names, ", ")
}

func renderSlots(slots []string) string {
	if len(slots) == 0 {
		return "No time slots."
	}
	return "Time slots:\n  " + strings.Join(slots, "\n  ")
}

func renderStatus(mode Mode, st services.SyncStatus, cs cache.Stats, now time.Time) string {
	return table(func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "mode\t%s\n", mode)
		fmt.Fprintf(w, "department\t%s\n", st.Department)
		fmt.Fprintf(w, "sync state\t%s\n", st.State)
		if st.HasLocal {
			fmt.Fprintf(w, "local version\t%d\n", st.LocalVersion)
		} else {
			fmt.Fprintf(w, "local version\tnone\n")
		}
		fmt.Fprintf(w, "known remote version\t%d\n", st.LastKnownVersion)
		if st.LastSync.IsZero() {
			fmt.Fprintf(w, "last sync\tnever\n")
		} else {
			fmt.Fprintf(w, "last sync\t%s ago\n", now.Sub(st.LastSync).Truncate(time.Second))
		}
		if st.LastError != "" {
			fmt.Fprintf(w, "last error\t%s\n", st.LastError)
		}
		fmt.Fprintf(w, "cached days\t%d\n", cs.DayEntries)
		fmt.Fprintf(w, "cached schedule\t%t\n", cs.HasFullSchedule)
	})
}

func renderMaintenance(info models.MaintenanceInfo) string {
	switch {
	case info.MaintenanceMode && info.Message != "":
		return "Maintenance: " + info.Message
	case info.MaintenanceMode:
		return "The routine service is under maintenance."
	case info.SemesterBreak:
		return "Semester break: no classes are scheduled."
	default:
		return "No maintenance notice."
	}
}

func renderUser(u models.User) string {
	return table(func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "id\t%s\n", u.ID)
		if u.Name != "" {
			fmt.Fprintf(w, "name\t%s\n", u.Name)
		}
		fmt.Fprintf(w, "department\t%s\n", u.Department)
		fmt.Fprintf(w, "role\t%s\n", u.Role)
		if u.Role == models.RoleTeacher {
			fmt.Fprintf(w, "initial\t%s\n", u.Initial)
			return
		}
		fmt.Fprintf(w, "batch\t%s\n", u.Batch)
		fmt.Fprintf(w, "section\t%s\n", u.Section)
		if u.LabSection != "" {
			fmt.Fprintf(w, "lab section\t%s\n", u.LabSection)
		}
	})
}

func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return "No routine is published for your department yet."
	case errors.Is(err, common.ErrUnavailable):
		return "The routine service is unreachable and nothing is stored locally yet."
	case errors.Is(err, common.ErrUnauthorized):
		return "The routine service rejected the request."
	case errors.Is(err, common.ErrLocalStorage):
		return "Local storage error: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
