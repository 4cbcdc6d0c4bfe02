package schedules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/dbx"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/notify"
)

type SQLiteRepository struct {
	db *sql.DB

	mu        sync.Mutex
	observers map[string]*notify.Broadcaster[*models.Schedule]
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, observers: make(map[string]*notify.Broadcaster[*models.Schedule])}
}

func (r *SQLiteRepository) Get(ctx context.Context, department string) (*models.Schedule, error) {
	s := &models.Schedule{Department: department}
	var created, updated int64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, semester, effective_from, version, created_at, updated_at
		FROM schedules WHERE department = ?`, department).
		Scan(&s.ID, &s.Semester, &s.EffectiveFrom, &s.Version, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule[%s]: %w", department, err)
	}
	s.CreatedAt = time.UnixMilli(created).UTC()
	s.UpdatedAt = time.UnixMilli(updated).UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, day, start_time, end_time, room, course_code, course_title,
		       teacher_initial, batch, section, lab_section, semester, effective_from
		FROM routine_items WHERE department = ? ORDER BY position`, department)
	if err != nil {
		return nil, fmt.Errorf("failed to get routine items[%s]: %w", department, err)
	}
	defer rows.Close()

	s.Entries = make([]models.Entry, 0)
	for rows.Next() {
		e := models.Entry{Department: department}
		if err := rows.Scan(&e.ID, &e.Day, &e.StartTime, &e.EndTime, &e.Room, &e.CourseCode, &e.CourseTitle,
			&e.TeacherInitial, &e.Batch, &e.Section, &e.LabSection, &e.Semester, &e.EffectiveFrom); err != nil {
			return nil, fmt.Errorf("failed to scan routine item: %w", err)
		}
		s.Entries = append(s.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate routine items: %w", err)
	}

	return s, nil
}

// Save replaces the department's snapshot with s.
func (r *SQLiteRepository) Save(ctx context.Context, s *models.Schedule) error {
	if s == nil || s.Department == "" {
		return errors.New("schedule without department")
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := deleteDepartment(ctx, tx, s.Department); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schedules (department, id, semester, effective_from, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.Department, s.ID, s.Semester, s.EffectiveFrom, s.Version,
			s.CreatedAt.UnixMilli(), s.UpdatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}

		for i, e := range s.Entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO routine_items (department, position, entry_id, day, start_time, end_time, room,
					course_code, course_title, teacher_initial, batch, section, lab_section, semester, effective_from)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				s.Department, i, e.ID, string(e.Day), e.StartTime, e.EndTime, e.Room,
				e.CourseCode, e.CourseTitle, e.TeacherInitial, e.Batch, e.Section, e.LabSection,
				e.Semester, e.EffectiveFrom); err != nil {
				return fmt.Errorf("insert routine item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save schedule[%s]: %w", s.Department, err)
	}

	r.broadcaster(s.Department).Publish(s)
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, department string) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return deleteDepartment(ctx, tx, department)
	})
	if err != nil {
		return fmt.Errorf("failed to clear schedule[%s]: %w", department, err)
	}

	r.broadcaster(department).Publish(nil)
	return nil
}

func (r *SQLiteRepository) Observe(department string) (<-chan *models.Schedule, func()) {
	return r.broadcaster(department).Subscribe()
}

// TimeSlots lists the distinct slots of the stored snapshot ordered by start time.
func (r *SQLiteRepository) TimeSlots(ctx context.Context, department string) ([]string, error) {
	s, err := r.Get(ctx, department)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return []string{}, nil
	}
	slots := s.TimeSlots()
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

// Departments returns every department with a stored snapshot.
func (r *SQLiteRepository) Departments(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT department FROM schedules`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (r *SQLiteRepository) broadcaster(department string) *notify.Broadcaster[*models.Schedule] {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.observers[department]
	if !ok {
		b = notify.NewBroadcaster[*models.Schedule]()
		r.observers[department] = b
	}
	return b
}

func deleteDepartment(ctx context.Context, tx dbx.DBTX, department string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM routine_items WHERE department = ?`, department); err != nil {
		return fmt.Errorf("delete routine items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE department = ?`, department); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
