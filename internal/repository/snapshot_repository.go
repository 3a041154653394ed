package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/helper-roster/internal/models"
)

type rosterRunRow struct {
	ID            string         `db:"id"`
	SchemaVersion string         `db:"schema_version"`
	LoadedAt      time.Time      `db:"loaded_at"`
	StudentCount  int            `db:"student_count"`
	TeacherCount  int            `db:"teacher_count"`
	Stats         types.JSONText `db:"stats"`
}

type rosterStudentRow struct {
	RunID             string         `db:"run_id"`
	Position          int            `db:"position"`
	StudentID         string         `db:"student_id"`
	FirstName         string         `db:"first_name"`
	LastName          string         `db:"last_name"`
	Major             string         `db:"major"`
	Year              string         `db:"year"`
	Phone             string         `db:"phone"`
	IsDriver          bool           `db:"is_driver"`
	NumSeats          int            `db:"num_seats"`
	IsReturner        bool           `db:"is_returner"`
	SchoolPreference  string         `db:"school_preference"`
	TeacherPreference string         `db:"teacher_preference"`
	Availability      types.JSONText `db:"availability"`
}

type rosterTeacherRow struct {
	RunID             string         `db:"run_id"`
	Position          int            `db:"position"`
	TeacherID         string         `db:"teacher_id"`
	Email             string         `db:"email"`
	FirstName         string         `db:"first_name"`
	LastName          string         `db:"last_name"`
	SchoolID          string         `db:"school_id"`
	RoomNumber        string         `db:"room_number"`
	GradeLevel        string         `db:"grade_level"`
	Subjects          string         `db:"subjects"`
	MaxHelpersAtOnce  int            `db:"max_helpers_at_once"`
	MaxHelpersPerWeek int            `db:"max_helpers_per_week"`
	SpecialMessage    string         `db:"special_message"`
	Availability      types.JSONText `db:"availability"`
}

const (
	insertRunQuery = `INSERT INTO roster_runs (id, schema_version, loaded_at, student_count, teacher_count, stats)
		VALUES (:id, :schema_version, :loaded_at, :student_count, :teacher_count, :stats)`
	insertStudentQuery = `INSERT INTO roster_students (run_id, position, student_id, first_name, last_name, major, year, phone, is_driver, num_seats, is_returner, school_preference, teacher_preference, availability)
		VALUES (:run_id, :position, :student_id, :first_name, :last_name, :major, :year, :phone, :is_driver, :num_seats, :is_returner, :school_preference, :teacher_preference, :availability)`
	insertTeacherQuery = `INSERT INTO roster_teachers (run_id, position, teacher_id, email, first_name, last_name, school_id, room_number, grade_level, subjects, max_helpers_at_once, max_helpers_per_week, special_message, availability)
		VALUES (:run_id, :position, :teacher_id, :email, :first_name, :last_name, :school_id, :room_number, :grade_level, :subjects, :max_helpers_at_once, :max_helpers_per_week, :special_message, :availability)`

	latestRunQuery   = `SELECT id, schema_version, loaded_at, student_count, teacher_count, stats FROM roster_runs ORDER BY loaded_at DESC LIMIT 1`
	runStudentsQuery = `SELECT run_id, position, student_id, first_name, last_name, major, year, phone, is_driver, num_seats, is_returner, school_preference, teacher_preference, availability FROM roster_students WHERE run_id = $1 ORDER BY position`
	runTeachersQuery = `SELECT run_id, position, teacher_id, email, first_name, last_name, school_id, room_number, grade_level, subjects, max_helpers_at_once, max_helpers_per_week, special_message, availability FROM roster_teachers WHERE run_id = $1 ORDER BY position`
)

var snapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS roster_runs (
		id TEXT PRIMARY KEY,
		schema_version TEXT NOT NULL,
		loaded_at TIMESTAMPTZ NOT NULL,
		student_count INTEGER NOT NULL,
		teacher_count INTEGER NOT NULL,
		stats JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS roster_students (
		run_id TEXT NOT NULL REFERENCES roster_runs (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		student_id TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		major TEXT NOT NULL DEFAULT '',
		year TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		is_driver BOOLEAN NOT NULL DEFAULT FALSE,
		num_seats INTEGER NOT NULL DEFAULT 0,
		is_returner BOOLEAN NOT NULL DEFAULT FALSE,
		school_preference TEXT NOT NULL DEFAULT '',
		teacher_preference TEXT NOT NULL DEFAULT '',
		availability JSONB NOT NULL DEFAULT '[]',
		PRIMARY KEY (run_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS roster_teachers (
		run_id TEXT NOT NULL REFERENCES roster_runs (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		teacher_id TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		school_id TEXT NOT NULL DEFAULT '',
		room_number TEXT NOT NULL DEFAULT '',
		grade_level TEXT NOT NULL DEFAULT '',
		subjects TEXT NOT NULL DEFAULT '',
		max_helpers_at_once INTEGER NOT NULL DEFAULT 0,
		max_helpers_per_week INTEGER NOT NULL DEFAULT 0,
		special_message TEXT NOT NULL DEFAULT '',
		availability JSONB NOT NULL DEFAULT '[]',
		PRIMARY KEY (run_id, teacher_id)
	)`,
}

// SnapshotRepository stores every loaded roster as an immutable run.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// EnsureSchema creates the snapshot tables when they are missing.
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range snapshotSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create snapshot schema: %w", err)
		}
	}
	return nil
}

// Save writes the run and all of its records in one transaction.
func (r *SnapshotRepository) Save(ctx context.Context, roster *models.Roster) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stats, err := json.Marshal(roster.Stats)
	if err != nil {
		return fmt.Errorf("encode load stats: %w", err)
	}
	run := rosterRunRow{
		ID:            roster.RunID,
		SchemaVersion: string(roster.SchemaVersion),
		LoadedAt:      roster.LoadedAt,
		StudentCount:  len(roster.Students),
		TeacherCount:  len(roster.Teachers),
		Stats:         types.JSONText(stats),
	}
	if _, err = tx.NamedExecContext(ctx, insertRunQuery, run); err != nil {
		return fmt.Errorf("insert roster run: %w", err)
	}

	for i, s := range roster.Students {
		row := rosterStudentRow{
			RunID:             roster.RunID,
			Position:          i,
			StudentID:         s.StudentID,
			FirstName:         s.FirstName,
			LastName:          s.LastName,
			Major:             s.Major,
			Year:              s.Year,
			Phone:             s.Phone,
			IsDriver:          s.IsDriver,
			NumSeats:          s.NumSeats,
			IsReturner:        s.IsReturner,
			SchoolPreference:  s.SchoolPreference,
			TeacherPreference: s.TeacherPreference,
		}
		if row.Availability, err = encodeSlots(s.Availability); err != nil {
			return err
		}
		if _, err = tx.NamedExecContext(ctx, insertStudentQuery, row); err != nil {
			return fmt.Errorf("insert roster student %s: %w", s.StudentID, err)
		}
	}

	for i, t := range roster.Teachers {
		row := rosterTeacherRow{
			RunID:             roster.RunID,
			Position:          i,
			TeacherID:         t.TeacherID,
			Email:             t.Email,
			FirstName:         t.FirstName,
			LastName:          t.LastName,
			SchoolID:          t.SchoolID,
			RoomNumber:        t.RoomNumber,
			GradeLevel:        t.GradeLevel,
			Subjects:          t.Subjects,
			MaxHelpersAtOnce:  t.MaxNumHelpersAtOnce,
			MaxHelpersPerWeek: t.MaxNumHelpersPerWeek,
			SpecialMessage:    t.SpecialMessage,
		}
		if row.Availability, err = encodeSlots(t.Availability); err != nil {
			return err
		}
		if _, err = tx.NamedExecContext(ctx, insertTeacherQuery, row); err != nil {
			return fmt.Errorf("insert roster teacher %s: %w", t.TeacherID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Latest rebuilds the most recent stored run with records in their saved
// order. It returns sql.ErrNoRows when nothing has been stored yet.
func (r *SnapshotRepository) Latest(ctx context.Context) (*models.Roster, error) {
	var run rosterRunRow
	if err := r.db.GetContext(ctx, &run, latestRunQuery); err != nil {
		return nil, err
	}

	var studentRows []rosterStudentRow
	if err := r.db.SelectContext(ctx, &studentRows, runStudentsQuery, run.ID); err != nil {
		return nil, fmt.Errorf("select roster students: %w", err)
	}
	var teacherRows []rosterTeacherRow
	if err := r.db.SelectContext(ctx, &teacherRows, runTeachersQuery, run.ID); err != nil {
		return nil, fmt.Errorf("select roster teachers: %w", err)
	}

	roster := &models.Roster{
		RunID:         run.ID,
		SchemaVersion: models.SchemaVersion(run.SchemaVersion),
		LoadedAt:      run.LoadedAt,
		Students:      make([]models.Student, 0, len(studentRows)),
		Teachers:      make([]models.Teacher, 0, len(teacherRows)),
	}
	if len(run.Stats) > 0 {
		if err := json.Unmarshal(run.Stats, &roster.Stats); err != nil {
			return nil, fmt.Errorf("decode load stats: %w", err)
		}
	}
	for _, row := range studentRows {
		slots, err := decodeSlots(row.Availability)
		if err != nil {
			return nil, err
		}
		roster.Students = append(roster.Students, models.Student{
			StudentID:         row.StudentID,
			FirstName:         row.FirstName,
			LastName:          row.LastName,
			Major:             row.Major,
			Year:              row.Year,
			Phone:             row.Phone,
			IsDriver:          row.IsDriver,
			NumSeats:          row.NumSeats,
			IsReturner:        row.IsReturner,
			SchoolPreference:  row.SchoolPreference,
			TeacherPreference: row.TeacherPreference,
			Availability:      slots,
		})
	}
	for _, row := range teacherRows {
		slots, err := decodeSlots(row.Availability)
		if err != nil {
			return nil, err
		}
		roster.Teachers = append(roster.Teachers, models.Teacher{
			TeacherID:            row.TeacherID,
			Email:                row.Email,
			FirstName:            row.FirstName,
			LastName:             row.LastName,
			SchoolID:             row.SchoolID,
			RoomNumber:           row.RoomNumber,
			GradeLevel:           row.GradeLevel,
			Subjects:             row.Subjects,
			MaxNumHelpersAtOnce:  row.MaxHelpersAtOnce,
			MaxNumHelpersPerWeek: row.MaxHelpersPerWeek,
			SpecialMessage:       row.SpecialMessage,
			Availability:         slots,
		})
	}
	return roster, nil
}

func encodeSlots(slots models.SlotSet) (types.JSONText, error) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}
	return types.JSONText(raw), nil
}

func decodeSlots(raw types.JSONText) (models.SlotSet, error) {
	slots := make(models.SlotSet)
	if len(raw) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	return slots, nil
}
