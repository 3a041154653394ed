package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/helper-roster/internal/models"
)

func newSnapshotMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sampleRoster() *models.Roster {
	return &models.Roster{
		RunID:         "run-1",
		SchemaVersion: models.SchemaCurrent,
		LoadedAt:      time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Students: []models.Student{
			{StudentID: "ab123", FirstName: "Ada", NumSeats: 3, IsDriver: true, Availability: models.NewSlotSet(1, 0)},
		},
		Teachers: []models.Teacher{
			{TeacherID: "t@x.org", Email: "t@x.org", MaxNumHelpersAtOnce: 2, MaxNumHelpersPerWeek: 4, Availability: models.NewSlotSet(26, 27)},
		},
		Stats: models.LoadStats{
			StudentRows:       2,
			TeacherRows:       1,
			AcceptedIntervals: 3,
			RejectedIntervals: 2,
			DuplicateStudents: []string{"ab123"},
		},
	}
}

func TestSnapshotRepositorySave(t *testing.T) {
	db, mock, cleanup := newSnapshotMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO roster_runs").
		WithArgs("run-1", "current", sqlmock.AnyArg(), 1, 1, statsJSON{`"duplicate_students":["ab123"]`}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO roster_students").
		WithArgs("run-1", 0, "ab123", "Ada", "", "", "", "", true, 3, false, "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO roster_teachers").
		WithArgs("run-1", 0, "t@x.org", "t@x.org", "", "", "", "", "", "", 2, 4, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), sampleRoster()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// statsJSON matches a stats column argument containing fragment.
type statsJSON struct {
	fragment string
}

func (m statsJSON) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	return strings.Contains(string(raw), m.fragment) && strings.Contains(string(raw), `"student_rows":2`)
}

func TestSnapshotRepositorySaveRollsBack(t *testing.T) {
	db, mock, cleanup := newSnapshotMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO roster_runs").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), sampleRoster())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert roster run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryLatest(t *testing.T) {
	db, mock, cleanup := newSnapshotMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	loadedAt := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(latestRunQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "schema_version", "loaded_at", "student_count", "teacher_count", "stats"}).
			AddRow("run-1", "legacy", loadedAt, 2, 1, []byte(`{"student_rows":3,"teacher_rows":1,"accepted_intervals":9,"rejected_intervals":1,"duplicate_students":["jd4"]}`)))
	mock.ExpectQuery(regexp.QuoteMeta(runStudentsQuery)).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "position", "student_id", "first_name", "last_name", "major", "year", "phone", "is_driver", "num_seats", "is_returner", "school_preference", "teacher_preference", "availability"}).
			AddRow("run-1", 0, "zz9", "", "", "", "", "", false, 0, false, "", "", []byte(`[]`)).
			AddRow("run-1", 1, "jd4", "", "", "", "", "", false, 0, true, "Elm", "Mr. Smith", []byte(`[18,19]`)))
	mock.ExpectQuery(regexp.QuoteMeta(runTeachersQuery)).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "position", "teacher_id", "email", "first_name", "last_name", "school_id", "room_number", "grade_level", "subjects", "max_helpers_at_once", "max_helpers_per_week", "special_message", "availability"}).
			AddRow("run-1", 0, "WalkervilleFrizzle", "", "", "Frizzle", "Walkerville", "", "", "", 1, 1, "", []byte(`[126,127]`)))

	roster, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SchemaLegacy, roster.SchemaVersion)
	assert.True(t, loadedAt.Equal(roster.LoadedAt))
	require.Len(t, roster.Students, 2)
	assert.Equal(t, "zz9", roster.Students[0].StudentID)
	assert.Equal(t, models.NewSlotSet(18, 19), roster.Students[1].Availability)
	assert.Equal(t, "Mr. Smith", roster.Students[1].TeacherPreference)
	assert.Equal(t, models.LoadStats{
		StudentRows:       3,
		TeacherRows:       1,
		AcceptedIntervals: 9,
		RejectedIntervals: 1,
		DuplicateStudents: []string{"jd4"},
	}, roster.Stats)
	require.Len(t, roster.Teachers, 1)
	assert.Equal(t, models.NewSlotSet(126, 127), roster.Teachers[0].Availability)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryLatestEmpty(t *testing.T) {
	db, mock, cleanup := newSnapshotMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(latestRunQuery)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSnapshotRepositoryEnsureSchema(t *testing.T) {
	db, mock, closeFn := newSnapshotMock(t)
	defer closeFn()
	repo := NewSnapshotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS roster_runs")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS roster_students")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS roster_teachers")).WillReturnError(errors.New("permission denied"))

	err := repo.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}
