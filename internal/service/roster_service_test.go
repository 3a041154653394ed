package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/helper-roster/internal/collection"
	"github.com/noah-isme/helper-roster/internal/models"
	"github.com/noah-isme/helper-roster/internal/roster"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

type rowSourceStub struct {
	name string
	rows []models.Row
	err  error
}

func (s *rowSourceStub) Name() string { return s.name }

func (s *rowSourceStub) Rows(ctx context.Context) ([]models.Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type snapshotStoreStub struct {
	saved   []*models.Roster
	latest  *models.Roster
	saveErr error
}

func (s *snapshotStoreStub) Save(ctx context.Context, r *models.Roster) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, r)
	return nil
}

func (s *snapshotStoreStub) Latest(ctx context.Context) (*models.Roster, error) {
	if s.latest == nil {
		return nil, sql.ErrNoRows
	}
	return s.latest, nil
}

type rosterCacheStub struct {
	stored *models.Roster
	ttl    time.Duration
}

func (c *rosterCacheStub) GetRoster(ctx context.Context) (*models.Roster, error) {
	if c.stored == nil {
		return nil, appErrors.ErrCacheMiss
	}
	return c.stored, nil
}

func (c *rosterCacheStub) SetRoster(ctx context.Context, r *models.Roster, ttl time.Duration) error {
	c.stored = r
	c.ttl = ttl
	return nil
}

func studentRow(line int, id, monday string) models.Row {
	return models.Row{Line: line, Fields: []string{id, "First", "Last", "CS", "3", "555", "Yes", "2", "No", "Oak", monday, "", "", "", ""}}
}

func teacherRow(line int, email, atOnce, perWeek, monday string) models.Row {
	return models.Row{Line: line, Fields: []string{email, "Grace", "Hopper", "S1", "101", "4", "Math", atOnce, perWeek, "", monday, "", "", "", ""}}
}

type rosterFixture struct {
	students  *rowSourceStub
	teachers  *rowSourceStub
	snapshots *snapshotStoreStub
	cache     *rosterCacheStub
	metrics   *MetricsService
	policy    collection.Policy
}

func newRosterFixture() *rosterFixture {
	return &rosterFixture{
		students: &rowSourceStub{name: "STUDENTS.csv", rows: []models.Row{
			studentRow(1, "ab_1", "12:00am,12:30am,1:00am"),
			studentRow(2, "cd2", "9:00am,9:30am"),
			studentRow(3, "ab1", "1:00pm,1:30pm"),
		}},
		teachers: &rowSourceStub{name: "TEACHERS.csv", rows: []models.Row{
			teacherRow(1, "t@x.org", "10", "5", "1:00pm-2:00pm"),
			teacherRow(2, "u@x.org", "1", "2", "bogus"),
		}},
		snapshots: &snapshotStoreStub{},
		cache:     &rosterCacheStub{},
		metrics:   NewMetricsService(),
	}
}

func (f *rosterFixture) service(t *testing.T) *RosterService {
	t.Helper()
	schema, err := roster.New(models.SchemaCurrent, roster.Options{})
	require.NoError(t, err)
	return NewRosterService(RosterServiceConfig{
		Students:  f.students,
		Teachers:  f.teachers,
		Schema:    schema,
		Policy:    f.policy,
		Snapshots: f.snapshots,
		Cache:     f.cache,
		CacheTTL:  time.Hour,
		Metrics:   f.metrics,
		Logger:    zap.NewNop(),
	})
}

func TestRosterServiceLoad(t *testing.T) {
	f := newRosterFixture()
	svc := f.service(t)

	result, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, models.SchemaCurrent, result.SchemaVersion)
	require.Len(t, result.Students, 2)
	assert.Equal(t, "ab1", result.Students[0].StudentID)
	assert.Equal(t, models.NewSlotSet(26), result.Students[0].Availability, "last submission wins")
	assert.Equal(t, []string{"ab1"}, result.Stats.DuplicateStudents)

	require.Len(t, result.Teachers, 2)
	assert.Equal(t, models.NewSlotSet(26, 27), result.Teachers[0].Availability)
	assert.Equal(t, 5, result.Teachers[0].MaxNumHelpersAtOnce)
	assert.Zero(t, result.Teachers[1].Availability.Len())
	assert.Equal(t, 1, result.Stats.RejectedIntervals)
	assert.Equal(t, 3, result.Stats.StudentRows)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, result, current)
	require.Len(t, f.snapshots.saved, 1)
	assert.Same(t, result, f.cache.stored)
	assert.Equal(t, time.Hour, f.cache.ttl)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.loadsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.duplicatesTotal.WithLabelValues("student")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.rosterSize.WithLabelValues("teacher")))
}

func TestRosterServiceLoadFirstWins(t *testing.T) {
	f := newRosterFixture()
	f.policy = collection.FirstWins
	svc := f.service(t)

	result, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.NewSlotSet(0, 1), result.Students[0].Availability)
}

func TestRosterServiceLoadFailsOnMalformedRow(t *testing.T) {
	f := newRosterFixture()
	svc := f.service(t)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	previous, _ := svc.Current()

	f.teachers.rows = append(f.teachers.rows, teacherRow(3, "v@x.org", "two", "2", ""))
	_, err = svc.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrMalformedRow)
	assert.True(t, strings.HasPrefix(err.Error(), "TEACHERS.csv: "))

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, previous, current, "failed load keeps the previous roster")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.loadsTotal.WithLabelValues("failure")))
}

func TestRosterServiceLoadFailsOnSourceError(t *testing.T) {
	f := newRosterFixture()
	f.students.err = appErrors.WrapAs(appErrors.ErrSourceUnavailable, errors.New("no such file"), "open STUDENTS.csv")
	svc := f.service(t)

	_, err := svc.Load(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
	_, err = svc.Current()
	assert.ErrorIs(t, err, appErrors.ErrNotLoaded)
}

func TestRosterServiceSnapshotFailureDoesNotFailLoad(t *testing.T) {
	f := newRosterFixture()
	f.snapshots.saveErr = errors.New("db down")
	svc := f.service(t)

	_, err := svc.Load(context.Background())
	assert.NoError(t, err)
}

func TestRosterServiceLoadIsRepeatable(t *testing.T) {
	f := newRosterFixture()
	svc := f.service(t)

	first, err := svc.Load(context.Background())
	require.NoError(t, err)
	second, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Students, second.Students)
	assert.Equal(t, first.Teachers, second.Teachers)
}

func TestRosterServiceRestore(t *testing.T) {
	f := newRosterFixture()
	cached := &models.Roster{RunID: "cached"}
	f.cache.stored = cached
	svc := f.service(t)

	ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	current, _ := svc.Current()
	assert.Equal(t, "cached", current.RunID)

	f = newRosterFixture()
	f.snapshots.latest = &models.Roster{RunID: "stored"}
	svc = f.service(t)
	ok, err = svc.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	current, _ = svc.Current()
	assert.Equal(t, "stored", current.RunID)

	svc = newRosterFixture().service(t)
	ok, err = svc.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRosterServiceQueries(t *testing.T) {
	svc := newRosterFixture().service(t)

	_, err := svc.ListStudents(StudentFilter{})
	assert.ErrorIs(t, err, appErrors.ErrNotLoaded)

	_, err = svc.Load(context.Background())
	require.NoError(t, err)

	slot := models.TimeSlotID(18)
	students, err := svc.ListStudents(StudentFilter{AvailableAt: &slot})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "cd2", students[0].StudentID)

	drivers, err := svc.ListStudents(StudentFilter{DriversOnly: true, School: "Oak"})
	require.NoError(t, err)
	assert.Len(t, drivers, 2)

	teacherSlot := models.TimeSlotID(27)
	teachers, err := svc.ListTeachers(TeacherFilter{AvailableAt: &teacherSlot, School: "S1"})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "t@x.org", teachers[0].Key())

	_, err = svc.GetStudent("nobody")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	st, err := svc.GetStudent("cd2")
	require.NoError(t, err)
	assert.Equal(t, "cd2", st.StudentID)

	teacher, err := svc.GetTeacher("u@x.org")
	require.NoError(t, err)
	assert.Equal(t, 1, teacher.MaxNumHelpersAtOnce)

	st, err = svc.GetStudent(" ab_1 ")
	require.NoError(t, err)
	assert.Equal(t, "ab1", st.StudentID)
	teacher, err = svc.GetTeacher("U@X.org")
	require.NoError(t, err)
	assert.Equal(t, "u@x.org", teacher.TeacherID)

	board, err := svc.NewAssignmentBoard()
	require.NoError(t, err)
	assert.Len(t, board.Students, 2)
	assert.Nil(t, board.Students["ab1"].CarAssignment)
	assert.Nil(t, board.Students["ab1"].TimeAssignment)
	assert.Zero(t, board.Teachers["t@x.org"].NumHelpersAssigned)
	assert.Empty(t, board.Teachers["t@x.org"].AssignedTimeSlots)
}
