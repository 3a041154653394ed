package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/helper-roster/internal/availability"
	"github.com/noah-isme/helper-roster/internal/collection"
	"github.com/noah-isme/helper-roster/internal/models"
	"github.com/noah-isme/helper-roster/internal/roster"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

type rowSource interface {
	Name() string
	Rows(ctx context.Context) ([]models.Row, error)
}

type snapshotStore interface {
	Save(ctx context.Context, roster *models.Roster) error
	Latest(ctx context.Context) (*models.Roster, error)
}

type rosterCache interface {
	GetRoster(ctx context.Context) (*models.Roster, error)
	SetRoster(ctx context.Context, roster *models.Roster, ttl time.Duration) error
}

// RosterServiceConfig wires the loader. Snapshots, Cache and Metrics are
// optional.
type RosterServiceConfig struct {
	Students  rowSource
	Teachers  rowSource
	Schema    roster.Schema
	Policy    collection.Policy
	Snapshots snapshotStore
	Cache     rosterCache
	CacheTTL  time.Duration
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// LoadSummary is the compact outcome of a load for logs and responses.
type LoadSummary struct {
	RunID             string               `json:"run_id"`
	SchemaVersion     models.SchemaVersion `json:"schema_version"`
	LoadedAt          time.Time            `json:"loaded_at"`
	StudentRows       int                  `json:"student_rows"`
	TeacherRows       int                  `json:"teacher_rows"`
	Students          int                  `json:"students"`
	Teachers          int                  `json:"teachers"`
	AcceptedIntervals int                  `json:"accepted_intervals"`
	RejectedIntervals int                  `json:"rejected_intervals"`
	DuplicateStudents int                  `json:"duplicate_students"`
	DuplicateTeachers int                  `json:"duplicate_teachers"`
}

// Summarize condenses a roster.
func Summarize(r *models.Roster) LoadSummary {
	return LoadSummary{
		RunID:             r.RunID,
		SchemaVersion:     r.SchemaVersion,
		LoadedAt:          r.LoadedAt,
		StudentRows:       r.Stats.StudentRows,
		TeacherRows:       r.Stats.TeacherRows,
		Students:          len(r.Students),
		Teachers:          len(r.Teachers),
		AcceptedIntervals: r.Stats.AcceptedIntervals,
		RejectedIntervals: r.Stats.RejectedIntervals,
		DuplicateStudents: len(r.Stats.DuplicateStudents),
		DuplicateTeachers: len(r.Stats.DuplicateTeachers),
	}
}

// RosterService loads the two sources into a roster and serves the most
// recent one.
type RosterService struct {
	students  rowSource
	teachers  rowSource
	schema    roster.Schema
	policy    collection.Policy
	snapshots snapshotStore
	cache     rosterCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time

	loadMu  sync.Mutex
	mu      sync.RWMutex
	current *models.Roster
}

// NewRosterService builds the service.
func NewRosterService(cfg RosterServiceConfig) *RosterService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Policy == "" {
		cfg.Policy = collection.LastWins
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &RosterService{
		students:  cfg.Students,
		teachers:  cfg.Teachers,
		schema:    cfg.Schema,
		policy:    cfg.Policy,
		snapshots: cfg.Snapshots,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Load reads both sources, builds and deduplicates the records, and
// publishes the result. A structural error in any row fails the whole load
// and leaves the previous roster in place.
func (s *RosterService) Load(ctx context.Context) (*models.Roster, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	result, err := s.build(ctx)
	if err != nil {
		s.metrics.ObserveLoadFailure(time.Since(start))
		s.logger.Error("roster load failed", zap.Error(err))
		return nil, err
	}

	s.publish(result)
	summary := Summarize(result)
	s.metrics.ObserveLoad(summary, time.Since(start))
	s.logger.Info("roster loaded",
		zap.String("run_id", summary.RunID),
		zap.String("schema", string(summary.SchemaVersion)),
		zap.Int("students", summary.Students),
		zap.Int("teachers", summary.Teachers),
		zap.Int("rejected_intervals", summary.RejectedIntervals),
		zap.Strings("duplicate_students", result.Stats.DuplicateStudents),
		zap.Strings("duplicate_teachers", result.Stats.DuplicateTeachers),
	)

	s.persist(ctx, result)
	return result, nil
}

func (s *RosterService) build(ctx context.Context) (*models.Roster, error) {
	if s.schema == nil || s.students == nil || s.teachers == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "roster service is missing a source or schema")
	}

	studentRows, err := s.students.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read students from %s: %w", s.students.Name(), err)
	}
	teacherRows, err := s.teachers.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read teachers from %s: %w", s.teachers.Name(), err)
	}

	students, studentReport, err := buildRecords(studentRows, s.schema.Student, models.Student.Key, s.policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.students.Name(), err)
	}
	teachers, teacherReport, err := buildRecords(teacherRows, s.schema.Teacher, models.Teacher.Key, s.policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.teachers.Name(), err)
	}

	return &models.Roster{
		RunID:         uuid.NewString(),
		SchemaVersion: s.schema.Version(),
		LoadedAt:      s.now(),
		Students:      students.Records,
		Teachers:      teachers.Records,
		Stats: models.LoadStats{
			StudentRows:       len(studentRows),
			TeacherRows:       len(teacherRows),
			AcceptedIntervals: studentReport.Accepted + teacherReport.Accepted,
			RejectedIntervals: studentReport.Rejected + teacherReport.Rejected,
			DuplicateStudents: students.Duplicates,
			DuplicateTeachers: teachers.Duplicates,
		},
	}, nil
}

func buildRecords[T any](
	rows []models.Row,
	build func(models.Row) (T, availability.Report, error),
	key func(T) string,
	policy collection.Policy,
) (collection.Result[T, string], availability.Report, error) {
	var report availability.Report
	records := make([]T, 0, len(rows))
	for _, row := range rows {
		record, rowReport, err := build(row)
		if err != nil {
			return collection.Result[T, string]{}, availability.Report{}, err
		}
		report.Add(rowReport)
		records = append(records, record)
	}
	return collection.Dedup(records, key, policy), report, nil
}

// persist stores the roster in the optional snapshot and cache backends.
// Failures there are logged; the in-memory roster is already published.
func (s *RosterService) persist(ctx context.Context, r *models.Roster) {
	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, r); err != nil {
			s.logger.Error("roster snapshot failed", zap.String("run_id", r.RunID), zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.SetRoster(ctx, r, s.cacheTTL); err != nil {
			s.logger.Warn("roster cache write failed", zap.String("run_id", r.RunID), zap.Error(err))
		}
	}
}

// Restore publishes a previously stored roster, trying the cache before the
// snapshot store. It reports whether anything was restored.
func (s *RosterService) Restore(ctx context.Context) (bool, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRoster(ctx)
		switch {
		case err == nil:
			s.publish(cached)
			s.logger.Info("roster restored from cache", zap.String("run_id", cached.RunID))
			return true, nil
		case !errors.Is(err, appErrors.ErrCacheMiss):
			s.logger.Warn("roster cache read failed", zap.Error(err))
		}
	}
	if s.snapshots != nil {
		stored, err := s.snapshots.Latest(ctx)
		switch {
		case err == nil:
			s.publish(stored)
			s.logger.Info("roster restored from snapshot", zap.String("run_id", stored.RunID))
			return true, nil
		case errors.Is(err, sql.ErrNoRows):
		default:
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore roster snapshot")
		}
	}
	return false, nil
}

func (s *RosterService) publish(r *models.Roster) {
	s.mu.Lock()
	s.current = r
	s.mu.Unlock()
}

// Current returns the published roster.
func (s *RosterService) Current() (*models.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, appErrors.ErrNotLoaded
	}
	return s.current, nil
}

// StudentFilter narrows ListStudents.
type StudentFilter struct {
	DriversOnly bool
	School      string
	AvailableAt *models.TimeSlotID
}

// ListStudents returns students matching filter.
func (s *RosterService) ListStudents(filter StudentFilter) ([]models.Student, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(current.Students))
	for _, st := range current.Students {
		if filter.DriversOnly && !st.IsDriver {
			continue
		}
		if filter.School != "" && st.SchoolPreference != filter.School {
			continue
		}
		if filter.AvailableAt != nil && !st.Availability.Has(*filter.AvailableAt) {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// GetStudent returns one student by id, normalized like the roster's schema
// normalizes ids.
func (s *RosterService) GetStudent(id string) (*models.Student, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	st, ok := current.FindStudent(roster.StudentKey(current.SchemaVersion, id))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &st, nil
}

// TeacherFilter narrows ListTeachers.
type TeacherFilter struct {
	School      string
	AvailableAt *models.TimeSlotID
}

// ListTeachers returns teachers matching filter.
func (s *RosterService) ListTeachers(filter TeacherFilter) ([]models.Teacher, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	out := make([]models.Teacher, 0, len(current.Teachers))
	for _, t := range current.Teachers {
		if filter.School != "" && t.SchoolID != filter.School {
			continue
		}
		if filter.AvailableAt != nil && !t.Availability.Has(*filter.AvailableAt) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// GetTeacher returns one teacher by identity key, normalized like the
// roster's schema normalizes keys.
func (s *RosterService) GetTeacher(key string) (*models.Teacher, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	t, ok := current.FindTeacher(roster.TeacherKey(current.SchemaVersion, key))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return &t, nil
}

// NewAssignmentBoard hands the scheduler fresh, empty assignment state for
// the current roster.
func (s *RosterService) NewAssignmentBoard() (*models.AssignmentBoard, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	return models.NewAssignmentBoard(current), nil
}
