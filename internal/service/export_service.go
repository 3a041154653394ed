package service

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
	"github.com/noah-isme/helper-roster/pkg/export"
)

type rosterReader interface {
	Current() (*models.Roster, error)
}

type exportStore interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// ExportKind selects which half of the roster to render.
type ExportKind string

const (
	ExportStudents ExportKind = "students"
	ExportTeachers ExportKind = "teachers"
)

// ExportResult describes a rendered export.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the current roster as CSV, PDF or XLSX tables.
type ExportService struct {
	roster    rosterReader
	store     exportStore
	renderers map[string]export.Renderer
	logger    *zap.Logger
}

// NewExportService wires the CSV, PDF and XLSX renderers. store may be nil, in
// which case exports are only returned.
func NewExportService(roster rosterReader, store exportStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster: roster,
		store:  store,
		renderers: map[string]export.Renderer{
			"csv":  export.NewCSVExporter(),
			"pdf":  export.NewPDFExporter(),
			"xlsx": export.NewXLSXExporter(),
		},
		logger: logger,
	}
}

// Export renders kind in format and keeps a copy in the export store.
func (s *ExportService) Export(ctx context.Context, kind ExportKind, format string) (*ExportResult, error) {
	renderer, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	current, err := s.roster.Current()
	if err != nil {
		return nil, err
	}

	var data export.Dataset
	switch kind {
	case ExportStudents:
		data = studentDataset(current.Students)
	case ExportTeachers:
		data = teacherDataset(current.Teachers)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %q", kind))
	}

	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := path.Join(current.RunID, fmt.Sprintf("%s.%s", kind, renderer.Extension()))
	if s.store != nil {
		if _, err := s.store.Save(ctx, filename, body); err != nil {
			s.logger.Warn("export not stored", zap.String("file", filename), zap.Error(err))
		}
	}
	return &ExportResult{Filename: filename, ContentType: renderer.ContentType(), Body: body}, nil
}

func studentDataset(students []models.Student) export.Dataset {
	data := export.Dataset{
		Title:   "Students",
		Headers: []string{"student_id", "name", "major", "year", "phone", "driver", "seats", "returner", "school_preference", "availability"},
		Rows:    make([][]string, 0, len(students)),
	}
	for _, s := range students {
		data.Rows = append(data.Rows, []string{
			s.StudentID,
			s.DisplayName(),
			s.Major,
			s.Year,
			s.Phone,
			strconv.FormatBool(s.IsDriver),
			strconv.Itoa(s.NumSeats),
			strconv.FormatBool(s.IsReturner),
			s.SchoolPreference,
			joinSlots(s.Availability),
		})
	}
	return data
}

func teacherDataset(teachers []models.Teacher) export.Dataset {
	data := export.Dataset{
		Title:   "Teachers",
		Headers: []string{"teacher_id", "name", "school_id", "room", "grade", "subjects", "max_at_once", "max_per_week", "availability"},
		Rows:    make([][]string, 0, len(teachers)),
	}
	for _, t := range teachers {
		data.Rows = append(data.Rows, []string{
			t.TeacherID,
			t.Name(),
			t.SchoolID,
			t.RoomNumber,
			t.GradeLevel,
			t.Subjects,
			strconv.Itoa(t.MaxNumHelpersAtOnce),
			strconv.Itoa(t.MaxNumHelpersPerWeek),
			joinSlots(t.Availability),
		})
	}
	return data
}

func joinSlots(slots models.SlotSet) string {
	ids := slots.Sorted()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, " ")
}
