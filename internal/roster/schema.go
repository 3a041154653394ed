// Package roster builds typed Student and Teacher records from form rows.
package roster

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/helper-roster/internal/availability"
	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

// Schema converts rows of one upstream export revision into records.
type Schema interface {
	Version() models.SchemaVersion
	// Columns reports how many columns student and teacher rows must have.
	Columns() (students, teachers int)
	Student(row models.Row) (models.Student, availability.Report, error)
	Teacher(row models.Row) (models.Teacher, availability.Report, error)
}

// Options tunes the schema strategies.
type Options struct {
	// LegacyHelpersAtOnce and LegacyHelpersPerWeek fill the capacity of
	// legacy teacher rows, which carry no capacity columns.
	LegacyHelpersAtOnce  int
	LegacyHelpersPerWeek int
	Validator            *validator.Validate
}

// New returns the strategy for the configured schema version.
func New(version models.SchemaVersion, opts Options) (Schema, error) {
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	switch version {
	case models.SchemaCurrent, "":
		return &currentSchema{validate: opts.Validator}, nil
	case models.SchemaLegacy:
		return &legacySchema{
			validate:       opts.Validator,
			helpersAtOnce:  opts.LegacyHelpersAtOnce,
			helpersPerWeek: opts.LegacyHelpersPerWeek,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown roster schema %q", version))
	}
}

// studentCheck and teacherCheck hold the fields whose values must be
// validated after coercion.
type studentCheck struct {
	StudentID string `validate:"required"`
	NumSeats  int    `validate:"min=0"`
}

type teacherCheck struct {
	TeacherID            string `validate:"required"`
	MaxNumHelpersAtOnce  int    `validate:"min=0"`
	MaxNumHelpersPerWeek int    `validate:"min=0"`
}

func validateStudent(v *validator.Validate, line int, s models.Student) error {
	err := v.Struct(studentCheck{StudentID: s.StudentID, NumSeats: s.NumSeats})
	return validationError(line, "student", err)
}

func validateTeacher(v *validator.Validate, line int, t models.Teacher) error {
	err := v.Struct(teacherCheck{
		TeacherID:            t.TeacherID,
		MaxNumHelpersAtOnce:  t.MaxNumHelpersAtOnce,
		MaxNumHelpersPerWeek: t.MaxNumHelpersPerWeek,
	})
	return validationError(line, "teacher", err)
}

func validationError(line int, kind string, err error) error {
	if err == nil {
		return nil
	}
	field := ""
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		field = verrs[0].Field()
	}
	return appErrors.WrapAs(appErrors.ErrMalformedRow, err, fmt.Sprintf("%s row at line %d: invalid %s", kind, line, field))
}

// clampCapacity keeps the at-once capacity within the weekly capacity.
func clampCapacity(atOnce, perWeek int) int {
	if atOnce > perWeek {
		return perWeek
	}
	return atOnce
}
