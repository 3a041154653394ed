package roster

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/helper-roster/internal/availability"
	"github.com/noah-isme/helper-roster/internal/models"
)

// Column layout of the first form export. Unlisted columns are unused.
const (
	legStudentID          = 1
	legStudentDriver      = 3
	legStudentSeats       = 4
	legStudentMonday      = 5
	legStudentReturner    = 10
	legStudentSchoolPref  = 11
	legStudentTeacherPref = 12
	legStudentColumns     = 13

	legTeacherName    = 1
	legTeacherSchool  = 3
	legTeacherMonday  = 7
	legTeacherColumns = legTeacherMonday + models.WeekDays
)

// legacySchema reads student chains of adjacent half-hour intervals and
// identifies teachers by school id followed by name.
type legacySchema struct {
	validate       *validator.Validate
	helpersAtOnce  int
	helpersPerWeek int
}

func (s *legacySchema) Version() models.SchemaVersion {
	return models.SchemaLegacy
}

func (s *legacySchema) Columns() (int, int) {
	return legStudentColumns, legTeacherColumns
}

func (s *legacySchema) Student(row models.Row) (models.Student, availability.Report, error) {
	r := newFieldReader(row, "student", legStudentColumns)
	student := models.Student{
		StudentID:         r.text(legStudentID),
		IsDriver:          r.yes(legStudentDriver),
		NumSeats:          r.integer(legStudentSeats, "passenger seats"),
		IsReturner:        r.yes(legStudentReturner),
		SchoolPreference:  r.text(legStudentSchoolPref),
		TeacherPreference: r.text(legStudentTeacherPref),
	}
	week := r.week(legStudentMonday)
	if r.err != nil {
		return models.Student{}, availability.Report{}, r.err
	}
	if err := validateStudent(s.validate, row.Line, student); err != nil {
		return models.Student{}, availability.Report{}, err
	}
	slots, report := availability.ParseWeekReport(week, availability.ModeHalfHour)
	student.Availability = slots
	return student, report, nil
}

func (s *legacySchema) Teacher(row models.Row) (models.Teacher, availability.Report, error) {
	r := newFieldReader(row, "teacher", legTeacherColumns)
	name := r.text(legTeacherName)
	school := r.text(legTeacherSchool)
	teacher := models.Teacher{
		TeacherID:            school + name,
		LastName:             name,
		SchoolID:             school,
		MaxNumHelpersAtOnce:  clampCapacity(s.helpersAtOnce, s.helpersPerWeek),
		MaxNumHelpersPerWeek: s.helpersPerWeek,
	}
	week := r.week(legTeacherMonday)
	if r.err != nil {
		return models.Teacher{}, availability.Report{}, r.err
	}
	if err := validateTeacher(s.validate, row.Line, teacher); err != nil {
		return models.Teacher{}, availability.Report{}, err
	}
	slots, report := availability.ParseWeekReport(week, availability.ModeHourBlock)
	teacher.Availability = slots
	return teacher, report, nil
}
