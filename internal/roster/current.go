package roster

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/helper-roster/internal/availability"
	"github.com/noah-isme/helper-roster/internal/models"
)

// Column layout of the current form export.
const (
	curStudentID = iota
	curStudentFirstName
	curStudentLastName
	curStudentMajor
	curStudentYear
	curStudentPhone
	curStudentDriver
	curStudentSeats
	curStudentReturner
	curStudentSchoolPref
	curStudentMonday
	curStudentColumns = curStudentMonday + models.WeekDays
)

const (
	curTeacherEmail = iota
	curTeacherFirstName
	curTeacherLastName
	curTeacherSchoolID
	curTeacherRoom
	curTeacherGrade
	curTeacherSubjects
	curTeacherAtOnce
	curTeacherPerWeek
	curTeacherMessage
	curTeacherMonday
	curTeacherColumns = curTeacherMonday + models.WeekDays
)

// currentSchema reads student half-hour marker chains and teacher hour
// blocks; teachers are identified by email.
type currentSchema struct {
	validate *validator.Validate
}

func (s *currentSchema) Version() models.SchemaVersion {
	return models.SchemaCurrent
}

func (s *currentSchema) Columns() (int, int) {
	return curStudentColumns, curTeacherColumns
}

func (s *currentSchema) Student(row models.Row) (models.Student, availability.Report, error) {
	r := newFieldReader(row, "student", curStudentColumns)
	student := models.Student{
		StudentID:        StudentKey(models.SchemaCurrent, r.text(curStudentID)),
		FirstName:        r.text(curStudentFirstName),
		LastName:         r.text(curStudentLastName),
		Major:            r.text(curStudentMajor),
		Year:             r.text(curStudentYear),
		Phone:            r.text(curStudentPhone),
		IsDriver:         r.yes(curStudentDriver),
		NumSeats:         r.integer(curStudentSeats, "passenger seats"),
		IsReturner:       r.yes(curStudentReturner),
		SchoolPreference: r.text(curStudentSchoolPref),
	}
	week := r.week(curStudentMonday)
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

func (s *currentSchema) Teacher(row models.Row) (models.Teacher, availability.Report, error) {
	r := newFieldReader(row, "teacher", curTeacherColumns)
	email := TeacherKey(models.SchemaCurrent, r.text(curTeacherEmail))
	teacher := models.Teacher{
		TeacherID:            email,
		Email:                email,
		FirstName:            r.text(curTeacherFirstName),
		LastName:             r.text(curTeacherLastName),
		SchoolID:             r.text(curTeacherSchoolID),
		RoomNumber:           r.text(curTeacherRoom),
		GradeLevel:           r.text(curTeacherGrade),
		Subjects:             r.text(curTeacherSubjects),
		MaxNumHelpersAtOnce:  r.integer(curTeacherAtOnce, "max helpers at once"),
		MaxNumHelpersPerWeek: r.integer(curTeacherPerWeek, "max helpers per week"),
		SpecialMessage:       r.text(curTeacherMessage),
	}
	week := r.week(curTeacherMonday)
	if r.err != nil {
		return models.Teacher{}, availability.Report{}, r.err
	}
	if err := validateTeacher(s.validate, row.Line, teacher); err != nil {
		return models.Teacher{}, availability.Report{}, err
	}
	teacher.MaxNumHelpersAtOnce = clampCapacity(teacher.MaxNumHelpersAtOnce, teacher.MaxNumHelpersPerWeek)
	slots, report := availability.ParseWeekReport(week, availability.ModeHourBlock)
	teacher.Availability = slots
	return teacher, report, nil
}
