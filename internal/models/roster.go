package models

import "time"

// SchemaVersion names a revision of the upstream form export layout.
type SchemaVersion string

const (
	SchemaCurrent SchemaVersion = "current"
	SchemaLegacy  SchemaVersion = "legacy"
)

// LoadStats summarises one load run.
type LoadStats struct {
	StudentRows       int      `json:"student_rows"`
	TeacherRows       int      `json:"teacher_rows"`
	AcceptedIntervals int      `json:"accepted_intervals"`
	RejectedIntervals int      `json:"rejected_intervals"`
	DuplicateStudents []string `json:"duplicate_students,omitempty"`
	DuplicateTeachers []string `json:"duplicate_teachers,omitempty"`
}

// Roster is the deduplicated output of one load.
type Roster struct {
	RunID         string        `json:"run_id"`
	SchemaVersion SchemaVersion `json:"schema_version"`
	LoadedAt      time.Time     `json:"loaded_at"`
	Students      []Student     `json:"students"`
	Teachers      []Teacher     `json:"teachers"`
	Stats         LoadStats     `json:"stats"`
}

// FindStudent returns the student with the given id.
func (r *Roster) FindStudent(id string) (Student, bool) {
	for _, s := range r.Students {
		if s.Key() == id {
			return s, true
		}
	}
	return Student{}, false
}

// FindTeacher returns the teacher with the given identity key.
func (r *Roster) FindTeacher(key string) (Teacher, bool) {
	for _, t := range r.Teachers {
		if t.Key() == key {
			return t, true
		}
	}
	return Teacher{}, false
}
