package models

// Student is one availability submission of a student helper.
type Student struct {
	StudentID         string  `json:"student_id"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Major             string  `json:"major"`
	Year              string  `json:"year"`
	Phone             string  `json:"phone"`
	IsDriver          bool    `json:"is_driver"`
	NumSeats          int     `json:"num_seats"`
	IsReturner        bool    `json:"is_returner"`
	SchoolPreference  string  `json:"school_preference"`
	TeacherPreference string  `json:"teacher_preference,omitempty"`
	Availability      SlotSet `json:"availability"`
}

// Key returns the identity used for deduplication.
func (s Student) Key() string {
	return s.StudentID
}

// DisplayName joins first and last name.
func (s Student) DisplayName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
