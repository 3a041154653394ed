package models

// Teacher is one availability submission of a hosting teacher.
type Teacher struct {
	TeacherID            string  `json:"teacher_id"`
	Email                string  `json:"email,omitempty"`
	FirstName            string  `json:"first_name"`
	LastName             string  `json:"last_name"`
	SchoolID             string  `json:"school_id"`
	RoomNumber           string  `json:"room_number"`
	GradeLevel           string  `json:"grade_level"`
	Subjects             string  `json:"subjects"`
	MaxNumHelpersAtOnce  int     `json:"max_num_helpers_at_once"`
	MaxNumHelpersPerWeek int     `json:"max_num_helpers_per_week"`
	SpecialMessage       string  `json:"special_message,omitempty"`
	Availability         SlotSet `json:"availability"`
}

// Key returns the identity used for deduplication.
func (t Teacher) Key() string {
	return t.TeacherID
}

// Name joins first and last name.
func (t Teacher) Name() string {
	switch {
	case t.FirstName == "":
		return t.LastName
	case t.LastName == "":
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}
