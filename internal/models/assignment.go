package models

// StudentAssignment holds the scheduler output for one student.
type StudentAssignment struct {
	StudentID      string      `json:"student_id"`
	CarAssignment  *string     `json:"car_assignment,omitempty"`
	TimeAssignment *TimeSlotID `json:"time_assignment,omitempty"`
}

// TeacherAssignment holds the scheduler bookkeeping for one teacher.
type TeacherAssignment struct {
	TeacherID          string             `json:"teacher_id"`
	NumHelpersAssigned int                `json:"num_helpers_assigned"`
	AssignedTimeSlots  map[TimeSlotID]int `json:"assigned_time_slots"`
}

// AssignmentBoard is the mutable state owned by the scheduler. It references
// roster records by identity and is never written by the loader.
type AssignmentBoard struct {
	Students map[string]*StudentAssignment `json:"students"`
	Teachers map[string]*TeacherAssignment `json:"teachers"`
}

// NewAssignmentBoard creates empty assignment state for every roster record.
func NewAssignmentBoard(roster *Roster) *AssignmentBoard {
	board := &AssignmentBoard{
		Students: make(map[string]*StudentAssignment),
		Teachers: make(map[string]*TeacherAssignment),
	}
	if roster == nil {
		return board
	}
	for _, s := range roster.Students {
		board.Students[s.Key()] = &StudentAssignment{StudentID: s.Key()}
	}
	for _, t := range roster.Teachers {
		board.Teachers[t.Key()] = &TeacherAssignment{
			TeacherID:         t.Key(),
			AssignedTimeSlots: make(map[TimeSlotID]int),
		}
	}
	return board
}
