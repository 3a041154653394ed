package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoster() *Roster {
	return &Roster{
		Students: []Student{{StudentID: "ab1", FirstName: "Ada", LastName: "Lovelace"}},
		Teachers: []Teacher{{TeacherID: "s1alan", LastName: "Alan"}},
	}
}

func TestRosterLookups(t *testing.T) {
	r := sampleRoster()

	st, ok := r.FindStudent("ab1")
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", st.DisplayName())
	_, ok = r.FindStudent("zz9")
	assert.False(t, ok)

	teacher, ok := r.FindTeacher("s1alan")
	require.True(t, ok)
	assert.Equal(t, "Alan", teacher.Name())
}

func TestNewAssignmentBoardStartsEmpty(t *testing.T) {
	board := NewAssignmentBoard(sampleRoster())

	require.Contains(t, board.Students, "ab1")
	assert.Nil(t, board.Students["ab1"].CarAssignment)
	assert.Nil(t, board.Students["ab1"].TimeAssignment)

	require.Contains(t, board.Teachers, "s1alan")
	assert.Zero(t, board.Teachers["s1alan"].NumHelpersAssigned)
	assert.NotNil(t, board.Teachers["s1alan"].AssignedTimeSlots)
	assert.Empty(t, board.Teachers["s1alan"].AssignedTimeSlots)

	assert.Empty(t, NewAssignmentBoard(nil).Students)
}
