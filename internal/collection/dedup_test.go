package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/helper-roster/internal/models"
)

func students() []models.Student {
	return []models.Student{
		{StudentID: "a1", Major: "CS", Availability: models.NewSlotSet(1)},
		{StudentID: "b2", Major: "Math"},
		{StudentID: "a1", Major: "Physics", Availability: models.NewSlotSet(2, 3)},
		{StudentID: "c3"},
		{StudentID: "a1", Major: "Biology"},
		{StudentID: "b2", Major: "History"},
	}
}

func TestDedupLastWins(t *testing.T) {
	result := Dedup(students(), models.Student.Key, LastWins)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "a1", result.Records[0].StudentID)
	assert.Equal(t, "Biology", result.Records[0].Major)
	assert.Equal(t, "History", result.Records[1].Major)
	assert.Equal(t, []string{"a1", "b2"}, result.Duplicates)
}

func TestDedupFirstWins(t *testing.T) {
	result := Dedup(students(), models.Student.Key, FirstWins)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "CS", result.Records[0].Major)
	assert.Equal(t, models.NewSlotSet(1), result.Records[0].Availability)
	assert.Equal(t, "Math", result.Records[1].Major)
}

func TestDedupIgnoresAvailabilityDifferences(t *testing.T) {
	teachers := []models.Teacher{
		{TeacherID: "t@x.org", Availability: models.NewSlotSet(26, 27)},
		{TeacherID: "t@x.org", Availability: models.NewSlotSet(100)},
	}
	result := Dedup(teachers, models.Teacher.Key, LastWins)
	require.Len(t, result.Records, 1)
	assert.Equal(t, models.NewSlotSet(100), result.Records[0].Availability)
}

func TestDedupEmpty(t *testing.T) {
	result := Dedup([]models.Teacher{}, models.Teacher.Key, LastWins)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Duplicates)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, LastWins, p)

	p, err = ParsePolicy(" First ")
	require.NoError(t, err)
	assert.Equal(t, FirstWins, p)

	_, err = ParsePolicy("random")
	assert.Error(t, err)
}
