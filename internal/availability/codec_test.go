package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/helper-roster/internal/models"
)

func TestSlotFromIntervalsValidPairs(t *testing.T) {
	cases := []struct {
		name   string
		first  string
		second string
		want   models.TimeSlotID
	}{
		{name: "midnight", first: "12:00am-12:30am", second: "12:30am-1:00am", want: 0},
		{name: "half past midnight", first: "12:30am-1:00am", second: "1:00am-1:30am", want: 1},
		{name: "early afternoon", first: "1:00pm-1:30pm", second: "1:30pm-2:00pm", want: 26},
		{name: "noon", first: "12:00pm-12:30pm", second: "12:30pm-1:00pm", want: 24},
		{name: "last window", first: "11:30pm-12:00am", second: "12:00am-12:30am", want: 47},
		{name: "padded boundary", first: "9:00am - 9:30am", second: " 9:30am-10:00am", want: 18},
		{name: "upper case marker", first: "3:30PM-4:00PM", second: "4:00PM-4:30PM", want: 31},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SlotFromIntervals(tc.first, tc.second)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, int(got), 0)
			assert.Less(t, int(got), models.SlotsPerDay)
		})
	}
}

func TestSlotFromIntervalsRejects(t *testing.T) {
	cases := []struct {
		name   string
		first  string
		second string
	}{
		{name: "not adjacent", first: "1:00pm-1:30pm", second: "2:00pm-2:30pm"},
		{name: "missing separator", first: "1:00pm", second: "1:30pm-2:00pm"},
		{name: "too many parts", first: "1:00pm-1:30pm-2:00pm", second: "1:30pm-2:00pm"},
		{name: "empty", first: "", second: ""},
		{name: "no marker", first: "13:00-13:30", second: "13:30-14:00"},
		{name: "hour out of range", first: "13:00pm-13:30pm", second: "13:30pm-2:00pm"},
		{name: "quarter hour", first: "1:15pm-1:45pm", second: "1:45pm-2:15pm"},
		{name: "non numeric hour", first: "x:00pm-1:30pm", second: "1:30pm-2:00pm"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := SlotFromIntervals(tc.first, tc.second)
			assert.False(t, ok)
		})
	}
}

func TestSlotFromIntervalsFridayFinalSlot(t *testing.T) {
	slot, ok := SlotFromIntervals("11:30pm-12:00am", "12:00am-12:30am")
	assert.True(t, ok)
	assert.Equal(t, models.TimeSlotID(239), models.NewTimeSlotID(4, int(slot)))
}

func TestSlotFromIntervalsZeroIsDistinctFromFailure(t *testing.T) {
	slot, ok := SlotFromIntervals("12:00am-12:30am", "12:30am-1:00am")
	assert.True(t, ok)
	assert.Zero(t, slot)

	slot, ok = SlotFromIntervals("12:00am-12:30am", "1:00am-1:30am")
	assert.False(t, ok)
	assert.Zero(t, slot)
}
