package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	// SlotsPerDay is the number of half-hour windows in one day.
	SlotsPerDay = 48
	// WeekDays covers Monday through Friday.
	WeekDays = 5
	// SlotsPerWeek bounds every TimeSlotID.
	SlotsPerWeek = SlotsPerDay * WeekDays
)

var weekdayNames = [WeekDays]string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// TimeSlotID identifies one half-hour window of the work week:
// day*48 + half-hour index within the day.
type TimeSlotID int

// NewTimeSlotID combines a weekday index (0=Mon) and a half-hour index.
func NewTimeSlotID(day, halfHour int) TimeSlotID {
	return TimeSlotID(day*SlotsPerDay + halfHour)
}

// Valid reports whether the id lies inside the Mon..Fri week.
func (id TimeSlotID) Valid() bool {
	return id >= 0 && id < SlotsPerWeek
}

// Day returns the weekday index, 0 for Monday.
func (id TimeSlotID) Day() int {
	return int(id) / SlotsPerDay
}

// HalfHour returns the half-hour index within the day.
func (id TimeSlotID) HalfHour() int {
	return int(id) % SlotsPerDay
}

// String renders the window as "Mon 13:00-13:30".
func (id TimeSlotID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("invalid(%d)", int(id))
	}
	start := id.HalfHour() * 30
	end := start + 30
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d", weekdayNames[id.Day()], start/60, start%60, (end/60)%24, end%60)
}

// SlotSet is an unordered set of time slots.
type SlotSet map[TimeSlotID]struct{}

// NewSlotSet builds a set from the given ids.
func NewSlotSet(ids ...TimeSlotID) SlotSet {
	set := make(SlotSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Add inserts id; out-of-week ids are ignored.
func (s SlotSet) Add(id TimeSlotID) {
	if id.Valid() {
		s[id] = struct{}{}
	}
}

// Has reports membership.
func (s SlotSet) Has(id TimeSlotID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of slots.
func (s SlotSet) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order.
func (s SlotSet) Sorted() []TimeSlotID {
	ids := make([]TimeSlotID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Union returns a new set holding slots of both sets.
func (s SlotSet) Union(other SlotSet) SlotSet {
	out := make(SlotSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns a new set holding slots present in both sets.
func (s SlotSet) Intersect(other SlotSet) SlotSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(SlotSet)
	for id := range small {
		if large.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s SlotSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of ids.
func (s *SlotSet) UnmarshalJSON(data []byte) error {
	var ids []TimeSlotID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSlotSet(ids...)
	return nil
}
