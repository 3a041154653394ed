// Package availability turns weekday interval text into half-hour slot ids.
package availability

import (
	"strconv"
	"strings"

	"github.com/noah-isme/helper-roster/internal/models"
)

const intervalSeparator = "-"

// SlotFromIntervals returns the within-day slot of first when second starts
// exactly where first ends. ok is false for malformed or non-adjacent input.
func SlotFromIntervals(first, second string) (models.TimeSlotID, bool) {
	a := strings.Split(first, intervalSeparator)
	b := strings.Split(second, intervalSeparator)
	if len(a) != 2 || len(b) != 2 {
		return 0, false
	}
	if strings.TrimSpace(a[1]) != strings.TrimSpace(b[0]) {
		return 0, false
	}
	halfHour, ok := clockSlot(a[0])
	if !ok {
		return 0, false
	}
	return models.TimeSlotID(halfHour), true
}

// clockSlot maps a 12-hour clock marker such as "1:30pm" to its half-hour
// index within the day.
func clockSlot(raw string) (int, bool) {
	clock := strings.ToLower(strings.TrimSpace(raw))
	slot := 0
	switch {
	case strings.HasSuffix(clock, "pm"):
		slot += models.SlotsPerDay / 2
	case strings.HasSuffix(clock, "am"):
	default:
		return 0, false
	}
	clock = strings.TrimSpace(clock[:len(clock)-2])

	hourRaw, minuteRaw, found := strings.Cut(clock, ":")
	if !found || len(minuteRaw) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(hourRaw)
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	if hour == 12 {
		hour = 0
	}
	slot += 2 * hour

	switch minuteRaw {
	case "00":
	case "30":
		slot++
	default:
		return 0, false
	}
	return slot, true
}
