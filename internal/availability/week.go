package availability

import (
	"strings"

	"github.com/noah-isme/helper-roster/internal/models"
)

// Mode selects how a weekday's token list is read.
type Mode int

const (
	// ModeHalfHour reads a chain of half-hour boundaries: every adjacent pair
	// of tokens forms one window.
	ModeHalfHour Mode = iota
	// ModeHourBlock reads each token as a self-contained one-hour block.
	ModeHourBlock
)

func (m Mode) String() string {
	switch m {
	case ModeHalfHour:
		return "half_hour"
	case ModeHourBlock:
		return "hour_block"
	default:
		return "unknown"
	}
}

const tokenSeparator = ","

// Week holds the raw Monday..Friday interval lists.
type Week [models.WeekDays]string

// Report counts the windows a parse accepted and skipped.
type Report struct {
	Accepted int
	Rejected int
}

// Add folds another report into r.
func (r *Report) Add(other Report) {
	r.Accepted += other.Accepted
	r.Rejected += other.Rejected
}

// ParseWeek returns every slot the week's text describes.
func ParseWeek(week Week, mode Mode) models.SlotSet {
	slots, _ := ParseWeekReport(week, mode)
	return slots
}

// ParseWeekReport is ParseWeek plus accepted/rejected counts. Bad tokens
// never fail the parse.
func ParseWeekReport(week Week, mode Mode) (models.SlotSet, Report) {
	slots := make(models.SlotSet)
	var report Report
	for day, raw := range week {
		tokens := strings.Split(raw, tokenSeparator)
		switch mode {
		case ModeHourBlock:
			report.Add(parseHourBlocks(slots, day, tokens))
		default:
			report.Add(parseHalfHourChain(slots, day, tokens))
		}
	}
	return slots, report
}

func parseHalfHourChain(slots models.SlotSet, day int, tokens []string) Report {
	var report Report
	for j := 0; j+1 < len(tokens); j++ {
		first, second := strings.TrimSpace(tokens[j]), strings.TrimSpace(tokens[j+1])
		if first == "" || second == "" {
			continue
		}
		if !strings.Contains(first, intervalSeparator) && !strings.Contains(second, intervalSeparator) {
			first, second, _ = markerWindow(first, second)
		}
		slot, ok := SlotFromIntervals(first, second)
		if !ok {
			report.Rejected++
			continue
		}
		slots.Add(models.NewTimeSlotID(day, int(slot)))
		report.Accepted++
	}
	return report
}

// markerWindow turns two bare boundary markers into a pair of intervals the
// codec accepts, but only when they are exactly one half hour apart.
func markerWindow(start, end string) (string, string, bool) {
	from, okFrom := clockSlot(start)
	to, okTo := clockSlot(end)
	if !okFrom || !okTo || (from+1)%models.SlotsPerDay != to {
		return start, end, false
	}
	return start + intervalSeparator + end, end + intervalSeparator + start, true
}

func parseHourBlocks(slots models.SlotSet, day int, tokens []string) Report {
	var report Report
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		start, end, found := strings.Cut(token, intervalSeparator)
		if !found {
			report.Rejected++
			continue
		}
		slot, ok := SlotFromIntervals(token, end+intervalSeparator+start)
		if !ok {
			report.Rejected++
			continue
		}
		slots.Add(models.NewTimeSlotID(day, int(slot)))
		if next := int(slot) + 1; next < models.SlotsPerDay {
			slots.Add(models.NewTimeSlotID(day, next))
		}
		report.Accepted++
	}
	return report
}
