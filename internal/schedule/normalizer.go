package schedule

import (
	"strings"
	"time"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
)

// Drop reasons reported for input the normalizer discards.
const (
	ReasonUnknownDay    = "unknown_day"
	ReasonMissingTime   = "missing_time"
	ReasonInvalidTime   = "invalid_time"
	ReasonInvertedRange = "close_not_after_open"
	ReasonEmptyDay      = "no_hours"
	ReasonDayClosed     = "day_closed"
)

var timeLayouts = []string{"15:04", "15:04:05"}

// SlotInput is one shift of a split day.
type SlotInput struct {
	OpenTime  *string `json:"openTime,omitempty"`
	CloseTime *string `json:"closeTime,omitempty"`
}

// DayInput is the raw hours submitted for one day: a closure flag, a list of
// slots, or a single open/close pair.
type DayInput struct {
	DayOfWeek string      `json:"dayOfWeek"`
	OpenTime  *string     `json:"openTime,omitempty"`
	CloseTime *string     `json:"closeTime,omitempty"`
	IsClosed  bool        `json:"isClosed"`
	Slots     []SlotInput `json:"slots,omitempty"`
}

// Entry is a canonical schedule row. Closed entries carry no times; open
// entries carry HH:MM times with OpenTime < CloseTime.
type Entry struct {
	DayOfWeek enums.DayOfWeek `json:"dayOfWeek"`
	OpenTime  *string         `json:"openTime"`
	CloseTime *string         `json:"closeTime"`
	IsClosed  bool            `json:"isClosed"`
}

// Drop describes one discarded input day or slot.
type Drop struct {
	Index     int    `json:"index"`
	DayOfWeek string `json:"dayOfWeek"`
	Reason    string `json:"reason"`
}

// Normalize converts raw per-day input into canonical rows, in input order.
// Malformed input is never an error: it is skipped and reported in the
// returned drops so callers can log it.
func Normalize(input []DayInput) ([]Entry, []Drop) {
	entries := make([]Entry, 0, len(input))
	indexes := make([]int, 0, len(input))
	var drops []Drop

	for i, day := range input {
		dow, err := enums.ParseDayOfWeek(day.DayOfWeek)
		if err != nil {
			drops = append(drops, Drop{Index: i, DayOfWeek: day.DayOfWeek, Reason: ReasonUnknownDay})
			continue
		}

		if day.IsClosed {
			entries = append(entries, Entry{DayOfWeek: dow, IsClosed: true})
			indexes = append(indexes, i)
			continue
		}

		slots := day.Slots
		if len(slots) == 0 {
			if day.OpenTime == nil && day.CloseTime == nil {
				drops = append(drops, Drop{Index: i, DayOfWeek: day.DayOfWeek, Reason: ReasonEmptyDay})
				continue
			}
			slots = []SlotInput{{OpenTime: day.OpenTime, CloseTime: day.CloseTime}}
		}

		for _, slot := range slots {
			entry, reason := openEntry(dow, slot)
			if reason != "" {
				drops = append(drops, Drop{Index: i, DayOfWeek: day.DayOfWeek, Reason: reason})
				continue
			}
			entries = append(entries, entry)
			indexes = append(indexes, i)
		}
	}

	return collapseClosedDays(entries, indexes, drops)
}

// collapseClosedDays keeps a single closed row for a day marked closed and
// drops every other row of that day.
func collapseClosedDays(entries []Entry, indexes []int, drops []Drop) ([]Entry, []Drop) {
	closed := map[enums.DayOfWeek]bool{}
	for _, entry := range entries {
		if entry.IsClosed {
			closed[entry.DayOfWeek] = true
		}
	}
	if len(closed) == 0 {
		return entries, drops
	}

	kept := entries[:0:0]
	emitted := map[enums.DayOfWeek]bool{}
	for i, entry := range entries {
		if !closed[entry.DayOfWeek] {
			kept = append(kept, entry)
			continue
		}
		if entry.IsClosed && !emitted[entry.DayOfWeek] {
			emitted[entry.DayOfWeek] = true
			kept = append(kept, entry)
			continue
		}
		drops = append(drops, Drop{Index: indexes[i], DayOfWeek: entry.DayOfWeek.String(), Reason: ReasonDayClosed})
	}
	return kept, drops
}

func openEntry(dow enums.DayOfWeek, slot SlotInput) (Entry, string) {
	if isBlank(slot.OpenTime) || isBlank(slot.CloseTime) {
		return Entry{}, ReasonMissingTime
	}
	open, ok := canonicalTime(*slot.OpenTime)
	if !ok {
		return Entry{}, ReasonInvalidTime
	}
	closing, ok := canonicalTime(*slot.CloseTime)
	if !ok {
		return Entry{}, ReasonInvalidTime
	}
	// HH:MM strings order the same way as the times they encode.
	if closing <= open {
		return Entry{}, ReasonInvertedRange
	}
	return Entry{DayOfWeek: dow, OpenTime: &open, CloseTime: &closing}, ""
}

func canonicalTime(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("15:04"), true
		}
	}
	return "", false
}

func isBlank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}

// FromEntries renders canonical rows back into raw input, one day per row.
func FromEntries(entries []Entry) []DayInput {
	out := make([]DayInput, 0, len(entries))
	for _, entry := range entries {
		day := DayInput{DayOfWeek: entry.DayOfWeek.String(), IsClosed: entry.IsClosed}
		if !entry.IsClosed {
			day.OpenTime = cloneString(entry.OpenTime)
			day.CloseTime = cloneString(entry.CloseTime)
		}
		out = append(out, day)
	}
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
