package invoicing

import (
	"fmt"

	"hourbook/timesheet"
)

// LineItem is one invoice draft row derived from a selected entry.
type LineItem struct {
	EntryID     int64   `json:"entryId"`
	Description string  `json:"description"`
	Project     string  `json:"project"`
	Seconds     int64   `json:"seconds"`
	Hours       float64 `json:"hours"`
	HourlyRate  float64 `json:"hourlyRate"`
	Amount      float64 `json:"amount"`
}

// Draft carries the line items of an invoice under construction. Linking
// the source entries to the saved invoice is the storage layer's job.
type Draft struct {
	Number       string     `json:"number"`
	Lines        []LineItem `json:"lines"`
	TotalSeconds int64      `json:"totalSeconds"`
	TotalAmount  float64    `json:"totalAmount"`
}

// BuildDraft turns selected entries into draft line items in entry order.
func BuildDraft(number string, entries []timesheet.Entry) Draft {
	draft := Draft{Number: number, Lines: make([]LineItem, 0, len(entries))}
	for _, entry := range entries {
		seconds, ok := entry.Seconds()
		if !ok {
			continue
		}
		hours := float64(seconds) / 3600
		line := LineItem{
			EntryID:     entry.ID,
			Description: lineDescription(entry),
			Project:     entry.Project,
			Seconds:     seconds,
			Hours:       hours,
			HourlyRate:  entry.Rate(),
			Amount:      hours * entry.Rate(),
		}
		draft.Lines = append(draft.Lines, line)
		draft.TotalSeconds += seconds
		draft.TotalAmount += line.Amount
	}
	return draft
}

func lineDescription(entry timesheet.Entry) string {
	if entry.Description != "" {
		return entry.Description
	}
	if entry.Task != "" {
		return entry.Task
	}
	return fmt.Sprintf("Time entry %d", entry.ID)
}
