package output

import (
	"strconv"
	"time"

	"hourbook/timesheet"
)

func entryHeaders() []string {
	return []string{
		"ID",
		"Owner",
		"Project",
		"Task",
		"Description",
		"StartDateTime",
		"EndDateTime",
		"Billable",
		"HourlyRate",
		"InvoiceID",
	}
}

// entryRow serializes one entry. Optional fields render as empty cells:
// a running entry has no end, an unrated entry has no rate, an unbilled
// entry has no invoice reference.
func entryRow(entry timesheet.Entry) []string {
	end := ""
	if entry.EndTime != nil {
		end = entry.EndTime.Format(time.RFC3339)
	}
	rate := ""
	if entry.HourlyRate != nil {
		rate = strconv.FormatFloat(*entry.HourlyRate, 'f', 2, 64)
	}
	invoiceID := ""
	if entry.InvoiceID != nil {
		invoiceID = *entry.InvoiceID
	}

	return []string{
		strconv.FormatInt(entry.ID, 10),
		entry.Owner,
		entry.Project,
		entry.Task,
		entry.Description,
		entry.StartTime.Format(time.RFC3339),
		end,
		strconv.FormatBool(entry.Billable),
		rate,
		invoiceID,
	}
}
