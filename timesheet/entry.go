package timesheet

import "time"

// Entry is the normalized time record used across the report, invoicing,
// storage, and output layers. EndTime is nil while the timer is still
// running, HourlyRate is nil when no rate was declared, and InvoiceID is
// nil until the entry has been linked to an invoice.
type Entry struct {
	ID          int64
	Owner       string
	Project     string
	Task        string
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	Billable    bool
	HourlyRate  *float64
	InvoiceID   *string
}

// Active reports whether the entry is still running.
func (e Entry) Active() bool {
	return e.EndTime == nil
}

// Billed reports whether the entry is already linked to an invoice.
func (e Entry) Billed() bool {
	return e.InvoiceID != nil
}

// Rate returns the declared hourly rate, or 0 when none was set. Logging
// internal time without a rate is valid and contributes no revenue.
func (e Entry) Rate() float64 {
	if e.HourlyRate == nil {
		return 0
	}
	return *e.HourlyRate
}

// Seconds returns the finalized duration in whole seconds. The second
// return value is false for active entries and for malformed entries
// (zero start, or end before start), which must never enter aggregations.
func (e Entry) Seconds() (int64, bool) {
	if e.EndTime == nil || e.StartTime.IsZero() {
		return 0, false
	}
	seconds := int64(e.EndTime.Sub(e.StartTime).Seconds())
	if seconds < 0 {
		return 0, false
	}
	return seconds, true
}
