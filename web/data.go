package web

import (
	"fmt"
	"time"

	"hourbook/internal/timeutil"
	"hourbook/report"
	"hourbook/timesheet"
)

type ChartRow struct {
	Day   string
	Hours string
}

type DashboardView struct {
	Title           string
	Owner           string
	Date            string
	Chart           []ChartRow
	ThisWeek        string
	LastWeek        string
	UnbilledRevenue string
	Warnings        int
}

type entryView struct {
	ID          int64    `json:"id"`
	Project     string   `json:"project"`
	Task        string   `json:"task"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Seconds     int64    `json:"seconds"`
	Billable    bool     `json:"billable"`
	HourlyRate  *float64 `json:"hourlyRate,omitempty"`
	InvoiceID   *string  `json:"invoiceId,omitempty"`
}

// BuildDashboardView formats a weekly report for the dashboard template.
// Seconds become "Nh Mm" labels; revenue carries the configured currency.
func BuildDashboardView(rep report.WeeklyReport, owner string, now time.Time, currency string) DashboardView {
	chart := make([]ChartRow, 0, len(rep.Chart))
	for _, bucket := range rep.Chart {
		chart = append(chart, ChartRow{
			Day:   bucket.Label,
			Hours: fmt.Sprintf("%.1f", bucket.Hours),
		})
	}

	return DashboardView{
		Title:           "hourbook - dashboard",
		Owner:           owner,
		Date:            now.Format("2006-01-02"),
		Chart:           chart,
		ThisWeek:        timeutil.FormatSeconds(rep.TotalSecondsThisWeek),
		LastWeek:        timeutil.FormatSeconds(rep.TotalSecondsLastWeek),
		UnbilledRevenue: fmt.Sprintf("%.2f %s", rep.UnbilledRevenue, currency),
		Warnings:        rep.MalformedSkipped,
	}
}

func entryToView(entry timesheet.Entry) entryView {
	view := entryView{
		ID:          entry.ID,
		Project:     entry.Project,
		Task:        entry.Task,
		Description: entry.Description,
		Start:       entry.StartTime.Format(time.RFC3339),
		Billable:    entry.Billable,
		HourlyRate:  entry.HourlyRate,
		InvoiceID:   entry.InvoiceID,
	}
	if entry.EndTime != nil {
		view.End = entry.EndTime.Format(time.RFC3339)
	}
	if seconds, ok := entry.Seconds(); ok {
		view.Seconds = seconds
	}
	return view
}

func entriesToViews(entries []timesheet.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entryToView(entry))
	}
	return out
}
