// Package report computes the rolling-week time aggregation and the
// unbilled-revenue reconciliation. All functions are pure: the reference
// time is a parameter, entries are read-only, and the returned report
// holds no reference back to its inputs.
package report

import (
	"math"
	"time"

	"hourbook/internal/timeutil"
	"hourbook/timesheet"
)

// DayBucket is one chart point: hours worked on one day of the rolling
// week, rounded to one decimal place.
type DayBucket struct {
	Label string  `json:"dayLabel"`
	Hours float64 `json:"hours"`
}

// WeeklyReport is computed fresh on every request and never persisted.
type WeeklyReport struct {
	TotalSecondsThisWeek int64       `json:"totalSecondsThisWeek"`
	TotalSecondsLastWeek int64       `json:"totalSecondsLastWeek"`
	UnbilledRevenue      float64     `json:"unbilledRevenue"`
	Chart                []DayBucket `json:"weeklyChartData"`
	MalformedSkipped     int         `json:"malformedSkipped"`
}

// ComputeWeeklyStats aggregates finalized entries into the rolling-week
// report relative to now:
//
//   - this week covers the trailing 7 days ending today (inclusive),
//   - last week covers the 7 days before that,
//   - anything older is ignored even if the caller's query let it through.
//
// Active entries (no end time) are excluded entirely; their time is not
// counted until the timer is stopped. Malformed entries are skipped and
// counted in MalformedSkipped so callers can surface a warning.
func ComputeWeeklyStats(entries []timesheet.Entry, now time.Time) WeeklyReport {
	weekStart := timeutil.StartOfDay(now.AddDate(0, 0, -6))
	lastWeekStart := timeutil.StartOfDay(now.AddDate(0, 0, -13))
	lastWeekEnd := timeutil.EndOfDay(now.AddDate(0, 0, -7))

	// Pre-seed the seven day buckets chronologically so output order and
	// completeness never depend on entry arrival order.
	labels := make([]string, 0, 7)
	hoursByDay := make(map[string]float64, 7)
	for offset := -6; offset <= 0; offset++ {
		label := timeutil.DayLabel(now.AddDate(0, 0, offset))
		labels = append(labels, label)
		hoursByDay[label] = 0
	}

	var out WeeklyReport
	for _, entry := range entries {
		if entry.Active() {
			continue
		}
		seconds, ok := entry.Seconds()
		if !ok {
			out.MalformedSkipped++
			continue
		}

		switch {
		case !entry.StartTime.Before(weekStart):
			out.TotalSecondsThisWeek += seconds
			hoursByDay[timeutil.DayLabel(entry.StartTime)] += float64(seconds) / 3600
			if entry.Billable && !entry.Billed() {
				out.UnbilledRevenue += float64(seconds) / 3600 * entry.Rate()
			}
		case !entry.StartTime.Before(lastWeekStart) && !entry.StartTime.After(lastWeekEnd):
			out.TotalSecondsLastWeek += seconds
		}
	}

	// Rounding happens only here; accumulation keeps full precision so
	// same-day entries don't compound rounding error.
	out.Chart = make([]DayBucket, 0, len(labels))
	for _, label := range labels {
		out.Chart = append(out.Chart, DayBucket{Label: label, Hours: roundHours(hoursByDay[label])})
	}
	return out
}

// ComputeUnbilledTotal sums hourly revenue for finalized, billable,
// not-yet-invoiced entries. windowDays > 0 scopes the total to a trailing
// window ending today; windowDays <= 0 disables the scope. The weekly
// dashboard passes 7, the invoice import candidate list passes 0 — the two
// consumers use different scopes and must not be conflated.
func ComputeUnbilledTotal(entries []timesheet.Entry, now time.Time, windowDays int) float64 {
	var cutoff time.Time
	if windowDays > 0 {
		cutoff = timeutil.StartOfDay(now.AddDate(0, 0, -(windowDays - 1)))
	}

	total := 0.0
	for _, entry := range entries {
		if entry.Active() || !entry.Billable || entry.Billed() {
			continue
		}
		seconds, ok := entry.Seconds()
		if !ok {
			continue
		}
		if windowDays > 0 && entry.StartTime.Before(cutoff) {
			continue
		}
		total += float64(seconds) / 3600 * entry.Rate()
	}
	return total
}

func roundHours(value float64) float64 {
	return math.Round(value*10) / 10
}
