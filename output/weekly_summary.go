package output

import (
	"fmt"

	"hourbook/report"
)

// WeeklySummaryRow is one exported line of the rolling-week report: the
// seven day buckets first, followed by the three totals.
type WeeklySummaryRow struct {
	Label string
	Value string
}

func BuildWeeklySummaryRows(rep report.WeeklyReport, currency string) []WeeklySummaryRow {
	rows := make([]WeeklySummaryRow, 0, len(rep.Chart)+3)
	for _, bucket := range rep.Chart {
		rows = append(rows, WeeklySummaryRow{
			Label: bucket.Label,
			Value: fmt.Sprintf("%.1f", bucket.Hours),
		})
	}
	rows = append(rows,
		WeeklySummaryRow{
			Label: "Total hours this week",
			Value: fmt.Sprintf("%.2f", float64(rep.TotalSecondsThisWeek)/3600),
		},
		WeeklySummaryRow{
			Label: "Total hours last week",
			Value: fmt.Sprintf("%.2f", float64(rep.TotalSecondsLastWeek)/3600),
		},
		WeeklySummaryRow{
			Label: "Unbilled revenue",
			Value: fmt.Sprintf("%.2f %s", rep.UnbilledRevenue, currency),
		},
	)
	return rows
}

func WriteWeeklySummary(path, format string, rows []WeeklySummaryRow) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeWeeklySummaryCSV(path, rows)
	case "excel", "xlsx":
		return writeWeeklySummaryExcel(path, rows)
	default:
		return fmt.Errorf("unsupported output format for weekly summary: %s", format)
	}
}
