package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hourbook/config"
	"hourbook/internal/timeutil"
	"hourbook/report"
	"hourbook/storage"
)

var (
	reportDBPath string
	reportOwner  string
	reportDate   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the rolling-week report with per-day hours and unbilled revenue",
	Long: `Aggregate finalized entries into the rolling-week report.

"This week" is the trailing 7-day window ending on the reference date
(inclusive); "last week" is the 7 days before that. Running timers and
malformed entries are excluded.`,
	Example: `
  # Report for today
  hourbook report

  # Report as of a past reference date
  hourbook report --date 2026-06-10
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		now := time.Now()
		if strings.TrimSpace(reportDate) != "" {
			now, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(reportDate), time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date value %q (expected YYYY-MM-DD)", reportDate)
			}
		}

		owner := reportOwner
		if owner == "" {
			owner = cfg.Defaults.Owner
		}

		store, err := storage.OpenSQLite(reportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListEntries(storage.Scope{Owner: owner, Since: now.AddDate(0, 0, -14)})
		if err != nil {
			return err
		}

		rep := report.ComputeWeeklyStats(entries, now)
		printWeeklyReport(rep, cfg.Defaults.Currency)
		return nil
	},
}

func printWeeklyReport(rep report.WeeklyReport, currency string) {
	fmt.Println("Day   Hours")
	for _, bucket := range rep.Chart {
		fmt.Printf("%-5s %5.1f\n", bucket.Label, bucket.Hours)
	}
	fmt.Println()
	fmt.Printf("This week: %s\n", timeutil.FormatSeconds(rep.TotalSecondsThisWeek))
	fmt.Printf("Last week: %s\n", timeutil.FormatSeconds(rep.TotalSecondsLastWeek))
	fmt.Printf("Unbilled revenue: %.2f %s\n", rep.UnbilledRevenue, currency)
	if rep.MalformedSkipped > 0 {
		fmt.Printf("Warning: %d malformed entries skipped\n", rep.MalformedSkipped)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportDBPath, "db", "./hourbook.db", "Path to local SQLite database")
	reportCmd.Flags().StringVar(&reportOwner, "owner", "", "Entry owner (default: defaults.owner from config)")
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Reference date, format YYYY-MM-DD (default: today)")
}
