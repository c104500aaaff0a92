package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hourbook/config"
	"hourbook/storage"
	"hourbook/timesheet"
)

var (
	logDBPath      string
	logOwner       string
	logProject     string
	logTask        string
	logDescription string
	logDate        string
	logFrom        string
	logTo          string
	logRate        float64
	logNonBillable bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a finished block of work manually",
	Long: `Log a completed time entry without running a timer.

The entry is stored finalized and immediately participates in weekly
reports and unbilled reconciliation.`,
	Example: `
  # Log 2.5 billable hours for today
  hourbook log --from 09:00 --to 11:30 --project "Acme Website" --description "API review"

  # Log internal time on a past day at no rate
  hourbook log --date 2026-08-24 --from 14:00 --to 15:00 --project "Admin" --non-billable
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(logDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		day := time.Now()
		if strings.TrimSpace(logDate) != "" {
			day, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(logDate), time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date value %q (expected YYYY-MM-DD)", logDate)
			}
		}

		start, end, err := resolveLogWindow(day, logFrom, logTo)
		if err != nil {
			return err
		}

		rate := logRate
		if !cmd.Flags().Changed("rate") {
			rate = cfg.RateForProject(logProject)
		}
		if rate < 0 {
			return fmt.Errorf("hourly rate must be >= 0")
		}

		owner := logOwner
		if owner == "" {
			owner = cfg.Defaults.Owner
		}

		id, err := store.InsertEntry(timesheet.Entry{
			Owner:       owner,
			Project:     logProject,
			Task:        logTask,
			Description: logDescription,
			StartTime:   start,
			EndTime:     &end,
			Billable:    !logNonBillable,
			HourlyRate:  &rate,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Entry logged. Entry: %d, %s %s-%s\n", id, start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04"))
		return nil
	},
}

// resolveLogWindow combines the day with HH:MM boundaries and rejects a
// window that would produce a non-positive duration.
func resolveLogWindow(day time.Time, fromValue, toValue string) (time.Time, time.Time, error) {
	fromMinutes, err := parseClockMinutes(fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value (expected HH:MM)")
	}
	toMinutes, err := parseClockMinutes(toValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value (expected HH:MM)")
	}
	if toMinutes <= fromMinutes {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	start := dayStart.Add(time.Duration(fromMinutes) * time.Minute)
	end := dayStart.Add(time.Duration(toMinutes) * time.Minute)
	return start, end, nil
}

func parseClockMinutes(value string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().StringVar(&logDBPath, "db", "./hourbook.db", "Path to local SQLite database")
	logCmd.Flags().StringVar(&logOwner, "owner", "", "Entry owner (default: defaults.owner from config)")
	logCmd.Flags().StringVar(&logProject, "project", "", "Project name")
	logCmd.Flags().StringVar(&logTask, "task", "", "Task name")
	logCmd.Flags().StringVar(&logDescription, "description", "", "Entry description")
	logCmd.Flags().StringVar(&logDate, "date", "", "Entry date, format YYYY-MM-DD (default: today)")
	logCmd.Flags().StringVar(&logFrom, "from", "", "Start of the work block, format HH:MM")
	logCmd.Flags().StringVar(&logTo, "to", "", "End of the work block, format HH:MM")
	logCmd.Flags().Float64Var(&logRate, "rate", 0, "Hourly rate override (default: configured project rate)")
	logCmd.Flags().BoolVar(&logNonBillable, "non-billable", false, "Mark the entry as not billable")

	_ = logCmd.MarkFlagRequired("from")
	_ = logCmd.MarkFlagRequired("to")
}
