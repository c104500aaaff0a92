package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hourbook/config"
	"hourbook/storage"
	"hourbook/timesheet"
)

var (
	startDBPath      string
	startOwner       string
	startProject     string
	startTask        string
	startDescription string
	startRate        float64
	startNonBillable bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a timer for a new time entry",
	Long: `Start a running time entry (a timer).

Only one timer can run per owner. The entry stays invisible to all reports
until it is stopped: in-progress time is never counted or billed.

When --rate is omitted, the hourly rate is resolved from the configured
per-project rate rules, falling back to defaults.hourly_rate.`,
	Example: `
  # Start a billable timer with the configured project rate
  hourbook start --project "Acme Website" --task "Navbar rework"

  # Start an internal, non-billable timer
  hourbook start --project "Admin" --non-billable
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(startDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		rate := startRate
		if !cmd.Flags().Changed("rate") {
			rate = cfg.RateForProject(startProject)
		}
		if rate < 0 {
			return fmt.Errorf("hourly rate must be >= 0")
		}

		owner := startOwner
		if owner == "" {
			owner = cfg.Defaults.Owner
		}

		id, err := store.StartEntry(timesheet.Entry{
			Owner:       owner,
			Project:     startProject,
			Task:        startTask,
			Description: startDescription,
			StartTime:   time.Now(),
			Billable:    !startNonBillable,
			HourlyRate:  &rate,
		})
		if err != nil {
			if errors.Is(err, storage.ErrTimerRunning) {
				return fmt.Errorf("a timer is already running for %s; stop it first with: hourbook stop", owner)
			}
			return err
		}

		fmt.Printf("Timer started. Entry: %d, Project: %s, Rate: %.2f %s/h\n", id, startProject, rate, cfg.Defaults.Currency)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&startDBPath, "db", "./hourbook.db", "Path to local SQLite database")
	startCmd.Flags().StringVar(&startOwner, "owner", "", "Entry owner (default: defaults.owner from config)")
	startCmd.Flags().StringVar(&startProject, "project", "", "Project name")
	startCmd.Flags().StringVar(&startTask, "task", "", "Task name")
	startCmd.Flags().StringVar(&startDescription, "description", "", "Entry description")
	startCmd.Flags().Float64Var(&startRate, "rate", 0, "Hourly rate override (default: configured project rate)")
	startCmd.Flags().BoolVar(&startNonBillable, "non-billable", false, "Mark the entry as not billable")
}
