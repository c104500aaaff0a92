package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hourbook/config"
	"hourbook/internal/timeutil"
	"hourbook/storage"
)

var (
	stopDBPath string
	stopOwner  string
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer and finalize the entry",
	Example: `
  # Stop the current timer
  hourbook stop
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(stopDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		owner := stopOwner
		if owner == "" {
			owner = cfg.Defaults.Owner
		}

		active, running, err := store.ActiveEntry(owner)
		if err != nil {
			return err
		}
		if !running {
			return fmt.Errorf("no timer is running for %s", owner)
		}

		if err := store.StopEntry(active.ID, time.Now()); err != nil {
			return err
		}

		stopped, _, err := store.GetEntryByID(active.ID)
		if err != nil {
			return err
		}

		seconds, _ := stopped.Seconds()
		fmt.Printf("Timer stopped. Entry: %d, Duration: %s\n", stopped.ID, timeutil.FormatSeconds(seconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)

	stopCmd.Flags().StringVar(&stopDBPath, "db", "./hourbook.db", "Path to local SQLite database")
	stopCmd.Flags().StringVar(&stopOwner, "owner", "", "Entry owner (default: defaults.owner from config)")
}
