package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hourbook/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hourbook",
	Short: "Track work time, aggregate weekly stats, and reconcile unbilled revenue.",
	Long: `
**********************************************
*               HOURBOOK                     *
**********************************************

This CLI tracks time entries in a local SQLite database, aggregates them into
a rolling-week report with per-day hours, reconciles unbilled revenue, and
builds invoice drafts from selected unbilled entries.

Entries are either recorded live (start/stop a timer) or logged manually.
`,
	Example: `
  # Create configuration file
  hourbook config create

  # Start and stop a timer
  hourbook start --project "Acme Website" --task "Navbar rework"
  hourbook stop

  # Log a finished block of work manually
  hourbook log --date 2026-08-31 --from 09:00 --to 11:30 --project "Acme Website"

  # Show the rolling-week report
  hourbook report

  # List unbilled entries and build an invoice draft from a selection
  hourbook unbilled
  hourbook unbilled --select 3,5,9 --number 2026-014

  # Export raw entries or the weekly summary
  hourbook export --mode raw --output ./entries.csv
  hourbook export --mode weekly --output ./weekly.xlsx

  # Start the local dashboard
  hourbook serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.hourbook.yaml, then ./.hourbook.yaml)")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	switch cmd.Name() {
	case "start", "log", "serve", "report", "unbilled", "export":
		return true
	default:
		return false
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".hourbook" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hourbook")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: hourbook config create")
	}
}
