package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hourbook configuration file values.",
	Long: `Create and display the hourbook configuration file.

The configuration stores application-wide values and per-project rate rules:
- defaults.owner / defaults.currency / defaults.hourly_rate
- report.window_days
- rates[].project / rates[].hourly_rate`,
	Example: `
  # Create default config in $HOME/.hourbook.yaml
  hourbook config create

  # Show active config and source file
  hourbook config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
