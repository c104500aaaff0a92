package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hourbook/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  hourbook config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("defaults.owner: %s\n", cfg.Defaults.Owner)
			fmt.Printf("defaults.currency: %s\n", cfg.Defaults.Currency)
			fmt.Printf("defaults.hourly_rate: %.2f\n", cfg.Defaults.HourlyRate)
			fmt.Printf("report.window_days: %d\n", cfg.Report.WindowDays)
			fmt.Printf("rates: %d\n", len(cfg.Rates))
			for i, rule := range cfg.Rates {
				fmt.Printf("rates[%d].project: %s\n", i, rule.Project)
				fmt.Printf("rates[%d].hourly_rate: %.2f\n", i, rule.HourlyRate)
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
