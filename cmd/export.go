package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hourbook/config"
	"hourbook/output"
	"hourbook/report"
	"hourbook/storage"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportDBPath string
	exportOwner  string
	exportDate   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries or the weekly summary to CSV/Excel",
	Long: `Export entries from SQLite.

Modes:
- raw: export each entry row (running entries appear with an empty end)
- weekly: export the rolling-week report (per-day hours, totals, unbilled revenue)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export raw entries to CSV
  hourbook export --mode raw --db ./hourbook.db --output ./entries.csv

  # Export raw entries to Excel
  hourbook export --mode raw --db ./hourbook.db --output ./entries.xlsx

  # Export the weekly summary as of a reference date
  hourbook export --mode weekly --date 2026-06-10 --output ./weekly.csv

  # Force Excel format independent of extension
  hourbook export --mode weekly --format excel --output ./weekly.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		owner := exportOwner
		if owner == "" {
			owner = cfg.Defaults.Owner
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			entries, err := store.ListEntries(storage.Scope{Owner: owner})
			if err != nil {
				return err
			}
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "weekly":
			now := time.Now()
			if strings.TrimSpace(exportDate) != "" {
				now, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(exportDate), time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date value %q (expected YYYY-MM-DD)", exportDate)
				}
			}
			entries, err := store.ListEntries(storage.Scope{Owner: owner, Since: now.AddDate(0, 0, -14)})
			if err != nil {
				return err
			}
			rep := report.ComputeWeeklyStats(entries, now)
			rows := output.BuildWeeklySummaryRows(rep, cfg.Defaults.Currency)
			if err := output.WriteWeeklySummary(exportOutput, format, rows); err != nil {
				return err
			}
			fmt.Printf("Export completed. Mode: weekly, Format: %s, File: %s\n", format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, weekly)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|weekly")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./hourbook.db", "Path to local SQLite database")
	exportCmd.Flags().StringVar(&exportOwner, "owner", "", "Entry owner (default: defaults.owner from config)")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Reference date for weekly mode, format YYYY-MM-DD (default: today)")

	_ = exportCmd.MarkFlagRequired("output")
}
