package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hourbook/config"
	"hourbook/internal/timeutil"
	"hourbook/invoicing"
	"hourbook/report"
	"hourbook/storage"
	"hourbook/timesheet"
)

var (
	unbilledDBPath  string
	unbilledOwner   string
	unbilledProject string
	unbilledSelect  []int64
	unbilledNumber  string
)

var unbilledCmd = &cobra.Command{
	Use:   "unbilled",
	Short: "List unbilled entries or build an invoice draft from a selection",
	Long: `List finalized, billable entries that are not yet linked to an invoice.

Unlike the weekly report, this candidate list has no time scope: everything
still owed is offered, oldest first.

With --select and --number, the selected entries become an invoice draft:
their line items are printed and the entries are linked to the new invoice
so they can never be billed twice.`,
	Example: `
  # List all unbilled entries with a running total
  hourbook unbilled

  # Restrict candidates to one project
  hourbook unbilled --project "Acme Website"

  # Build and save an invoice draft from entries 3, 5, and 9
  hourbook unbilled --select 3,5,9 --number 2026-014
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		owner := unbilledOwner
		if owner == "" {
			owner = cfg.Defaults.Owner
		}

		store, err := storage.OpenSQLite(unbilledDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListEntries(storage.Scope{Owner: owner, Project: unbilledProject})
		if err != nil {
			return err
		}

		candidates := invoicing.UnbilledCandidates(entries, unbilledProject)
		if len(unbilledSelect) == 0 {
			printCandidates(candidates, entries, time.Now(), cfg.Report.WindowDays, cfg.Defaults.Currency)
			return nil
		}

		number := strings.TrimSpace(unbilledNumber)
		if number == "" {
			return fmt.Errorf("--number is required when --select is used")
		}

		selected := invoicing.SelectForImport(candidates, unbilledSelect)
		if len(selected) == 0 {
			return fmt.Errorf("no unbilled entries match the selection")
		}

		draft := invoicing.BuildDraft(number, selected)
		invoiceID := "inv_" + number

		ids := make([]int64, 0, len(selected))
		for _, entry := range selected {
			ids = append(ids, entry.ID)
		}

		linked, err := store.SaveInvoiceDraft(invoiceID, number, ids)
		if err != nil {
			return err
		}

		fmt.Printf("Invoice draft %s saved (%s). Lines:\n", number, invoiceID)
		for _, line := range draft.Lines {
			fmt.Printf("  #%d %-30s %6.2fh x %8.2f = %10.2f %s\n",
				line.EntryID, line.Description, line.Hours, line.HourlyRate, line.Amount, cfg.Defaults.Currency)
		}
		fmt.Printf("Total: %s, %.2f %s, entries linked: %d\n",
			timeutil.FormatSeconds(draft.TotalSeconds), draft.TotalAmount, cfg.Defaults.Currency, linked)
		return nil
	},
}

func printCandidates(candidates, all []timesheet.Entry, now time.Time, windowDays int, currency string) {
	if len(candidates) == 0 {
		fmt.Println("No unbilled entries.")
		return
	}

	var totalSeconds int64
	fmt.Println("ID    Date        Project                        Duration   Rate")
	for _, entry := range candidates {
		seconds, _ := entry.Seconds()
		totalSeconds += seconds
		fmt.Printf("%-5d %s  %-30s %-10s %8.2f\n",
			entry.ID,
			entry.StartTime.Format("2006-01-02"),
			entry.Project,
			timeutil.FormatSeconds(seconds),
			entry.Rate(),
		)
	}
	fmt.Println()
	fmt.Printf("Candidates: %d, Total time: %s, Unbilled revenue: %.2f %s\n",
		len(candidates),
		timeutil.FormatSeconds(totalSeconds),
		report.ComputeUnbilledTotal(all, now, 0),
		currency,
	)
	fmt.Printf("Unbilled revenue (last %d days): %.2f %s\n",
		windowDays,
		report.ComputeUnbilledTotal(all, now, windowDays),
		currency,
	)
}

func init() {
	rootCmd.AddCommand(unbilledCmd)

	unbilledCmd.Flags().StringVar(&unbilledDBPath, "db", "./hourbook.db", "Path to local SQLite database")
	unbilledCmd.Flags().StringVar(&unbilledOwner, "owner", "", "Entry owner (default: defaults.owner from config)")
	unbilledCmd.Flags().StringVar(&unbilledProject, "project", "", "Restrict candidates to one project")
	unbilledCmd.Flags().Int64SliceVar(&unbilledSelect, "select", nil, "Entry IDs to import into an invoice draft")
	unbilledCmd.Flags().StringVar(&unbilledNumber, "number", "", "Invoice number for the draft")
}
