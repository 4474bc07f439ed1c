package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived runs",
	Long: `List, show and delete completed runs stored in the local archive.

Runs are archived after their reports are written unless archive.enabled is
false or analyze was given --no-archive.`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print the report of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs (0 = all)")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", string(domain.ReportFormatMarkdown),
		"report format: markdown or json")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No archived runs.")
		return nil
	}

	for _, run := range runs {
		cmd.Printf("%s  %s  %s\n", run.ID, run.CreatedAt.UTC().Format(time.DateTime), run.ClientURL)
		cmd.Printf("    competitors: %d  missing entities: %d  missing keywords: %d  selected: %d",
			run.CompetitorCount, run.MissingEntityCount, run.MissingKeywordCount, run.SelectedCount)
		if run.FailureCount > 0 {
			cmd.Printf("  skipped: %d", run.FailureCount)
		}
		cmd.Println()
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	if reportService == nil {
		return errors.New("report service not configured")
	}

	format := domain.ReportFormat(historyFormat)
	if format == "md" {
		format = domain.ReportFormatMarkdown
	}
	if format != domain.ReportFormatMarkdown && format != domain.ReportFormatJSON {
		return fmt.Errorf("%w: report format %q (use markdown or json)", domain.ErrUnsupportedType, historyFormat)
	}

	state, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	data, err := reportService.Render(state, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	if err := historyService.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}
