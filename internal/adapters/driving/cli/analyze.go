package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/logger"
)

var (
	analyzeClient      string
	analyzeCompetitors []string
	analyzeOutput      string
	analyzeFormat      string
	analyzeNoArchive   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a content-gap analysis",
	Long: `Fetches the client page and every competitor page, finds the entities and
keywords that at least two competitors use and the client page lacks, ranks
them and writes integration advice.

Reports are written to the output directory as
analysis_report_YYYYMMDD_HHMMSS.<ext>, one file per format.

Examples:
  gapscope analyze --client https://example.com/pricing \
    --competitor https://a.com/pricing --competitor https://b.com/pricing

  gapscope analyze --client https://example.com/pricing \
    --competitor https://a.com/pricing --competitor https://b.com/pricing \
    --format markdown,html,json --output reports`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeClient, "client", "", "client page URL")
	analyzeCmd.Flags().StringArrayVar(&analyzeCompetitors, "competitor", nil,
		"competitor page URL (repeat, at least 2)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "report directory (default from settings)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "",
		"comma-separated report formats: markdown, xlsx, html, json (default from settings)")
	analyzeCmd.Flags().BoolVar(&analyzeNoArchive, "no-archive", false, "do not store this run in the archive")
	_ = analyzeCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if reportService == nil {
		return errors.New("report service not configured")
	}
	if newAnalysis == nil {
		return errors.New("analysis service not configured")
	}

	req := domain.AnalysisRequest{
		ClientURL:      analyzeClient,
		CompetitorURLs: analyzeCompetitors,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	formats := settings.Output.Formats
	if analyzeFormat != "" {
		formats, err = domain.ParseReportFormats(analyzeFormat)
		if err != nil {
			return err
		}
	}
	dir := settings.Output.Dir
	if analyzeOutput != "" {
		dir = analyzeOutput
	}

	ctx := cmd.Context()
	svc, release, err := newAnalysis(ctx, settings)
	if err != nil {
		return err
	}
	defer release()

	state, err := svc.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	paths, err := reportService.Export(ctx, state, dir, formats)
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	if !analyzeNoArchive && settings.Archive.Enabled && historyService != nil {
		if err := historyService.Record(ctx, state); err != nil {
			logger.Warn("%v", err)
		}
	}

	out := cmd.OutOrStdout()
	writeSummary(out, state, paths, isTerminal(out))
	return nil
}
