// Package cli implements the gapscope command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/ai"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/fetch/web"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/htmlreport"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/jsonreport"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/markdown"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/spreadsheet"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
	"github.com/custodia-labs/gapscope/internal/core/services"
	"github.com/custodia-labs/gapscope/internal/logger"
	"github.com/custodia-labs/gapscope/internal/normalisers"
)

// version is set at build time.
var version = "dev"

// annotationNoServices marks commands that run without the service graph.
const annotationNoServices = "gapscope/no-services"

// Global flags.
var (
	verbose   bool
	configDir string
	logFile   string
)

// analysisFactory builds a pipeline for one set of settings. The returned
// release func closes the network clients the pipeline holds.
type analysisFactory func(ctx context.Context, settings *domain.AppSettings) (driving.GapAnalysisService, func(), error)

// Services used by commands. wireServices fills any that are still nil.
var (
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	reportService   driving.ReportService
	newAnalysis     analysisFactory
)

// cleanups run in reverse order when the command finishes.
var cleanups []func()

var rootCmd = &cobra.Command{
	Use:   "gapscope",
	Short: "Find the topics competitors cover that your page does not",
	Long: `gapscope compares a client page against competitor pages on the same topic.

It extracts entities and keywords from every page, keeps those that at least
two competitors use and the client page lacks, asks a language model to pick
the most relevant ones, and writes integration advice for each of them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline stage")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"configuration directory (default $"+file.HomeEnv+" or ~/.gapscope)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write log output to this file")
}

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Interrupts cancel the command context so a
// running analysis stops and writes nothing.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer teardown()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		return err
	}
	return nil
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logFile != "" {
		closeLog, err := logger.SetLogFile(logFile)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func() { _ = closeLog() })
	}

	if cmd.Annotations[annotationNoServices] != "" {
		return nil
	}
	return wireServices()
}

func teardown() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return file.DefaultDir()
}

// wireServices builds the service graph from the config directory.
func wireServices() error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}

	if settingsService == nil {
		store, err := file.NewConfigStore(dir)
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	}

	if reportService == nil {
		reportService = services.NewReportService(
			markdown.New(),
			spreadsheet.New(),
			htmlreport.New(),
			jsonreport.New(),
		)
	}

	if historyService == nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		runs, err := openRunStore(dir, settings.Archive.Enabled)
		if err != nil {
			return err
		}
		historyService = services.NewHistoryService(runs)
	}

	if newAnalysis == nil {
		newAnalysis = func(ctx context.Context, settings *domain.AppSettings) (driving.GapAnalysisService, func(), error) {
			return buildAnalysis(ctx, settings, dir)
		}
	}
	return nil
}

// openRunStore opens the sqlite archive, or an in-process store when the
// archive is disabled.
func openRunStore(dir string, enabled bool) (driven.RunStore, error) {
	if !enabled {
		return memory.NewRunStore(), nil
	}
	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open run archive: %w", err)
	}
	cleanups = append(cleanups, func() { _ = store.Close() })
	logger.Debug("run archive: %s", store.Path())
	return store.RunStore(), nil
}

// buildAnalysis creates the network clients for one pipeline.
func buildAnalysis(
	ctx context.Context,
	settings *domain.AppSettings,
	dir string,
) (driving.GapAnalysisService, func(), error) {
	prompts, err := file.NewPromptStore(dir)
	if err != nil {
		return nil, nil, err
	}
	if err := prompts.Err(); err != nil {
		logger.Warn("ignoring %s: %v", prompts.Path(), err)
	}

	normaliser, err := normalisers.New(settings.Fetch.Extractor)
	if err != nil {
		return nil, nil, err
	}

	clients, err := ai.Init(ctx, settings)
	if err != nil {
		return nil, nil, err
	}

	userAgent := settings.Fetch.UserAgent
	if userAgent == "" {
		userAgent = "gapscope/" + version
	}
	fetcher := web.New(web.Config{
		Timeout:    settings.Fetch.Timeout,
		UserAgent:  userAgent,
		Normaliser: normaliser,
	})

	svc := services.NewGapAnalysisService(
		fetcher,
		services.NewAnalyzer(clients.Annotator, settings.Analysis.KeywordMatch),
		services.NewSelector(clients.LLMService, prompts, settings.Analysis.ShortlistSize),
		services.NewAdvisor(clients.LLMService, prompts),
		settings.Analysis.AdviceConcurrency,
	)

	release := func() {
		clients.Close()
		_ = fetcher.Close()
	}
	return svc, release, nil
}
