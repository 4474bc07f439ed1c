package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/htmlreport"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/jsonreport"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/markdown"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/spreadsheet"
	"github.com/custodia-labs/gapscope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
	"github.com/custodia-labs/gapscope/internal/core/services"
)

var runFinished = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// stubAnalysis is a driving.GapAnalysisService returning a fixed run.
type stubAnalysis struct {
	state   *domain.FinalState
	err     error
	lastReq domain.AnalysisRequest
	calls   int
}

func (s *stubAnalysis) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.FinalState, error) {
	s.calls++
	s.lastReq = req
	return s.state, s.err
}

// testEnv holds the services wired for one CLI test.
type testEnv struct {
	settings *services.SettingsService
	runs     *memory.RunStore
	analysis *stubAnalysis
	built    int
	released int
}

// useTestServices wires real services over in-memory stores.
func useTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		settings: services.NewSettingsService(memory.NewConfigStore(), nil),
		runs:     memory.NewRunStore(),
		analysis: &stubAnalysis{state: sampleRun("run-1")},
	}

	settingsService = env.settings
	historyService = services.NewHistoryService(env.runs)
	reportService = services.NewReportService(markdown.New(), spreadsheet.New(), htmlreport.New(), jsonreport.New())
	newAnalysis = func(_ context.Context, _ *domain.AppSettings) (driving.GapAnalysisService, func(), error) {
		env.built++
		return env.analysis, func() { env.released++ }, nil
	}

	t.Cleanup(resetServices)
	return env
}

func resetServices() {
	settingsService = nil
	historyService = nil
	reportService = nil
	newAnalysis = nil
}

func sampleRun(id string) *domain.FinalState {
	return &domain.FinalState{
		RunID:     id,
		ClientURL: "https://client.com/page",
		Competitors: []domain.CompetitorPage{
			{URL: "https://a.com/one", Label: "comp_a.com"},
			{URL: "https://b.com/two", Label: "comp_b.com"},
		},
		Comparison: domain.ComparisonResult{
			MissingEntities: map[string]domain.MissingEntity{
				"refund schedule": {
					Type: domain.EntityTypeOther,
					Competitors: map[string]domain.EntityCompetitorMetrics{
						"comp_a.com": {Salience: 0.4},
						"comp_b.com": {Salience: 0.6},
					},
				},
			},
		},
		Selections: []domain.EntitySelection{
			{EntityName: "refund schedule", EntityType: "OTHER", RelevanceScore: 0.9, Reasoning: "both competitors explain it"},
		},
		Recommendations: []domain.EntityRecommendation{{
			EntityContext: domain.EntitySelection{EntityName: "refund schedule", RelevanceScore: 0.9},
			IntegrationOpportunities: []domain.IntegrationOpportunity{
				{Section: "FAQ", Recommendation: "Add a refund timeline"},
			},
		}},
		StartedAt:  runFinished.Add(-time.Minute),
		FinishedAt: runFinished,
	}
}

// resetFlags restores every flag to its default so package-level commands
// can be executed more than once.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args in an isolated config
// directory and returns everything written to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	t.Cleanup(teardown)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
