package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

const (
	clientURL = "https://client.com/page"
	compA     = "https://www.a.com/one"
	compB     = "https://b.com/two"
	compC     = "https://c.com/three"
)

var runStart = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func entities(saliences map[string]float64) *domain.Annotation {
	a := &domain.Annotation{}
	for name, s := range saliences {
		a.Entities = append(a.Entities, domain.AnnotatedEntity{
			Name:         name,
			EntityRecord: domain.EntityRecord{Type: domain.EntityTypeOther, Salience: s},
		})
	}
	return a
}

func testFetcher() *mockFetcher {
	return &mockFetcher{
		pages: map[string]string{
			clientURL: "client text",
			compA:     "a text",
			compB:     "b text",
			compC:     "c text",
		},
		errs: map[string]error{},
	}
}

func testAnnotator() *mockAnnotator {
	return &mockAnnotator{
		annotations: map[string]*domain.Annotation{
			"client text": entities(map[string]float64{"pricing": 0.9}),
			"a text":      entities(map[string]float64{"refund schedule": 0.4, "warranty": 0.3, "pricing": 0.1}),
			"b text":      entities(map[string]float64{"refund schedule": 0.6, "warranty": 0.2}),
			"c text":      entities(map[string]float64{"shipping": 0.5}),
		},
		errs: map[string]error{},
	}
}

// pipelineLLM ranks every missing entity and advises on each, failing
// the entities named in fail.
func pipelineLLM(fail ...string) *mockLLMService {
	failing := make(map[string]bool, len(fail))
	for _, f := range fail {
		failing[f] = true
	}
	return &mockLLMService{chat: func(messages []driven.ChatMessage) (string, error) {
		if messages[0].Content == testSelectionSystem {
			return `{"selected_entities": [
				{"entity_name": "refund schedule", "entity_type": "OTHER", "relevance_score": 0.9, "reasoning": "intent"},
				{"entity_name": "warranty", "entity_type": "OTHER", "relevance_score": 0.7, "reasoning": "trust"}
			]}`, nil
		}
		if failing[adviceEntity(messages)] {
			return "", fmt.Errorf("%w: connection reset", domain.ErrLLMUnavailable)
		}
		return adviceReplyJSON, nil
	}}
}

func newTestPipeline(fetcher *mockFetcher, annotator *mockAnnotator, llm *mockLLMService) *GapAnalysisService {
	prompts := &mockPromptStore{}
	s := NewGapAnalysisService(
		fetcher,
		NewAnalyzer(annotator, domain.KeywordMatchToken),
		NewSelector(llm, prompts, 10),
		NewAdvisor(llm, prompts),
		2,
	)
	tick := 0
	s.now = func() time.Time {
		tick++
		return runStart.Add(time.Duration(tick-1) * time.Minute)
	}
	s.newID = func() string { return "run-1" }
	return s
}

func request(competitors ...string) domain.AnalysisRequest {
	return domain.AnalysisRequest{ClientURL: clientURL, CompetitorURLs: competitors}
}

func TestGapAnalysis_FullRun(t *testing.T) {
	annotator := testAnnotator()
	s := newTestPipeline(testFetcher(), annotator, pipelineLLM())

	state, err := s.Analyze(context.Background(), request(compA, compB, compC))
	require.NoError(t, err)

	assert.Equal(t, "run-1", state.RunID)
	assert.Equal(t, clientURL, state.ClientURL)
	assert.Equal(t, runStart, state.StartedAt)
	assert.Equal(t, runStart.Add(time.Minute), state.FinishedAt)
	assert.Empty(t, state.Failures)
	assert.Equal(t, int32(4), annotator.calls.Load())

	assert.Equal(t, []domain.CompetitorPage{
		{URL: compA, Label: "comp_a.com"},
		{URL: compB, Label: "comp_b.com"},
		{URL: compC, Label: "comp_c.com"},
	}, state.Competitors)
	require.Len(t, state.CompetitorAnalyses, 3)
	assert.Equal(t, compB, state.CompetitorAnalyses[1].URL)
	assert.True(t, state.ClientAnalysis.HasEntity("pricing"))

	assert.Equal(t, []string{"refund schedule", "warranty"}, state.Comparison.EntityNames())
	assert.Equal(t, map[string]domain.EntityCompetitorMetrics{
		"comp_a.com": {Salience: 0.4},
		"comp_b.com": {Salience: 0.6},
	}, state.Comparison.MissingEntities["refund schedule"].Competitors)
	assert.Equal(t, []string{"comp_a.com", "comp_b.com"},
		state.Comparison.MissingKeywords["warranty"].CompetitorKeys())

	require.Len(t, state.Selections, 2)
	assert.Equal(t, []string{"comp_a.com", "comp_b.com"}, state.Selections[0].Competitors)

	require.Len(t, state.Recommendations, 2)
	assert.Equal(t, "refund schedule", state.Recommendations[0].EntityContext.EntityName)
	assert.Equal(t, "warranty", state.Recommendations[1].EntityContext.EntityName)
	assert.NotEmpty(t, state.Recommendations[0].IntegrationOpportunities)
}

func TestGapAnalysis_CompetitorTimeoutExcluded(t *testing.T) {
	compA2 := "https://a.com/three"
	fetcher := testFetcher()
	fetcher.pages[compA2] = "a2 text"
	fetcher.errs[compB] = fmt.Errorf("%w: %s: %w", domain.ErrPageUnavailable, compB, context.DeadlineExceeded)
	annotator := testAnnotator()
	annotator.annotations["a2 text"] = entities(map[string]float64{"refund schedule": 0.5})

	s := newTestPipeline(fetcher, annotator, pipelineLLM())
	state, err := s.Analyze(context.Background(), request(compA, compB, compA2))
	require.NoError(t, err)

	// Labels come from the full input list, so the second a.com page keeps its suffix.
	assert.Equal(t, []domain.CompetitorPage{
		{URL: compA, Label: "comp_a.com"},
		{URL: compA2, Label: "comp_a.com_2"},
	}, state.Competitors)
	assert.NotContains(t, state.CompetitorURLs(), compB)
	assert.Equal(t, int32(3), annotator.calls.Load())

	require.Len(t, state.Failures, 1)
	assert.Equal(t, domain.StageFetch, state.Failures[0].Stage)
	assert.Equal(t, compB, state.Failures[0].Subject)

	assert.Equal(t, []string{"refund schedule"}, state.Comparison.EntityNames())
	for _, missing := range state.Comparison.MissingEntities {
		assert.NotContains(t, missing.Competitors, "comp_b.com")
		assert.NotContains(t, missing.Competitors, compB)
	}
}

func TestGapAnalysis_BaselineFetchFatal(t *testing.T) {
	fetcher := testFetcher()
	fetcher.errs[clientURL] = fmt.Errorf("%w: 500", domain.ErrPageUnavailable)
	annotator := testAnnotator()
	llm := pipelineLLM()

	_, err := newTestPipeline(fetcher, annotator, llm).Analyze(context.Background(), request(compA, compB))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBaselineUnavailable)
	assert.ErrorIs(t, err, domain.ErrPageUnavailable)
	assert.Equal(t, int32(0), annotator.calls.Load())
	assert.Equal(t, 0, llm.callCount())
}

func TestGapAnalysis_BaselineAnalyzeFatal(t *testing.T) {
	annotator := testAnnotator()
	annotator.errs["client text"] = fmt.Errorf("%w: quota", domain.ErrAnnotationFailed)

	_, err := newTestPipeline(testFetcher(), annotator, pipelineLLM()).
		Analyze(context.Background(), request(compA, compB))
	assert.ErrorIs(t, err, domain.ErrBaselineUnavailable)
	assert.ErrorIs(t, err, domain.ErrAnnotationFailed)
}

func TestGapAnalysis_ValidationBeforeNetwork(t *testing.T) {
	fetcher := testFetcher()

	_, err := newTestPipeline(fetcher, testAnnotator(), pipelineLLM()).
		Analyze(context.Background(), request(compA))
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.ErrorIs(t, err, domain.ErrTooFewCompetitors)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestGapAnalysis_AdviceFailureDropsEntity(t *testing.T) {
	s := newTestPipeline(testFetcher(), testAnnotator(), pipelineLLM("warranty"))

	state, err := s.Analyze(context.Background(), request(compA, compB, compC))
	require.NoError(t, err)

	assert.Len(t, state.Selections, 2)
	require.Len(t, state.Recommendations, 1)
	assert.Equal(t, "refund schedule", state.Recommendations[0].EntityContext.EntityName)
	_, ok := state.Recommendation("warranty")
	assert.False(t, ok)

	require.Len(t, state.Failures, 1)
	assert.Equal(t, domain.StageAdvise, state.Failures[0].Stage)
	assert.Equal(t, "warranty", state.Failures[0].Subject)
	assert.Contains(t, state.Failures[0].Message, "connection reset")
}

func TestGapAnalysis_AllAdviceFails(t *testing.T) {
	s := newTestPipeline(testFetcher(), testAnnotator(), pipelineLLM("warranty", "refund schedule"))

	state, err := s.Analyze(context.Background(), request(compA, compB, compC))
	require.NoError(t, err)
	assert.Empty(t, state.Recommendations)
	assert.Len(t, state.Failures, 2)
}

func TestGapAnalysis_SelectionFailureContinues(t *testing.T) {
	llm := &mockLLMService{chat: replies(fmt.Errorf("%w: 503", domain.ErrLLMUnavailable))}

	state, err := newTestPipeline(testFetcher(), testAnnotator(), llm).
		Analyze(context.Background(), request(compA, compB, compC))
	require.NoError(t, err)

	assert.Empty(t, state.Selections)
	assert.Empty(t, state.Recommendations)
	assert.Len(t, state.Comparison.MissingEntities, 2)
	require.Len(t, state.Failures, 1)
	assert.Equal(t, domain.StageSelect, state.Failures[0].Stage)
	assert.Equal(t, 1, llm.callCount())
}

func TestGapAnalysis_CompetitorAnalyzeFailureExcluded(t *testing.T) {
	annotator := testAnnotator()
	annotator.errs["c text"] = fmt.Errorf("%w: timeout", domain.ErrAnnotationFailed)

	state, err := newTestPipeline(testFetcher(), annotator, pipelineLLM()).
		Analyze(context.Background(), request(compA, compB, compC))
	require.NoError(t, err)

	assert.Equal(t, []string{compA, compB}, state.CompetitorURLs())
	require.Len(t, state.Failures, 1)
	assert.Equal(t, domain.StageAnalyze, state.Failures[0].Stage)
	assert.Equal(t, compC, state.Failures[0].Subject)
}

func TestGapAnalysis_NoGapsSkipsModel(t *testing.T) {
	annotator := testAnnotator()
	annotator.annotations["client text"] = entities(map[string]float64{
		"pricing": 0.9, "refund schedule": 0.2, "warranty": 0.1,
	})
	llm := pipelineLLM()

	state, err := newTestPipeline(testFetcher(), annotator, llm).
		Analyze(context.Background(), request(compA, compB, compC))
	require.NoError(t, err)
	assert.Empty(t, state.Comparison.MissingEntities)
	assert.Empty(t, state.Selections)
	assert.Equal(t, 0, llm.callCount())
}

func TestGapAnalysis_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(testFetcher(), testAnnotator(), pipelineLLM()).
		Analyze(ctx, request(compA, compB))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGapAnalysisService_DefaultConcurrency(t *testing.T) {
	s := NewGapAnalysisService(nil, nil, nil, nil, 0)
	assert.Equal(t, domain.DefaultAdviceConcurrency, s.concurrency)
}
