package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
	"github.com/custodia-labs/gapscope/internal/logger"
)

// Ensure GapAnalysisService implements the interface.
var _ driving.GapAnalysisService = (*GapAnalysisService)(nil)

// GapAnalysisService drives one run through its stages. Stages run in
// sequence and the items of a stage run concurrently. Every task writes
// only its own result slot.
type GapAnalysisService struct {
	fetcher     driven.PageFetcher
	analyzer    *Analyzer
	comparator  *Comparator
	selector    *Selector
	advisor     *Advisor
	concurrency int

	now   func() time.Time
	newID func() string
}

// NewGapAnalysisService creates the pipeline. concurrency bounds the advice
// stage; a value <= 0 uses domain.DefaultAdviceConcurrency.
func NewGapAnalysisService(
	fetcher driven.PageFetcher,
	analyzer *Analyzer,
	selector *Selector,
	advisor *Advisor,
	concurrency int,
) *GapAnalysisService {
	if concurrency <= 0 {
		concurrency = domain.DefaultAdviceConcurrency
	}
	return &GapAnalysisService{
		fetcher:     fetcher,
		analyzer:    analyzer,
		comparator:  NewComparator(),
		selector:    selector,
		advisor:     advisor,
		concurrency: concurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// page is one input URL as it moves through fetch and analysis.
type page struct {
	url      string
	label    string
	text     string
	analysis *domain.DocumentAnalysis
}

// Analyze runs the full pipeline for req.
func (s *GapAnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.FinalState, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	state := &domain.FinalState{
		RunID:     s.newID(),
		ClientURL: req.ClientURL,
		StartedAt: s.now(),
	}
	logger.Debug("Run %s started", state.RunID)

	labels := domain.CompetitorLabels(req.CompetitorURLs)
	pages := make([]*page, 0, len(req.CompetitorURLs)+1)
	pages = append(pages, &page{url: req.ClientURL})
	for i, u := range req.CompetitorURLs {
		pages = append(pages, &page{url: u, label: labels[i]})
	}

	logger.Section("Fetch")
	pages, err := s.fetchPages(ctx, pages, state)
	if err != nil {
		return nil, err
	}

	logger.Section("Analyze")
	pages, err = s.analyzePages(ctx, pages, state)
	if err != nil {
		return nil, err
	}
	client, competitors := pages[0], pages[1:]
	if len(competitors) < domain.MinCompetitorCoverage {
		logger.Warn("Only %d competitor pages remain, no gap can reach %d competitors",
			len(competitors), domain.MinCompetitorCoverage)
	}

	state.ClientAnalysis = *client.analysis
	keys := make([]string, len(competitors))
	labelMap := make(map[string]string, len(competitors))
	for i, p := range competitors {
		keys[i] = p.url
		labelMap[p.url] = p.label
		state.Competitors = append(state.Competitors, domain.CompetitorPage{URL: p.url, Label: p.label})
		state.CompetitorAnalyses = append(state.CompetitorAnalyses, *p.analysis)
	}

	logger.Section("Compare")
	comparison, err := s.comparator.Compare(client.analysis, state.CompetitorAnalyses, keys)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	state.Comparison = comparison.Relabel(labelMap)
	logger.Info("Found %d missing entities and %d missing keywords",
		len(state.Comparison.MissingEntities), len(state.Comparison.MissingKeywords))

	logger.Section("Select")
	selections, err := s.selector.Select(ctx, state.Comparison.MissingEntities)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Entity selection failed: %v", err)
		state.Failures = append(state.Failures, domain.StageFailure{
			Stage: domain.StageSelect, Subject: state.ClientURL, Message: err.Error(),
		})
		selections = []domain.EntitySelection{}
	}
	state.Selections = selections

	logger.Section("Advise")
	recommendations, err := s.advise(ctx, selections, client.text, state)
	if err != nil {
		return nil, err
	}
	state.Recommendations = recommendations

	state.FinishedAt = s.now()
	logger.Debug("Run %s finished in %s", state.RunID, state.FinishedAt.Sub(state.StartedAt))
	return state, nil
}

// fetchPages fetches every page concurrently and returns the client page
// followed by the competitors that have text, in input order.
func (s *GapAnalysisService) fetchPages(
	ctx context.Context, pages []*page, state *domain.FinalState,
) ([]*page, error) {
	errs := make([]error, len(pages))
	var g errgroup.Group
	for i, p := range pages {
		g.Go(func() error {
			p.text, errs[i] = s.fetcher.Fetch(ctx, p.url)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs[0] != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrBaselineUnavailable, pages[0].url, errs[0])
	}

	survivors := []*page{pages[0]}
	for i, p := range pages[1:] {
		if err := errs[i+1]; err != nil {
			logger.Warn("Skipping competitor %s: %v", p.url, err)
			state.Failures = append(state.Failures, domain.StageFailure{
				Stage: domain.StageFetch, Subject: p.url, Message: err.Error(),
			})
			continue
		}
		survivors = append(survivors, p)
	}
	logger.Info("Fetched client page and %d of %d competitors", len(survivors)-1, len(pages)-1)
	return survivors, nil
}

// analyzePages annotates every fetched page concurrently against the shared
// document set.
func (s *GapAnalysisService) analyzePages(
	ctx context.Context, pages []*page, state *domain.FinalState,
) ([]*page, error) {
	documents := make([]string, len(pages))
	for i, p := range pages {
		documents[i] = p.text
	}

	errs := make([]error, len(pages))
	var g errgroup.Group
	for i, p := range pages {
		g.Go(func() error {
			p.analysis, errs[i] = s.analyzer.Analyze(ctx, p.url, p.text, documents)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs[0] != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrBaselineUnavailable, pages[0].url, errs[0])
	}

	survivors := []*page{pages[0]}
	for i, p := range pages[1:] {
		if err := errs[i+1]; err != nil {
			logger.Warn("Skipping competitor %s: %v", p.url, err)
			state.Failures = append(state.Failures, domain.StageFailure{
				Stage: domain.StageAnalyze, Subject: p.url, Message: err.Error(),
			})
			continue
		}
		survivors = append(survivors, p)
	}
	return survivors, nil
}

// advise writes advice for every selection with bounded concurrency.
// A failed entity is dropped and recorded. Only cancellation aborts.
func (s *GapAnalysisService) advise(
	ctx context.Context, selections []domain.EntitySelection, clientText string, state *domain.FinalState,
) ([]domain.EntityRecommendation, error) {
	results := make([]*domain.EntityRecommendation, len(selections))
	errs := make([]error, len(selections))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, sel := range selections {
		g.Go(func() error {
			results[i], errs[i] = s.advisor.Advise(ctx, sel, clientText)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recommendations := make([]domain.EntityRecommendation, 0, len(selections))
	for i, sel := range selections {
		if errs[i] != nil {
			logger.Warn("Skipping advice for %q: %v", sel.EntityName, errs[i])
			state.Failures = append(state.Failures, domain.StageFailure{
				Stage: domain.StageAdvise, Subject: sel.EntityName, Message: errs[i].Error(),
			})
			continue
		}
		recommendations = append(recommendations, *results[i])
	}
	logger.Info("Wrote advice for %d of %d entities", len(recommendations), len(selections))
	return recommendations, nil
}
