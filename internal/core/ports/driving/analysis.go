package driving

import (
	"context"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// GapAnalysisService runs the content-gap pipeline.
type GapAnalysisService interface {
	// Analyze validates the request, then fetches, annotates, compares,
	// ranks and advises. Validation errors are returned before any network
	// call. A failed client page returns domain.ErrBaselineUnavailable.
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.FinalState, error)
}
