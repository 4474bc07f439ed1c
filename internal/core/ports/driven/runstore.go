package driven

import (
	"context"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// RunStore archives completed runs. The pipeline only writes to it.
type RunStore interface {
	// Save stores a completed run, replacing any run with the same ID.
	Save(ctx context.Context, state *domain.FinalState) error

	// Get returns an archived run. Missing runs return domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.FinalState, error)

	// List returns run summaries, newest first. A limit <= 0 returns all runs.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Delete removes an archived run. Missing runs return domain.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
