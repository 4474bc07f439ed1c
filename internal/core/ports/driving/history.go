package driving

import (
	"context"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// HistoryService reads and maintains the archive of completed runs.
type HistoryService interface {
	// Record archives a completed run.
	Record(ctx context.Context, state *domain.FinalState) error

	// List returns archived runs, newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Get returns one archived run.
	Get(ctx context.Context, id string) (*domain.FinalState, error)

	// Delete removes one archived run.
	Delete(ctx context.Context, id string) error
}
