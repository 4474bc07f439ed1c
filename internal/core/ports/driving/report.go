package driving

import (
	"context"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// ReportService turns a FinalState into report files.
type ReportService interface {
	// Render returns one report in memory.
	Render(state *domain.FinalState, format domain.ReportFormat) ([]byte, error)

	// Export renders every format and, only if all succeed, writes them to dir.
	// Returns the written paths in format order.
	Export(ctx context.Context, state *domain.FinalState, dir string, formats []domain.ReportFormat) ([]string, error)
}
