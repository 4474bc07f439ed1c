package driven

import "github.com/custodia-labs/gapscope/internal/core/domain"

// ReportRenderer serialises a FinalState into one report format.
// Rendering is in memory so a failed render never leaves a partial file.
type ReportRenderer interface {
	// Format identifies the renderer.
	Format() domain.ReportFormat

	// Render returns the encoded report.
	Render(state *domain.FinalState) ([]byte, error)
}
