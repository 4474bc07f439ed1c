package mcp

import (
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis runs the content-gap pipeline.
	Analysis driving.GapAnalysisService

	// Report renders runs for tool output.
	Report driving.ReportService

	// History reads and records archived runs. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	if p.Report == nil {
		return ErrMissingReportService
	}
	return nil
}
