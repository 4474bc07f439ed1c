// Package jsonreport renders a run as its FinalState JSON.
package jsonreport

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ReportRenderer = (*Renderer)(nil)

// Renderer renders FinalState as indented JSON.
type Renderer struct{}

// New creates a JSON renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format identifies the renderer.
func (r *Renderer) Format() domain.ReportFormat {
	return domain.ReportFormatJSON
}

// Render returns the indented FinalState followed by a newline.
func (r *Renderer) Render(state *domain.FinalState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode run: %w", err)
	}
	return append(data, '\n'), nil
}
