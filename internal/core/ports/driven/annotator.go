package driven

import (
	"context"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// Annotator extracts named entities and sentiment from plain text.
// Implementations must be safe for concurrent use.
type Annotator interface {
	// Annotate makes one call to the annotation service for text.
	Annotate(ctx context.Context, text string) (*domain.Annotation, error)

	// Close releases resources.
	Close() error
}
