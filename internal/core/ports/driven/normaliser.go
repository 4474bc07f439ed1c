package driven

import (
	"io"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// Normaliser turns a fetched HTML page into the plain text that is annotated.
// Implementations must be safe for concurrent use.
type Normaliser interface {
	// Mode identifies the extraction strategy.
	Mode() domain.ExtractorMode

	// Normalise reads the HTML body of the page at pageURL and returns its text.
	Normalise(pageURL string, body io.Reader) (string, error)
}
