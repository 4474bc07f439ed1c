package normalisers

import (
	"fmt"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/normalisers/readability"
	"github.com/custodia-labs/gapscope/internal/normalisers/visible"
)

// New returns the normaliser for mode. An empty mode selects visible text.
func New(mode domain.ExtractorMode) (driven.Normaliser, error) {
	switch mode {
	case domain.ExtractorVisible, "":
		return visible.New(), nil
	case domain.ExtractorReadability:
		return readability.New(), nil
	default:
		return nil, fmt.Errorf("%w: extractor %q", domain.ErrUnsupportedType, mode)
	}
}
