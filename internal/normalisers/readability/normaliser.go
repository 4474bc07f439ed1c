// Package readability provides a Normaliser that keeps only the main
// article content of a page, dropping navigation, footers and boilerplate.
package readability

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	goreadability "github.com/go-shiori/go-readability"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser extracts article text using the readability algorithm.
type Normaliser struct{}

// New creates a new readability normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Mode returns the extraction strategy.
func (n *Normaliser) Mode() domain.ExtractorMode {
	return domain.ExtractorReadability
}

// Normalise returns the article text of body. Whitespace runs are collapsed
// to single spaces.
func (n *Normaliser) Normalise(pageURL string, body io.Reader) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page URL: %w", err)
	}

	article, err := goreadability.FromReader(body, u)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.Join(strings.Fields(article.TextContent), " "), nil
}
