// Package visible provides a Normaliser that keeps every visible text node
// of an HTML page. Scripts, styles and other non-rendered elements are
// dropped and the remaining text is joined with single spaces.
package visible

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser extracts visible text from HTML.
type Normaliser struct{}

// New creates a new visible-text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Mode returns the extraction strategy.
func (n *Normaliser) Mode() domain.ExtractorMode {
	return domain.ExtractorVisible
}

// Normalise parses body and returns its visible text.
// Each text node is trimmed and non-empty nodes are joined by a space.
func (n *Normaliser) Normalise(_ string, body io.Reader) (string, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return extractText(doc), nil
}

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

func extractText(root *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(parts, " ")
}
