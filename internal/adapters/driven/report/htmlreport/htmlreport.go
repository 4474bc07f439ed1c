// Package htmlreport renders the markdown report as a standalone HTML page.
package htmlreport

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/markdown"
	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ReportRenderer = (*Renderer)(nil)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:.25rem .5rem;text-align:left}
code{background:#f4f4f4;padding:0 .2rem}`

// Renderer renders FinalState as HTML.
type Renderer struct {
	markdown *markdown.Renderer
	policy   *bluemonday.Policy
}

// New creates an HTML renderer.
func New() *Renderer {
	return &Renderer{
		markdown: markdown.New(),
		policy:   bluemonday.UGCPolicy(),
	}
}

// Format identifies the renderer.
func (r *Renderer) Format() domain.ReportFormat {
	return domain.ReportFormatHTML
}

// Render converts the markdown report to HTML. Model output may carry markup,
// so the body is sanitised before it is wrapped in the page.
func (r *Renderer) Render(state *domain.FinalState) ([]byte, error) {
	md, err := r.markdown.Render(state)
	if err != nil {
		return nil, err
	}

	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	body := r.policy.SanitizeBytes(blackfriday.Run(md,
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer),
	))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s: %s</title>\n", markdown.Title, html.EscapeString(state.ClientURL))
	fmt.Fprintf(&buf, "<style>\n%s\n</style>\n</head>\n<body>\n", pageStyle)
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
