// Package markdown renders a run as a markdown report.
package markdown

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ReportRenderer = (*Renderer)(nil)

// Title heads every report.
const Title = "Content Gap Analysis Report"

// Renderer renders FinalState as markdown.
type Renderer struct{}

// New creates a markdown renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format identifies the renderer.
func (r *Renderer) Format() domain.ReportFormat {
	return domain.ReportFormatMarkdown
}

// Render returns the markdown report.
func (r *Renderer) Render(state *domain.FinalState) ([]byte, error) {
	var b strings.Builder
	Write(&b, state)
	return []byte(b.String()), nil
}

// Write writes the full report to w.
func Write(w io.Writer, state *domain.FinalState) {
	fmt.Fprintf(w, "# %s\n\n", Title)
	fmt.Fprintf(w, "**Client URL:** %s\n\n", state.ClientURL)
	if state.RunID != "" {
		fmt.Fprintf(w, "**Run ID:** %s\n\n", state.RunID)
	}
	if !state.FinishedAt.IsZero() {
		fmt.Fprintf(w, "**Generated:** %s\n\n", state.FinishedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	fmt.Fprint(w, "## Competitors\n\n")
	if len(state.Competitors) == 0 {
		fmt.Fprint(w, "No competitor pages could be analysed.\n\n")
	}
	for _, c := range state.Competitors {
		fmt.Fprintf(w, "- %s: %s\n", c.Label, c.URL)
	}
	if len(state.Competitors) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "## Summary\n\n")
	fmt.Fprintf(w, "- Missing entities: %d\n", len(state.Comparison.MissingEntities))
	fmt.Fprintf(w, "- Missing keywords: %d\n", len(state.Comparison.MissingKeywords))
	fmt.Fprintf(w, "- Selected entities: %d\n", len(state.Selections))
	fmt.Fprintf(w, "- Recommendations: %d\n\n", len(state.Recommendations))

	fmt.Fprint(w, "## Recommendation Overview\n\n")
	WriteSelections(w, state.Selections)

	if len(state.Recommendations) > 0 {
		fmt.Fprint(w, "## Entity Recommendations\n\n")
		for i := range state.Recommendations {
			WriteRecommendation(w, &state.Recommendations[i])
		}
	}

	writeMissingEntities(w, &state.Comparison)
	writeMissingKeywords(w, &state.Comparison)
	writeFailures(w, state.Failures)
}

// WriteSelections writes the shortlist section.
func WriteSelections(w io.Writer, selections []domain.EntitySelection) {
	fmt.Fprint(w, "### Selected Entities for Integration\n\n")
	if len(selections) == 0 {
		fmt.Fprint(w, "No entities were selected.\n\n")
		return
	}
	for _, sel := range selections {
		fmt.Fprintf(w, "- **%s**\n", sel.EntityName)
		fmt.Fprintf(w, "  - **Relevance Score:** %s\n", formatFloat(sel.RelevanceScore))
		fmt.Fprintf(w, "  - **Reasoning:** %s\n\n", sel.Reasoning)
	}
}

// WriteRecommendation writes the integration opportunities of one entity.
func WriteRecommendation(w io.Writer, rec *domain.EntityRecommendation) {
	fmt.Fprintf(w, "### %s Integration Opportunities\n\n", rec.EntityContext.EntityName)
	for i, op := range rec.IntegrationOpportunities {
		fmt.Fprintf(w, "#### Opportunity %d: %s\n\n", i+1, op.Section)
		fmt.Fprintf(w, "**Recommendation:** %s\n\n", op.Recommendation)
		fmt.Fprintf(w, "**Related Terms:** %s\n\n", strings.Join(op.RelatedTerms, ", "))
		fmt.Fprint(w, "**Examples:**\n\n")
		for _, example := range op.Examples {
			fmt.Fprintf(w, "- %s\n", example)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "**Placement:** %s\n\n", op.Placement)
		fmt.Fprintf(w, "**Explanation:** %s\n\n", op.Explanation)
	}
}

// Recommendation returns WriteRecommendation's output as a string.
func Recommendation(rec *domain.EntityRecommendation) string {
	var b strings.Builder
	WriteRecommendation(&b, rec)
	return b.String()
}

func writeMissingEntities(w io.Writer, comparison *domain.ComparisonResult) {
	fmt.Fprint(w, "## Missing Entities\n\n")
	candidates := comparison.Candidates()
	if len(candidates) == 0 {
		fmt.Fprint(w, "None.\n\n")
		return
	}
	fmt.Fprint(w, "| Entity | Type | Competitors | Max Salience |\n")
	fmt.Fprint(w, "|---|---|---|---|\n")
	for _, c := range candidates {
		keys := comparison.MissingEntities[c.Name].CompetitorKeys()
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			cell(c.Name), c.Type, cell(strings.Join(keys, ", ")), formatFloat(c.MaxSalience))
	}
	fmt.Fprintln(w)
}

func writeMissingKeywords(w io.Writer, comparison *domain.ComparisonResult) {
	fmt.Fprint(w, "## Missing Keywords\n\n")
	terms := comparison.KeywordTerms()
	if len(terms) == 0 {
		fmt.Fprint(w, "None.\n\n")
		return
	}
	fmt.Fprint(w, "| Keyword | Competitor | Density | Count | TF-IDF |\n")
	fmt.Fprint(w, "|---|---|---|---|---|\n")
	for _, term := range terms {
		missing := comparison.MissingKeywords[term]
		for _, key := range missing.CompetitorKeys() {
			rec := missing.Competitors[key]
			fmt.Fprintf(w, "| %s | %s | %s | %d | %s |\n",
				cell(term), cell(key), formatFloat(rec.Density), rec.Count, formatFloat(rec.TFIDF))
		}
	}
	fmt.Fprintln(w)
}

func writeFailures(w io.Writer, failures []domain.StageFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprint(w, "## Skipped\n\n")
	for _, f := range failures {
		fmt.Fprintf(w, "- %s `%s`: %s\n", f.Stage, f.Subject, f.Message)
	}
	fmt.Fprintln(w)
}

// cell escapes table separators.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
