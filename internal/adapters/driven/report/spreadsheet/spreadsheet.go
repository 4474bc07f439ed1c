// Package spreadsheet renders a run as an xlsx workbook.
package spreadsheet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/report/markdown"
	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ReportRenderer = (*Renderer)(nil)

// Sheet names in workbook order.
const (
	SheetOverview          = "Recommendation Overview"
	SheetEntities          = "Entity Analysis"
	SheetKeywords          = "Keyword Analysis"
	SheetMissingEntities   = "Missing Entities"
	SheetMissingKeywords   = "Missing Keywords"
	SheetSentiment         = "Document Sentiment"
	SheetAIRecommendations = "AI Recommendations"
)

// MaxColumnWidth caps every column, in character units.
const MaxColumnWidth = 75

// Renderer renders FinalState as an xlsx workbook.
type Renderer struct{}

// New creates a spreadsheet renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format identifies the renderer.
func (r *Renderer) Format() domain.ReportFormat {
	return domain.ReportFormatXLSX
}

// sheet collects the rows of one worksheet before it is written.
type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

func (s *sheet) add(values ...any) {
	s.rows = append(s.rows, values)
}

// Render returns the encoded workbook.
func (r *Renderer) Render(state *domain.FinalState) ([]byte, error) {
	sheets := buildSheets(state)

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", s.name, err)
		}
		if err := writeSheet(f, s, header); err != nil {
			return nil, fmt.Errorf("write sheet %q: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s *sheet, headerStyle int) error {
	widths := make([]int, len(s.headers))
	measure := func(values []any) {
		for col, v := range values {
			if col < len(widths) {
				widths[col] = max(widths[col], utf8.RuneCountInString(fmt.Sprint(v)))
			}
		}
	}

	headers := make([]any, len(s.headers))
	for i, h := range s.headers {
		headers[i] = h
	}
	measure(headers)
	if err := f.SetSheetRow(s.name, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range s.rows {
		measure(row)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, name, name, float64(min(w+2, MaxColumnWidth))); err != nil {
			return err
		}
	}
	return nil
}

func buildSheets(state *domain.FinalState) []*sheet {
	overview := &sheet{name: SheetOverview, headers: []string{"Entity", "Relevance Score", "Reasoning"}}
	for _, sel := range state.Selections {
		overview.add(sel.EntityName, sel.RelevanceScore, sel.Reasoning)
	}

	type source struct {
		name     string
		analysis *domain.DocumentAnalysis
	}
	sources := []source{{"Client Page - " + state.ClientURL, &state.ClientAnalysis}}
	for i := range state.CompetitorAnalyses {
		url := state.CompetitorAnalyses[i].URL
		if i < len(state.Competitors) {
			url = state.Competitors[i].URL
		}
		sources = append(sources, source{"Competitor - " + url, &state.CompetitorAnalyses[i]})
	}

	entities := &sheet{name: SheetEntities, headers: []string{
		"Source", "Entity", "Type", "Salience", "Sentiment Score", "Sentiment Magnitude", "Mentions",
	}}
	keywords := &sheet{name: SheetKeywords, headers: []string{
		"Source", "Keyword", "Density", "Count", "TF-IDF", "Phrase Count",
	}}
	sentiment := &sheet{name: SheetSentiment, headers: []string{"Source", "Score", "Magnitude"}}
	for _, src := range sources {
		for _, name := range src.analysis.EntityNames() {
			e := src.analysis.Entities[name]
			mentions := make([]string, len(e.Mentions))
			for i, m := range e.Mentions {
				mentions[i] = m.Text
			}
			entities.add(src.name, name, string(e.Type), e.Salience,
				e.Sentiment.Score, e.Sentiment.Magnitude, strings.Join(mentions, ", "))
		}
		for _, term := range src.analysis.KeywordTerms() {
			k := src.analysis.Keywords[term]
			keywords.add(src.name, term, k.Density, k.Count, k.TFIDF, k.PhraseCounts)
		}
		sentiment.add(src.name, src.analysis.DocumentSentiment.Score, src.analysis.DocumentSentiment.Magnitude)
	}

	missingEntities := &sheet{name: SheetMissingEntities, headers: []string{
		"Entity", "Type", "Competitor Count", "Max Salience", "Competitors",
	}}
	for _, c := range state.Comparison.Candidates() {
		keys := state.Comparison.MissingEntities[c.Name].CompetitorKeys()
		missingEntities.add(c.Name, string(c.Type), c.CompetitorCount, c.MaxSalience, strings.Join(keys, ", "))
	}

	missingKeywords := &sheet{name: SheetMissingKeywords, headers: []string{
		"Keyword", "Competitor", "Density", "Count", "TF-IDF",
	}}
	for _, term := range state.Comparison.KeywordTerms() {
		missing := state.Comparison.MissingKeywords[term]
		for _, key := range missing.CompetitorKeys() {
			k := missing.Competitors[key]
			missingKeywords.add(term, key, k.Density, k.Count, k.TFIDF)
		}
	}

	advice := &sheet{name: SheetAIRecommendations, headers: []string{"Entity", "Recommendation"}}
	for i := range state.Recommendations {
		rec := &state.Recommendations[i]
		advice.add(rec.EntityContext.EntityName, markdown.Recommendation(rec))
	}

	return []*sheet{overview, entities, keywords, missingEntities, missingKeywords, sentiment, advice}
}
