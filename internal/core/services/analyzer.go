package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/lexical"
	"github.com/custodia-labs/gapscope/internal/logger"
)

// Analyzer merges one annotation call with locally computed keyword metrics.
type Analyzer struct {
	annotator driven.Annotator
	mode      domain.KeywordMatchMode
}

// NewAnalyzer creates an analyzer. An invalid mode falls back to token matching.
func NewAnalyzer(annotator driven.Annotator, mode domain.KeywordMatchMode) *Analyzer {
	if !mode.IsValid() {
		mode = domain.KeywordMatchToken
	}
	return &Analyzer{annotator: annotator, mode: mode}
}

// Analyze annotates text and computes keyword metrics for every entity name.
// documents is the full document set of the run and is only read.
// Annotation failures are returned unchanged.
func (a *Analyzer) Analyze(
	ctx context.Context, url, text string, documents []string,
) (*domain.DocumentAnalysis, error) {
	if a.annotator == nil {
		return nil, fmt.Errorf("analyze %s: %w", url, domain.ErrAnnotatorNotConfigured)
	}

	annotation, err := a.annotator.Annotate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", url, err)
	}

	analysis := &domain.DocumentAnalysis{
		URL:               url,
		Entities:          make(map[string]domain.EntityRecord, len(annotation.Entities)),
		DocumentSentiment: annotation.DocumentSentiment,
	}
	for _, entity := range annotation.Entities {
		if _, dup := analysis.Entities[entity.Name]; dup {
			logger.Debug("Entity %q repeated in %s, keeping the last record", entity.Name, url)
		}
		analysis.Entities[entity.Name] = entity.EntityRecord
	}

	stats := newTextStats(text)
	analysis.Keywords = make(map[string]domain.KeywordRecord, len(analysis.Entities))
	for name := range analysis.Entities {
		if a.mode == domain.KeywordMatchPhrase {
			analysis.Keywords[name] = stats.phraseRecord(name, text, documents)
		} else {
			analysis.Keywords[name] = stats.tokenRecord(name, text, documents)
		}
	}

	logger.Debug("Analyzed %s: %d entities", url, len(analysis.Entities))
	return analysis, nil
}

// textStats holds the per-document token tables shared by all entity lookups.
type textStats struct {
	tokens  []string
	counts  map[string]int
	bigrams map[string]int
	ngrams  map[int]map[string]int
}

func newTextStats(text string) *textStats {
	tokens := lexical.RemoveStopWords(lexical.Tokenize(text))
	return &textStats{
		tokens:  tokens,
		counts:  lexical.Counts(tokens),
		bigrams: lexical.NGrams(tokens, 2, 1),
		ngrams:  make(map[int]map[string]int),
	}
}

// tokenRecord matches name as one exact token. Names that are capitalised or
// span several words never match and get a zero record.
func (s *textStats) tokenRecord(name, text string, documents []string) domain.KeywordRecord {
	count := s.counts[name]
	if count == 0 {
		return domain.KeywordRecord{}
	}
	return domain.KeywordRecord{
		Density:      s.density(count),
		Count:        count,
		PhraseCounts: s.bigrams[name],
		TFIDF:        lexical.TFIDF(name, text, documents),
	}
}

// phraseRecord lowercases name and matches it as an n-gram of its word length.
func (s *textStats) phraseRecord(name, text string, documents []string) domain.KeywordRecord {
	parts := lexical.RemoveStopWords(lexical.Tokenize(name))
	if len(parts) == 0 {
		return domain.KeywordRecord{}
	}
	phrase := strings.Join(parts, " ")

	count := s.ngramTable(len(parts))[phrase]
	if count == 0 {
		return domain.KeywordRecord{}
	}
	return domain.KeywordRecord{
		Density:      s.density(count),
		Count:        count,
		PhraseCounts: s.bigrams[phrase],
		TFIDF:        lexical.PhraseTFIDF(phrase, text, documents),
	}
}

func (s *textStats) ngramTable(n int) map[string]int {
	if n == 1 {
		return s.counts
	}
	if n == 2 {
		return s.bigrams
	}
	table, ok := s.ngrams[n]
	if !ok {
		table = lexical.NGrams(s.tokens, n, 1)
		s.ngrams[n] = table
	}
	return table
}

func (s *textStats) density(count int) float64 {
	if len(s.tokens) == 0 {
		return 0
	}
	return float64(count) / float64(len(s.tokens)) * 100
}
