package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// Comparator finds entities and keywords that competitors cover and the
// client page does not. It does no I/O.
type Comparator struct{}

// NewComparator creates a comparator.
func NewComparator() *Comparator {
	return &Comparator{}
}

// Compare folds every competitor into the gap sets and keeps the items
// present in at least domain.MinCompetitorCoverage competitors.
// keys is parallel to competitors and names each competitor in the result.
// The result does not depend on the order of competitors.
func (c *Comparator) Compare(
	baseline *domain.DocumentAnalysis, competitors []domain.DocumentAnalysis, keys []string,
) (domain.ComparisonResult, error) {
	if baseline == nil {
		return domain.ComparisonResult{}, fmt.Errorf("%w: no baseline analysis", domain.ErrInvalidInput)
	}
	if len(keys) != len(competitors) {
		return domain.ComparisonResult{}, fmt.Errorf(
			"%w: %d competitor keys for %d analyses", domain.ErrInvalidInput, len(keys), len(competitors))
	}

	entities := make(map[string]domain.MissingEntity)
	entityTypes := make(map[string]map[domain.EntityType]int)
	keywords := make(map[string]domain.MissingKeyword)

	for i := range competitors {
		comp := &competitors[i]
		key := keys[i]

		for name, record := range comp.Entities {
			if baseline.HasEntity(name) {
				continue
			}
			missing, ok := entities[name]
			if !ok {
				missing = domain.MissingEntity{Competitors: make(map[string]domain.EntityCompetitorMetrics)}
				entityTypes[name] = make(map[domain.EntityType]int)
			}
			missing.Competitors[key] = domain.EntityCompetitorMetrics{Salience: record.Salience}
			entities[name] = missing
			entityTypes[name][record.Type]++
		}

		for term, record := range comp.Keywords {
			if baseline.HasKeyword(term) {
				continue
			}
			missing, ok := keywords[term]
			if !ok {
				missing = domain.MissingKeyword{Competitors: make(map[string]domain.KeywordRecord)}
			}
			missing.Competitors[key] = record
			keywords[term] = missing
		}
	}

	result := domain.ComparisonResult{
		MissingEntities: make(map[string]domain.MissingEntity),
		MissingKeywords: make(map[string]domain.MissingKeyword),
	}
	for name, missing := range entities {
		if missing.CompetitorCount() < domain.MinCompetitorCoverage {
			continue
		}
		missing.Type = majorityType(entityTypes[name])
		result.MissingEntities[name] = missing
	}
	for term, missing := range keywords {
		if len(missing.Competitors) < domain.MinCompetitorCoverage {
			continue
		}
		result.MissingKeywords[term] = missing
	}
	return result, nil
}

// majorityType returns the most reported type. Ties go to the smallest name.
func majorityType(counts map[domain.EntityType]int) domain.EntityType {
	types := make([]domain.EntityType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	best := domain.EntityTypeUnknown
	bestCount := 0
	for _, t := range types {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best
}
