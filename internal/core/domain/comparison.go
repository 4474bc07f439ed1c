package domain

import "sort"

// MinCompetitorCoverage is the number of competitors that must contain an
// item for it to count as a gap.
const MinCompetitorCoverage = 2

// EntityCompetitorMetrics is what one competitor contributes to a missing entity.
type EntityCompetitorMetrics struct {
	Salience float64 `json:"salience"`
}

// MissingEntity is an entity found in competitors but not in the client page.
// Competitors is keyed by competitor URL until relabelled, then by label.
type MissingEntity struct {
	Type        EntityType                         `json:"type"`
	Competitors map[string]EntityCompetitorMetrics `json:"competitors"`
}

// CompetitorCount returns the number of competitors containing the entity.
func (m MissingEntity) CompetitorCount() int {
	return len(m.Competitors)
}

// MaxSalience returns the highest salience across competitors.
func (m MissingEntity) MaxSalience() float64 {
	maxSalience := 0.0
	for _, metrics := range m.Competitors {
		if metrics.Salience > maxSalience {
			maxSalience = metrics.Salience
		}
	}
	return maxSalience
}

// CompetitorKeys returns the competitor keys in sorted order.
func (m MissingEntity) CompetitorKeys() []string {
	return sortedKeys(m.Competitors)
}

// MissingKeyword is a keyword found in competitors but not in the client page.
type MissingKeyword struct {
	Competitors map[string]KeywordRecord `json:"competitors"`
}

// CompetitorKeys returns the competitor keys in sorted order.
func (m MissingKeyword) CompetitorKeys() []string {
	return sortedKeys(m.Competitors)
}

// ComparisonResult holds the content gaps of the client page.
// Every entry has at least MinCompetitorCoverage competitors.
type ComparisonResult struct {
	MissingEntities map[string]MissingEntity  `json:"missing_entities"`
	MissingKeywords map[string]MissingKeyword `json:"missing_keywords"`
}

// EntityNames returns the missing entity names in sorted order.
func (r *ComparisonResult) EntityNames() []string {
	return sortedKeys(r.MissingEntities)
}

// KeywordTerms returns the missing keyword terms in sorted order.
func (r *ComparisonResult) KeywordTerms() []string {
	return sortedKeys(r.MissingKeywords)
}

// Relabel returns a copy of the result with competitor keys replaced using labels.
// Keys without a label are kept unchanged.
func (r *ComparisonResult) Relabel(labels map[string]string) ComparisonResult {
	relabel := func(key string) string {
		if label, ok := labels[key]; ok {
			return label
		}
		return key
	}

	out := ComparisonResult{
		MissingEntities: make(map[string]MissingEntity, len(r.MissingEntities)),
		MissingKeywords: make(map[string]MissingKeyword, len(r.MissingKeywords)),
	}
	for name, entity := range r.MissingEntities {
		competitors := make(map[string]EntityCompetitorMetrics, len(entity.Competitors))
		for key, metrics := range entity.Competitors {
			competitors[relabel(key)] = metrics
		}
		out.MissingEntities[name] = MissingEntity{Type: entity.Type, Competitors: competitors}
	}
	for term, keyword := range r.MissingKeywords {
		competitors := make(map[string]KeywordRecord, len(keyword.Competitors))
		for key, record := range keyword.Competitors {
			competitors[relabel(key)] = record
		}
		out.MissingKeywords[term] = MissingKeyword{Competitors: competitors}
	}
	return out
}

// EntityCandidate summarises a missing entity for ranking.
type EntityCandidate struct {
	Name            string     `json:"entity_name"`
	Type            EntityType `json:"entity_type"`
	CompetitorCount int        `json:"count_of_competitors_with_entity"`
	MaxSalience     float64    `json:"max_salience"`
}

// Candidates returns one summary per missing entity, highest salience first.
// Ties are broken by name.
func (r *ComparisonResult) Candidates() []EntityCandidate {
	candidates := make([]EntityCandidate, 0, len(r.MissingEntities))
	for name, entity := range r.MissingEntities {
		candidates = append(candidates, EntityCandidate{
			Name:            name,
			Type:            entity.Type,
			CompetitorCount: entity.CompetitorCount(),
			MaxSalience:     entity.MaxSalience(),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].MaxSalience != candidates[j].MaxSalience {
			return candidates[i].MaxSalience > candidates[j].MaxSalience
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates
}
