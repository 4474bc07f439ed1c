package domain

import "sort"

// EntityType is the category the annotation service assigns to an entity.
type EntityType string

// Entity types reported by the annotation service.
const (
	EntityTypeUnknown      EntityType = "UNKNOWN"
	EntityTypePerson       EntityType = "PERSON"
	EntityTypeLocation     EntityType = "LOCATION"
	EntityTypeOrganization EntityType = "ORGANIZATION"
	EntityTypeEvent        EntityType = "EVENT"
	EntityTypeWorkOfArt    EntityType = "WORK_OF_ART"
	EntityTypeConsumerGood EntityType = "CONSUMER_GOOD"
	EntityTypeOther        EntityType = "OTHER"
	EntityTypePhoneNumber  EntityType = "PHONE_NUMBER"
	EntityTypeAddress      EntityType = "ADDRESS"
	EntityTypeDate         EntityType = "DATE"
	EntityTypeNumber       EntityType = "NUMBER"
	EntityTypePrice        EntityType = "PRICE"
)

// IsKnown returns true if the type is one the annotation service documents.
func (t EntityType) IsKnown() bool {
	switch t {
	case EntityTypeUnknown, EntityTypePerson, EntityTypeLocation, EntityTypeOrganization,
		EntityTypeEvent, EntityTypeWorkOfArt, EntityTypeConsumerGood, EntityTypeOther,
		EntityTypePhoneNumber, EntityTypeAddress, EntityTypeDate, EntityTypeNumber, EntityTypePrice:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t EntityType) String() string {
	return string(t)
}

// Sentiment is a score in [-1, 1] and a non-negative magnitude.
type Sentiment struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// Mention is one occurrence of an entity in the document text.
type Mention struct {
	Text        string `json:"text"`
	Type        string `json:"type"`
	BeginOffset int64  `json:"begin_offset"`
}

// EntityRecord holds what the annotation service reported about one entity.
type EntityRecord struct {
	Type      EntityType `json:"type"`
	Salience  float64    `json:"salience"`
	Mentions  []Mention  `json:"mentions"`
	Sentiment Sentiment  `json:"sentiment"`
}

// KeywordRecord holds locally computed lexical metrics for one term.
// All fields are zero when the term never appears as a standalone token.
type KeywordRecord struct {
	// Density is the percentage of non-stopword tokens equal to the term.
	Density float64 `json:"density"`

	// Count is the raw number of occurrences.
	Count int `json:"count"`

	// PhraseCounts is the bigram frequency of the term.
	PhraseCounts int `json:"phrase_counts"`

	// TFIDF is computed against the full document set of the run.
	TFIDF float64 `json:"tf_idf"`
}

// AnnotatedEntity is one entity as returned by the annotation service.
type AnnotatedEntity struct {
	Name string
	EntityRecord
}

// Annotation is the raw output of one annotation call.
// Entities keep the service's order and may repeat a name.
type Annotation struct {
	Entities          []AnnotatedEntity
	DocumentSentiment Sentiment
}

// DocumentAnalysis is the merged annotation and keyword analysis of one page.
// It is created once per document and not modified afterwards.
type DocumentAnalysis struct {
	URL               string                   `json:"url"`
	Entities          map[string]EntityRecord  `json:"entities"`
	Keywords          map[string]KeywordRecord `json:"keyword_analysis"`
	DocumentSentiment Sentiment                `json:"document_sentiment"`
}

// HasEntity reports whether the document contains an entity with exactly this name.
func (a *DocumentAnalysis) HasEntity(name string) bool {
	_, ok := a.Entities[name]
	return ok
}

// HasKeyword reports whether the document has a keyword record for term.
func (a *DocumentAnalysis) HasKeyword(term string) bool {
	_, ok := a.Keywords[term]
	return ok
}

// EntityNames returns the entity names in sorted order.
func (a *DocumentAnalysis) EntityNames() []string {
	return sortedKeys(a.Entities)
}

// KeywordTerms returns the keyword terms in sorted order.
func (a *DocumentAnalysis) KeywordTerms() []string {
	return sortedKeys(a.Keywords)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
