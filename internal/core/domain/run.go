package domain

import "time"

// MinCompetitors is the smallest number of competitor URLs a run accepts.
const MinCompetitors = 2

// AnalysisRequest holds the parameters of one content-gap run.
type AnalysisRequest struct {
	ClientURL      string
	CompetitorURLs []string
}

// Stage names a pipeline phase for failure reporting.
type Stage string

// Pipeline stages.
const (
	StageFetch   Stage = "fetch"
	StageAnalyze Stage = "analyze"
	StageSelect  Stage = "select"
	StageAdvise  Stage = "advise"
)

// StageFailure records a per-item failure that the run tolerated.
type StageFailure struct {
	Stage   Stage  `json:"stage"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// CompetitorPage is a competitor that survived fetch and analysis.
type CompetitorPage struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// FinalState is the assembled result of one run.
// The orchestrator builds it once and reporters only read it.
type FinalState struct {
	RunID       string           `json:"run_id"`
	ClientURL   string           `json:"client_url"`
	Competitors []CompetitorPage `json:"competitors"`

	// ClientAnalysis is the baseline document.
	ClientAnalysis DocumentAnalysis `json:"client_analysis"`

	// CompetitorAnalyses is parallel to Competitors.
	CompetitorAnalyses []DocumentAnalysis `json:"competitive_analyses"`

	// Comparison is keyed by competitor label.
	Comparison ComparisonResult `json:"comparison_results"`

	Selections      []EntitySelection      `json:"selected_entities"`
	Recommendations []EntityRecommendation `json:"entity_recommendations"`
	Failures        []StageFailure         `json:"failures,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// CompetitorURLs returns the URLs of the surviving competitors in input order.
func (s *FinalState) CompetitorURLs() []string {
	urls := make([]string, len(s.Competitors))
	for i, c := range s.Competitors {
		urls[i] = c.URL
	}
	return urls
}

// CompetitorLabelMap returns URL to label for the surviving competitors.
func (s *FinalState) CompetitorLabelMap() map[string]string {
	labels := make(map[string]string, len(s.Competitors))
	for _, c := range s.Competitors {
		labels[c.URL] = c.Label
	}
	return labels
}

// Recommendation returns the recommendation for the named entity, if any.
func (s *FinalState) Recommendation(entityName string) (EntityRecommendation, bool) {
	for _, rec := range s.Recommendations {
		if rec.EntityContext.EntityName == entityName {
			return rec, true
		}
	}
	return EntityRecommendation{}, false
}

// Summary returns the archive listing for this run.
func (s *FinalState) Summary() RunSummary {
	return RunSummary{
		ID:                  s.RunID,
		ClientURL:           s.ClientURL,
		CompetitorCount:     len(s.Competitors),
		MissingEntityCount:  len(s.Comparison.MissingEntities),
		MissingKeywordCount: len(s.Comparison.MissingKeywords),
		SelectedCount:       len(s.Selections),
		FailureCount:        len(s.Failures),
		CreatedAt:           s.FinishedAt,
	}
}

// RunSummary is the listing of an archived run.
type RunSummary struct {
	ID                  string    `json:"id"`
	ClientURL           string    `json:"client_url"`
	CompetitorCount     int       `json:"competitor_count"`
	MissingEntityCount  int       `json:"missing_entity_count"`
	MissingKeywordCount int       `json:"missing_keyword_count"`
	SelectedCount       int       `json:"selected_count"`
	FailureCount        int       `json:"failure_count"`
	CreatedAt           time.Time `json:"created_at"`
}
