package domain

// EntitySelection is one entity shortlisted for integration.
type EntitySelection struct {
	EntityName     string   `json:"entity_name"`
	EntityType     string   `json:"entity_type"`
	RelevanceScore float64  `json:"relevance_score"`
	Reasoning      string   `json:"reasoning"`
	Competitors    []string `json:"competitors,omitempty"`
}

// IntegrationOpportunity is one place and way to work an entity into the client page.
type IntegrationOpportunity struct {
	Section        string   `json:"section"`
	Recommendation string   `json:"recommendation"`
	RelatedTerms   []string `json:"related_terms"`
	Examples       []string `json:"examples"`
	Placement      string   `json:"placement"`
	Explanation    string   `json:"explanation"`
}

// EntityRecommendation is the integration advice for one selected entity.
type EntityRecommendation struct {
	EntityContext            EntitySelection          `json:"entity_context"`
	IntegrationOpportunities []IntegrationOpportunity `json:"integration_opportunities"`
}
