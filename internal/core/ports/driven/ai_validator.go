package driven

import "github.com/custodia-labs/gapscope/internal/core/domain"

// AIConfigValidator checks model and annotation configurations before a run
// depends on them.
type AIConfigValidator interface {
	// ValidateLLM pings the configured provider. An unconfigured provider
	// passes.
	ValidateLLM(config *domain.LLMSettings) error

	// ValidateAnnotation resolves annotation credentials without calling
	// the service. An empty configuration passes.
	ValidateAnnotation(config *domain.AnnotationSettings) error
}
