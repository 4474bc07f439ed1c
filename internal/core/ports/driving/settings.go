package driving

import "github.com/custodia-labs/gapscope/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set writes one setting by key after checking its value.
	Set(key, value string) error

	// Keys returns the recognised setting keys in display order.
	Keys() []string

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that the settings are complete enough to run an analysis.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error

	// ValidateAnnotationConfig checks that the annotation credentials resolve.
	ValidateAnnotationConfig() error
}
