package ai

import (
	"context"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/annotation/googlenl"
	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks the model provider and annotation credentials.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}

// ValidateAnnotation parses the credentials file when one is set. An API key
// can only be checked by calling the service, so it passes as given.
func (v *ConfigValidator) ValidateAnnotation(config *domain.AnnotationSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	return googlenl.CheckCredentials(context.Background(), googlenl.Config{
		CredentialsFile: config.CredentialsFile,
		APIKey:          config.APIKey,
		Endpoint:        config.Endpoint,
	})
}
