// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/annotation/googlenl"
	anthropicllm "github.com/custodia-labs/gapscope/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/gapscope/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/gapscope/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services a run needs.
type InitResult struct {
	LLMService driven.LLMService
	Annotator  driven.Annotator
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	if r.Annotator != nil {
		r.Annotator.Close()
	}
}

// Init creates the LLM and annotation services from settings.
// Both are required; a missing one is reported with guidance.
func Init(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no settings", domain.ErrInvalidInput)
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'gapscope settings set llm.provider ...' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured. Run 'gapscope settings show' to check",
			domain.ErrLLMUnavailable, settings.LLM.Provider)
	}

	annotator, err := CreateAnnotator(ctx, &settings.Annotation)
	if err != nil {
		llm.Close()
		return nil, err
	}

	return &InitResult{
		LLMService: WithRateLimit(llm, settings.LLM.RequestsPerMinute),
		Annotator:  annotator,
	}, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'gapscope settings set' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'gapscope settings set' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateAnnotator creates the Natural Language annotator. Without an explicit
// credential it falls back to application default credentials.
func CreateAnnotator(ctx context.Context, settings *domain.AnnotationSettings) (driven.Annotator, error) {
	cfg := googlenl.Config{}
	if settings != nil {
		cfg.CredentialsFile = settings.CredentialsFile
		cfg.APIKey = settings.APIKey
		cfg.Endpoint = settings.Endpoint
		cfg.RequestsPerMinute = settings.RequestsPerMinute
	}
	return googlenl.New(ctx, cfg)
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
