package services

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMRPM            = "llm.requests_per_minute"
	keyAnnotationCreds   = "annotation.credentials_file"
	keyAnnotationAPIKey  = "annotation.api_key"
	keyAnnotationRPM     = "annotation.requests_per_minute"
	keyFetchTimeout      = "fetch.timeout_seconds"
	keyFetchExtractor    = "fetch.extractor"
	keyFetchUserAgent    = "fetch.user_agent"
	keyKeywordMatch      = "analysis.keyword_match"
	keyShortlistSize     = "analysis.shortlist_size"
	keyAdviceConcurrency = "analysis.advice_concurrency"
	keyOutputDir         = "output.dir"
	keyOutputFormats     = "output.formats"
	keyArchiveEnabled    = "archive.enabled"
)

// Environment variables consulted when a credential is not configured.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvAnthropicKey      = "ANTHROPIC_API_KEY"
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
)

// settingKeys lists every recognised key in display order.
var settingKeys = []string{
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMRPM,
	keyAnnotationCreds, keyAnnotationAPIKey, keyAnnotationRPM,
	keyFetchTimeout, keyFetchExtractor, keyFetchUserAgent,
	keyKeywordMatch, keyShortlistSize, keyAdviceConcurrency,
	keyOutputDir, keyOutputFormats,
	keyArchiveEnabled,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Unset credentials fall back
// to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.getNonNegativeInt(keyLLMRPM, defaults.LLM.RequestsPerMinute),
		},
		Annotation: domain.AnnotationSettings{
			CredentialsFile:   s.configStore.GetString(keyAnnotationCreds),
			APIKey:            s.configStore.GetString(keyAnnotationAPIKey),
			RequestsPerMinute: s.getNonNegativeInt(keyAnnotationRPM, defaults.Annotation.RequestsPerMinute),
		},
		Fetch: domain.FetchSettings{
			Timeout:   time.Duration(s.getInt(keyFetchTimeout, int(defaults.Fetch.Timeout/time.Second))) * time.Second,
			Extractor: s.getExtractor(defaults.Fetch.Extractor),
			UserAgent: s.configStore.GetString(keyFetchUserAgent),
		},
		Analysis: domain.AnalysisSettings{
			KeywordMatch:      s.getKeywordMatch(defaults.Analysis.KeywordMatch),
			ShortlistSize:     s.getInt(keyShortlistSize, defaults.Analysis.ShortlistSize),
			AdviceConcurrency: s.getInt(keyAdviceConcurrency, defaults.Analysis.AdviceConcurrency),
		},
		Output: domain.OutputSettings{
			Dir:     s.getString(keyOutputDir, defaults.Output.Dir),
			Formats: s.getFormats(defaults.Output.Formats),
		},
		Archive: domain.ArchiveSettings{
			Enabled: s.getBool(keyArchiveEnabled, defaults.Archive.Enabled),
		},
	}

	// The default model belongs to the default provider.
	defaultModel := defaults.LLM.Model
	if m, ok := domain.DefaultLLMModels()[settings.LLM.Provider]; ok {
		defaultModel = m
	}
	settings.LLM.Model = s.getString(keyLLMModel, defaultModel)

	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}
	if settings.Annotation.CredentialsFile == "" && settings.Annotation.APIKey == "" {
		settings.Annotation.CredentialsFile = s.getenv(EnvGoogleCredentials)
	}

	return settings, nil
}

// Save persists application settings. Credentials that came from the
// environment are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if key := settings.LLM.APIKey; key != "" && key != s.envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, key); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyLLMRPM, settings.LLM.RequestsPerMinute); err != nil {
		return fmt.Errorf("save llm requests_per_minute: %w", err)
	}

	// Save annotation settings
	if path := settings.Annotation.CredentialsFile; path != "" && path != s.getenv(EnvGoogleCredentials) {
		if err := s.configStore.Set(keyAnnotationCreds, path); err != nil {
			return fmt.Errorf("save annotation credentials_file: %w", err)
		}
	}
	if settings.Annotation.APIKey != "" {
		if err := s.configStore.Set(keyAnnotationAPIKey, settings.Annotation.APIKey); err != nil {
			return fmt.Errorf("save annotation api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyAnnotationRPM, settings.Annotation.RequestsPerMinute); err != nil {
		return fmt.Errorf("save annotation requests_per_minute: %w", err)
	}

	// Save fetch settings
	if err := s.configStore.Set(keyFetchTimeout, int(settings.Fetch.Timeout/time.Second)); err != nil {
		return fmt.Errorf("save fetch timeout: %w", err)
	}
	if err := s.configStore.Set(keyFetchExtractor, string(settings.Fetch.Extractor)); err != nil {
		return fmt.Errorf("save fetch extractor: %w", err)
	}
	if settings.Fetch.UserAgent != "" {
		if err := s.configStore.Set(keyFetchUserAgent, settings.Fetch.UserAgent); err != nil {
			return fmt.Errorf("save fetch user_agent: %w", err)
		}
	}

	// Save analysis settings
	if err := s.configStore.Set(keyKeywordMatch, string(settings.Analysis.KeywordMatch)); err != nil {
		return fmt.Errorf("save keyword match: %w", err)
	}
	if err := s.configStore.Set(keyShortlistSize, settings.Analysis.ShortlistSize); err != nil {
		return fmt.Errorf("save shortlist size: %w", err)
	}
	if err := s.configStore.Set(keyAdviceConcurrency, settings.Analysis.AdviceConcurrency); err != nil {
		return fmt.Errorf("save advice concurrency: %w", err)
	}

	// Save output settings
	if err := s.configStore.Set(keyOutputDir, settings.Output.Dir); err != nil {
		return fmt.Errorf("save output dir: %w", err)
	}
	formats := make([]string, len(settings.Output.Formats))
	for i, f := range settings.Output.Formats {
		formats[i] = string(f)
	}
	if err := s.configStore.Set(keyOutputFormats, formats); err != nil {
		return fmt.Errorf("save output formats: %w", err)
	}

	if err := s.configStore.Set(keyArchiveEnabled, settings.Archive.Enabled); err != nil {
		return fmt.Errorf("save archive enabled: %w", err)
	}

	return nil
}

// Set writes one setting by key after checking its value.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	// An empty value restores the default for any known key.
	if value == "" {
		if !slices.Contains(settingKeys, key) {
			return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
		}
		if err := s.configStore.Unset(key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
		return nil
	}

	var stored any = value
	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("invalid LLM provider: %s", value)
		}
	case keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyAnnotationCreds, keyAnnotationAPIKey, keyFetchUserAgent:
	case keyOutputDir:
	case keyLLMRPM, keyAnnotationRPM:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case keyFetchTimeout, keyShortlistSize, keyAdviceConcurrency:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case keyFetchExtractor:
		if !domain.ExtractorMode(value).IsValid() {
			return fmt.Errorf("%w: extractor %q", domain.ErrUnsupportedType, value)
		}
	case keyKeywordMatch:
		if !domain.KeywordMatchMode(value).IsValid() {
			return fmt.Errorf("%w: keyword match %q", domain.ErrUnsupportedType, value)
		}
	case keyOutputFormats:
		formats, err := domain.ParseReportFormats(value)
		if err != nil {
			return err
		}
		names := make([]string, len(formats))
		for i, f := range formats {
			names[i] = string(f)
		}
		stored = names
	case keyArchiveEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised setting keys in display order.
func (s *SettingsService) Keys() []string {
	out := make([]string, len(settingKeys))
	copy(out, settingKeys)
	return out
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey
	if apiKey == "" || apiKey == s.envAPIKey(provider) {
		if err := s.configStore.Unset(keyLLMAPIKey); err != nil {
			return fmt.Errorf("clear llm api_key: %w", err)
		}
	}

	return s.Save(settings)
}

// Validate checks that the settings are complete enough to run an analysis.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: set %s or %s", domain.ErrLLMUnavailable,
			keyLLMAPIKey, s.envKeyName(settings.LLM.Provider)))
	}
	if !settings.Annotation.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: set %s, %s or %s", domain.ErrAnnotatorNotConfigured,
			keyAnnotationCreds, keyAnnotationAPIKey, EnvGoogleCredentials))
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateAnnotationConfig checks that the annotation credentials resolve.
func (s *SettingsService) ValidateAnnotationConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateAnnotation(&settings.Annotation)
}

func (s *SettingsService) envKeyName(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return EnvOpenAIKey
	case domain.AIProviderAnthropic:
		return EnvAnthropicKey
	default:
		return ""
	}
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	name := s.envKeyName(provider)
	if name == "" {
		return ""
	}
	return s.getenv(name)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getNonNegativeInt keeps an explicit zero, which disables rate limiting.
func (s *SettingsService) getNonNegativeInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getExtractor(defaultVal domain.ExtractorMode) domain.ExtractorMode {
	mode := domain.ExtractorMode(s.configStore.GetString(keyFetchExtractor))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getKeywordMatch(defaultVal domain.KeywordMatchMode) domain.KeywordMatchMode {
	mode := domain.KeywordMatchMode(s.configStore.GetString(keyKeywordMatch))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getFormats(defaultVal []domain.ReportFormat) []domain.ReportFormat {
	names := s.configStore.GetStringSlice(keyOutputFormats)
	if len(names) == 0 {
		return defaultVal
	}
	formats, err := domain.ParseReportFormats(strings.Join(names, ","))
	if err != nil {
		return defaultVal
	}
	return formats
}
