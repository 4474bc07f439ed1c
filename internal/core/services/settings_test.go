package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// newSettings returns a service over an empty store with the given environment.
func newSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	service.getenv = func(key string) string { return env[key] }
	return service, store
}

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettings(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newSettings(nil)
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("llm.api_key", "sk-ant")
	_ = store.Set("llm.requests_per_minute", 0)
	_ = store.Set("fetch.timeout_seconds", 30)
	_ = store.Set("fetch.extractor", "readability")
	_ = store.Set("analysis.keyword_match", "phrase")
	_ = store.Set("analysis.shortlist_size", 5)
	_ = store.Set("output.formats", []string{"html", "json"})
	_ = store.Set("archive.enabled", false)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
	assert.Equal(t, 0, settings.LLM.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, settings.Fetch.Timeout)
	assert.Equal(t, domain.ExtractorReadability, settings.Fetch.Extractor)
	assert.Equal(t, domain.KeywordMatchPhrase, settings.Analysis.KeywordMatch)
	assert.Equal(t, 5, settings.Analysis.ShortlistSize)
	assert.Equal(t, []domain.ReportFormat{domain.ReportFormatHTML, domain.ReportFormatJSON}, settings.Output.Formats)
	assert.False(t, settings.Archive.Enabled)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newSettings(nil)
	_ = store.Set("llm.provider", "invalid_provider")
	_ = store.Set("fetch.extractor", "ocr")
	_ = store.Set("analysis.keyword_match", "fuzzy")
	_ = store.Set("output.formats", []string{"pdf"})
	_ = store.Set("analysis.shortlist_size", -3)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.Fetch.Extractor, settings.Fetch.Extractor)
	assert.Equal(t, defaults.Analysis.KeywordMatch, settings.Analysis.KeywordMatch)
	assert.Equal(t, defaults.Output.Formats, settings.Output.Formats)
	assert.Equal(t, defaults.Analysis.ShortlistSize, settings.Analysis.ShortlistSize)
}

func TestSettingsService_Get_EnvironmentFallbacks(t *testing.T) {
	service, store := newSettings(map[string]string{
		EnvOpenAIKey:         "sk-env",
		EnvGoogleCredentials: "/keys/sa.json",
	})

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.LLM.APIKey)
	assert.Equal(t, "/keys/sa.json", settings.Annotation.CredentialsFile)

	// Configured values win over the environment.
	_ = store.Set("llm.api_key", "sk-file")
	_ = store.Set("annotation.api_key", "AIza")
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-file", settings.LLM.APIKey)
	assert.Empty(t, settings.Annotation.CredentialsFile)
}

func TestSettingsService_Save(t *testing.T) {
	service, store := newSettings(nil)

	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderOllama
	settings.LLM.Model = "llama3.2"
	settings.LLM.BaseURL = "http://localhost:11434"
	settings.Annotation.APIKey = "AIza"
	settings.Fetch.Timeout = 15 * time.Second
	settings.Output.Formats = []domain.ReportFormat{domain.ReportFormatJSON}
	settings.Archive.Enabled = false

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, "AIza", store.GetString("annotation.api_key"))
	assert.Equal(t, 15, store.GetInt("fetch.timeout_seconds"))
	assert.Equal(t, []string{"json"}, store.GetStringSlice("output.formats"))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *loaded)
}

func TestSettingsService_Save_SkipsEnvironmentCredentials(t *testing.T) {
	service, store := newSettings(map[string]string{
		EnvOpenAIKey:         "sk-env",
		EnvGoogleCredentials: "/keys/sa.json",
	})

	settings, err := service.Get()
	require.NoError(t, err)
	require.NoError(t, service.Save(settings))

	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)
	_, exists = store.Get("annotation.credentials_file")
	assert.False(t, exists)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    any
		wantErr error
	}{
		{key: "llm.provider", value: "ollama", want: "ollama"},
		{key: "llm.provider", value: "gemini", wantErr: errors.New("invalid LLM provider: gemini")},
		{key: "llm.model", value: "gpt-4o", want: "gpt-4o"},
		{key: "llm.requests_per_minute", value: "0", want: 0},
		{key: "llm.requests_per_minute", value: "-1", wantErr: domain.ErrInvalidInput},
		{key: "fetch.timeout_seconds", value: "20", want: 20},
		{key: "fetch.timeout_seconds", value: "0", wantErr: domain.ErrInvalidInput},
		{key: "fetch.extractor", value: "readability", want: "readability"},
		{key: "fetch.extractor", value: "ocr", wantErr: domain.ErrUnsupportedType},
		{key: "analysis.keyword_match", value: "phrase", want: "phrase"},
		{key: "analysis.advice_concurrency", value: "many", wantErr: domain.ErrInvalidInput},
		{key: "output.formats", value: "md, xlsx", want: []string{"markdown", "xlsx"}},
		{key: "output.formats", value: "pdf", wantErr: domain.ErrUnsupportedType},
		{key: "output.dir", value: "", wantErr: domain.ErrInvalidInput},
		{key: "archive.enabled", value: "false", want: false},
		{key: "archive.enabled", value: "maybe", wantErr: domain.ErrInvalidInput},
		{key: "search.mode", value: "hybrid", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			service, store := newSettings(nil)

			err := service.Set(tt.key, tt.value)
			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrInvalidInput) || errors.Is(tt.wantErr, domain.ErrUnsupportedType) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				_, exists := store.Get(tt.key)
				assert.False(t, exists)
				return
			}
			require.NoError(t, err)
			got, exists := store.Get(tt.key)
			require.True(t, exists)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_EmptyStringUnsets(t *testing.T) {
	service, store := newSettings(nil)
	require.NoError(t, service.Set("llm.api_key", "sk-1"))

	require.NoError(t, service.Set("llm.api_key", " "))
	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)

	typed := map[string]string{
		"llm.provider":                "anthropic",
		"llm.requests_per_minute":     "30",
		"fetch.timeout_seconds":       "10",
		"fetch.extractor":             "readability",
		"analysis.keyword_match":      "phrase",
		"analysis.shortlist_size":     "5",
		"analysis.advice_concurrency": "2",
		"output.dir":                  "out",
		"output.formats":              "json",
		"archive.enabled":             "false",
	}
	for key, value := range typed {
		t.Run(key, func(t *testing.T) {
			require.NoError(t, service.Set(key, value))
			_, exists := store.Get(key)
			require.True(t, exists)

			require.NoError(t, service.Set(key, ""))
			_, exists = store.Get(key)
			assert.False(t, exists)
		})
	}

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings().Analysis, settings.Analysis)
	assert.Equal(t, domain.DefaultAppSettings().Output, settings.Output)
}

func TestSettingsService_Set_EmptyUnknownKey(t *testing.T) {
	service, _ := newSettings(nil)

	err := service.Set("no.such.key", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestSettingsService_Keys(t *testing.T) {
	service, _ := newSettings(nil)

	keys := service.Keys()
	assert.Len(t, keys, 17)
	assert.Equal(t, "llm.provider", keys[0])
	assert.Contains(t, keys, "annotation.credentials_file")

	// Each key can be set without the unknown-key error.
	for _, key := range keys {
		err := service.Set(key, "x")
		if err != nil {
			assert.NotContains(t, err.Error(), "unknown setting", key)
		}
	}
}

func TestSettingsService_SetLLMProvider_Ollama(t *testing.T) {
	service, _ := newSettings(nil)

	err := service.SetLLMProvider(domain.AIProviderOllama, "", "")
	require.NoError(t, err)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
}

func TestSettingsService_SetLLMProvider_OpenAI(t *testing.T) {
	service, _ := newSettings(nil)

	err := service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "sk-test")
	require.NoError(t, err)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
	assert.Empty(t, settings.LLM.BaseURL)
}

func TestSettingsService_SetLLMProvider_RequiresAPIKey(t *testing.T) {
	service, _ := newSettings(nil)

	err := service.SetLLMProvider(domain.AIProviderAnthropic, "", "")
	assert.EqualError(t, err, "API key required for anthropic")
}

func TestSettingsService_SetLLMProvider_KeyFromEnvironment(t *testing.T) {
	service, store := newSettings(map[string]string{EnvAnthropicKey: "sk-ant-env"})

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", ""))

	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-env", settings.LLM.APIKey)
}

func TestSettingsService_SetLLMProvider_Invalid(t *testing.T) {
	service, _ := newSettings(nil)

	err := service.SetLLMProvider(domain.AIProvider("gemini"), "", "")
	assert.EqualError(t, err, "invalid LLM provider: gemini")
}

func TestSettingsService_Validate(t *testing.T) {
	service, store := newSettings(nil)

	err := service.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, err, domain.ErrAnnotatorNotConfigured)
	assert.Contains(t, err.Error(), EnvOpenAIKey)

	_ = store.Set("llm.api_key", "sk-test")
	_ = store.Set("annotation.credentials_file", "/keys/sa.json")
	assert.NoError(t, service.Validate())
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newSettings(nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateLLMConfig(t *testing.T) {
	store := memory.NewConfigStore()

	// No validator configured.
	assert.NoError(t, NewSettingsService(store, nil).ValidateLLMConfig())

	validator := &mockAIConfigValidator{llmErr: domain.ErrLLMUnavailable}
	err := NewSettingsService(store, validator).ValidateLLMConfig()
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Equal(t, 1, validator.calls)
}

func TestSettingsService_ValidateAnnotationConfig(t *testing.T) {
	store := memory.NewConfigStore()

	assert.NoError(t, NewSettingsService(store, nil).ValidateAnnotationConfig())

	validator := &mockAIConfigValidator{annotationErr: domain.ErrAnnotatorNotConfigured}
	err := NewSettingsService(store, validator).ValidateAnnotationConfig()
	assert.ErrorIs(t, err, domain.ErrAnnotatorNotConfigured)
	assert.Equal(t, 1, validator.calls)
}
