package domain

import (
	"fmt"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ExtractorMode selects how visible text is pulled out of a fetched page.
type ExtractorMode string

// Available extractors.
const (
	// ExtractorVisible keeps all visible text, dropping scripts and styles.
	ExtractorVisible ExtractorMode = "visible"

	// ExtractorReadability keeps only the main article content.
	ExtractorReadability ExtractorMode = "readability"
)

// IsValid returns true if the extractor is recognised.
func (m ExtractorMode) IsValid() bool {
	return m == ExtractorVisible || m == ExtractorReadability
}

// KeywordMatchMode selects how entity names are matched against page tokens.
type KeywordMatchMode string

// Available keyword match modes.
const (
	// KeywordMatchToken matches the exact entity name as a single token.
	// Multi-word and capitalised names get zero metrics.
	KeywordMatchToken KeywordMatchMode = "token"

	// KeywordMatchPhrase lowercases the name and matches it as an n-gram.
	KeywordMatchPhrase KeywordMatchMode = "phrase"
)

// IsValid returns true if the match mode is recognised.
func (m KeywordMatchMode) IsValid() bool {
	return m == KeywordMatchToken || m == KeywordMatchPhrase
}

// ReportFormat identifies a report renderer.
type ReportFormat string

// Available report formats.
const (
	ReportFormatMarkdown ReportFormat = "markdown"
	ReportFormatXLSX     ReportFormat = "xlsx"
	ReportFormatHTML     ReportFormat = "html"
	ReportFormatJSON     ReportFormat = "json"
)

// IsValid returns true if the format is recognised.
func (f ReportFormat) IsValid() bool {
	switch f {
	case ReportFormatMarkdown, ReportFormatXLSX, ReportFormatHTML, ReportFormatJSON:
		return true
	default:
		return false
	}
}

// Extension returns the file extension without the dot.
func (f ReportFormat) Extension() string {
	if f == ReportFormatMarkdown {
		return "md"
	}
	return string(f)
}

// ParseReportFormats parses a comma-separated format list.
func ParseReportFormats(s string) ([]ReportFormat, error) {
	var formats []ReportFormat
	seen := make(map[ReportFormat]bool)
	for _, part := range strings.Split(s, ",") {
		f := ReportFormat(strings.ToLower(strings.TrimSpace(part)))
		if f == "" {
			continue
		}
		if f == "md" {
			f = ReportFormatMarkdown
		}
		if !f.IsValid() {
			return nil, fmt.Errorf("%w: report format %q", ErrUnsupportedType, part)
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no report formats", ErrInvalidInput)
	}
	return formats, nil
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerMinute bounds calls to the provider. Zero disables limiting.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AnnotationSettings holds the entity annotation service configuration.
type AnnotationSettings struct {
	// CredentialsFile is a service account JSON file.
	CredentialsFile string

	// APIKey is used when no credentials file is set.
	APIKey string

	// Endpoint overrides the service endpoint.
	Endpoint string

	// RequestsPerMinute bounds calls to the service. Zero disables limiting.
	RequestsPerMinute int
}

// IsConfigured returns true if some credential is available.
func (a AnnotationSettings) IsConfigured() bool {
	return a.CredentialsFile != "" || a.APIKey != ""
}

// FetchSettings holds page fetch configuration.
type FetchSettings struct {
	// Timeout bounds each page fetch.
	Timeout time.Duration

	// Extractor selects the text extraction strategy.
	Extractor ExtractorMode

	// UserAgent is sent with every request.
	UserAgent string
}

// AnalysisSettings holds pipeline tuning.
type AnalysisSettings struct {
	// KeywordMatch selects how entity names are matched as keywords.
	KeywordMatch KeywordMatchMode

	// ShortlistSize is how many entities the ranking model is asked for.
	ShortlistSize int

	// AdviceConcurrency bounds concurrent advice generation calls.
	AdviceConcurrency int
}

// OutputSettings holds report output configuration.
type OutputSettings struct {
	// Dir is where report files are written.
	Dir string

	// Formats lists the renderers to run.
	Formats []ReportFormat
}

// ArchiveSettings holds run archive configuration.
type ArchiveSettings struct {
	// Enabled stores every completed run in the local database.
	Enabled bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM        LLMSettings
	Annotation AnnotationSettings
	Fetch      FetchSettings
	Analysis   AnalysisSettings
	Output     OutputSettings
	Archive    ArchiveSettings
}

// Default values for settings.
const (
	DefaultFetchTimeout      = 10 * time.Second
	DefaultShortlistSize     = 10
	DefaultAdviceConcurrency = 4
	DefaultLLMRPM            = 60
	DefaultAnnotationRPM     = 300
	DefaultOutputDir         = "output"
)

// DefaultAppSettings returns settings with sensible defaults.
// Credentials are left unset.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:          AIProviderOpenAI,
			Model:             DefaultLLMModels()[AIProviderOpenAI],
			RequestsPerMinute: DefaultLLMRPM,
		},
		Annotation: AnnotationSettings{
			RequestsPerMinute: DefaultAnnotationRPM,
		},
		Fetch: FetchSettings{
			Timeout:   DefaultFetchTimeout,
			Extractor: ExtractorVisible,
		},
		Analysis: AnalysisSettings{
			KeywordMatch:      KeywordMatchToken,
			ShortlistSize:     DefaultShortlistSize,
			AdviceConcurrency: DefaultAdviceConcurrency,
		},
		Output: OutputSettings{
			Dir:     DefaultOutputDir,
			Formats: []ReportFormat{ReportFormatMarkdown, ReportFormatXLSX},
		},
		Archive: ArchiveSettings{
			Enabled: true,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
