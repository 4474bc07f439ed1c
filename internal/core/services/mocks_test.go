package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockFetcher implements driven.PageFetcher for testing.
type mockFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := m.errs[url]; err != nil {
		return "", err
	}
	text, ok := m.pages[url]
	if !ok {
		return "", fmt.Errorf("%w: %s: 404", domain.ErrPageUnavailable, url)
	}
	return text, nil
}

func (m *mockFetcher) Close() error {
	return nil
}

// mockAnnotator implements driven.Annotator for testing.
// Annotations and errors are keyed by document text.
type mockAnnotator struct {
	annotations map[string]*domain.Annotation
	errs        map[string]error
	calls       atomic.Int32
}

func (m *mockAnnotator) Annotate(_ context.Context, text string) (*domain.Annotation, error) {
	m.calls.Add(1)
	if err := m.errs[text]; err != nil {
		return nil, err
	}
	if a, ok := m.annotations[text]; ok {
		return a, nil
	}
	return &domain.Annotation{}, nil
}

func (m *mockAnnotator) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	chat func(messages []driven.ChatMessage) (string, error)

	mu       sync.Mutex
	calls    int
	lastMsgs []driven.ChatMessage
	lastOpts driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastMsgs = messages
	m.lastOpts = opts
	m.mu.Unlock()
	return m.chat(messages)
}

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// replies returns a chat func that answers with each reply in turn and
// repeats the last one.
func replies(steps ...any) func([]driven.ChatMessage) (string, error) {
	var mu sync.Mutex
	i := 0
	return func([]driven.ChatMessage) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		step := steps[i]
		if i < len(steps)-1 {
			i++
		}
		if err, ok := step.(error); ok {
			return "", err
		}
		return step.(string), nil
	}
}

// Test prompts keep the placeholders of the real ones.
const (
	testSelectionSystem = "SELECT"
	testAdviceSystem    = "ADVISE"
)

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	err error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	switch name {
	case driven.PromptSelectionSystem:
		return testSelectionSystem, nil
	case driven.PromptSelection:
		return "size=%[1]d\n%[2]s", nil
	case driven.PromptAdviceSystem:
		return testAdviceSystem, nil
	case driven.PromptAdvice:
		return "entity=%[1]s|score=%[2]s|reason=%[3]s|page=%[4]s", nil
	default:
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}
}

func (m *mockPromptStore) Reload() {}

// adviceEntity extracts the entity name from a test advice prompt.
func adviceEntity(messages []driven.ChatMessage) string {
	content := messages[len(messages)-1].Content
	content = strings.TrimPrefix(content, "entity=")
	name, _, _ := strings.Cut(content, "|")
	return name
}

// mockRenderer implements driven.ReportRenderer for testing.
type mockRenderer struct {
	format domain.ReportFormat
	data   []byte
	err    error
}

func (m *mockRenderer) Format() domain.ReportFormat {
	return m.format
}

func (m *mockRenderer) Render(_ *domain.FinalState) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

// mockAIConfigValidator implements driven.AIConfigValidator for testing.
type mockAIConfigValidator struct {
	llmErr        error
	annotationErr error
	calls         int
}

func (m *mockAIConfigValidator) ValidateAnnotation(_ *domain.AnnotationSettings) error {
	m.calls++
	return m.annotationErr
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.calls++
	return m.llmErr
}
