package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptsFile is the name of the prompt override file in the config directory.
const PromptsFile = "prompts.toml"

// PromptStore loads LLM prompts from a single TOML file of name = template
// pairs. Names missing from the file, or given an empty value, use the
// built-in defaults.
//
// The file is read lazily on first Load and cached until Reload.
type PromptStore struct {
	mu        sync.RWMutex
	path      string
	overrides map[string]string
	loaded    bool
	loadErr   error
}

// defaultPrompts contains the built-in prompts.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSelectionSystem: `Select the most relevant entities to integrate, each with a relevance score and reasoning. Reply with JSON only.`,

	driven.PromptSelection: `You are an expert SEO content strategist. Review the entities below, which competitors cover and the client page does not, and pick the %[1]d that are most relevant to integrate into the client's page.

Context:
- An entity is a topic, concept or idea, not just a keyword. Good integration depends on its meaning, related terms and user intent.
- Favour entities most likely to improve the page's ranking and its usefulness to readers.
- The competitor count and maximum salience show how established each entity is among competitors.
- Give every selected entity a relevance score between 0 and 1 and a short reasoning.

Missing entities:
%[2]s

Reply with a JSON object of this shape and nothing else:
{"selected_entities": [{"entity_name": "...", "entity_type": "...", "relevance_score": 0.0, "reasoning": "..."}]}`,

	driven.PromptAdviceSystem: `Provide a structured recommendation for integrating the target entity. Reply with JSON only.`,

	driven.PromptAdvice: `You are an expert SEO content strategist. Analyse the client's page and give specific, actionable recommendations for integrating the target entity.

Guidelines:
- Treat the entity as a topic with meaning, related terms and user intent.
- Do not recommend keyword stuffing. Favour natural, readable language.
- Place the entity where it fits naturally: title, headings, introduction, body or conclusion.
- Use synonyms and related concepts to widen the semantic scope.
- Every recommendation must add value for readers.

Target entity:
- Name: "%[1]s"
- Relevance score: %[2]s
- Reasoning: %[3]s

Client page content:
"""
%[4]s
"""

For each opportunity give the section to change, the recommendation, related terms, example sentences, placement in key areas such as the title tag, meta description and headings, and why it helps both SEO and readers.

Reply with a JSON object of this shape and nothing else:
{"integration_opportunities": [{"section": "...", "recommendation": "...", "related_terms": ["..."], "examples": ["..."], "placement": "...", "explanation": "..."}]}`,
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptNames returns the names of all known prompts in sorted order.
func PromptNames() []string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPromptStore creates a prompt store reading configDir/prompts.toml.
// If configDir is empty, DefaultDir is used. No I/O happens here.
func NewPromptStore(configDir string) (*PromptStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	return &PromptStore{
		path: filepath.Join(configDir, PromptsFile),
	}, nil
}

// Load returns the prompt template for the given name.
// A broken override file is reported once and then ignored in favour of
// the defaults.
func (s *PromptStore) Load(name string) (string, error) {
	fallback, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	s.ensureLoaded()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loadErr != nil {
		return fallback, nil
	}
	if override := strings.TrimSpace(s.overrides[name]); override != "" {
		return override, nil
	}
	return fallback, nil
}

// Err returns the error from reading the override file, if any.
func (s *PromptStore) Err() error {
	s.ensureLoaded()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Reload clears the cache, forcing a fresh read on next access.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.overrides = nil
	s.loaded = false
	s.loadErr = nil
	s.mu.Unlock()
}

// Path returns the prompt file path.
func (s *PromptStore) Path() string {
	return s.path
}

// WriteDefaults writes every built-in prompt to the prompt file so it can be
// edited. An existing file is left untouched unless overwrite is set.
func (s *PromptStore) WriteDefaults(overwrite bool) error {
	if _, err := os.Stat(s.path); err == nil && !overwrite {
		return nil
	}

	data, err := toml.Marshal(defaultPrompts)
	if err != nil {
		return fmt.Errorf("marshal prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write prompts: %w", err)
	}

	s.Reload()
	return nil
}

func (s *PromptStore) ensureLoaded() {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	overrides, err := readPromptFile(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.overrides = overrides
	s.loadErr = err
	s.loaded = true
}

func readPromptFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read prompts: %w", err)
	}

	var overrides map[string]string
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for name := range overrides {
		if _, ok := defaultPrompts[name]; !ok {
			return nil, fmt.Errorf("parse %s: unknown prompt %q", path, name)
		}
	}
	return overrides, nil
}
