package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/logger"
)

// Selector asks the LLM to shortlist the missing entities worth integrating.
type Selector struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	size    int
}

// NewSelector creates a selector. A size <= 0 uses domain.DefaultShortlistSize.
func NewSelector(llm driven.LLMService, prompts driven.PromptStore, size int) *Selector {
	if size <= 0 {
		size = domain.DefaultShortlistSize
	}
	return &Selector{llm: llm, prompts: prompts, size: size}
}

type selectionReply struct {
	SelectedEntities []domain.EntitySelection `json:"selected_entities"`
}

// Select makes one LLM call over every missing entity and returns the
// shortlist in the order the model gave it. An empty input returns an empty
// list without calling the model. Fewer than the requested number is accepted.
func (s *Selector) Select(
	ctx context.Context, missing map[string]domain.MissingEntity,
) ([]domain.EntitySelection, error) {
	if len(missing) == 0 {
		logger.Debug("No missing entities, skipping selection")
		return []domain.EntitySelection{}, nil
	}
	if s.llm == nil {
		return nil, fmt.Errorf("select entities: %w", domain.ErrLLMUnavailable)
	}

	candidates := (&domain.ComparisonResult{MissingEntities: missing}).Candidates()
	candidateJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}

	system, err := s.prompts.Load(driven.PromptSelectionSystem)
	if err != nil {
		return nil, fmt.Errorf("load selection prompt: %w", err)
	}
	template, err := s.prompts.Load(driven.PromptSelection)
	if err != nil {
		return nil, fmt.Errorf("load selection prompt: %w", err)
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(template, s.size, string(candidateJSON))},
	}

	reply, err := chatJSON(ctx, s.llm, messages, driven.ChatOptions{}, func(r *selectionReply) error {
		for _, sel := range r.SelectedEntities {
			if strings.TrimSpace(sel.EntityName) == "" {
				return errors.New("selection without entity_name")
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select entities: %w", err)
	}

	selections := reply.SelectedEntities
	for i := range selections {
		sel := &selections[i]
		if sel.RelevanceScore < 0 || sel.RelevanceScore > 1 {
			logger.Warn("Relevance score %v for %q is outside [0,1], clamping", sel.RelevanceScore, sel.EntityName)
			sel.RelevanceScore = clamp01(sel.RelevanceScore)
		}
		if entity, ok := missing[sel.EntityName]; ok {
			sel.Competitors = entity.CompetitorKeys()
		} else {
			logger.Warn("Selected entity %q is not a missing entity", sel.EntityName)
		}
	}
	if len(selections) > s.size {
		logger.Warn("Model returned %d selections, %d requested", len(selections), s.size)
	}

	logger.Info("Selected %d of %d missing entities", len(selections), len(candidates))
	return selections, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
