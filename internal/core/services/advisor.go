package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
)

// Advisor asks the LLM how to work one selected entity into the client page.
type Advisor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAdvisor creates an advisor.
func NewAdvisor(llm driven.LLMService, prompts driven.PromptStore) *Advisor {
	return &Advisor{llm: llm, prompts: prompts}
}

type adviceReply struct {
	IntegrationOpportunities *[]domain.IntegrationOpportunity `json:"integration_opportunities"`
}

// Advise makes one LLM call for sel with the full client page text.
// It is safe to call concurrently.
func (a *Advisor) Advise(
	ctx context.Context, sel domain.EntitySelection, baselineText string,
) (*domain.EntityRecommendation, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("advise %q: %w", sel.EntityName, domain.ErrLLMUnavailable)
	}

	system, err := a.prompts.Load(driven.PromptAdviceSystem)
	if err != nil {
		return nil, fmt.Errorf("load advice prompt: %w", err)
	}
	template, err := a.prompts.Load(driven.PromptAdvice)
	if err != nil {
		return nil, fmt.Errorf("load advice prompt: %w", err)
	}

	score := strconv.FormatFloat(sel.RelevanceScore, 'f', -1, 64)
	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(template, sel.EntityName, score, sel.Reasoning, baselineText)},
	}

	reply, err := chatJSON(ctx, a.llm, messages, driven.ChatOptions{}, func(r *adviceReply) error {
		if r.IntegrationOpportunities == nil {
			return errors.New("reply has no integration_opportunities")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("advise %q: %w", sel.EntityName, err)
	}

	return &domain.EntityRecommendation{
		EntityContext:            sel,
		IntegrationOpportunities: *reply.IntegrationOpportunities,
	}, nil
}
