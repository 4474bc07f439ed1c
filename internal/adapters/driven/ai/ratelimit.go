package ai

import (
	"context"
	"errors"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/ratelimit"
)

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// RateLimitedLLM throttles calls to an LLM provider and backs off after
// the provider reports rate limiting.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *ratelimit.Limiter
}

// WithRateLimit wraps svc so that at most rpm calls start per minute.
// A non-positive rpm returns svc unchanged.
func WithRateLimit(svc driven.LLMService, rpm int) driven.LLMService {
	if svc == nil || rpm <= 0 {
		return svc
	}
	return &RateLimitedLLM{
		LLMService: svc,
		limiter:    ratelimit.New("llm", ratelimit.PerMinute(rpm)),
	}
}

// Chat waits for a token then delegates.
func (r *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := r.LLMService.Chat(ctx, messages, opts)
	r.observe(err)
	return out, err
}

func (r *RateLimitedLLM) observe(err error) {
	if errors.Is(err, domain.ErrRateLimited) {
		r.limiter.RecordRateLimitError(0)
	}
}
