package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/logger"
)

// maxStructuredAttempts bounds calls for one structured reply.
const maxStructuredAttempts = 3

// structuredBackoff is the first wait after a rate-limited attempt.
// It doubles on every further rate limit.
var structuredBackoff = 2 * time.Second

// chatJSON asks llm for a JSON object, decodes it into a fresh T and runs
// check on it. Replies that do not decode or fail check are retried, as are
// rate-limited calls after a backoff. Other LLM errors are returned at once.
func chatJSON[T any](
	ctx context.Context,
	llm driven.LLMService,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
	check func(*T) error,
) (*T, error) {
	opts.JSON = true
	backoff := structuredBackoff

	var lastErr error
	for attempt := 1; attempt <= maxStructuredAttempts; attempt++ {
		reply, err := llm.Chat(ctx, messages, opts)
		if err != nil {
			if !errors.Is(err, domain.ErrRateLimited) {
				return nil, err
			}
			lastErr = err
			logger.Warn("Rate limited on attempt %d, retrying in %s", attempt, backoff)
			if attempt < maxStructuredAttempts {
				if werr := sleepContext(ctx, backoff); werr != nil {
					return nil, werr
				}
				backoff *= 2
			}
			continue
		}

		out := new(T)
		if err := decodeJSONReply(reply, out); err != nil {
			lastErr = err
			logger.Debug("Malformed reply on attempt %d: %v", attempt, err)
			continue
		}
		if check != nil {
			if err := check(out); err != nil {
				lastErr = err
				logger.Debug("Invalid reply on attempt %d: %v", attempt, err)
				continue
			}
		}
		return out, nil
	}

	if errors.Is(lastErr, domain.ErrRateLimited) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %d attempts: %w", domain.ErrMalformedOutput, maxStructuredAttempts, lastErr)
}

// decodeJSONReply strips code fences and any text around the outermost
// JSON object before decoding.
func decodeJSONReply(reply string, out any) error {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return errors.New("no JSON object in reply")
	}
	return json.Unmarshal([]byte(cleaned[start:end+1]), out)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
