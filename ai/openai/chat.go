package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/newsroom/ai"
	"github.com/tmc/langchaingo/llms"
)

// maxAttempts bounds how many times a malformed JSON answer is re-requested.
const maxAttempts = 3

// generateJSON sends a system and user prompt in JSON mode and decodes the
// answer into out. Malformed answers are repaired and, failing that, retried.
// It reports false when the model returned no choices.
func generateJSON(ctx context.Context, client llms.Model, logger *slog.Logger, system, user string, out any) (bool, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err := client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return false, err
		}

		if len(response.Choices) < 1 {
			logger.Debug("no choices returned from model")
			return false, nil
		}

		responseText := repairJSON(stripCodeFence(response.Choices[0].Content))

		if err := json.Unmarshal([]byte(responseText), out); err != nil {
			lastErr = err
			logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		return true, nil
	}

	logger.Error("failed to parse model response after retries", "err", lastErr)
	return false, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, lastErr)
}
