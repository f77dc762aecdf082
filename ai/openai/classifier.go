package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/newsroom/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// TopicClassifier implements ai.TopicClassifier by asking a chat model to
// order the candidate labels.
type TopicClassifier struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.TopicClassifier = (*TopicClassifier)(nil)

type ranking struct {
	Labels []string `json:"labels"`
}

func newTopicClassifier(client llms.Model) *TopicClassifier {
	return &TopicClassifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}
}

// NewTopicClassifier creates a chat-model classifier from the configuration.
func NewTopicClassifier(config *ai.Config) (ai.TopicClassifier, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return newTopicClassifier(client), nil
}

// Rank returns the candidate labels in the order the model chose. Labels the
// model invented are dropped and repeated labels are kept once. Scores are
// synthetic: they only encode the rank.
func (c *TopicClassifier) Rank(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error) {
	if len(labels) == 0 {
		return []ai.LabelScore{}, nil
	}

	var result ranking
	ok, err := generateJSON(ctx, c.client, c.logger, buildRankingPrompt(labels), text, &result)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ai.LabelScore{}, nil
	}

	allowed := make(map[string]bool, len(labels))
	for _, l := range labels {
		allowed[l] = true
	}

	ranked := make([]ai.LabelScore, 0, len(result.Labels))
	seen := make(map[string]bool, len(result.Labels))
	for _, l := range result.Labels {
		if !allowed[l] || seen[l] {
			continue
		}
		seen[l] = true
		ranked = append(ranked, ai.LabelScore{Label: l})
	}
	for i := range ranked {
		ranked[i].Score = float64(len(ranked)-i) / float64(len(ranked))
	}

	c.logger.Debug("ranked labels", "returned", len(result.Labels), "kept", len(ranked))
	return ranked, nil
}

// newClient builds the langchaingo client shared by both services.
// Use "none" as token for local OpenAI-compatible services that don't require authentication.
func newClient(config *ai.Config) (llms.Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.Token
	if token == "" {
		token = "none"
	}

	return openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(config.ChatModel),
	)
}
