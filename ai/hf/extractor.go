package hf

import (
	"context"
	"log/slog"

	"github.com/poiesic/newsroom/ai"
)

// EntityExtractor implements ai.EntityExtractor with a token
// classification model served by the inference API.
type EntityExtractor struct {
	client *client
	model  string
	logger *slog.Logger
}

var _ ai.EntityExtractor = (*EntityExtractor)(nil)

type nerRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters nerParameters    `json:"parameters"`
	Options    inferenceOptions `json:"options"`
}

type nerParameters struct {
	AggregationStrategy string `json:"aggregation_strategy"`
}

type nerToken struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

func newEntityExtractor(config *ai.Config, c *client) *EntityExtractor {
	return &EntityExtractor{
		client: c,
		model:  config.NERModel,
		logger: slog.Default().With("component", "hf-extractor"),
	}
}

// NewEntityExtractor creates a named-entity tagger from the configuration.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "hf-extractor")
	return newEntityExtractor(config, newClient(config, logger)), nil
}

// Tag returns the entity spans found in text. The request asks the server
// for "simple" aggregation, so spans usually arrive pre-grouped.
func (e *EntityExtractor) Tag(ctx context.Context, text string) ([]ai.Token, error) {
	if text == "" {
		return []ai.Token{}, nil
	}

	req := nerRequest{
		Inputs:     text,
		Parameters: nerParameters{AggregationStrategy: "simple"},
		Options:    inferenceOptions{WaitForModel: true},
	}

	var raw []nerToken
	if err := e.client.post(ctx, e.model, req, &raw); err != nil {
		return nil, err
	}

	tokens := make([]ai.Token, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, ai.Token{
			Word:        t.Word,
			Entity:      t.Entity,
			EntityGroup: t.EntityGroup,
			Score:       t.Score,
			Start:       t.Start,
			End:         t.End,
		})
	}

	e.logger.Debug("tagged entities", "tokens", len(tokens))
	return tokens, nil
}
