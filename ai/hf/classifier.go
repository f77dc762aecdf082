package hf

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/newsroom/ai"
)

// TopicClassifier implements ai.TopicClassifier with a zero-shot
// classification model served by the inference API.
type TopicClassifier struct {
	client *client
	model  string
	logger *slog.Logger
}

var _ ai.TopicClassifier = (*TopicClassifier)(nil)

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
	Options    inferenceOptions   `json:"options"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// zeroShotResponse is the classic pipeline shape: parallel label and score arrays.
type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// labelScore is the newer task shape: a list of {label, score} objects.
type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func newTopicClassifier(config *ai.Config, c *client) *TopicClassifier {
	return &TopicClassifier{
		client: c,
		model:  config.ZeroShotModel,
		logger: slog.Default().With("component", "hf-classifier"),
	}
}

// NewTopicClassifier creates a zero-shot classifier from the configuration.
func NewTopicClassifier(config *ai.Config) (ai.TopicClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "hf-classifier")
	return newTopicClassifier(config, newClient(config, logger)), nil
}

// Rank scores labels against text and returns them best first.
func (c *TopicClassifier) Rank(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error) {
	if len(labels) == 0 {
		return []ai.LabelScore{}, nil
	}

	req := zeroShotRequest{
		Inputs: text,
		Parameters: zeroShotParameters{
			CandidateLabels: labels,
			MultiLabel:      false,
		},
		Options: inferenceOptions{WaitForModel: true},
	}

	var raw json.RawMessage
	if err := c.client.post(ctx, c.model, req, &raw); err != nil {
		return nil, err
	}

	ranked, err := decodeRanking(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("ranked labels", "candidates", len(labels), "returned", len(ranked))
	return ranked, nil
}

// decodeRanking accepts both response shapes and sorts by descending score.
func decodeRanking(raw json.RawMessage) ([]ai.LabelScore, error) {
	var ranked []ai.LabelScore

	var pairs []labelScore
	if err := json.Unmarshal(raw, &pairs); err == nil {
		ranked = make([]ai.LabelScore, 0, len(pairs))
		for _, p := range pairs {
			ranked = append(ranked, ai.LabelScore{Label: p.Label, Score: p.Score})
		}
	} else {
		var resp zeroShotResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
		}
		if len(resp.Scores) != len(resp.Labels) {
			return nil, fmt.Errorf("%w: %d labels but %d scores", ai.ErrMalformedResponse, len(resp.Labels), len(resp.Scores))
		}
		ranked = make([]ai.LabelScore, 0, len(resp.Labels))
		for i, label := range resp.Labels {
			ranked = append(ranked, ai.LabelScore{Label: label, Score: resp.Scores[i]})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}
