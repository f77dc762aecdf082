// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/newsroom/ai"
	"github.com/tmc/langchaingo/llms"
)

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.EntityExtractor = (*EntityExtractor)(nil)

// entity matches the structure expected from the LLM.
type entity struct {
	Word string `json:"word"`
	Type string `json:"type"`
}

// entities is the wrapper structure for the LLM's JSON response.
type entities struct {
	Entities []entity `json:"entities"`
}

func newEntityExtractor(client llms.Model) *EntityExtractor {
	return &EntityExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return newEntityExtractor(client), nil
}

// Tag asks the model for named entities. Every entity comes back as a
// pre-grouped span.
func (e *EntityExtractor) Tag(ctx context.Context, text string) ([]ai.Token, error) {
	if strings.TrimSpace(text) == "" {
		return []ai.Token{}, nil
	}

	var result entities
	ok, err := generateJSON(ctx, e.client, e.logger, buildEntityPrompt(), text, &result)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []ai.Token{}, nil
	}

	tokens := make([]ai.Token, 0, len(result.Entities))
	for _, ent := range result.Entities {
		group := strings.ToUpper(strings.TrimSpace(ent.Type))
		if group == "" {
			group = "MISC"
		}
		tokens = append(tokens, ai.Token{Word: ent.Word, EntityGroup: group})
	}

	e.logger.Debug("extracted entities", "total", len(tokens))
	return tokens, nil
}
