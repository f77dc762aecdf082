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

package hf

import (
	"log/slog"

	"github.com/poiesic/newsroom/ai"
)

// Provider implements ai.Provider on top of the Hugging Face inference API.
// Both services share one HTTP client.
type Provider struct {
	config     *ai.Config
	classifier *TopicClassifier
	extractor  *EntityExtractor
	logger     *slog.Logger
}

// NewProvider creates a provider backed by the inference API.
// The config is validated and normalized before use.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "hf-provider")
	c := newClient(config, logger)

	return &Provider{
		config:     config,
		classifier: newTopicClassifier(config, c),
		extractor:  newEntityExtractor(config, c),
		logger:     logger,
	}, nil
}

// TopicClassifier returns the zero-shot classifier.
func (p *Provider) TopicClassifier() ai.TopicClassifier {
	return p.classifier
}

// EntityExtractor returns the entity tagger.
func (p *Provider) EntityExtractor() ai.EntityExtractor {
	return p.extractor
}

// Close releases idle connections held by the shared HTTP client.
func (p *Provider) Close() error {
	p.logger.Debug("closing hf provider")
	p.classifier.client.http.CloseIdleConnections()
	return nil
}
