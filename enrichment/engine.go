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

package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/newsroom/ai"
	"github.com/poiesic/newsroom/core"
)

// DefaultMaxChars is the entity-extraction budget used when the caller passes
// a non-positive limit.
const DefaultMaxChars = 800

// Engine classifies article text into the fixed category set and extracts
// named entities. It never fails outward: model errors, malformed output and
// panics degrade to core.DefaultTopic and an empty entity list.
//
// Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	classifier ai.TopicClassifier
	extractor  ai.EntityExtractor
	labels     []string
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "enrichment")
		return nil
	}
}

// NewEngine creates an engine from a model provider.
func NewEngine(provider ai.Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, ErrClassifierRequired
	}
	return NewEngineWithServices(provider.TopicClassifier(), provider.EntityExtractor(), opts...)
}

// NewEngineWithServices creates an engine from individual services.
func NewEngineWithServices(classifier ai.TopicClassifier, extractor ai.EntityExtractor, opts ...Option) (*Engine, error) {
	if classifier == nil {
		return nil, ErrClassifierRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	e := &Engine{
		classifier: classifier,
		extractor:  extractor,
		labels:     core.CategoryLabels(),
		logger:     slog.Default().With("component", "enrichment"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Classify returns the topic for text. The first ranked label that belongs to
// core.Categories wins. Empty text, an empty or unusable ranking, a model
// error or a panic all yield core.DefaultTopic.
func (e *Engine) Classify(ctx context.Context, text string) (topic core.Topic) {
	if strings.TrimSpace(text) == "" {
		return core.DefaultTopic
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("classifier panicked", "panic", fmt.Sprint(r))
			topic = core.DefaultTopic
		}
	}()

	ranked, err := e.classifier.Rank(ctx, text, e.labels)
	if err != nil {
		e.logger.Warn("classification failed, using default topic", "default", core.DefaultTopic, "err", err)
		return core.DefaultTopic
	}

	for _, candidate := range ranked {
		if t, ok := core.ParseTopic(candidate.Label); ok {
			return t
		}
	}

	e.logger.Warn("no usable ranking, using default topic", "default", core.DefaultTopic, "ranked", len(ranked))
	return core.DefaultTopic
}

// ExtractEntities returns the named entities found in the first maxChars
// characters of text, in encounter order and without deduplication. A
// non-positive maxChars means DefaultMaxChars. Failures yield an empty,
// non-nil slice.
func (e *Engine) ExtractEntities(ctx context.Context, text string, maxChars int) (entities []string) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	text = Truncate(text, maxChars)
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("entity extractor panicked", "panic", fmt.Sprint(r))
			entities = []string{}
		}
	}()

	tokens, err := e.extractor.Tag(ctx, text)
	if err != nil {
		e.logger.Warn("entity extraction failed", "err", err)
		return []string{}
	}

	return ai.GroupTokens(tokens)
}

// Truncate returns at most the first maxChars characters (runes) of s.
func Truncate(s string, maxChars int) string {
	if maxChars < 0 {
		maxChars = 0
	}
	if len(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
