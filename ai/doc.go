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

// Package ai provides abstractions for the model services used during enrichment.
//
// The package defines capability interfaces so enrichment and ingestion depend
// on abstractions rather than a specific model host:
//
//   - TopicClassifier: zero-shot ranking of candidate labels
//   - EntityExtractor: named-entity tagging
//   - Provider: aggregates both with a shared lifecycle
//
// # Implementation Packages
//
//   - ai/hf: Hugging Face inference API (default)
//   - ai/openai: OpenAI-compatible chat models via langchaingo
//   - ai/keyword: deterministic offline scorer, no network
//   - ai/mock: test doubles
//
// Production constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and assert on call counts.
//
// # Model Resource
//
// Loading a model is expensive, so a process holds exactly one Provider behind
// a Resource. The first Get builds it; every caller after that shares the same
// instance read-only.
//
//	res := ai.NewResource(func() (ai.Provider, error) {
//	    return hf.NewProvider(ai.DefaultConfig())
//	})
//	defer res.Close()
//
//	provider, err := res.Get()
//	ranked, err := provider.TopicClassifier().Rank(ctx, text, core.CategoryLabels())
//	tokens, err := provider.EntityExtractor().Tag(ctx, text)
//	entities := ai.GroupTokens(tokens)
package ai
