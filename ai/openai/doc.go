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

// Package openai provides model services backed by OpenAI-compatible chat APIs.
//
// This package implements ai.Provider using the langchaingo library to talk to
// OpenAI or an OpenAI-compatible server (Ollama, LocalAI, vLLM). Both services
// run the chat model in JSON mode, repair common formatting mistakes in the
// answer and retry a malformed answer up to three times.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithBackend(ai.BackendOpenAI),
//	    ai.WithHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithChatModel("qwen2.5:3b"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	ranked, err := provider.TopicClassifier().Rank(ctx, "Rates rise again", core.CategoryLabels())
//	tokens, err := provider.EntityExtractor().Tag(ctx, "Angela Merkel visited Paris")
package openai
