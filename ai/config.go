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

package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend selects the model implementation behind a Provider.
type Backend string

const (
	// BackendHF uses the Hugging Face inference API.
	BackendHF Backend = "hf"

	// BackendOpenAI uses an OpenAI-compatible chat completion endpoint.
	BackendOpenAI Backend = "openai"

	// BackendKeyword uses the offline keyword scorer. No network access.
	BackendKeyword Backend = "keyword"
)

const (
	DefaultHFHost        = "https://api-inference.huggingface.co"
	DefaultZeroShotModel = "facebook/bart-large-mnli"
	DefaultNERModel      = "dslim/bert-base-NER"
	DefaultChatModel     = "qwen2.5:3b"
	DefaultTimeout       = 30 * time.Second
)

// Config holds configuration for model providers.
type Config struct {
	// Backend picks the implementation. Default: BackendHF.
	Backend Backend

	// Host is the base URL of the model service.
	// Example: "https://api-inference.huggingface.co" for BackendHF,
	// "http://localhost:11434/v1" for an OpenAI-compatible server.
	Host string

	// Token is sent as a bearer credential when non-empty.
	Token string

	// ZeroShotModel is the zero-shot classification model (BackendHF).
	ZeroShotModel string

	// NERModel is the token classification model (BackendHF).
	NERModel string

	// ChatModel is the chat model used for both tasks (BackendOpenAI).
	ChatModel string

	// Timeout bounds a single model call.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the model backend.
func WithBackend(backend Backend) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithHost sets the model service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithToken sets the bearer token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithZeroShotModel sets the zero-shot classification model identifier.
func WithZeroShotModel(model string) ConfigOption {
	return func(c *Config) {
		c.ZeroShotModel = model
	}
}

// WithNERModel sets the named-entity model identifier.
func WithNERModel(model string) ConfigOption {
	return func(c *Config) {
		c.NERModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config targeting the Hugging Face inference API
// with the default zero-shot and NER models.
func DefaultConfig() *Config {
	return &Config{
		Backend:       BackendHF,
		Host:          DefaultHFHost,
		ZeroShotModel: DefaultZeroShotModel,
		NERModel:      DefaultNERModel,
		ChatModel:     DefaultChatModel,
		Timeout:       DefaultTimeout,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendOpenAI),
//	    WithHost("http://localhost:11434"),
//	    WithChatModel("qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form. The backend name is
// lower-cased, trailing slashes are removed from Host, and OpenAI-compatible
// hosts get the /v1 suffix most servers (Ollama, LocalAI, vLLM) expect.
func (c *Config) Normalize() {
	c.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	c.Host = strings.TrimRight(strings.TrimSpace(c.Host), "/")

	if c.Backend == BackendOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete for its backend.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendKeyword:
		return nil
	case BackendHF:
		if c.ZeroShotModel == "" {
			return errors.New("ai config: ZeroShotModel is required")
		}
		if c.NERModel == "" {
			return errors.New("ai config: NERModel is required")
		}
	case BackendOpenAI:
		if c.ChatModel == "" {
			return errors.New("ai config: ChatModel is required")
		}
	default:
		return fmt.Errorf("ai config: %w: %q", ErrUnknownBackend, c.Backend)
	}

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	return nil
}
