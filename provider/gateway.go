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

package provider

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/poiesic/newsroom/core"
)

// DefaultTimeout bounds each upstream attempt.
const DefaultTimeout = 20 * time.Second

// Fetcher is the contract the ingestion pipeline depends on.
type Fetcher interface {
	Fetch(ctx context.Context, limit int) []core.RawArticle
}

// tier is one ordered attempt in the fallback chain.
type tier struct {
	name  string
	fetch func(ctx context.Context, limit int) ([]core.RawArticle, error)
}

// Gateway fetches raw articles with ordered fallback: NewsAPI top headlines,
// NewsAPI keyword search, optional RSS feeds, then synthetic filler.
// It never fails outward.
type Gateway struct {
	apiKey    string
	baseURL   string
	region    string
	query     string
	userAgent string
	timeout   time.Duration
	feeds     []string
	client    *http.Client
	parser    *gofeed.Parser
	logger    *slog.Logger
}

var _ Fetcher = (*Gateway)(nil)

// Option configures a Gateway.
type Option func(*Gateway) error

// WithAPIKey sets the NewsAPI credential. Without one the NewsAPI tiers are skipped.
func WithAPIKey(key string) Option {
	return func(g *Gateway) error {
		g.apiKey = strings.TrimSpace(key)
		return nil
	}
}

// WithBaseURL overrides the NewsAPI root URL.
func WithBaseURL(baseURL string) Option {
	return func(g *Gateway) error {
		if baseURL == "" {
			return errors.New("provider: base URL cannot be empty")
		}
		g.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithRegion sets the country code used by the headline tier.
func WithRegion(region string) Option {
	return func(g *Gateway) error {
		if region != "" {
			g.region = region
		}
		return nil
	}
}

// WithQuery sets the keyword query used by the broad tier.
func WithQuery(query string) Option {
	return func(g *Gateway) error {
		if query != "" {
			g.query = query
		}
		return nil
	}
}

// WithTimeout bounds each upstream attempt. Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) error {
		if timeout <= 0 {
			return errors.New("provider: timeout must be positive")
		}
		g.timeout = timeout
		return nil
	}
}

// WithHTTPClient replaces the HTTP client used by every tier.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) error {
		if client != nil {
			g.client = client
		}
		return nil
	}
}

// WithFeeds enables the RSS tier with the given feed URLs.
func WithFeeds(feeds ...string) Option {
	return func(g *Gateway) error {
		for _, f := range feeds {
			if f = strings.TrimSpace(f); f != "" {
				g.feeds = append(g.feeds, f)
			}
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger.With("component", "provider")
		return nil
	}
}

// NewGateway creates a gateway. With no options it serves synthetic data only.
func NewGateway(opts ...Option) (*Gateway, error) {
	g := &Gateway{
		baseURL:   DefaultBaseURL,
		region:    DefaultRegion,
		query:     DefaultQuery,
		userAgent: "newsroom/1.0",
		timeout:   DefaultTimeout,
		logger:    slog.Default().With("component", "provider"),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if g.client == nil {
		g.client = &http.Client{Timeout: g.timeout}
	}
	g.parser = gofeed.NewParser()
	g.parser.Client = g.client
	g.parser.UserAgent = g.userAgent

	return g, nil
}

// tiers returns the upstream attempts enabled by the configuration, in order.
// Without a credential no upstream is contacted, feeds included.
func (g *Gateway) tiers() []tier {
	if g.apiKey == "" {
		return nil
	}
	tiers := []tier{
		{name: "top-headlines", fetch: g.topHeadlines},
		{name: "everything", fetch: g.everything},
	}
	if len(g.feeds) > 0 {
		tiers = append(tiers, tier{name: "rss", fetch: g.rss})
	}
	return tiers
}

// Fetch returns at most limit articles from the first tier that yields any.
// Upstream results are truncated to limit but never padded. When every tier
// fails, limit synthetic articles are returned. A non-positive limit returns
// an empty slice without contacting any upstream, and so does a cancelled ctx
// once a tier has failed.
func (g *Gateway) Fetch(ctx context.Context, limit int) []core.RawArticle {
	if limit <= 0 {
		return []core.RawArticle{}
	}

	tiers := g.tiers()
	if len(tiers) == 0 {
		g.logger.Debug("no upstream configured, serving synthetic articles", "limit", limit)
		return Synthetic(limit)
	}

	for _, t := range tiers {
		articles, err := t.fetch(ctx, limit)
		if err != nil {
			if ctx.Err() != nil {
				g.logger.Warn("fetch cancelled, no articles served", "tier", t.name, "err", ctx.Err())
				return []core.RawArticle{}
			}
			g.logger.Warn("tier failed, falling through", "tier", t.name, "err", err)
			continue
		}
		if len(articles) > limit {
			articles = articles[:limit]
		}
		g.logger.Info("fetched articles", "tier", t.name, "count", len(articles))
		return articles
	}

	g.logger.Warn("all tiers failed, serving synthetic articles", "limit", limit)
	return Synthetic(limit)
}
