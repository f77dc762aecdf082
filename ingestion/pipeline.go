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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/enrichment"
	"github.com/poiesic/newsroom/provider"
	"github.com/poiesic/newsroom/storage"
	"github.com/poiesic/newsroom/stream"
)

// DefaultReleaseTimeout bounds how long Release waits for in-flight publishes.
const DefaultReleaseTimeout = 5 * time.Second

// Publisher receives every raw batch. *stream.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, batch []core.RawArticle) stream.PublishResult
}

var _ Publisher = (*stream.Publisher)(nil)

// Pipeline orchestrates one ingestion cycle: fetch, publish, enrich, store.
// Cycles may run concurrently; each cycle processes its own batch sequentially.
type Pipeline struct {
	gateway        provider.Fetcher
	engine         *enrichment.Engine
	store          storage.RecordStore
	publisher      Publisher
	publishPool    *ants.Pool
	images         *ImageResolver
	maxChars       int
	releaseTimeout time.Duration
	released       atomic.Bool
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPublishPoolSize sets the worker pool size for background publishes.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPublishPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := newPublishPool(size)
		if err != nil {
			return err
		}
		if p.publishPool != nil {
			p.publishPool.Release()
		}
		p.publishPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// WithMaxChars caps the text handed to the entity extractor.
// Non-positive values select enrichment.DefaultMaxChars.
func WithMaxChars(maxChars int) Option {
	return func(p *Pipeline) error {
		if maxChars <= 0 {
			maxChars = enrichment.DefaultMaxChars
		}
		p.maxChars = maxChars
		return nil
	}
}

// WithImageResolver sets the image policy. Default passes native images through.
func WithImageResolver(resolver *ImageResolver) Option {
	return func(p *Pipeline) error {
		p.images = resolver
		return nil
	}
}

// WithReleaseTimeout bounds the wait in Release.
func WithReleaseTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout <= 0 {
			return fmt.Errorf("release timeout must be positive, got %s", timeout)
		}
		p.releaseTimeout = timeout
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. publisher may be nil, in
// which case raw batches are not published.
func NewPipeline(
	gateway provider.Fetcher,
	engine *enrichment.Engine,
	store storage.RecordStore,
	publisher Publisher,
	opts ...Option,
) (*Pipeline, error) {
	if gateway == nil {
		return nil, ErrGatewayRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	// A typed nil publisher would panic on first use.
	if pub, ok := publisher.(*stream.Publisher); ok && pub == nil {
		publisher = nil
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	publishPool, err := newPublishPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		gateway:        gateway,
		engine:         engine,
		store:          store,
		publisher:      publisher,
		publishPool:    publishPool,
		maxChars:       enrichment.DefaultMaxChars,
		releaseTimeout: DefaultReleaseTimeout,
		logger:         slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.publishPool.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// newPublishPool never makes Submit wait: a saturated pool reports
// ants.ErrPoolOverload and the batch is dropped.
func newPublishPool(size int) (*ants.Pool, error) {
	return ants.NewPool(size, ants.WithNonblocking(true))
}

// RunCycle fetches up to limit articles, publishes the raw batch in the
// background and stores each enriched article. It returns the IDs of the
// stored records in production order. Upstream, publish and per-article
// failures are logged and never returned.
//
// Once started a cycle runs to completion; cancelling ctx does not abort it.
func (p *Pipeline) RunCycle(ctx context.Context, limit int) ([]core.ID, error) {
	if p == nil || p.released.Load() {
		return nil, ErrPipelineReleased
	}
	ctx = context.WithoutCancel(ctx)

	started := time.Now()
	raw := p.gateway.Fetch(ctx, limit)
	p.publish(ctx, raw)

	ids := make([]core.ID, 0, len(raw))
	for i, article := range raw {
		id, err := p.processArticle(ctx, article)
		if err != nil {
			p.logger.Warn("skipping article", "index", i, "title", article.Title, "err", err)
			continue
		}
		ids = append(ids, id)
	}

	p.logger.Info("cycle complete",
		"fetched", len(raw),
		"stored", len(ids),
		"duration", time.Since(started))
	return ids, nil
}

// publish hands a copy of the batch to the publisher without waiting for it.
func (p *Pipeline) publish(ctx context.Context, raw []core.RawArticle) {
	if p.publisher == nil {
		return
	}

	batch := slices.Clone(raw)
	err := p.publishPool.Submit(func() {
		result := p.publisher.Publish(ctx, batch)
		p.logger.Debug("batch published", "submitted", result.Submitted, "failed", result.Failed)
	})
	switch {
	case errors.Is(err, ants.ErrPoolOverload):
		p.logger.Warn("publish pool busy, dropping batch", "articles", len(batch))
	case err != nil:
		p.logger.Error("dropping publish", "articles", len(batch), "err", err)
	}
}

// processArticle enriches and stores one article. Panics are converted to errors.
func (p *Pipeline) processArticle(ctx context.Context, article core.RawArticle) (id core.ID, err error) {
	defer func() {
		if r := recover(); r != nil {
			id = ""
			err = fmt.Errorf("panic processing article: %v", r)
		}
	}()

	text := article.ClassificationText()
	record := &core.Record{
		ID:          core.NewID(),
		Title:       article.Title,
		Summary:     article.Summary,
		URL:         article.URL,
		PublishedAt: article.PublishedAt,
		Topic:       p.engine.Classify(ctx, text),
		Entities:    p.engine.ExtractEntities(ctx, text, p.maxChars),
		ImageURL:    p.images.Resolve(article),
		CreatedAt:   time.Now().UTC(),
	}

	if err := p.store.Save(ctx, record); err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}
	return record.ID, nil
}

// Release waits, bounded by the release timeout, for in-flight publishes and
// frees the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if !p.released.CompareAndSwap(false, true) {
		return
	}
	if err := p.publishPool.ReleaseTimeout(p.releaseTimeout); err != nil {
		p.logger.Warn("publish pool did not drain", "timeout", p.releaseTimeout, "err", err)
	}
}
