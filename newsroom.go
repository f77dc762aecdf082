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

package newsroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/newsroom/ai"
	"github.com/poiesic/newsroom/ai/hf"
	"github.com/poiesic/newsroom/ai/keyword"
	"github.com/poiesic/newsroom/ai/openai"
	"github.com/poiesic/newsroom/config"
	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/docstore"
	"github.com/poiesic/newsroom/docstore/mongo"
	"github.com/poiesic/newsroom/docstore/postgres"
	"github.com/poiesic/newsroom/enrichment"
	"github.com/poiesic/newsroom/ingestion"
	"github.com/poiesic/newsroom/provider"
	"github.com/poiesic/newsroom/storage"
	"github.com/poiesic/newsroom/storage/badger"
	"github.com/poiesic/newsroom/storage/memory"
	"github.com/poiesic/newsroom/storage/redis"
	"github.com/poiesic/newsroom/stream"
)

// NewProvider builds the model provider selected by cfg.Backend.
func NewProvider(cfg *ai.Config) (ai.Provider, error) {
	if cfg == nil {
		return nil, errors.New("ai config is required")
	}
	cfg.Normalize()

	switch cfg.Backend {
	case ai.BackendHF:
		return hf.NewProvider(cfg)
	case ai.BackendOpenAI:
		return openai.NewProvider(cfg)
	case ai.BackendKeyword:
		return keyword.NewProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownBackend, cfg.Backend)
	}
}

// OpenRecordStore opens the record store selected by cfg.Backend.
func OpenRecordStore(ctx context.Context, cfg config.StorageConfig) (storage.RecordStore, error) {
	switch cfg.Backend {
	case "", config.StoreMemory:
		return memory.NewStore(), nil
	case config.StoreBadger:
		return badger.NewStore(cfg.Path, badger.WithSyncWrites(cfg.SyncWrites))
	case config.StoreRedis:
		return redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown record store %q", cfg.Backend)
	}
}

// OpenDocStore connects to the document archive selected by cfg.Backend.
func OpenDocStore(ctx context.Context, cfg config.DocStoreConfig) (docstore.Store, error) {
	switch cfg.Backend {
	case "", config.DocStoreMongo:
		store, err := mongo.Connect(ctx, cfg.URL, cfg.Database, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DocStorePostgres:
		store, err := postgres.Connect(ctx, cfg.URL, cfg.Table)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown document store %q", cfg.Backend)
	}
}

// Service owns the long-lived parts of the ingestion side: the model
// resource, the record store, the stream publisher and the pipeline.
type Service struct {
	models    *ai.Resource
	store     storage.RecordStore
	publisher *stream.Publisher
	pipeline  *ingestion.Pipeline
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	store    storage.RecordStore
	provider ai.Provider
	writer   stream.Writer
	gateway  provider.Fetcher
	logger   *slog.Logger
}

// WithRecordStore uses store instead of opening one from the configuration.
// The service takes ownership and closes it.
func WithRecordStore(store storage.RecordStore) ServiceOption {
	return func(o *serviceOptions) {
		o.store = store
	}
}

// WithModelProvider uses p instead of building one from the configuration.
func WithModelProvider(p ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = p
	}
}

// WithStreamWriter publishes through w instead of a Kafka writer built from
// the configuration. It takes effect only when the stream is enabled.
func WithStreamWriter(w stream.Writer) ServiceOption {
	return func(o *serviceOptions) {
		o.writer = w
	}
}

// WithGateway replaces the configured article source.
func WithGateway(g provider.Fetcher) ServiceOption {
	return func(o *serviceOptions) {
		o.gateway = g
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService wires every ingestion component from cfg.
func NewService(ctx context.Context, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	s := &Service{logger: logger.With("component", "service")}

	s.models = ai.NewResource(func() (ai.Provider, error) {
		if options.provider != nil {
			return options.provider, nil
		}
		return NewProvider(cfg.ModelConfig())
	})
	models, err := s.models.Get()
	if err != nil {
		return nil, fmt.Errorf("model provider: %w", err)
	}

	engine, err := enrichment.NewEngine(models, enrichment.WithLogger(logger))
	if err != nil {
		s.Close()
		return nil, err
	}

	s.store = options.store
	if s.store == nil {
		s.store, err = OpenRecordStore(ctx, cfg.Storage)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("record store: %w", err)
		}
	}

	gateway := options.gateway
	if gateway == nil {
		gateway, err = newGateway(cfg.Provider, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	var publisher ingestion.Publisher
	if cfg.Stream.Enabled {
		writer := options.writer
		if writer == nil {
			writer = stream.NewKafkaWriter(cfg.Stream.Brokers, cfg.Stream.Topic)
		}
		pubOpts := []stream.PublisherOption{
			stream.WithFlushTimeout(cfg.Stream.FlushTimeout),
			stream.WithPublisherLogger(logger),
		}
		if cfg.Stream.Provenance != "" {
			pubOpts = append(pubOpts, stream.WithProvenance(cfg.Stream.Provenance))
		}
		s.publisher, err = stream.NewPublisher(writer, pubOpts...)
		if err != nil {
			s.Close()
			return nil, err
		}
		publisher = s.publisher
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithLogger(logger),
		ingestion.WithMaxChars(cfg.Ingestion.MaxChars),
		ingestion.WithImageResolver(ingestion.NewImageResolver(cfg.Ingestion.CloudName)),
	}
	if cfg.Ingestion.PublishPoolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPublishPoolSize(cfg.Ingestion.PublishPoolSize))
	}
	s.pipeline, err = ingestion.NewPipeline(gateway, engine, s.store, publisher, pipelineOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func newGateway(cfg config.ProviderConfig, logger *slog.Logger) (*provider.Gateway, error) {
	opts := []provider.Option{
		provider.WithAPIKey(cfg.APIKey),
		provider.WithRegion(cfg.Region),
		provider.WithQuery(cfg.Query),
		provider.WithFeeds(cfg.Feeds...),
		provider.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, provider.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, provider.WithTimeout(cfg.Timeout))
	}
	return provider.NewGateway(opts...)
}

// RunCycle runs one ingestion cycle.
func (s *Service) RunCycle(ctx context.Context, limit int) ([]core.ID, error) {
	return s.pipeline.RunCycle(ctx, limit)
}

// Pipeline returns the ingestion pipeline.
func (s *Service) Pipeline() *ingestion.Pipeline {
	return s.pipeline
}

// Store returns the record store.
func (s *Service) Store() storage.RecordStore {
	return s.store
}

// Close drains in-flight publishes, then releases the writer, the model
// provider and the record store.
func (s *Service) Close() error {
	var errs []error

	if s.pipeline != nil {
		s.pipeline.Release()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("error closing stream writer", "err", err)
			errs = append(errs, err)
		}
	}
	if s.models != nil {
		if err := s.models.Close(); err != nil {
			s.logger.Error("error closing model provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("error closing record store", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
