package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/newsroom/ai"
	"github.com/poiesic/newsroom/docstore/mongo"
	"github.com/poiesic/newsroom/docstore/postgres"
	"github.com/poiesic/newsroom/enrichment"
	"github.com/poiesic/newsroom/provider"
	"github.com/poiesic/newsroom/schedule"
	"github.com/poiesic/newsroom/stream"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "NEWSROOM_CONFIG"
	newsAPIKeyEnv      = "NEWSAPI_KEY"
	kafkaBrokerEnv     = "KAFKA_BROKER"
	kafkaBootstrapEnv  = "KAFKA_BOOTSTRAP_SERVERS"
	topicEnv           = "TOPIC_NEWS_RAW"
	cloudNameEnv       = "CLOUDINARY_CLOUD_NAME"
	dbURLEnv           = "DB_URL"
	mongoDBNameEnv     = "MONGO_DB_NAME"
	mongoCollectionEnv = "MONGO_COLLECTION"
	hfTokenEnv         = "HF_TOKEN"
	aiBackendEnv       = "NEWSROOM_AI_BACKEND"
	storeBackendEnv    = "NEWSROOM_STORE"
	redisAddrEnv       = "REDIS_ADDR"
	redisPasswordEnv   = "REDIS_PASSWORD"
	portEnv            = "PORT"
	defaultBroker      = "localhost:9092"
	defaultServerAddr  = ":8000"
	defaultFetchLimit  = 10
	defaultBadgerPath  = "./data/newsroom"
	defaultMongoURL    = "mongodb://localhost:27017"
	defaultOpenAIHost  = "http://localhost:11434"
)

// Record store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

// Document store backends used by the stream consumer.
const (
	DocStoreMongo    = "mongo"
	DocStorePostgres = "postgres"
)

// Config holds every setting of the service and the archiver.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	AI        AIConfig        `yaml:"ai"`
	Stream    StreamConfig    `yaml:"stream"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Storage   StorageConfig   `yaml:"storage"`
	DocStore  DocStoreConfig  `yaml:"docstore"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ProviderConfig configures the upstream news sources.
type ProviderConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Region  string        `yaml:"region"`
	Query   string        `yaml:"query"`
	Timeout time.Duration `yaml:"timeout"`
	Feeds   []string      `yaml:"feeds"`
}

// AIConfig selects and configures the model backend.
// An empty Backend resolves to hf when a token is present and keyword otherwise.
type AIConfig struct {
	Backend       string        `yaml:"backend"`
	Host          string        `yaml:"host"`
	Token         string        `yaml:"token"`
	ZeroShotModel string        `yaml:"zeroShotModel"`
	NERModel      string        `yaml:"nerModel"`
	ChatModel     string        `yaml:"chatModel"`
	Timeout       time.Duration `yaml:"timeout"`
}

// StreamConfig configures the Kafka side.
type StreamConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	GroupID      string        `yaml:"groupId"`
	FlushTimeout time.Duration `yaml:"flushTimeout"`
	Provenance   string        `yaml:"provenance"`
}

// IngestionConfig configures the periodic cycle.
type IngestionConfig struct {
	Limit           int           `yaml:"limit"`
	Interval        time.Duration `yaml:"interval"`
	MaxChars        int           `yaml:"maxChars"`
	PublishPoolSize int           `yaml:"publishPoolSize"`
	CloudName       string        `yaml:"cloudName"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDb"`
	SyncWrites    bool   `yaml:"syncWrites"`
}

// DocStoreConfig selects the archive written by the consumer.
type DocStoreConfig struct {
	Backend    string `yaml:"backend"`
	URL        string `yaml:"url"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Table      string `yaml:"table"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: defaultServerAddr},
		Provider: ProviderConfig{
			BaseURL: provider.DefaultBaseURL,
			Region:  provider.DefaultRegion,
			Query:   provider.DefaultQuery,
			Timeout: provider.DefaultTimeout,
		},
		AI: AIConfig{
			ZeroShotModel: ai.DefaultZeroShotModel,
			NERModel:      ai.DefaultNERModel,
			ChatModel:     ai.DefaultChatModel,
			Timeout:       ai.DefaultTimeout,
		},
		Stream: StreamConfig{
			Enabled:      true,
			Brokers:      []string{defaultBroker},
			Topic:        stream.DefaultTopic,
			GroupID:      stream.DefaultGroupID,
			FlushTimeout: stream.DefaultFlushTimeout,
		},
		Ingestion: IngestionConfig{
			Limit:    defaultFetchLimit,
			Interval: schedule.DefaultInterval,
			MaxChars: enrichment.DefaultMaxChars,
		},
		Storage: StorageConfig{
			Backend: StoreMemory,
			Path:    defaultBadgerPath,
		},
		DocStore: DocStoreConfig{
			Backend:    DocStoreMongo,
			URL:        defaultMongoURL,
			Database:   mongo.DefaultDatabase,
			Collection: mongo.DefaultCollection,
			Table:      postgres.DefaultTable,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. path overrides $NEWSROOM_CONFIG. A missing
// file named only by the environment is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML document at path. Keys absent from the file
// keep their current values.
func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv(kafkaBrokerEnv); v != "" {
		c.Stream.Brokers = splitList(v)
	} else if v := os.Getenv(kafkaBootstrapEnv); v != "" {
		c.Stream.Brokers = splitList(v)
	}
	if v := os.Getenv(topicEnv); v != "" {
		c.Stream.Topic = v
	}
	if v := os.Getenv(cloudNameEnv); v != "" {
		c.Ingestion.CloudName = v
	}
	if v := os.Getenv(dbURLEnv); v != "" {
		c.DocStore.URL = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			c.DocStore.Backend = DocStorePostgres
		}
	}
	if v := os.Getenv(mongoDBNameEnv); v != "" {
		c.DocStore.Database = v
	}
	if v := os.Getenv(mongoCollectionEnv); v != "" {
		c.DocStore.Collection = v
	}
	if v := os.Getenv(hfTokenEnv); v != "" {
		c.AI.Token = v
	}
	if v := os.Getenv(aiBackendEnv); v != "" {
		c.AI.Backend = v
	}
	if v := os.Getenv(storeBackendEnv); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv(redisPasswordEnv); v != "" {
		c.Storage.RedisPassword = v
	}
	if v := os.Getenv(portEnv); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", portEnv, err)
		}
		c.Server.Addr = fmt.Sprintf(":%d", port)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ModelConfig resolves the AI section into an ai.Config.
func (c *Config) ModelConfig() *ai.Config {
	backend := ai.Backend(strings.ToLower(strings.TrimSpace(c.AI.Backend)))
	if backend == "" {
		backend = ai.BackendKeyword
		if c.AI.Token != "" {
			backend = ai.BackendHF
		}
	}

	host := c.AI.Host
	if host == "" {
		host = ai.DefaultHFHost
		if backend == ai.BackendOpenAI {
			host = defaultOpenAIHost
		}
	}

	cfg := ai.NewConfig(
		ai.WithBackend(backend),
		ai.WithHost(host),
		ai.WithToken(c.AI.Token),
		ai.WithZeroShotModel(c.AI.ZeroShotModel),
		ai.WithNERModel(c.AI.NERModel),
		ai.WithChatModel(c.AI.ChatModel),
		ai.WithTimeout(c.AI.Timeout),
	)
	cfg.Normalize()
	return cfg
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("provider.timeout must be positive"))
	}
	if c.Ingestion.Limit < 1 {
		errs = append(errs, errors.New("ingestion.limit must be at least 1"))
	}
	if c.Ingestion.Interval <= 0 {
		errs = append(errs, errors.New("ingestion.interval must be positive"))
	}
	if c.Ingestion.MaxChars < 1 {
		errs = append(errs, errors.New("ingestion.maxChars must be at least 1"))
	}
	if c.Ingestion.PublishPoolSize < 0 {
		errs = append(errs, errors.New("ingestion.publishPoolSize cannot be negative"))
	}
	if c.Stream.Enabled {
		if len(c.Stream.Brokers) == 0 {
			errs = append(errs, errors.New("stream.brokers is required when the stream is enabled"))
		}
		if c.Stream.Topic == "" {
			errs = append(errs, errors.New("stream.topic is required"))
		}
		if c.Stream.FlushTimeout <= 0 {
			errs = append(errs, errors.New("stream.flushTimeout must be positive"))
		}
	}

	switch c.Storage.Backend {
	case StoreMemory:
	case StoreBadger:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for badger"))
		}
	case StoreRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redisAddr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}

	switch c.DocStore.Backend {
	case DocStoreMongo, DocStorePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown docstore.backend %q", c.DocStore.Backend))
	}

	if err := c.ModelConfig().Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
