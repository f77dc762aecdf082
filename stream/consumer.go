package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/segmentio/kafka-go"

	"github.com/poiesic/newsroom/docstore"
)

const (
	// DefaultStatsInterval is how often the consumer logs its counters.
	DefaultStatsInterval = 30 * time.Second

	// DefaultBackoffBase is the first delay after a fetch error.
	DefaultBackoffBase = time.Second

	// DefaultBackoffMax caps the delay between fetch retries.
	DefaultBackoffMax = 30 * time.Second

	commitAttempts = 3
	commitDelay    = 200 * time.Millisecond

	// writeTimeout bounds the store write and commit of one message. Both run
	// detached from Run's context so shutdown does not cut a message in half.
	writeTimeout = 10 * time.Second
)

// ConsumerStats are the running counters of a Consumer.
type ConsumerStats struct {
	Received  int64
	Stored    int64
	Malformed int64
	Failed    int64
}

// Consumer moves stream messages into a document store, one at a time.
// Every message is committed after its write attempt, whether the write
// succeeded or not, so delivery is at-least-once with no retry queue.
type Consumer struct {
	reader        Reader
	store         docstore.Store
	statsInterval time.Duration
	backoffBase   time.Duration
	backoffMax    time.Duration
	logger        *slog.Logger

	received  atomic.Int64
	stored    atomic.Int64
	malformed atomic.Int64
	failed    atomic.Int64
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer) error

// WithStatsInterval sets how often counters are logged. Default is DefaultStatsInterval.
func WithStatsInterval(interval time.Duration) ConsumerOption {
	return func(c *Consumer) error {
		if interval <= 0 {
			return errors.New("stream: stats interval must be positive")
		}
		c.statsInterval = interval
		return nil
	}
}

// WithBackoff sets the fetch retry delays.
// Defaults are DefaultBackoffBase and DefaultBackoffMax.
func WithBackoff(base, max time.Duration) ConsumerOption {
	return func(c *Consumer) error {
		if base <= 0 || max < base {
			return errors.New("stream: invalid backoff bounds")
		}
		c.backoffBase = base
		c.backoffMax = max
		return nil
	}
}

// WithConsumerLogger sets a custom logger.
// Default is slog.Default().
func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "consumer")
		return nil
	}
}

// NewConsumer creates a consumer reading from reader and writing to store.
func NewConsumer(reader Reader, store docstore.Store, opts ...ConsumerOption) (*Consumer, error) {
	if reader == nil {
		return nil, ErrReaderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	c := &Consumer{
		reader:        reader,
		store:         store,
		statsInterval: DefaultStatsInterval,
		backoffBase:   DefaultBackoffBase,
		backoffMax:    DefaultBackoffMax,
		logger:        slog.Default().With("component", "consumer"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Run processes messages until ctx is cancelled, then returns nil. Fetch
// errors are retried with capped exponential backoff. Run returns an error
// only when the reader has been closed underneath it.
func (c *Consumer) Run(ctx context.Context) error {
	statsDone := make(chan struct{})
	statsCtx, stopStats := context.WithCancel(ctx)
	go func() {
		defer close(statsDone)
		c.reportStats(statsCtx)
	}()
	defer func() {
		stopStats()
		<-statsDone
		c.logStats()
	}()

	bo := newBackoff(c.backoffBase, c.backoffMax)
	c.logger.Info("consumer started")

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("stream reader closed: %w", err)
			}

			wait := bo.next()
			c.logger.Error("failed to fetch message", "retry_in", wait, "err", err)
			if sleep(ctx, wait) != nil {
				return nil
			}
			continue
		}
		bo.reset()

		c.handle(ctx, msg)
	}
}

// handle decodes, stores and commits one message.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	c.received.Add(1)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	doc, err := decodeDocument(msg.Value)
	if err != nil {
		c.malformed.Add(1)
		c.logger.Warn("skipping malformed message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"err", err)
		c.commit(ctx, msg)
		return
	}

	if err := c.store.Insert(ctx, doc); err != nil {
		c.failed.Add(1)
		c.logger.Error("failed to store message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"err", err)
	} else {
		c.stored.Add(1)
		c.logger.Debug("stored message", "partition", msg.Partition, "offset", msg.Offset)
	}

	c.commit(ctx, msg)
}

// decodeDocument parses one message body into a non-empty JSON object.
// Bodies that are not valid UTF-8 are rejected before decoding.
func decodeDocument(value []byte) (map[string]any, error) {
	if !utf8.Valid(value) {
		return nil, errInvalidEncoding
	}
	var doc map[string]any
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, errEmptyDocument
	}
	return doc, nil
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	err := RetryWithBackoff(ctx, func() error {
		return c.reader.CommitMessages(ctx, msg)
	}, commitAttempts, commitDelay)
	if err != nil {
		c.logger.Error("failed to commit message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"err", err)
	}
}

// Stats returns a snapshot of the counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Received:  c.received.Load(),
		Stored:    c.stored.Load(),
		Malformed: c.malformed.Load(),
		Failed:    c.failed.Load(),
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) reportStats(ctx context.Context) {
	ticker := time.NewTicker(c.statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.logStats()
		}
	}
}

func (c *Consumer) logStats() {
	s := c.Stats()
	c.logger.Info("consumer stats",
		"received", s.Received,
		"stored", s.Stored,
		"malformed", s.Malformed,
		"failed", s.Failed)
}
