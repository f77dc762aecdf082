package stream

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/segmentio/kafka-go"

	"github.com/poiesic/newsroom/core"
)

// DefaultFlushTimeout bounds one batch write.
const DefaultFlushTimeout = 2 * time.Second

// PublishResult summarises one Publish call.
type PublishResult struct {
	// Submitted counts messages acknowledged by the stream.
	Submitted int

	// Failed counts messages that could not be encoded or written.
	Failed int
}

// Publisher writes raw article batches to the stream with at-least-once
// intent. Failures are logged and counted, never returned.
type Publisher struct {
	writer       Writer
	flushTimeout time.Duration
	provenance   string
	logger       *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher) error

// WithFlushTimeout bounds how long Publish waits for acknowledgements.
// Default is DefaultFlushTimeout.
func WithFlushTimeout(timeout time.Duration) PublisherOption {
	return func(p *Publisher) error {
		if timeout <= 0 {
			return errors.New("stream: flush timeout must be positive")
		}
		p.flushTimeout = timeout
		return nil
	}
}

// WithProvenance sets the tag written to the _source field of every message.
// Default is core.DefaultProvenance.
func WithProvenance(tag string) PublisherOption {
	return func(p *Publisher) error {
		if tag != "" {
			p.provenance = tag
		}
		return nil
	}
}

// WithPublisherLogger sets a custom logger.
// Default is slog.Default().
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "publisher")
		return nil
	}
}

// NewPublisher creates a publisher on top of writer.
func NewPublisher(writer Writer, opts ...PublisherOption) (*Publisher, error) {
	if writer == nil {
		return nil, ErrWriterRequired
	}

	p := &Publisher{
		writer:       writer,
		flushTimeout: DefaultFlushTimeout,
		provenance:   core.DefaultProvenance,
		logger:       slog.Default().With("component", "publisher"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Publish encodes every article as a core.StreamMessage and writes the batch
// in one call bounded by the flush timeout. An empty batch is a no-op.
// Encoding and write failures are isolated per message where the stream
// reports them individually.
func (p *Publisher) Publish(ctx context.Context, batch []core.RawArticle) (result PublishResult) {
	if len(batch) == 0 {
		p.logger.Debug("empty batch, nothing to publish")
		return PublishResult{}
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("publish panicked", "panic", fmt.Sprint(r))
			result = PublishResult{Failed: len(batch)}
		}
	}()

	msgs := make([]kafka.Message, 0, len(batch))
	for i, article := range batch {
		value, err := json.Marshal(core.NewStreamMessage(article, p.provenance))
		if err != nil {
			p.logger.Error("failed to encode message", "index", i, "url", article.URL, "err", err)
			result.Failed++
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   messageKey(article.URL),
			Value: value,
			Headers: []kafka.Header{
				{Key: "source", Value: []byte(p.provenance)},
			},
		})
	}

	if len(msgs) == 0 {
		return result
	}

	flushCtx, cancel := context.WithTimeout(ctx, p.flushTimeout)
	defer cancel()

	err := p.writer.WriteMessages(flushCtx, msgs...)
	if err == nil {
		result.Submitted += len(msgs)
		p.logger.Debug("published batch", "count", len(msgs))
		return result
	}

	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) && len(writeErrs) == len(msgs) {
		for i, werr := range writeErrs {
			if werr != nil {
				p.logger.Error("failed to publish message", "key", string(msgs[i].Key), "err", werr)
				result.Failed++
				continue
			}
			result.Submitted++
		}
	} else {
		p.logger.Error("failed to publish batch", "count", len(msgs), "err", err)
		result.Failed += len(msgs)
	}

	p.logger.Warn("published batch with failures", "submitted", result.Submitted, "failed", result.Failed)
	return result
}

// Close closes the underlying writer, flushing anything it still buffers.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// messageKey derives the partition key from the article URL. It is a routing
// key only; the consumer does not deduplicate on it. An empty URL yields no key.
func messageKey(url string) []byte {
	if url == "" {
		return nil
	}
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(url))
	return []byte(hex.EncodeToString(h.Sum(nil)))
}
