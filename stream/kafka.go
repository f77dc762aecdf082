package stream

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	// DefaultTopic carries raw article messages.
	DefaultTopic = "news.raw"

	// DefaultGroupID is the consumer group of the archiver.
	DefaultGroupID = "newsroom-archiver"
)

// Writer is the producer side of the stream. *kafka.Writer satisfies it.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader is the consumer side of the stream. *kafka.Reader satisfies it.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	_ Writer = (*kafka.Writer)(nil)
	_ Reader = (*kafka.Reader)(nil)
)

// NewKafkaWriter creates a synchronous writer for topic. WriteMessages
// returns once every message is acknowledged by all in-sync replicas.
// Keyed messages land on a stable partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaReader creates a consumer-group reader for topic. A new group
// starts from the earliest retained offset. Offsets are committed only by
// explicit CommitMessages calls.
func NewKafkaReader(brokers []string, groupID, topic string) *kafka.Reader {
	if groupID == "" {
		groupID = DefaultGroupID
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
	})
}
