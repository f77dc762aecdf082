package stream

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(offset int64, value string) fetchResult {
	return fetchResult{msg: kafka.Message{Topic: DefaultTopic, Offset: offset, Value: []byte(value)}}
}

// runUntilDrained runs the consumer until the scripted messages are used up.
func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-r.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the script")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}

func TestNewConsumer(t *testing.T) {
	_, err := NewConsumer(nil, &fakeStore{})
	assert.ErrorIs(t, err, ErrReaderRequired)

	_, err = NewConsumer(newFakeReader(&eventLog{}), nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewConsumer(newFakeReader(&eventLog{}), &fakeStore{}, WithBackoff(time.Second, time.Millisecond))
	assert.Error(t, err)
}

func TestConsumer_StoresThenCommits(t *testing.T) {
	events := &eventLog{}
	reader := newFakeReader(events,
		msgAt(0, `{"title":"a","score":0,"_source":"newsroom-ingestion"}`),
		msgAt(1, `{"title":"b"}`),
	)
	store := &fakeStore{events: events}

	c, err := NewConsumer(reader, store)
	require.NoError(t, err)
	runUntilDrained(t, c, reader)

	docs := store.Docs()
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["title"])
	assert.Equal(t, "newsroom-ingestion", docs[0]["_source"])

	assert.Equal(t, []string{"insert", "commit", "insert", "commit"}, events.kinds())
	assert.Equal(t, ConsumerStats{Received: 2, Stored: 2}, c.Stats())
}

func TestConsumer_SkipsMalformed(t *testing.T) {
	events := &eventLog{}
	reader := newFakeReader(events,
		msgAt(0, `not json`),
		msgAt(1, `null`),
		msgAt(2, `[1,2,3]`),
		msgAt(3, `{"title":"ok"}`),
		msgAt(4, "{\"title\":\"bad \xff\xfe bytes\"}"),
		msgAt(5, `{}`),
	)
	store := &fakeStore{events: events}

	c, err := NewConsumer(reader, store)
	require.NoError(t, err)
	runUntilDrained(t, c, reader)

	require.Len(t, store.Docs(), 1)
	assert.Equal(t, "ok", store.Docs()[0]["title"])
	assert.Len(t, reader.Committed(), 6, "malformed messages are committed and never retried")
	assert.Equal(t, ConsumerStats{Received: 6, Stored: 1, Malformed: 5}, c.Stats())
}

func TestDecodeDocument(t *testing.T) {
	doc, err := decodeDocument([]byte(`{"title":"Café"}`))
	require.NoError(t, err)
	assert.Equal(t, "Café", doc["title"])

	_, err = decodeDocument([]byte("{\"title\":\"\xff\"}"))
	assert.ErrorIs(t, err, errInvalidEncoding)

	_, err = decodeDocument([]byte(`{}`))
	assert.ErrorIs(t, err, errEmptyDocument)

	_, err = decodeDocument([]byte(`null`))
	assert.ErrorIs(t, err, errEmptyDocument)
}

func TestConsumer_CommitsAfterFailedWrite(t *testing.T) {
	events := &eventLog{}
	reader := newFakeReader(events, msgAt(7, `{"title":"a"}`))
	store := &fakeStore{events: events, err: errors.New("connection reset")}

	c, err := NewConsumer(reader, store)
	require.NoError(t, err)
	runUntilDrained(t, c, reader)

	assert.Equal(t, []string{"insert", "commit"}, events.kinds())
	assert.Equal(t, ConsumerStats{Received: 1, Failed: 1}, c.Stats())
}

func TestConsumer_DuplicatesArePreserved(t *testing.T) {
	events := &eventLog{}
	body := `{"title":"same","url":"https://example.com/x"}`
	reader := newFakeReader(events, msgAt(0, body), msgAt(1, body))
	store := &fakeStore{}

	c, err := NewConsumer(reader, store)
	require.NoError(t, err)
	runUntilDrained(t, c, reader)

	assert.Len(t, store.Docs(), 2)
}

func TestConsumer_RetriesFetchErrors(t *testing.T) {
	events := &eventLog{}
	reader := newFakeReader(events,
		fetchResult{err: errors.New("broker not available")},
		fetchResult{err: errors.New("broker not available")},
		msgAt(0, `{"title":"a"}`),
	)
	store := &fakeStore{}

	c, err := NewConsumer(reader, store, WithBackoff(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)
	runUntilDrained(t, c, reader)

	assert.Len(t, store.Docs(), 1)
}

func TestConsumer_StopsOnCancel(t *testing.T) {
	reader := newFakeReader(&eventLog{})
	c, err := NewConsumer(reader, &fakeStore{}, WithStatsInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	<-reader.drained
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumer_ClosedReader(t *testing.T) {
	reader := newFakeReader(&eventLog{}, fetchResult{err: io.EOF})
	c, err := NewConsumer(reader, &fakeStore{})
	require.NoError(t, err)

	err = c.Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsumer_CommitFailureIsLogged(t *testing.T) {
	reader := newFakeReader(&eventLog{}, msgAt(0, `{"title":"a"}`))
	reader.commitErr = errors.New("rebalance in progress")
	store := &fakeStore{}

	c, err := NewConsumer(reader, store)
	require.NoError(t, err)
	runUntilDrained(t, c, reader)

	assert.Len(t, store.Docs(), 1)
	assert.Empty(t, reader.Committed())
}

func TestNewKafkaReader(t *testing.T) {
	r := NewKafkaReader([]string{"localhost:9092"}, "", "")
	defer r.Close()

	cfg := r.Config()
	assert.Equal(t, DefaultGroupID, cfg.GroupID)
	assert.Equal(t, DefaultTopic, cfg.Topic)
	assert.Equal(t, kafka.FirstOffset, cfg.StartOffset)
}
