package stream

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// fakeWriter records written batches and returns a scripted error.
type fakeWriter struct {
	mu          sync.Mutex
	batches     [][]kafka.Message
	err         error
	hadDeadline bool
	closed      bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, w.hadDeadline = ctx.Deadline()
	w.batches = append(w.batches, append([]kafka.Message(nil), msgs...))
	return w.err
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// fetchResult is one scripted FetchMessage answer.
type fetchResult struct {
	msg kafka.Message
	err error
}

// fakeReader replays scripted fetch results, then blocks until the context
// is done. Events are appended to a shared log for ordering assertions.
type fakeReader struct {
	mu        sync.Mutex
	script    []fetchResult
	committed []kafka.Message
	commitErr error
	events    *eventLog
	drained   chan struct{}
	once      sync.Once
}

func newFakeReader(events *eventLog, script ...fetchResult) *fakeReader {
	return &fakeReader{script: script, events: events, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.script) > 0 {
		next := r.script[0]
		r.script = r.script[1:]
		r.mu.Unlock()
		return next.msg, next.err
	}
	r.mu.Unlock()

	r.once.Do(func() { close(r.drained) })
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		return r.commitErr
	}
	r.committed = append(r.committed, msgs...)
	for _, m := range msgs {
		r.events.add("commit", m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) Committed() []kafka.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]kafka.Message(nil), r.committed...)
}

// fakeStore records inserted documents.
type fakeStore struct {
	mu     sync.Mutex
	docs   []map[string]any
	err    error
	events *eventLog
}

func (s *fakeStore) Insert(ctx context.Context, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events != nil {
		s.events.add("insert", -1)
	}
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *fakeStore) Ping(ctx context.Context) error  { return nil }
func (s *fakeStore) Close(ctx context.Context) error { return nil }

func (s *fakeStore) Docs() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.docs...)
}

type event struct {
	kind   string
	offset int64
}

type eventLog struct {
	mu     sync.Mutex
	events []event
}

func (l *eventLog) add(kind string, offset int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event{kind: kind, offset: offset})
}

func (l *eventLog) kinds() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.kind
	}
	return out
}
