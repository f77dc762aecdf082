package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval matches the ingestion cadence of a deployed service.
const DefaultInterval = 15 * time.Minute

// ErrJobRequired is returned when a ticker is built without a job.
var ErrJobRequired = errors.New("job required")

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Ticker runs a job immediately and then on every interval until stopped.
// A failing or panicking run is logged and the schedule continues.
type Ticker struct {
	job      Job
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Ticker.
type Option func(*Ticker) error

// WithInterval sets the period between runs.
func WithInterval(interval time.Duration) Option {
	return func(t *Ticker) error {
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", interval)
		}
		t.interval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Ticker) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger.With("component", "scheduler")
		return nil
	}
}

// NewTicker creates a stopped ticker for job.
func NewTicker(job Job, opts ...Option) (*Ticker, error) {
	if job == nil {
		return nil, ErrJobRequired
	}
	t := &Ticker{
		job:      job,
		interval: DefaultInterval,
		logger:   slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Start launches the schedule in the background. Calling Start on a running
// ticker does nothing. The schedule ends when ctx is cancelled or Stop is called.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(runCtx, t.done)
	t.logger.Info("scheduler started", "interval", t.interval)
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	t.runOnce(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *Ticker) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("scheduled job panicked", "panic", fmt.Sprint(r))
		}
	}()

	started := time.Now()
	if err := t.job(ctx); err != nil {
		t.logger.Error("scheduled job failed", "err", err)
		return
	}
	t.logger.Debug("scheduled job finished", "duration", time.Since(started))
}

// Stop cancels the schedule and waits for a run in progress to return.
// It is safe to call more than once, and on a ticker that never started.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.logger.Info("scheduler stopped")
}
