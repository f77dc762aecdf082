package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/newsroom/ai"
	"github.com/poiesic/newsroom/ai/mock"
	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/enrichment"
	"github.com/poiesic/newsroom/provider"
	"github.com/poiesic/newsroom/storage"
	"github.com/poiesic/newsroom/storage/memory"
	"github.com/poiesic/newsroom/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticFetcher returns a fixed batch, truncated to limit.
type staticFetcher struct {
	articles []core.RawArticle
}

func (f *staticFetcher) Fetch(ctx context.Context, limit int) []core.RawArticle {
	if limit > len(f.articles) {
		limit = len(f.articles)
	}
	return append([]core.RawArticle(nil), f.articles[:limit]...)
}

// recordingPublisher captures every batch it is handed.
type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]core.RawArticle
	delay   time.Duration
}

func (p *recordingPublisher) Publish(ctx context.Context, batch []core.RawArticle) stream.PublishResult {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, batch)
	return stream.PublishResult{Submitted: len(batch)}
}

func (p *recordingPublisher) Batches() [][]core.RawArticle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]core.RawArticle(nil), p.batches...)
}

// flakyStore fails or panics on chosen titles and delegates otherwise.
type flakyStore struct {
	storage.RecordStore
	failOn  string
	panicOn string
}

func (s *flakyStore) Save(ctx context.Context, record *core.Record) error {
	switch record.Title {
	case s.failOn:
		return errors.New("disk full")
	case s.panicOn:
		panic("store exploded")
	}
	return s.RecordStore.Save(ctx, record)
}

func testArticles() []core.RawArticle {
	return []core.RawArticle{
		{Title: "Finance markets rally", Summary: "Stocks rose.", URL: "https://example.com/1", ImageURL: "https://img.example.com/1.jpg", PublishedAt: "2024-01-01T00:00:00Z"},
		{Title: "Sport final tonight", Summary: "Teams ready.", URL: "https://example.com/2"},
		{Title: "Science breakthrough", Summary: "Researchers report results.", URL: "https://example.com/3"},
	}
}

func newTestEngine(t *testing.T) *enrichment.Engine {
	t.Helper()
	engine, err := enrichment.NewEngine(mock.NewMockProvider(), enrichment.WithLogger(slog.Default()))
	require.NoError(t, err)
	return engine
}

func TestNewPipeline_Required(t *testing.T) {
	engine := newTestEngine(t)
	store := memory.NewStore()
	fetcher := &staticFetcher{}

	_, err := NewPipeline(nil, engine, store, nil)
	assert.ErrorIs(t, err, ErrGatewayRequired)

	_, err = NewPipeline(fetcher, nil, store, nil)
	assert.ErrorIs(t, err, ErrEngineRequired)

	_, err = NewPipeline(fetcher, engine, nil, nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewPipeline(fetcher, engine, store, nil, WithReleaseTimeout(0))
	assert.Error(t, err)
}

func TestRunCycle_StoresEnrichedRecords(t *testing.T) {
	store := memory.NewStore()
	pub := &recordingPublisher{}
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), store, pub,
		WithImageResolver(NewImageResolver("")),
		WithPublishPoolSize(2))
	require.NoError(t, err)

	ctx := context.Background()
	ids, err := p.RunCycle(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	p.Release()

	first, err := store.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Finance markets rally", first.Title)
	assert.Equal(t, core.TopicFinance, first.Topic)
	assert.Equal(t, "https://img.example.com/1.jpg", first.ImageURL)
	assert.Equal(t, "2024-01-01T00:00:00Z", first.PublishedAt)
	assert.Contains(t, first.Entities, "Finance")
	assert.False(t, first.CreatedAt.IsZero())

	second, err := store.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, core.TopicSport, second.Topic)
	assert.Empty(t, second.ImageURL)

	listed, err := store.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, rec := range listed {
		assert.Equal(t, ids[i], rec.ID)
	}

	batches := pub.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, testArticles(), batches[0])
}

func TestRunCycle_RespectsLimit(t *testing.T) {
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), memory.NewStore(), nil)
	require.NoError(t, err)
	defer p.Release()

	ids, err := p.RunCycle(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestRunCycle_UniqueIDsAcrossCycles(t *testing.T) {
	store := memory.NewStore()
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), store, nil)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	first, err := p.RunCycle(ctx, 3)
	require.NoError(t, err)
	second, err := p.RunCycle(ctx, 3)
	require.NoError(t, err)

	seen := map[core.ID]bool{}
	for _, id := range append(first, second...) {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	// Same articles twice are stored twice.
	all, err := store.List(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestRunCycle_SkipsFailedArticles(t *testing.T) {
	store := &flakyStore{
		RecordStore: memory.NewStore(),
		failOn:      "Sport final tonight",
		panicOn:     "Science breakthrough",
	}
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), store, nil)
	require.NoError(t, err)
	defer p.Release()

	ids, err := p.RunCycle(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	rec, err := store.Get(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Finance markets rally", rec.Title)
}

func TestRunCycle_ClassifierFailureUsesDefault(t *testing.T) {
	classifier := mock.NewMockTopicClassifier().WithRankFunc(
		func(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error) {
			return nil, errors.New("model offline")
		})
	provider := mock.NewMockProviderWithServices(classifier, mock.NewMockEntityExtractor())
	engine, err := enrichment.NewEngine(provider)
	require.NoError(t, err)

	store := memory.NewStore()
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, engine, store, nil)
	require.NoError(t, err)
	defer p.Release()

	ids, err := p.RunCycle(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	for _, id := range ids {
		rec, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, core.DefaultTopic, rec.Topic)
	}
}

func TestRunCycle_EmptyFetch(t *testing.T) {
	pub := &recordingPublisher{}
	p, err := NewPipeline(&staticFetcher{}, newTestEngine(t), memory.NewStore(), pub)
	require.NoError(t, err)

	ids, err := p.RunCycle(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
	p.Release()

	// The publisher still sees the (empty) batch and decides what to do with it.
	assert.Len(t, pub.Batches(), 1)
}

func TestRunCycle_SyntheticGateway(t *testing.T) {
	gateway, err := provider.NewGateway()
	require.NoError(t, err)

	store := memory.NewStore()
	p, err := NewPipeline(gateway, newTestEngine(t), store, nil)
	require.NoError(t, err)
	defer p.Release()

	ids, err := p.RunCycle(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, ids, 7)
}

func TestRunCycle_CDNImages(t *testing.T) {
	store := memory.NewStore()
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), store, nil,
		WithImageResolver(NewImageResolver("demo")))
	require.NoError(t, err)
	defer p.Release()

	ids, err := p.RunCycle(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	rec, err := store.Get(context.Background(), ids[1])
	require.NoError(t, err)
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/fetch/f_auto,q_auto,w_800/https%3A%2F%2Fexample.com%2F2",
		rec.ImageURL)
}

func TestRelease(t *testing.T) {
	pub := &recordingPublisher{delay: 50 * time.Millisecond}
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), memory.NewStore(), pub)
	require.NoError(t, err)

	_, err = p.RunCycle(context.Background(), 3)
	require.NoError(t, err)

	p.Release()
	// Release waited for the in-flight publish.
	assert.Len(t, pub.Batches(), 1)

	// Idempotent.
	p.Release()

	_, err = p.RunCycle(context.Background(), 3)
	assert.ErrorIs(t, err, ErrPipelineReleased)

	var nilPipeline *Pipeline
	_, err = nilPipeline.RunCycle(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPipelineReleased)
}

// gatedPublisher blocks every Publish until gate is closed.
type gatedPublisher struct {
	recordingPublisher
	gate    chan struct{}
	entered chan struct{}
}

func (p *gatedPublisher) Publish(ctx context.Context, batch []core.RawArticle) stream.PublishResult {
	p.entered <- struct{}{}
	<-p.gate
	return p.recordingPublisher.Publish(ctx, batch)
}

func TestRunCycle_CancelledCallerStillCompletes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[{"title":"Senate passes budget","url":"https://news.test/budget","description":"Vote tonight."}]}`))
	}))
	defer upstream.Close()

	gateway, err := provider.NewGateway(provider.WithAPIKey("key"), provider.WithBaseURL(upstream.URL))
	require.NoError(t, err)

	store := memory.NewStore()
	pub := &recordingPublisher{}
	p, err := NewPipeline(gateway, newTestEngine(t), store, pub)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ids, err := p.RunCycle(ctx, 3)
	require.NoError(t, err)
	p.Release()

	require.Len(t, ids, 1)
	rec, err := store.Get(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Senate passes budget", rec.Title)

	batches := pub.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	assert.Equal(t, "Senate passes budget", batches[0][0].Title)
}

func TestRunCycle_BusyPublishPoolDoesNotBlock(t *testing.T) {
	pub := &gatedPublisher{gate: make(chan struct{}), entered: make(chan struct{}, 2)}
	store := memory.NewStore()
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), store, pub,
		WithPublishPoolSize(1))
	require.NoError(t, err)

	_, err = p.RunCycle(context.Background(), 3)
	require.NoError(t, err)
	<-pub.entered

	done := make(chan []core.ID, 1)
	go func() {
		ids, _ := p.RunCycle(context.Background(), 3)
		done <- ids
	}()

	select {
	case ids := <-done:
		assert.Len(t, ids, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("RunCycle waited on a saturated publish pool")
	}

	close(pub.gate)
	p.Release()

	assert.Len(t, pub.Batches(), 1, "the overflowing batch is dropped")
	all, err := store.List(context.Background(), "", 100)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestRunCycle_ConcurrentCycles(t *testing.T) {
	const cycles = 4
	store := memory.NewStore()
	p, err := NewPipeline(&staticFetcher{articles: testArticles()}, newTestEngine(t), store, &recordingPublisher{},
		WithPublishPoolSize(cycles))
	require.NoError(t, err)

	results := make([][]core.ID, cycles)
	var wg sync.WaitGroup
	for i := range cycles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := p.RunCycle(context.Background(), 3)
			assert.NoError(t, err)
			results[i] = ids
		}()
	}
	wg.Wait()
	p.Release()

	seen := map[core.ID]bool{}
	for _, ids := range results {
		assert.Len(t, ids, 3)
		for _, id := range ids {
			assert.False(t, seen[id], "id %s returned by two cycles", id)
			seen[id] = true
		}
	}

	all, err := store.List(context.Background(), "", 100)
	require.NoError(t, err)
	assert.Len(t, all, cycles*3)
	for _, rec := range all {
		assert.True(t, seen[rec.ID])
	}
}
