package newsroom

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/newsroom/ai"
	"github.com/poiesic/newsroom/ai/mock"
	"github.com/poiesic/newsroom/config"
	"github.com/poiesic/newsroom/core"
	"github.com/poiesic/newsroom/storage/memory"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func offlineConfig() *config.Config {
	cfg := config.Default()
	cfg.Stream.Enabled = false
	cfg.AI.Backend = string(ai.BackendKeyword)
	return cfg
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ai.NewConfig(ai.WithBackend(ai.BackendKeyword)))
	require.NoError(t, err)
	require.NotNil(t, p.TopicClassifier())
	require.NoError(t, p.Close())

	p, err = NewProvider(ai.NewConfig(ai.WithBackend("HF")))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	_, err = NewProvider(ai.NewConfig(ai.WithBackend("nope")))
	assert.ErrorIs(t, err, ai.ErrUnknownBackend)

	_, err = NewProvider(nil)
	assert.Error(t, err)
}

func TestOpenRecordStore(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenRecordStore(ctx, config.StorageConfig{Backend: config.StoreMemory})
	require.NoError(t, err)
	require.NoError(t, mem.Close())

	durable, err := OpenRecordStore(ctx, config.StorageConfig{
		Backend: config.StoreBadger,
		Path:    filepath.Join(t.TempDir(), "db"),
	})
	require.NoError(t, err)
	require.NoError(t, durable.Close())

	_, err = OpenRecordStore(ctx, config.StorageConfig{Backend: "sqlite"})
	assert.Error(t, err)
}

func TestOpenDocStore_Unknown(t *testing.T) {
	_, err := OpenDocStore(context.Background(), config.DocStoreConfig{Backend: "s3"})
	assert.Error(t, err)
}

func TestService_SyntheticCycle(t *testing.T) {
	store := memory.NewStore()
	svc, err := NewService(context.Background(), offlineConfig(), WithRecordStore(store))
	require.NoError(t, err)
	defer svc.Close()

	ids, err := svc.RunCycle(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, ids, 5)

	records, err := svc.Store().List(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for _, r := range records {
		assert.True(t, r.Topic.IsKnown())
		assert.NotNil(t, r.Entities)
	}
}

func TestService_PublishesRawBatch(t *testing.T) {
	cfg := offlineConfig()
	cfg.Stream.Enabled = true
	writer := &captureWriter{}

	svc, err := NewService(context.Background(), cfg,
		WithStreamWriter(writer),
		WithModelProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	ids, err := svc.RunCycle(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	// Close drains the background publish before closing the writer.
	require.NoError(t, svc.Close())

	writer.mu.Lock()
	defer writer.mu.Unlock()
	assert.Len(t, writer.msgs, 3)
	assert.True(t, writer.closed)

	_, err = svc.RunCycle(context.Background(), 1)
	assert.Error(t, err)
}

func TestService_Close(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	svc, err := NewService(context.Background(), offlineConfig(), WithModelProvider(provider))
	require.NoError(t, err)

	require.NoError(t, svc.Close())
	assert.Equal(t, 1, provider.CloseCount())

	// The store is closed with the service.
	_, err = svc.Store().Get(context.Background(), core.ID("x"))
	assert.Error(t, err)
}

func TestNewService_Errors(t *testing.T) {
	_, err := NewService(context.Background(), nil)
	assert.Error(t, err)

	cfg := offlineConfig()
	cfg.AI.Backend = "nope"
	_, err = NewService(context.Background(), cfg)
	assert.ErrorIs(t, err, ai.ErrUnknownBackend)
}
