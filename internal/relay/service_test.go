package relay_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stock-manager/internal/config"
	"github.com/tuanvumaihuynh/stock-manager/internal/relay"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository/repotest"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/mq"
	"github.com/tuanvumaihuynh/stock-manager/pkg/ptr"
)

// fakeProducer fails the first failures[key] produce calls for a key.
type fakeProducer struct {
	mu       sync.Mutex
	failures map[string]int
	calls    map[string]int
	produced []mq.ProduceMsg
}

func newFakeProducer(failures map[string]int) *fakeProducer {
	return &fakeProducer{failures: failures, calls: map[string]int{}}
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := *msg.PartitionKey
	p.calls[key]++
	if p.calls[key] <= p.failures[key] {
		return errors.New("broker not available")
	}
	p.produced = append(p.produced, msg)
	return nil
}

func seedOutbox(t *testing.T, store *repotest.Store, keys ...string) {
	t.Helper()

	for _, key := range keys {
		require.NoError(t, store.OutboxMsgRepository().CreateOutboxMsg(context.Background(), repository.CreateOutboxMsgParams{
			Topic:        "history.recorded",
			Headers:      map[string]string{"X-Correlation-ID": "req-" + key},
			Payload:      []byte(`{"product_id":"` + key + `"}`),
			PartitionKey: ptr.New(key),
		}))
	}
}

func newService(store *repotest.Store, producer mq.Producer) *relay.Service {
	return relay.NewService(
		config.Relay{
			BatchSize:      10,
			Interval:       10 * time.Millisecond,
			ProduceRetries: 2,
			RetryBackoff:   time.Millisecond,
		},
		slog.New(slog.DiscardHandler),
		store,
		store.OutboxMsgRepository(),
		producer,
	)
}

func TestRelayBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should produce and mark messages processed", func(t *testing.T) {
		store := repotest.NewStore()
		seedOutbox(t, store, "a", "b")
		producer := newFakeProducer(nil)

		n, err := newService(store, producer).RelayBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Len(t, producer.produced, 2)

		for _, msg := range store.Outbox() {
			assert.True(t, msg.Processed)
			assert.Nil(t, msg.Error)
		}

		n, err = newService(store, producer).RelayBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Should retry transient produce failures", func(t *testing.T) {
		store := repotest.NewStore()
		seedOutbox(t, store, "a")
		producer := newFakeProducer(map[string]int{"a": 2})

		_, err := newService(store, producer).RelayBatch(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, producer.calls["a"])
		outbox := store.Outbox()
		require.Len(t, outbox, 1)
		assert.True(t, outbox[0].Processed)
		assert.Nil(t, outbox[0].Error)
		require.Len(t, producer.produced, 1)
		assert.Equal(t, "req-a", producer.produced[0].Headers["X-Correlation-ID"])
	})

	t.Run("Should record error when every attempt fails", func(t *testing.T) {
		store := repotest.NewStore()
		seedOutbox(t, store, "a", "b")
		producer := newFakeProducer(map[string]int{"a": 100})

		_, err := newService(store, producer).RelayBatch(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, producer.calls["a"])
		for _, msg := range store.Outbox() {
			assert.True(t, msg.Processed)
			if *msg.Params.PartitionKey == "a" {
				require.NotNil(t, msg.Error)
				assert.Contains(t, *msg.Error, "broker not available")
			} else {
				assert.Nil(t, msg.Error)
			}
		}
	})
}

func TestRun(t *testing.T) {
	store := repotest.NewStore()
	seedOutbox(t, store, "a")
	producer := newFakeProducer(nil)

	cleanup := newService(store, producer).Run(context.Background())
	defer cleanup()

	assert.Eventually(t, func() bool {
		outbox := store.Outbox()
		return len(outbox) == 1 && outbox[0].Processed
	}, time.Second, 5*time.Millisecond)
}
