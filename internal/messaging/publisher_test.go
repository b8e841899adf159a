package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen-flow/internal/logger"
	"kitchen-flow/internal/models"
	"kitchen-flow/internal/restaurant"
)

type recordedPublish struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	mu        sync.Mutex
	published []recordedPublish
	attempts  int
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordedPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func newTestPublisher(ch *fakeChannel, buffer int) *Publisher {
	return newPublisher(func() (amqpPublisher, error) { return ch, nil }, logger.Nop(), buffer)
}

// drain runs the publisher with an already cancelled context, which flushes
// everything queued and returns.
func drain(t *testing.T, p *Publisher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))
}

func TestPublisher_RecordRoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch, 8)
	at := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	ctx := logger.WithRequestID(context.Background(), "req-7")
	err := p.Record(ctx, restaurant.Event{
		Type:       restaurant.EventOrderDispatched,
		EntityID:   "o-1",
		TableID:    "3",
		OccurredAt: at,
	})
	require.NoError(t, err)
	assert.Empty(t, ch.published)

	drain(t, p)
	require.Len(t, ch.published, 1)

	got := ch.published[0]
	assert.Equal(t, EventsExchange, got.exchange)
	assert.Equal(t, "order.dispatched", got.key)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "req-7", got.msg.CorrelationId)

	var msg models.NotificationMessage
	require.NoError(t, json.Unmarshal(got.msg.Body, &msg))
	assert.Equal(t, "o-1", msg.EntityID)
	assert.Equal(t, "3", msg.TableID)
	assert.True(t, msg.Timestamp.Equal(at))
}

func TestPublisher_FailedPublishDoesNotStopRun(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newTestPublisher(ch, 8)

	require.NoError(t, p.Record(context.Background(), restaurant.Event{Type: restaurant.EventReservationCreated, EntityID: "r-1"}))
	require.NoError(t, p.Record(context.Background(), restaurant.Event{Type: restaurant.EventReservationCancelled, EntityID: "r-1"}))

	drain(t, p)
	assert.Equal(t, 2, ch.attempts)
	assert.Empty(t, ch.published)
}

func TestPublisher_RecordReturnsWhileBrokerHangs(t *testing.T) {
	release := make(chan struct{})
	p := newPublisher(func() (amqpPublisher, error) {
		<-release
		return nil, errors.New("dial tcp: connection refused")
	}, logger.Nop(), 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Record(context.Background(), restaurant.Event{Type: restaurant.EventOrderOpened, EntityID: "o-1"}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPublisher_RecordDropsWhenQueueFull(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch, 1)

	require.NoError(t, p.Record(context.Background(), restaurant.Event{Type: restaurant.EventOrderOpened, EntityID: "o-1"}))
	err := p.Record(context.Background(), restaurant.Event{Type: restaurant.EventOrderOpened, EntityID: "o-2"})
	assert.ErrorIs(t, err, ErrPublishQueueFull)

	drain(t, p)
	require.Len(t, ch.published, 1)
}

func TestConnection_IsClosedWithoutChannel(t *testing.T) {
	assert.True(t, (&Connection{}).IsClosed())
}
