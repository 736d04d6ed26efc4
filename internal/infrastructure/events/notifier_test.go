package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/pkg/messaging"
)

// memoryBus is an in-process messaging.Client.
type memoryBus struct {
	ch chan messaging.Message
}

func newMemoryBus() *memoryBus {
	return &memoryBus{ch: make(chan messaging.Message, 8)}
}

func (b *memoryBus) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.ch <- messaging.Message{Channel: channel, Payload: payload, Time: time.Now()}
	return nil
}

func (b *memoryBus) Subscribe(ctx context.Context, channel string) (<-chan messaging.Message, error) {
	out := make(chan messaging.Message)
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-b.ch:
				out <- msg
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *memoryBus) Close() error { return nil }

type recordingNotifier struct {
	mu   sync.Mutex
	seen []provider.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n provider.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestPublishAndSubscribe(t *testing.T) {
	bus := newMemoryBus()
	delivered := &recordingNotifier{}
	logger := zap.NewNop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSubscriber(bus, "events", delivered, logger).Run(ctx)
	}()

	publisher := NewPublishingNotifier(bus, "events", logger)
	require.NoError(t, publisher.Notify(ctx, provider.Notification{
		Kind:      provider.NotificationRefundProcessed,
		Email:     "buyer@example.com",
		PaymentID: "pay_1",
	}))

	assert.Eventually(t, func() bool { return delivered.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "pay_1", delivered.seen[0].PaymentID)

	cancel()
	assert.NoError(t, <-done)
}

func TestAsyncNotifier(t *testing.T) {
	delivered := &recordingNotifier{}
	notifier := NewAsyncNotifier(delivered, zap.NewNop())

	require.NoError(t, notifier.Notify(context.Background(), provider.Notification{Kind: provider.NotificationRefundFailed}))
	assert.Eventually(t, func() bool { return delivered.count() == 1 }, time.Second, 10*time.Millisecond)
}
