// Package events moves payment notifications through the Redis event bus so
// slow SMTP never runs on a request or webhook goroutine.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/pkg/messaging"
)

// PublishingNotifier publishes notifications to a channel instead of sending them.
type PublishingNotifier struct {
	bus     messaging.Client
	channel string
	logger  *zap.Logger
}

func NewPublishingNotifier(bus messaging.Client, channel string, logger *zap.Logger) *PublishingNotifier {
	return &PublishingNotifier{
		bus:     bus,
		channel: channel,
		logger:  logger,
	}
}

func (p *PublishingNotifier) Notify(ctx context.Context, n provider.Notification) error {
	if err := p.bus.Publish(ctx, p.channel, n); err != nil {
		p.logger.Error("Failed to publish notification",
			zap.String("kind", n.Kind),
			zap.String("payment_id", n.PaymentID),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Subscriber delivers notifications from the bus to a Notifier.
type Subscriber struct {
	bus      messaging.Client
	channel  string
	delivery provider.Notifier
	logger   *zap.Logger
}

func NewSubscriber(bus messaging.Client, channel string, delivery provider.Notifier, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		bus:      bus,
		channel:  channel,
		delivery: delivery,
		logger:   logger,
	}
}

// Run consumes until ctx is cancelled. Delivery failures are logged and dropped.
func (s *Subscriber) Run(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, s.channel)
	if err != nil {
		return err
	}

	s.logger.Info("Notification subscriber started", zap.String("channel", s.channel))
	for msg := range messages {
		var n provider.Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			s.logger.Warn("Dropping malformed notification", zap.Error(err))
			continue
		}
		if err := s.delivery.Notify(ctx, n); err != nil {
			s.logger.Warn("Notification delivery failed",
				zap.String("kind", n.Kind),
				zap.String("payment_id", n.PaymentID),
				zap.Error(err))
		}
	}

	s.logger.Info("Notification subscriber stopped")
	return nil
}

// AsyncNotifier runs delivery on its own goroutine; used when there is no bus.
type AsyncNotifier struct {
	delivery provider.Notifier
	logger   *zap.Logger
}

func NewAsyncNotifier(delivery provider.Notifier, logger *zap.Logger) *AsyncNotifier {
	return &AsyncNotifier{delivery: delivery, logger: logger}
}

func (a *AsyncNotifier) Notify(ctx context.Context, n provider.Notification) error {
	go func() {
		if err := a.delivery.Notify(context.WithoutCancel(ctx), n); err != nil {
			a.logger.Warn("Notification delivery failed",
				zap.String("kind", n.Kind),
				zap.String("payment_id", n.PaymentID),
				zap.Error(err))
		}
	}()
	return nil
}
