package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/cache"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/metrics"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/razorpay"
	apperrors "github.com/Ponna-create/ai-agent-vs-script-validator/pkg/errors"
)

// WebhookServiceConfig configures signature checking and retries.
type WebhookServiceConfig struct {
	WebhookSecret string
	Credits       int
	MaxAttempts   int
	BatchSize     int
}

// WebhookService reconciles gateway notifications with the ledger.
type WebhookService struct {
	cfg      WebhookServiceConfig
	payments repository.PaymentRepository
	events   repository.WebhookRepository
	notifier *notifier
	credits  cache.CreditCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewWebhookService(
	cfg WebhookServiceConfig,
	payments repository.PaymentRepository,
	events repository.WebhookRepository,
	users repository.UserRepository,
	delivery provider.Notifier,
	credits cache.CreditCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *WebhookService {
	if cfg.Credits <= 0 {
		cfg.Credits = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &WebhookService{
		cfg:      cfg,
		payments: payments,
		events:   events,
		notifier: newNotifier(delivery, users, logger),
		credits:  credits,
		metrics:  m,
		logger:   logger,
	}
}

// Handle authenticates and applies one delivery. Only an invalid signature or an
// undecodable body is returned as an error; processing failures are stored for
// retry so the gateway still gets a 200.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature, eventIDHeader string) error {
	if s.cfg.WebhookSecret == "" {
		s.logger.Error("Webhook secret is not configured, rejecting delivery")
		return domainErrors.ErrWebhookSignature
	}
	if !razorpay.VerifyWebhookSignature(s.cfg.WebhookSecret, body, signature) {
		s.logger.Warn("Webhook signature mismatch", zap.Int("body_size", len(body)))
		s.metrics.WebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		return domainErrors.ErrWebhookSignature
	}

	eventID := razorpay.EventID(eventIDHeader, body)
	event, err := razorpay.ParseWebhookEvent(eventID, body)
	if err != nil {
		s.logger.Warn("Undecodable webhook", zap.String("event_id", eventID), zap.Error(err))
		return domainErrors.ErrWebhookPayload
	}

	stored, created, err := s.events.SaveEvent(ctx, eventID, event.Event, body)
	if err != nil {
		return err
	}
	if !created && stored.Status == model.WebhookStatusCompleted {
		s.logger.Info("Duplicate webhook ignored",
			zap.String("event_id", eventID),
			zap.String("event", event.Event))
		s.metrics.WebhookEvents.WithLabelValues(event.Event, "duplicate").Inc()
		return nil
	}

	claimed, err := s.events.ClaimEvent(ctx, eventID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Info("Webhook already being processed, redelivery ignored",
			zap.String("event_id", eventID),
			zap.String("event", event.Event))
		s.metrics.WebhookEvents.WithLabelValues(event.Event, "in_flight").Inc()
		return nil
	}

	s.settle(ctx, event)
	return nil
}

// settle processes event and records the outcome on its stored row.
func (s *WebhookService) settle(ctx context.Context, event *provider.WebhookEvent) {
	ctx = context.WithoutCancel(ctx)

	if err := s.process(ctx, event); err != nil {
		apperrors.LogError(s.logger, err, "Webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("event", event.Event))
		s.metrics.WebhookEvents.WithLabelValues(event.Event, "failed").Inc()
		if markErr := s.events.MarkFailed(ctx, event.ID, err, s.cfg.MaxAttempts); markErr != nil {
			s.logger.Error("Failed to record webhook failure", zap.String("event_id", event.ID), zap.Error(markErr))
		}
		return
	}

	s.metrics.WebhookEvents.WithLabelValues(event.Event, "processed").Inc()
	if err := s.events.MarkProcessed(ctx, event.ID); err != nil {
		s.logger.Error("Failed to mark webhook processed", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func (s *WebhookService) process(ctx context.Context, event *provider.WebhookEvent) error {
	log := s.logger.With(zap.String("event_id", event.ID), zap.String("event", event.Event))

	switch event.Event {
	case provider.EventPaymentCaptured, provider.EventOrderPaid:
		if event.Payment == nil || event.Payment.OrderID == "" || event.Payment.ID == "" {
			return fmt.Errorf("%s without payment entity", event.Event)
		}
		payment, applied, err := s.payments.MarkCompleted(ctx, event.Payment.OrderID, event.Payment.ID, s.cfg.Credits)
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			log.Warn("Capture for an unknown order ignored", zap.String("order_id", event.Payment.OrderID))
			return nil
		}
		if err != nil {
			return err
		}
		if applied {
			log.Info("Payment completed from webhook", zap.String("payment_id", payment.ID.String()))
			s.credits.Invalidate(ctx, payment.UserID)
			s.notifier.send(ctx, provider.NotificationPaymentCompleted, nil, payment, "")
		}
		return nil

	case provider.EventPaymentFailed:
		if event.Payment == nil || event.Payment.OrderID == "" {
			return fmt.Errorf("%s without payment entity", event.Event)
		}
		payment, err := s.payments.RecordAttemptFailure(ctx, event.Payment.OrderID, event.Payment.ID, event.Payment.Error)
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			log.Warn("Failure for an unknown order ignored", zap.String("order_id", event.Payment.OrderID))
			return nil
		}
		if err != nil {
			return err
		}
		if payment.Status != model.PaymentStatusPending {
			log.Info("Failure for an order that already settled ignored", zap.String("order_id", event.Payment.OrderID))
		}
		return nil

	case provider.EventRefundProcessed:
		if event.Refund == nil || event.Refund.PaymentID == "" {
			return fmt.Errorf("%s without refund entity", event.Event)
		}
		payment, applied, err := s.payments.ApplyRefundProcessed(ctx, event.Refund.PaymentID, event.Refund.ID, event.Refund.Amount)
		switch {
		case errors.Is(err, domainErrors.ErrPaymentNotFound):
			log.Warn("Refund for an unknown payment ignored", zap.String("gateway_payment_id", event.Refund.PaymentID))
			return nil
		case errors.Is(err, domainErrors.ErrNotEligible):
			log.Warn("Refund for a payment that was never completed ignored", zap.String("gateway_payment_id", event.Refund.PaymentID))
			return nil
		case err != nil:
			return err
		}
		if applied {
			s.credits.Invalidate(ctx, payment.UserID)
			s.notifier.send(ctx, provider.NotificationRefundProcessed, nil, payment, "")
		}
		return nil

	case provider.EventRefundFailed:
		if event.Refund == nil || event.Refund.PaymentID == "" {
			return fmt.Errorf("%s without refund entity", event.Event)
		}
		payment, err := s.payments.RecordRefundFailure(ctx, event.Refund.PaymentID, event.Refund.ID, event.Refund.FailureReason)
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			log.Warn("Refund failure for an unknown payment ignored", zap.String("gateway_payment_id", event.Refund.PaymentID))
			return nil
		}
		if err != nil {
			return err
		}
		s.notifier.send(ctx, provider.NotificationRefundFailed, nil, payment, event.Refund.FailureReason)
		return nil

	default:
		log.Info("Unhandled webhook event acknowledged")
		return nil
	}
}

// RetryFailed re-processes stored events that are due. It returns how many it
// claimed and attempted.
func (s *WebhookService) RetryFailed(ctx context.Context, now time.Time) (int, error) {
	due, err := s.events.GetRetryableEvents(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	attempted := 0
	for _, stored := range due {
		claimed, err := s.events.ClaimEvent(ctx, stored.EventID, now)
		if err != nil {
			return attempted, err
		}
		if !claimed {
			continue
		}
		attempted++

		event, err := razorpay.ParseWebhookEvent(stored.EventID, stored.Payload)
		if err != nil {
			s.logger.Error("Stored webhook is undecodable", zap.String("event_id", stored.EventID), zap.Error(err))
			if markErr := s.events.MarkFailed(ctx, stored.EventID, err, 1); markErr != nil {
				s.logger.Error("Failed to record webhook failure", zap.String("event_id", stored.EventID), zap.Error(markErr))
			}
			continue
		}

		s.logger.Info("Retrying webhook",
			zap.String("event_id", stored.EventID),
			zap.String("event", stored.EventType),
			zap.Int("attempts", stored.Attempts))
		s.settle(ctx, event)
	}
	return attempted, nil
}

// RunRetryWorker calls RetryFailed every interval until ctx is cancelled.
func (s *WebhookService) RunRetryWorker(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Webhook retry worker started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Webhook retry worker stopped")
			return nil
		case <-ticker.C:
			if _, err := s.RetryFailed(ctx, time.Now().UTC()); err != nil {
				s.logger.Error("Webhook retry pass failed", zap.Error(err))
			}
		}
	}
}
