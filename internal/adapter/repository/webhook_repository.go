package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	domainRepo "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
)

// staleProcessingAfter is how long a pending or processing event may sit before
// the retry worker picks it up again.
const staleProcessingAfter = 5 * time.Minute

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent stores a delivery. Redeliveries of the same event id are ignored.
func (r *webhookRepository) SaveEvent(ctx context.Context, eventID, eventType string, payload []byte) (*model.WebhookEvent, bool, error) {
	event := &model.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Payload:   datatypes.JSON(payload),
		Status:    model.WebhookStatusPending,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(event)
	if res.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(res.Error))
		return nil, false, fmt.Errorf("failed to save webhook event: %w", res.Error)
	}

	if res.RowsAffected == 1 {
		return event, true, nil
	}

	existing, err := r.GetEvent(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ClaimEvent moves an event to processing so exactly one caller settles it.
// Pending and failed events can be claimed, as can a processing claim older than
// staleProcessingAfter whose holder is presumed dead. claimed=false means someone
// else holds the event or it is already completed.
func (r *webhookRepository) ClaimEvent(ctx context.Context, eventID string, now time.Time) (bool, error) {
	now = now.UTC()

	res := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("event_id = ? AND (status IN ? OR (status = ? AND updated_at <= ?))",
			eventID,
			[]model.WebhookStatus{model.WebhookStatusPending, model.WebhookStatusFailed},
			model.WebhookStatusProcessing,
			now.Add(-staleProcessingAfter)).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusProcessing,
			"updated_at": now,
		})
	if res.Error != nil {
		r.logger.Error("Failed to claim webhook event",
			zap.String("event_id", eventID),
			zap.Error(res.Error))
		return false, fmt.Errorf("failed to claim webhook event: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *webhookRepository) GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}
	return &event, nil
}

func (r *webhookRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":        model.WebhookStatusCompleted,
			"processed_at":  now,
			"next_retry_at": nil,
			"updated_at":    now,
		})
	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}
	return nil
}

// MarkFailed records a processing failure and schedules a retry with exponential
// backoff. After maxAttempts no further retry is scheduled.
func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, cause error, maxAttempts int) error {
	var event model.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error; err != nil {
		r.logger.Error("Failed to get webhook event for failure update",
			zap.String("event_id", eventID),
			zap.Error(err))
		return fmt.Errorf("failed to get webhook event: %w", err)
	}

	attempts := event.Attempts + 1
	now := time.Now().UTC()

	var nextRetry *time.Time
	if maxAttempts <= 0 || attempts < maxAttempts {
		retryMinutes := 5 * (1 << attempts) // 10, 20, 40, ...
		if retryMinutes > 1440 {
			retryMinutes = 1440
		}
		t := now.Add(time.Duration(retryMinutes) * time.Minute)
		nextRetry = &t
	}

	errorMsg := cause.Error()
	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":        model.WebhookStatusFailed,
			"attempts":      attempts,
			"last_error":    errorMsg,
			"next_retry_at": nextRetry,
			"updated_at":    now,
		})
	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	if nextRetry == nil {
		r.logger.Error("Webhook event exhausted retries",
			zap.String("event_id", eventID),
			zap.Int("attempts", attempts),
			zap.String("last_error", errorMsg))
	}
	return nil
}

// GetRetryableEvents returns failed events due for retry and events stuck in
// pending or processing.
func (r *webhookRepository) GetRetryableEvents(ctx context.Context, now time.Time, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent
	now = now.UTC()

	query := r.db.WithContext(ctx).
		Where("(status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?) OR (status IN ? AND updated_at <= ?)",
			model.WebhookStatusFailed,
			now,
			[]model.WebhookStatus{model.WebhookStatusPending, model.WebhookStatusProcessing},
			now.Add(-staleProcessingAfter)).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to get retryable webhook events", zap.Error(err))
		return nil, fmt.Errorf("failed to get retryable webhook events: %w", err)
	}
	return events, nil
}
