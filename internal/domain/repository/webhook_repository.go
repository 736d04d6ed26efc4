package repository

import (
	"context"
	"time"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// WebhookRepository stores gateway deliveries for de-duplication and retry.
type WebhookRepository interface {
	// SaveEvent stores the event; created=false when the event id was seen before.
	SaveEvent(ctx context.Context, eventID, eventType string, payload []byte) (event *model.WebhookEvent, created bool, err error)
	GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error)
	// ClaimEvent marks the event processing; claimed=false when another worker holds
	// it or it already completed.
	ClaimEvent(ctx context.Context, eventID string, now time.Time) (claimed bool, err error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error, maxAttempts int) error
	GetRetryableEvents(ctx context.Context, now time.Time, limit int) ([]*model.WebhookEvent, error)
}
