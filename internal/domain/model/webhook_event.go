package model

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is a stored gateway delivery, keyed by the gateway event id so
// redeliveries collapse onto one row.
type WebhookEvent struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string         `gorm:"size:255;not null;uniqueIndex" json:"event_id"`
	EventType   string         `gorm:"size:100;not null;index" json:"event_type"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	Status      WebhookStatus  `gorm:"size:20;not null;index" json:"status"`
	Attempts    int            `gorm:"not null" json:"attempts"`
	LastError   *string        `json:"last_error,omitempty"`
	NextRetryAt *time.Time     `json:"next_retry_at,omitempty"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
