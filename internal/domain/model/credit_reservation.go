package model

import (
	"time"

	"github.com/google/uuid"
)

// CreditReservation is a provisional hold on one credit while an analysis runs.
// An active reservation past ExpiresAt no longer counts against the payment.
type CreditReservation struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"payment_id"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null" json:"user_id"`
	Status     ReservationStatus `gorm:"size:20;not null;index" json:"status"`
	ExpiresAt  time.Time         `gorm:"not null;index" json:"expires_at"`
	ResolvedAt *time.Time        `json:"resolved_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (CreditReservation) TableName() string {
	return "credit_reservations"
}
