package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is one purchase attempt and the credits it grants. Rows are never deleted.
// RazorpayPaymentID is set only once the payment is completed.
type Payment struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	RazorpayOrderID   string        `gorm:"column:razorpay_order_id;size:100;not null;uniqueIndex" json:"razorpay_order_id"`
	RazorpayPaymentID *string       `gorm:"column:razorpay_payment_id;size:100;uniqueIndex" json:"razorpay_payment_id,omitempty"`
	Receipt           string        `gorm:"size:64" json:"receipt"`
	Amount            int64         `gorm:"not null" json:"amount"`
	Currency          string        `gorm:"size:3;not null" json:"currency"`
	Status            PaymentStatus `gorm:"size:20;not null;index" json:"status"`
	CreditsGranted    int           `gorm:"not null" json:"credits_granted"`
	CreditsRemaining  int           `gorm:"not null" json:"credits_remaining"`

	RefundStatus        RefundStatus `gorm:"size:20;not null" json:"refund_status"`
	RefundID            *string      `gorm:"size:100" json:"refund_id,omitempty"`
	RefundAmount        *int64       `json:"refund_amount,omitempty"`
	RefundReason        *string      `gorm:"size:500" json:"refund_reason,omitempty"`
	RefundFailureReason *string      `gorm:"size:500" json:"refund_failure_reason,omitempty"`

	// LastPaymentError is the latest declined attempt against a still-pending order.
	LastPaymentError *string `gorm:"size:500" json:"last_payment_error,omitempty"`

	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	FailedAt   *time.Time `json:"failed_at,omitempty"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PaymentIDString returns the gateway payment id or "".
func (p *Payment) PaymentIDString() string {
	if p.RazorpayPaymentID == nil {
		return ""
	}
	return *p.RazorpayPaymentID
}
