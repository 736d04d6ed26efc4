package model

import "database/sql/driver"

// PaymentStatus is the ledger state of a purchase attempt.
// Allowed moves: pending -> completed | failed, completed -> refunded.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// CanTransitionTo reports whether moving from s to next is a forward transition.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed
	case PaymentStatusCompleted:
		return next == PaymentStatusRefunded
	default:
		return false
	}
}

func (s *PaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		*s = PaymentStatusPending
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// RefundStatus tracks the gateway side of a refund independently of PaymentStatus.
type RefundStatus string

const (
	RefundStatusNone RefundStatus = "none"
	// RefundStatusRequested holds the payment while the gateway refund call is in flight.
	RefundStatusRequested RefundStatus = "requested"
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusProcessed RefundStatus = "processed"
	RefundStatusFailed    RefundStatus = "failed"
)

func (s *RefundStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = RefundStatus(v)
	case []byte:
		*s = RefundStatus(v)
	default:
		*s = RefundStatusNone
	}
	return nil
}

func (s RefundStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// ReservationStatus is the outcome of a credit reservation.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCommitted ReservationStatus = "committed"
	ReservationStatusReleased  ReservationStatus = "released"
	ReservationStatusExpired   ReservationStatus = "expired"
)

func (s *ReservationStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = ReservationStatus(v)
	case []byte:
		*s = ReservationStatus(v)
	default:
		*s = ReservationStatusActive
	}
	return nil
}

func (s ReservationStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// WebhookStatus is the processing state of a stored webhook delivery.
type WebhookStatus string

const (
	WebhookStatusPending    WebhookStatus = "pending"
	WebhookStatusProcessing WebhookStatus = "processing"
	WebhookStatusCompleted  WebhookStatus = "completed"
	WebhookStatusFailed     WebhookStatus = "failed"
)

func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}
