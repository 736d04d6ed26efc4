package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// RefundRecord is what the gateway reported for an accepted refund.
type RefundRecord struct {
	RefundID string
	Amount   int64
	Reason   string
	Status   model.RefundStatus
}

// PaymentRepository is the entitlement ledger. It is the only writer of payment
// rows and every method is a single atomic step; callers never read-modify-write.
type PaymentRepository interface {
	// CreatePending records a new order; ErrDuplicateOrder if orderID exists.
	CreatePending(ctx context.Context, userID uuid.UUID, amount int64, currency, orderID, receipt string) (*model.Payment, error)

	// MarkCompleted moves pending -> completed and grants credits. Idempotent: when the
	// row is already completed or refunded it is returned unchanged with applied=false.
	// ErrInvalidTransition for failed rows, ErrPaymentNotFound for unknown orders.
	MarkCompleted(ctx context.Context, orderID, paymentID string, credits int) (payment *model.Payment, applied bool, err error)

	// MarkFailed moves pending -> failed. No-op on failed rows. Only for order-level
	// terminal signals: a declined attempt goes through RecordAttemptFailure.
	MarkFailed(ctx context.Context, orderID string) (*model.Payment, error)

	// RecordAttemptFailure notes a declined payment attempt on a pending order. The
	// status stays pending so a later attempt on the same order can still complete it.
	// Rows that are no longer pending are returned unchanged.
	RecordAttemptFailure(ctx context.Context, orderID, gatewayPaymentID, reason string) (*model.Payment, error)

	// DecrementCredit consumes one credit with a conditional update.
	// ErrNoCreditsRemaining, or ErrPaymentRefunded when a refund got there first.
	DecrementCredit(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)

	// BeginRefund checks refund eligibility under a row lock and holds the payment
	// against new reservations. ErrAlreadyRefunded, ErrNotEligible, ErrAlreadyAnalyzed.
	BeginRefund(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error)

	// AbortRefund releases the hold taken by BeginRefund after a gateway failure.
	AbortRefund(ctx context.Context, paymentID uuid.UUID, reason string) error

	// MarkRefunded moves completed -> refunded. ErrAlreadyRefunded, ErrNotEligible.
	MarkRefunded(ctx context.Context, paymentID uuid.UUID, refund RefundRecord) (*model.Payment, error)

	// ApplyRefundProcessed records a gateway-confirmed refund. applied=false when it was
	// already recorded as processed.
	ApplyRefundProcessed(ctx context.Context, gatewayPaymentID, refundID string, amount int64) (payment *model.Payment, applied bool, err error)

	// RecordRefundFailure stores the failure reason without moving the payment status.
	RecordRefundFailure(ctx context.Context, gatewayPaymentID, refundID, reason string) (*model.Payment, error)

	// Reserve places a lease on one credit. ErrNoCreditsRemaining when every remaining
	// credit is already held by a live reservation, ErrPaymentRefunded if refunded or
	// being refunded, ErrInvalidTransition if the payment is not completed.
	Reserve(ctx context.Context, paymentID, userID uuid.UUID, ttl time.Duration) (*model.CreditReservation, error)

	// CommitReservation consumes the reserved credit and stores analysis in one transaction.
	CommitReservation(ctx context.Context, reservationID uuid.UUID, analysis *model.Analysis) (*model.Payment, error)

	// ReleaseReservation gives the credit back. No-op if already resolved.
	ReleaseReservation(ctx context.Context, reservationID uuid.UUID) error

	// ExpireReservations marks active reservations past their lease as expired.
	ExpireReservations(ctx context.Context, now time.Time) (int64, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Payment, error)
}
