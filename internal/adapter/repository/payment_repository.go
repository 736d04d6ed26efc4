package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	domainRepo "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
)

// maxReasonLength matches the size of the free-text reason columns.
const maxReasonLength = 500

// paymentRepository implements the entitlement ledger on gorm.
type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewPaymentRepository creates a new payment ledger instance
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func lockPayment(tx *gorm.DB, query string, args ...interface{}) (*model.Payment, error) {
	var payment model.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(query, args...).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	return &payment, nil
}

func reloadPayment(tx *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := tx.Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to reload payment: %w", err)
	}
	return &payment, nil
}

// CreatePending records a freshly created gateway order.
func (r *paymentRepository) CreatePending(ctx context.Context, userID uuid.UUID, amount int64, currency, orderID, receipt string) (*model.Payment, error) {
	payment := &model.Payment{
		UserID:          userID,
		RazorpayOrderID: orderID,
		Receipt:         receipt,
		Amount:          amount,
		Currency:        currency,
		Status:          model.PaymentStatusPending,
		RefundStatus:    model.RefundStatusNone,
	}

	r.logger.Info("Creating pending payment",
		zap.String("user_id", userID.String()),
		zap.String("order_id", orderID),
		zap.Int64("amount", amount),
		zap.String("currency", currency))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Payment{}).Where("razorpay_order_id = ?", orderID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if existing > 0 {
			return domainErrors.ErrDuplicateOrder
		}

		if err := tx.Create(payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domainErrors.ErrDuplicateOrder
			}
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("Failed to create pending payment",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Pending payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", orderID))

	return payment, nil
}

// MarkCompleted grants credits exactly once per order. The synchronous verify
// path and the webhook both call it; the loser gets the winner's row back.
func (r *paymentRepository) MarkCompleted(ctx context.Context, orderID, paymentID string, credits int) (*model.Payment, bool, error) {
	var result *model.Payment
	applied := false

	r.logger.Info("Marking payment completed",
		zap.String("order_id", orderID),
		zap.String("gateway_payment_id", paymentID),
		zap.Int("credits", credits))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "razorpay_order_id = ?", orderID)
		if err != nil {
			return err
		}

		switch payment.Status {
		case model.PaymentStatusCompleted, model.PaymentStatusRefunded:
			if payment.PaymentIDString() != paymentID {
				r.logger.Warn("Order already completed by a different gateway payment",
					zap.String("order_id", orderID),
					zap.String("recorded_payment_id", payment.PaymentIDString()),
					zap.String("incoming_payment_id", paymentID))
			}
			result = payment
			return nil
		case model.PaymentStatusFailed:
			return domainErrors.ErrInvalidTransition
		}

		now := r.now()
		res := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", payment.ID, model.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":              model.PaymentStatusCompleted,
				"razorpay_payment_id": paymentID,
				"credits_granted":     credits,
				"credits_remaining":   credits,
				"verified_at":         now,
				"updated_at":          now,
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return domainErrors.ErrInvalidTransition
			}
			return fmt.Errorf("failed to complete payment: %w", res.Error)
		}

		reloaded, err := reloadPayment(tx, payment.ID)
		if err != nil {
			return err
		}
		result = reloaded
		applied = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		r.logger.Warn("Failed to mark payment completed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, false, err
	}

	if applied {
		r.logger.Info("Payment completed, credits granted",
			zap.String("payment_id", result.ID.String()),
			zap.String("order_id", orderID),
			zap.Int("credits_remaining", result.CreditsRemaining))
	} else {
		r.logger.Info("Payment already completed (idempotent)",
			zap.String("payment_id", result.ID.String()),
			zap.String("order_id", orderID),
			zap.String("status", string(result.Status)))
	}

	return result, applied, nil
}

// MarkFailed closes a pending order as failed.
func (r *paymentRepository) MarkFailed(ctx context.Context, orderID string) (*model.Payment, error) {
	var result *model.Payment

	r.logger.Info("Marking payment failed", zap.String("order_id", orderID))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "razorpay_order_id = ?", orderID)
		if err != nil {
			return err
		}
		if payment.Status == model.PaymentStatusFailed {
			result = payment
			return nil
		}
		if !payment.Status.CanTransitionTo(model.PaymentStatusFailed) {
			return domainErrors.ErrInvalidTransition
		}

		now := r.now()
		if err := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", payment.ID, model.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":     model.PaymentStatusFailed,
				"failed_at":  now,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to mark payment failed: %w", err)
		}

		result, err = reloadPayment(tx, payment.ID)
		return err
	})
	if err != nil {
		r.logger.Warn("Failed to mark payment failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Payment marked failed",
		zap.String("payment_id", result.ID.String()),
		zap.String("order_id", orderID))

	return result, nil
}

// RecordAttemptFailure keeps the order pending and stores why the attempt was declined.
func (r *paymentRepository) RecordAttemptFailure(ctx context.Context, orderID, gatewayPaymentID, reason string) (*model.Payment, error) {
	var result *model.Payment
	recorded := false

	if reason == "" {
		reason = "payment attempt failed"
	}
	if len(reason) > maxReasonLength {
		reason = reason[:maxReasonLength]
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "razorpay_order_id = ?", orderID)
		if err != nil {
			return err
		}
		if payment.Status != model.PaymentStatusPending {
			result = payment
			return nil
		}

		now := r.now()
		if err := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", payment.ID, model.PaymentStatusPending).
			Updates(map[string]interface{}{
				"last_payment_error": reason,
				"failed_at":          now,
				"updated_at":         now,
			}).Error; err != nil {
			return fmt.Errorf("failed to record payment attempt failure: %w", err)
		}

		result, err = reloadPayment(tx, payment.ID)
		recorded = err == nil
		return err
	})
	if err != nil {
		r.logger.Warn("Failed to record payment attempt failure",
			zap.String("order_id", orderID),
			zap.String("gateway_payment_id", gatewayPaymentID),
			zap.Error(err))
		return nil, err
	}

	if recorded {
		r.logger.Info("Payment attempt failed, order stays pending",
			zap.String("payment_id", result.ID.String()),
			zap.String("order_id", orderID),
			zap.String("gateway_payment_id", gatewayPaymentID))
	}

	return result, nil
}

// decrement runs the conditional update shared by DecrementCredit and CommitReservation.
func decrement(tx *gorm.DB, paymentID uuid.UUID, now time.Time) (*model.Payment, error) {
	res := tx.Model(&model.Payment{}).
		Where("id = ? AND status = ? AND credits_remaining > 0 AND refund_status <> ?",
			paymentID, model.PaymentStatusCompleted, model.RefundStatusRequested).
		Updates(map[string]interface{}{
			"credits_remaining": gorm.Expr("credits_remaining - 1"),
			"updated_at":        now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to decrement credit: %w", res.Error)
	}

	payment, err := reloadPayment(tx, paymentID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		if payment.Status == model.PaymentStatusRefunded || payment.RefundStatus == model.RefundStatusRequested {
			return nil, domainErrors.ErrPaymentRefunded
		}
		return nil, domainErrors.ErrNoCreditsRemaining
	}
	return payment, nil
}

// DecrementCredit consumes one credit.
func (r *paymentRepository) DecrementCredit(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := decrement(r.db.WithContext(ctx), paymentID, r.now())
	if err != nil {
		r.logger.Info("Credit decrement rejected",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Credit decremented",
		zap.String("payment_id", paymentID.String()),
		zap.Int("credits_remaining", payment.CreditsRemaining))
	return payment, nil
}

func liveReservations(tx *gorm.DB, paymentID uuid.UUID, now time.Time) (int64, error) {
	var held int64
	err := tx.Model(&model.CreditReservation{}).
		Where("payment_id = ? AND status = ? AND expires_at > ?", paymentID, model.ReservationStatusActive, now).
		Count(&held).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return held, nil
}

// BeginRefund checks eligibility and holds the payment until the gateway answers.
func (r *paymentRepository) BeginRefund(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	var result *model.Payment

	r.logger.Info("Beginning refund", zap.String("payment_id", paymentID.String()))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "id = ?", paymentID)
		if err != nil {
			return err
		}

		switch {
		case payment.Status == model.PaymentStatusRefunded, payment.RefundStatus == model.RefundStatusRequested:
			return domainErrors.ErrAlreadyRefunded
		case payment.Status != model.PaymentStatusCompleted:
			return domainErrors.ErrNotEligible
		case payment.CreditsRemaining < payment.CreditsGranted:
			return domainErrors.ErrAlreadyAnalyzed
		}

		var analyses int64
		if err := tx.Model(&model.Analysis{}).Where("payment_id = ?", paymentID).Count(&analyses).Error; err != nil {
			return fmt.Errorf("failed to count analyses: %w", err)
		}
		if analyses > 0 {
			return domainErrors.ErrAlreadyAnalyzed
		}

		now := r.now()
		held, err := liveReservations(tx, paymentID, now)
		if err != nil {
			return err
		}
		if held > 0 {
			return domainErrors.ErrAlreadyAnalyzed
		}

		res := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ? AND refund_status <> ?", paymentID, model.PaymentStatusCompleted, model.RefundStatusRequested).
			Updates(map[string]interface{}{
				"refund_status": model.RefundStatusRequested,
				"updated_at":    now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to hold payment for refund: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domainErrors.ErrAlreadyRefunded
		}

		result, err = reloadPayment(tx, paymentID)
		return err
	})
	if err != nil {
		r.logger.Info("Refund not started",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Payment held for refund", zap.String("payment_id", paymentID.String()))
	return result, nil
}

// AbortRefund releases the refund hold after a gateway failure.
func (r *paymentRepository) AbortRefund(ctx context.Context, paymentID uuid.UUID, reason string) error {
	r.logger.Warn("Aborting refund",
		zap.String("payment_id", paymentID.String()),
		zap.String("reason", reason))

	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND refund_status = ?", paymentID, model.RefundStatusRequested).
		Updates(map[string]interface{}{
			"refund_status":         model.RefundStatusFailed,
			"refund_failure_reason": reason,
			"updated_at":            r.now(),
		}).Error
	if err != nil {
		r.logger.Error("Failed to abort refund",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to abort refund: %w", err)
	}
	return nil
}

// MarkRefunded moves a completed payment to refunded.
func (r *paymentRepository) MarkRefunded(ctx context.Context, paymentID uuid.UUID, refund domainRepo.RefundRecord) (*model.Payment, error) {
	var result *model.Payment

	r.logger.Info("Marking payment refunded",
		zap.String("payment_id", paymentID.String()),
		zap.String("refund_id", refund.RefundID),
		zap.Int64("refund_amount", refund.Amount))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "id = ?", paymentID)
		if err != nil {
			return err
		}
		if payment.Status == model.PaymentStatusRefunded {
			return domainErrors.ErrAlreadyRefunded
		}
		if !payment.Status.CanTransitionTo(model.PaymentStatusRefunded) {
			return domainErrors.ErrNotEligible
		}

		refundStatus := refund.Status
		if refundStatus == "" || refundStatus == model.RefundStatusRequested {
			refundStatus = model.RefundStatusPending
		}

		now := r.now()
		if err := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", paymentID, model.PaymentStatusCompleted).
			Updates(map[string]interface{}{
				"status":        model.PaymentStatusRefunded,
				"refund_status": refundStatus,
				"refund_id":     refund.RefundID,
				"refund_amount": refund.Amount,
				"refund_reason": refund.Reason,
				"refunded_at":   now,
				"updated_at":    now,
			}).Error; err != nil {
			return fmt.Errorf("failed to mark payment refunded: %w", err)
		}

		result, err = reloadPayment(tx, paymentID)
		return err
	})
	if err != nil {
		r.logger.Warn("Failed to mark payment refunded",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Payment refunded",
		zap.String("payment_id", paymentID.String()),
		zap.String("refund_status", string(result.RefundStatus)))
	return result, nil
}

// ApplyRefundProcessed records a refund confirmed by the gateway.
func (r *paymentRepository) ApplyRefundProcessed(ctx context.Context, gatewayPaymentID, refundID string, amount int64) (*model.Payment, bool, error) {
	var result *model.Payment
	applied := false

	r.logger.Info("Applying processed refund",
		zap.String("gateway_payment_id", gatewayPaymentID),
		zap.String("refund_id", refundID),
		zap.Int64("refund_amount", amount))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "razorpay_payment_id = ?", gatewayPaymentID)
		if err != nil {
			return err
		}

		if payment.Status == model.PaymentStatusRefunded && payment.RefundStatus == model.RefundStatusProcessed {
			result = payment
			return nil
		}
		if payment.Status != model.PaymentStatusRefunded && payment.Status != model.PaymentStatusCompleted {
			return domainErrors.ErrNotEligible
		}

		now := r.now()
		updates := map[string]interface{}{
			"status":        model.PaymentStatusRefunded,
			"refund_status": model.RefundStatusProcessed,
			"updated_at":    now,
		}
		if payment.RefundID == nil && refundID != "" {
			updates["refund_id"] = refundID
		}
		if payment.RefundAmount == nil {
			updates["refund_amount"] = amount
		}
		if payment.RefundedAt == nil {
			updates["refunded_at"] = now
		}

		if err := tx.Model(&model.Payment{}).
			Where("id = ? AND status IN ?", payment.ID, []model.PaymentStatus{model.PaymentStatusCompleted, model.PaymentStatusRefunded}).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to apply refund: %w", err)
		}

		result, err = reloadPayment(tx, payment.ID)
		applied = true
		return err
	})
	if err != nil {
		r.logger.Warn("Failed to apply processed refund",
			zap.String("gateway_payment_id", gatewayPaymentID),
			zap.Error(err))
		return nil, false, err
	}

	r.logger.Info("Processed refund applied",
		zap.String("payment_id", result.ID.String()),
		zap.Bool("applied", applied))
	return result, applied, nil
}

// RecordRefundFailure stores a gateway refund failure; the payment status is untouched.
func (r *paymentRepository) RecordRefundFailure(ctx context.Context, gatewayPaymentID, refundID, reason string) (*model.Payment, error) {
	var result *model.Payment

	r.logger.Warn("Recording refund failure",
		zap.String("gateway_payment_id", gatewayPaymentID),
		zap.String("refund_id", refundID),
		zap.String("reason", reason))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "razorpay_payment_id = ?", gatewayPaymentID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"refund_status":         model.RefundStatusFailed,
			"refund_failure_reason": reason,
			"updated_at":            r.now(),
		}
		if payment.RefundID == nil && refundID != "" {
			updates["refund_id"] = refundID
		}
		if err := tx.Model(&model.Payment{}).Where("id = ?", payment.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record refund failure: %w", err)
		}

		result, err = reloadPayment(tx, payment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Status == model.PaymentStatusRefunded {
		r.logger.Error("Refund failed at gateway after payment was marked refunded, manual follow-up required",
			zap.String("payment_id", result.ID.String()),
			zap.String("refund_id", refundID))
	}
	return result, nil
}

// Reserve holds one credit for ttl.
func (r *paymentRepository) Reserve(ctx context.Context, paymentID, userID uuid.UUID, ttl time.Duration) (*model.CreditReservation, error) {
	var reservation *model.CreditReservation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := lockPayment(tx, "id = ?", paymentID)
		if err != nil {
			return err
		}
		if payment.UserID != userID {
			return domainErrors.ErrPaymentNotFound
		}

		switch {
		case payment.Status == model.PaymentStatusRefunded, payment.RefundStatus == model.RefundStatusRequested:
			return domainErrors.ErrPaymentRefunded
		case payment.Status != model.PaymentStatusCompleted:
			return domainErrors.ErrInvalidTransition
		}

		now := r.now()
		held, err := liveReservations(tx, paymentID, now)
		if err != nil {
			return err
		}
		if int64(payment.CreditsRemaining)-held <= 0 {
			return domainErrors.ErrNoCreditsRemaining
		}

		reservation = &model.CreditReservation{
			ID:        uuid.New(),
			PaymentID: paymentID,
			UserID:    userID,
			Status:    model.ReservationStatusActive,
			ExpiresAt: now.Add(ttl),
		}
		if err := tx.Create(reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Info("Credit reservation rejected",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Credit reserved",
		zap.String("payment_id", paymentID.String()),
		zap.String("reservation_id", reservation.ID.String()),
		zap.Time("expires_at", reservation.ExpiresAt))
	return reservation, nil
}

// CommitReservation spends the reserved credit and persists the analysis atomically.
func (r *paymentRepository) CommitReservation(ctx context.Context, reservationID uuid.UUID, analysis *model.Analysis) (*model.Payment, error) {
	var result *model.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation model.CreditReservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reservationID).
			First(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrInvalidTransition
			}
			return fmt.Errorf("failed to load reservation: %w", err)
		}
		if reservation.Status != model.ReservationStatusActive {
			return domainErrors.ErrNoCreditsRemaining
		}

		now := r.now()
		payment, err := decrement(tx, reservation.PaymentID, now)
		if err != nil {
			return err
		}

		analysis.PaymentID = reservation.PaymentID
		analysis.UserID = reservation.UserID
		if err := tx.Create(analysis).Error; err != nil {
			return fmt.Errorf("failed to create analysis: %w", err)
		}

		if err := tx.Model(&model.CreditReservation{}).
			Where("id = ?", reservationID).
			Updates(map[string]interface{}{
				"status":      model.ReservationStatusCommitted,
				"resolved_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to commit reservation: %w", err)
		}

		result = payment
		return nil
	})
	if err != nil {
		r.logger.Warn("Failed to commit reservation",
			zap.String("reservation_id", reservationID.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Reservation committed",
		zap.String("reservation_id", reservationID.String()),
		zap.String("payment_id", result.ID.String()),
		zap.String("analysis_id", analysis.ID.String()),
		zap.Int("credits_remaining", result.CreditsRemaining))
	return result, nil
}

// ReleaseReservation returns a reserved credit.
func (r *paymentRepository) ReleaseReservation(ctx context.Context, reservationID uuid.UUID) error {
	now := r.now()
	res := r.db.WithContext(ctx).
		Model(&model.CreditReservation{}).
		Where("id = ? AND status = ?", reservationID, model.ReservationStatusActive).
		Updates(map[string]interface{}{
			"status":      model.ReservationStatusReleased,
			"resolved_at": now,
		})
	if res.Error != nil {
		r.logger.Error("Failed to release reservation",
			zap.String("reservation_id", reservationID.String()),
			zap.Error(res.Error))
		return fmt.Errorf("failed to release reservation: %w", res.Error)
	}

	r.logger.Info("Reservation released",
		zap.String("reservation_id", reservationID.String()),
		zap.Bool("was_active", res.RowsAffected == 1))
	return nil
}

// ExpireReservations closes active reservations whose lease ran out.
func (r *paymentRepository) ExpireReservations(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CreditReservation{}).
		Where("status = ? AND expires_at <= ?", model.ReservationStatusActive, now.UTC()).
		Updates(map[string]interface{}{
			"status":      model.ReservationStatusExpired,
			"resolved_at": now.UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire reservations: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		r.logger.Warn("Expired stale credit reservations", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func (r *paymentRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where(query, args...).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		r.logger.Error("Failed to get payment", zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	return r.findOne(ctx, "razorpay_order_id = ?", orderID)
}

func (r *paymentRepository) FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*model.Payment, error) {
	return r.findOne(ctx, "razorpay_payment_id = ?", gatewayPaymentID)
}

// ListByUser returns the user's payments, newest first.
func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Payment, error) {
	var payments []*model.Payment

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&payments).Error; err != nil {
		r.logger.Error("Failed to list payments",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
