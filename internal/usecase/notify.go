package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
)

// notifier wraps a provider.Notifier so failures never reach the caller.
type notifier struct {
	delivery provider.Notifier
	users    repository.UserRepository
	logger   *zap.Logger
}

func newNotifier(delivery provider.Notifier, users repository.UserRepository, logger *zap.Logger) *notifier {
	return &notifier{delivery: delivery, users: users, logger: logger}
}

// send looks up the recipient if needed and hands the notification off.
func (n *notifier) send(ctx context.Context, kind string, user *model.User, payment *model.Payment, reason string) {
	if n.delivery == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if user == nil {
		found, err := n.users.FindByID(ctx, payment.UserID)
		if err != nil {
			n.logger.Warn("Skipping notification, user lookup failed",
				zap.String("kind", kind),
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err))
			return
		}
		user = found
	}

	msg := provider.Notification{
		Kind:      kind,
		Email:     user.Email,
		Name:      user.Name,
		PaymentID: payment.PaymentIDString(),
		OrderID:   payment.RazorpayOrderID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Reason:    reason,
	}
	if kind != provider.NotificationPaymentCompleted && payment.RefundAmount != nil {
		msg.Amount = *payment.RefundAmount
	}

	if err := n.delivery.Notify(ctx, msg); err != nil {
		n.logger.Warn("Notification not sent",
			zap.String("kind", kind),
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
	}
}

// resolvePayment finds a payment owned by userID from an internal id, an
// order id or a gateway payment id.
func resolvePayment(ctx context.Context, payments repository.PaymentRepository, userID uuid.UUID, ref string) (*model.Payment, error) {
	var (
		payment *model.Payment
		err     error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		payment, err = payments.FindByID(ctx, id)
	} else if strings.HasPrefix(ref, "order_") {
		payment, err = payments.FindByOrderID(ctx, ref)
	} else {
		payment, err = payments.FindByGatewayPaymentID(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return payment, nil
}
