package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/cache"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/metrics"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/razorpay"
)

const (
	receiptAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	paymentListLimit = 50

	// refundNotInitiated is stored on the ledger when the gateway rejects a refund.
	// The gateway's own error text stays in the server log.
	refundNotInitiated = "refund could not be initiated"
)

// PaymentServiceConfig is the slice of configuration the orchestrator needs.
type PaymentServiceConfig struct {
	Product      config.ProductConfig
	KeySecret    string
	RefundWindow time.Duration
}

// PaymentService orchestrates orders, verification and refunds against the ledger.
type PaymentService struct {
	cfg      PaymentServiceConfig
	payments repository.PaymentRepository
	gateway  provider.PaymentGateway
	notifier *notifier
	credits  cache.CreditCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewPaymentService(
	cfg PaymentServiceConfig,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	gateway provider.PaymentGateway,
	delivery provider.Notifier,
	credits cache.CreditCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PaymentService {
	if cfg.Product.Credits <= 0 {
		cfg.Product.Credits = 1
	}
	if cfg.RefundWindow <= 0 {
		cfg.RefundWindow = 24 * time.Hour
	}
	return &PaymentService{
		cfg:      cfg,
		payments: payments,
		gateway:  gateway,
		notifier: newNotifier(delivery, users, logger),
		credits:  credits,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder opens a gateway order for the product and records it as pending.
func (s *PaymentService) CreateOrder(ctx context.Context, user *model.User, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	amount := s.cfg.Product.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if amount != s.cfg.Product.Amount {
		return nil, domainErrors.ErrInvalidAmount.WithDetails("amount must match the product price")
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.cfg.Product.Currency
	}
	if currency != strings.ToUpper(s.cfg.Product.Currency) {
		return nil, domainErrors.ErrInvalidCurrency
	}

	receipt := "rcpt_" + gonanoid.MustGenerate(receiptAlphabet, 16)

	order, err := s.gateway.CreateOrder(ctx, &provider.CreateOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"user_id": user.ID.String(),
			"email":   user.Email,
		},
	})
	if err != nil {
		s.logger.Error("Gateway order creation failed",
			zap.String("user_id", user.ID.String()),
			zap.String("gateway", s.gateway.Name()),
			zap.Error(err))
		return nil, domainErrors.ErrGatewayUnavailable
	}

	if _, err := s.payments.CreatePending(ctx, user.ID, amount, currency, order.ID, receipt); err != nil {
		return nil, err
	}
	s.metrics.OrdersCreated.Inc()

	return &dto.OrderResponse{
		OrderID:       order.ID,
		Amount:        amount,
		Currency:      currency,
		Key:           s.gateway.PublicKey(),
		Receipt:       receipt,
		DisplayAmount: model.FormatAmount(amount, currency),
	}, nil
}

// VerifyPayment checks the checkout callback and grants credits exactly once.
// Signature, ownership and capture failures all look the same to the caller.
func (s *PaymentService) VerifyPayment(ctx context.Context, user *model.User, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if s.cfg.KeySecret == "" {
		s.logger.Error("Razorpay key secret is not configured, refusing verification")
		return nil, domainErrors.ErrMisconfigured
	}

	log := s.logger.With(
		zap.String("user_id", user.ID.String()),
		zap.String("order_id", req.OrderID),
		zap.String("gateway_payment_id", req.PaymentID))

	if !razorpay.VerifyPaymentSignature(s.cfg.KeySecret, req.OrderID, req.PaymentID, req.Signature) {
		log.Warn("Payment signature mismatch")
		s.metrics.PaymentsVerified.WithLabelValues("signature_mismatch").Inc()
		return nil, domainErrors.ErrSignatureMismatch
	}

	payment, err := s.payments.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			log.Warn("Verification for unknown order")
			s.metrics.PaymentsVerified.WithLabelValues("order_not_found").Inc()
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}
	if payment.UserID != user.ID {
		log.Warn("Verification for an order owned by another user")
		s.metrics.PaymentsVerified.WithLabelValues("order_not_found").Inc()
		return nil, domainErrors.ErrOrderNotFound
	}

	if payment.Status != model.PaymentStatusPending && payment.PaymentIDString() == req.PaymentID {
		log.Info("Payment already verified")
		return &dto.VerifyPaymentResponse{
			Success:          true,
			PaymentID:        payment.PaymentIDString(),
			CreditsRemaining: payment.CreditsRemaining,
		}, nil
	}

	info, err := s.gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		var pe *provider.ProviderError
		if errors.As(err, &pe) && pe.Code == provider.ErrCodeNotFound {
			log.Warn("Gateway does not know the payment")
			s.metrics.PaymentsVerified.WithLabelValues("not_captured").Inc()
			return nil, domainErrors.ErrNotCaptured
		}
		log.Error("Gateway payment fetch failed", zap.Error(err))
		return nil, domainErrors.ErrGatewayUnavailable
	}

	switch {
	case info.OrderID != req.OrderID:
		log.Warn("Gateway payment belongs to a different order", zap.String("gateway_order_id", info.OrderID))
		s.metrics.PaymentsVerified.WithLabelValues("not_captured").Inc()
		return nil, domainErrors.ErrNotCaptured
	case info.Status == provider.PaymentStatusFailed:
		if _, err := s.payments.RecordAttemptFailure(ctx, req.OrderID, req.PaymentID, "payment attempt failed"); err != nil {
			log.Warn("Could not record payment attempt failure", zap.Error(err))
		}
		s.metrics.PaymentsVerified.WithLabelValues("failed").Inc()
		return nil, domainErrors.ErrNotCaptured
	case !info.Captured():
		log.Warn("Payment not captured", zap.String("gateway_status", info.Status))
		s.metrics.PaymentsVerified.WithLabelValues("not_captured").Inc()
		return nil, domainErrors.ErrNotCaptured
	case info.Amount != 0 && info.Amount != payment.Amount:
		log.Error("Captured amount does not match the order",
			zap.Int64("expected", payment.Amount),
			zap.Int64("captured", info.Amount))
		s.metrics.PaymentsVerified.WithLabelValues("amount_mismatch").Inc()
		return nil, domainErrors.ErrNotCaptured
	}

	completed, applied, err := s.payments.MarkCompleted(ctx, req.OrderID, req.PaymentID, s.cfg.Product.Credits)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidTransition) {
			s.metrics.PaymentsVerified.WithLabelValues("invalid_transition").Inc()
			return nil, domainErrors.ErrNotCaptured
		}
		return nil, err
	}

	if applied {
		s.credits.Invalidate(ctx, user.ID)
		s.metrics.PaymentsVerified.WithLabelValues("completed").Inc()
		s.notifier.send(ctx, provider.NotificationPaymentCompleted, user, completed, "")
	} else {
		s.metrics.PaymentsVerified.WithLabelValues("duplicate").Inc()
	}

	return &dto.VerifyPaymentResponse{
		Success:          true,
		PaymentID:        completed.PaymentIDString(),
		CreditsRemaining: completed.CreditsRemaining,
	}, nil
}

// RequestRefund refunds an unused payment in full.
func (s *PaymentService) RequestRefund(ctx context.Context, user *model.User, req *dto.RefundRequest) (*dto.RefundResponse, error) {
	payment, err := resolvePayment(ctx, s.payments, user.ID, req.PaymentID)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(
		zap.String("user_id", user.ID.String()),
		zap.String("payment_id", payment.ID.String()))

	switch {
	case payment.Status == model.PaymentStatusRefunded:
		return nil, domainErrors.ErrAlreadyRefunded
	case payment.Status != model.PaymentStatusCompleted:
		return nil, domainErrors.ErrPaymentNotFound
	case payment.VerifiedAt == nil || s.now().Sub(*payment.VerifiedAt) > s.cfg.RefundWindow:
		s.metrics.Refunds.WithLabelValues("window_expired").Inc()
		return nil, domainErrors.ErrRefundWindowExpired
	}

	held, err := s.payments.BeginRefund(ctx, payment.ID)
	if err != nil {
		s.metrics.Refunds.WithLabelValues("rejected").Inc()
		return nil, err
	}

	notes := map[string]string{"user_id": user.ID.String()}
	if req.Reason != "" {
		notes["reason"] = req.Reason
	}

	refund, err := s.gateway.Refund(ctx, &provider.RefundRequest{
		PaymentID: held.PaymentIDString(),
		Amount:    held.Amount,
		Notes:     notes,
	})
	if err != nil {
		log.Error("Gateway refund failed", zap.Error(err))
		if abortErr := s.payments.AbortRefund(context.WithoutCancel(ctx), held.ID, refundNotInitiated); abortErr != nil {
			log.Error("Failed to release refund hold", zap.Error(abortErr))
		}
		s.metrics.Refunds.WithLabelValues("gateway_error").Inc()
		return nil, domainErrors.ErrGatewayUnavailable
	}

	if refund.Amount == 0 {
		refund.Amount = held.Amount
	}

	refundStatus := model.RefundStatusPending
	if refund.Status == provider.RefundStatusProcessed {
		refundStatus = model.RefundStatusProcessed
	}

	refunded, err := s.payments.MarkRefunded(context.WithoutCancel(ctx), held.ID, repository.RefundRecord{
		RefundID: refund.ID,
		Amount:   refund.Amount,
		Reason:   req.Reason,
		Status:   refundStatus,
	})
	switch {
	case errors.Is(err, domainErrors.ErrAlreadyRefunded):
		log.Info("Refund already recorded by webhook", zap.String("refund_id", refund.ID))
		if refunded, err = s.payments.FindByID(ctx, held.ID); err != nil {
			return nil, err
		}
	case err != nil:
		log.Error("Gateway refunded but ledger update failed, manual follow-up required",
			zap.String("refund_id", refund.ID),
			zap.Error(err))
		return nil, err
	}

	s.credits.Invalidate(ctx, user.ID)
	s.metrics.Refunds.WithLabelValues("accepted").Inc()
	if refund.Status == provider.RefundStatusProcessed {
		s.notifier.send(ctx, provider.NotificationRefundProcessed, user, refunded, "")
	}

	log.Info("Refund accepted",
		zap.String("refund_id", refund.ID),
		zap.String("refund_status", refund.Status))

	return &dto.RefundResponse{
		Success: true,
		Refund: dto.RefundDTO{
			ID:     refund.ID,
			Amount: refund.Amount,
			Status: refund.Status,
		},
	}, nil
}

// GetPaymentStatus returns one of the caller's payments.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, user *model.User, ref string) (*dto.PaymentDTO, error) {
	payment, err := resolvePayment(ctx, s.payments, user.ID, ref)
	if err != nil {
		return nil, err
	}
	out := dto.NewPaymentDTO(payment)
	return &out, nil
}

// ListPayments returns the caller's recent payments, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, user *model.User) (*dto.PaymentListResponse, error) {
	payments, err := s.payments.ListByUser(ctx, user.ID, paymentListLimit)
	if err != nil {
		return nil, err
	}

	resp := &dto.PaymentListResponse{Payments: make([]dto.PaymentDTO, 0, len(payments))}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.NewPaymentDTO(p))
	}
	return resp, nil
}

// GetRefundStatus reports the refund state of one of the caller's payments.
func (s *PaymentService) GetRefundStatus(ctx context.Context, user *model.User, ref string) (*dto.RefundStatusResponse, error) {
	payment, err := resolvePayment(ctx, s.payments, user.ID, ref)
	if err != nil {
		return nil, err
	}
	out := dto.NewRefundStatusResponse(payment)
	return &out, nil
}
