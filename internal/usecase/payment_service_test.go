package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/cache"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/metrics"
	gatewaymock "github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/mock"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

func TestPaymentService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending payment for the product", func(t *testing.T) {
		env := newTestEnv(t)

		order, err := env.payments.CreateOrder(ctx, env.user, &dto.CreateOrderRequest{})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(order.OrderID, "order_"))
		assert.Equal(t, int64(19900), order.Amount)
		assert.Equal(t, "INR", order.Currency)
		assert.Equal(t, "rzp_mock", order.Key)
		assert.Equal(t, "₹199.00", order.DisplayAmount)
		assert.Len(t, order.Receipt, len("rcpt_")+16)

		payment, err := env.repos.Payment.FindByOrderID(ctx, order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, payment.Status)
		assert.Equal(t, env.user.ID, payment.UserID)
		assert.Equal(t, 0, payment.CreditsRemaining)
		assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OrdersCreated))
	})

	t.Run("accepts the explicit product price", func(t *testing.T) {
		env := newTestEnv(t)
		amount := int64(19900)

		order, err := env.payments.CreateOrder(ctx, env.user, &dto.CreateOrderRequest{Amount: &amount, Currency: "inr"})
		require.NoError(t, err)
		assert.Equal(t, "INR", order.Currency)
	})

	t.Run("rejects other amounts", func(t *testing.T) {
		env := newTestEnv(t)

		for _, amount := range []int64{0, -100, 100} {
			a := amount
			_, err := env.payments.CreateOrder(ctx, env.user, &dto.CreateOrderRequest{Amount: &a})
			assert.ErrorIs(t, err, domainErrors.ErrInvalidAmount, "amount %d", amount)
		}
	})

	t.Run("rejects other currencies", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.payments.CreateOrder(ctx, env.user, &dto.CreateOrderRequest{Currency: "USD"})
		assert.ErrorIs(t, err, domainErrors.ErrInvalidCurrency)
	})

	t.Run("gateway failure creates no payment", func(t *testing.T) {
		env := newTestEnv(t)
		env.gateway.FailNext(gatewaymock.OpCreateOrder, errors.New("connection reset"))

		_, err := env.payments.CreateOrder(ctx, env.user, &dto.CreateOrderRequest{})
		assert.ErrorIs(t, err, domainErrors.ErrGatewayUnavailable)

		list, err := env.payments.ListPayments(ctx, env.user)
		require.NoError(t, err)
		assert.Empty(t, list.Payments)
	})
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("grants one credit and notifies once", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusCaptured)

		resp, err := env.payments.VerifyPayment(ctx, env.user, req)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, req.PaymentID, resp.PaymentID)
		assert.Equal(t, 1, resp.CreditsRemaining)

		again, err := env.payments.VerifyPayment(ctx, env.user, req)
		require.NoError(t, err)
		assert.Equal(t, 1, again.CreditsRemaining)

		payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusCompleted, payment.Status)
		assert.Equal(t, 1, payment.CreditsGranted)
		assert.NotNil(t, payment.VerifiedAt)

		assert.Equal(t, []string{provider.NotificationPaymentCompleted}, env.notes.kinds())
		assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PaymentsVerified.WithLabelValues("completed")))
	})

	t.Run("signature mismatch leaves the payment pending", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusCaptured)
		req.Signature = strings.Repeat("0", 64)

		_, err := env.payments.VerifyPayment(ctx, env.user, req)
		assert.ErrorIs(t, err, domainErrors.ErrSignatureMismatch)

		payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, payment.Status)
		assert.Equal(t, 0, payment.CreditsRemaining)
		assert.Empty(t, env.notes.kinds())
	})

	t.Run("order of another user is not found", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusCaptured)
		other := env.newUser(t, "other@example.com")

		_, err := env.payments.VerifyPayment(ctx, other, req)
		assert.ErrorIs(t, err, domainErrors.ErrOrderNotFound)
	})

	t.Run("verification failures share one message", func(t *testing.T) {
		assert.Equal(t, domainErrors.ErrSignatureMismatch.Error(), domainErrors.ErrNotCaptured.Error())
		assert.Equal(t, domainErrors.ErrSignatureMismatch.Error(), domainErrors.ErrOrderNotFound.Error())
	})

	t.Run("failed attempt keeps the order open for a retry", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusFailed)

		_, err := env.payments.VerifyPayment(ctx, env.user, req)
		assert.ErrorIs(t, err, domainErrors.ErrNotCaptured)

		payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, payment.Status)
		require.NotNil(t, payment.LastPaymentError)
		assert.Equal(t, 0, payment.CreditsRemaining)

		paymentID, signature := env.gateway.Pay(req.OrderID, provider.PaymentStatusCaptured)
		resp, err := env.payments.VerifyPayment(ctx, env.user, &dto.VerifyPaymentRequest{
			OrderID:   req.OrderID,
			PaymentID: paymentID,
			Signature: signature,
		})
		require.NoError(t, err)
		assert.Equal(t, paymentID, resp.PaymentID)
		assert.Equal(t, 1, resp.CreditsRemaining)
	})

	t.Run("authorized but not captured", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusAuthorized)

		_, err := env.payments.VerifyPayment(ctx, env.user, req)
		assert.ErrorIs(t, err, domainErrors.ErrNotCaptured)

		payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPending, payment.Status)
	})

	t.Run("gateway outage", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusCaptured)
		env.gateway.FailNext(gatewaymock.OpFetchPayment, &provider.ProviderError{Code: provider.ErrCodeAPI, Message: "bad gateway", StatusCode: 502})

		_, err := env.payments.VerifyPayment(ctx, env.user, req)
		assert.ErrorIs(t, err, domainErrors.ErrGatewayUnavailable)

		resp, err := env.payments.VerifyPayment(ctx, env.user, req)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.CreditsRemaining)
	})

	t.Run("missing key secret is a misconfiguration", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusCaptured)
		svc := usecase.NewPaymentService(usecase.PaymentServiceConfig{
			Product: config.ProductConfig{Amount: 19900, Currency: "INR"},
		}, env.repos.Payment, env.repos.User, env.gateway, nil, cache.NewNoopCreditCache(), metrics.NewNop(), zap.NewNop())

		_, err := svc.VerifyPayment(ctx, env.user, req)
		assert.ErrorIs(t, err, domainErrors.ErrMisconfigured)
	})
}

func TestPaymentService_RequestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds an unused payment", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)

		resp, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID, Reason: "changed my mind"})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(19900), resp.Refund.Amount)
		assert.Equal(t, provider.RefundStatusProcessed, resp.Refund.Status)

		status, err := env.payments.GetRefundStatus(ctx, env.user, req.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, string(model.PaymentStatusRefunded), status.Status)
		assert.Equal(t, string(model.RefundStatusProcessed), status.RefundStatus)
		assert.Equal(t, resp.Refund.ID, status.RefundID)
		assert.NotNil(t, status.RefundedAt)

		assert.Equal(t, []string{provider.NotificationPaymentCompleted, provider.NotificationRefundProcessed}, env.notes.kinds())
	})

	t.Run("second refund is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)

		_, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
		require.NoError(t, err)

		_, err = env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
		assert.ErrorIs(t, err, domainErrors.ErrAlreadyRefunded)
	})

	t.Run("order id and internal id resolve too", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)

		payment, err := env.payments.GetPaymentStatus(ctx, env.user, req.OrderID)
		require.NoError(t, err)

		_, err = env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: payment.ID})
		require.NoError(t, err)
	})

	t.Run("another user's payment is not found", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)
		other := env.newUser(t, "other@example.com")

		_, err := env.payments.RequestRefund(ctx, other, &dto.RefundRequest{PaymentID: req.PaymentID})
		assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
	})

	t.Run("pending payment is not found", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.order(t, env.user, provider.PaymentStatusCaptured)

		_, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.OrderID})
		assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
	})

	t.Run("window expired", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)

		require.NoError(t, env.db.Model(&model.Payment{}).
			Where("razorpay_order_id = ?", req.OrderID).
			Update("verified_at", time.Now().UTC().Add(-25*time.Hour)).Error)

		_, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
		assert.ErrorIs(t, err, domainErrors.ErrRefundWindowExpired)
	})

	t.Run("gateway failure releases the hold", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)
		env.gateway.FailNext(gatewaymock.OpRefund, errors.New("timeout"))

		_, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
		assert.ErrorIs(t, err, domainErrors.ErrGatewayUnavailable)

		payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusCompleted, payment.Status)
		assert.Equal(t, model.RefundStatusFailed, payment.RefundStatus)

		_, err = env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
		require.NoError(t, err)
	})

	t.Run("gateway error text stays out of the refund status", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)
		env.gateway.FailNext(gatewaymock.OpRefund, &provider.ProviderError{
			Code:       provider.ErrCodeAPI,
			Message:    "Authentication failed for key rzp_live_internal at 10.2.3.4",
			StatusCode: 401,
		})

		_, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
		assert.ErrorIs(t, err, domainErrors.ErrGatewayUnavailable)

		status, err := env.payments.GetRefundStatus(ctx, env.user, req.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, "refund could not be initiated", status.FailureReason)
		assert.NotContains(t, status.FailureReason, "rzp_live_internal")
		assert.NotContains(t, status.FailureReason, "10.2.3.4")
	})

	t.Run("pending refund is confirmed by webhook", func(t *testing.T) {
		env := newTestEnv(t)
		req := env.paid(t, env.user)
		env.gateway.SetRefundStatus(provider.RefundStatusPending)

		resp, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
		require.NoError(t, err)
		assert.Equal(t, provider.RefundStatusPending, resp.Refund.Status)
		assert.Equal(t, []string{provider.NotificationPaymentCompleted}, env.notes.kinds())

		body, sig := signedWebhook(t, provider.EventRefundProcessed, refundPayload(resp.Refund.ID, req.PaymentID, "processed", ""))
		require.NoError(t, env.webhooks.Handle(ctx, body, sig, "evt_refund_1"))

		status, err := env.payments.GetRefundStatus(ctx, env.user, req.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, string(model.RefundStatusProcessed), status.RefundStatus)
		assert.Equal(t, []string{provider.NotificationPaymentCompleted, provider.NotificationRefundProcessed}, env.notes.kinds())
	})
}

func TestPaymentService_ListPayments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.paid(t, env.user)
	env.order(t, env.user, provider.PaymentStatusCaptured)
	other := env.newUser(t, "other@example.com")
	env.paid(t, other)

	list, err := env.payments.ListPayments(ctx, env.user)
	require.NoError(t, err)
	require.Len(t, list.Payments, 2)

	statuses := []string{list.Payments[0].Status, list.Payments[1].Status}
	assert.ElementsMatch(t, []string{string(model.PaymentStatusCompleted), string(model.PaymentStatusPending)}, statuses)
}
