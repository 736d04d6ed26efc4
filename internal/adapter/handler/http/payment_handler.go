package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/middleware/auth"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

// PaymentHandler handles checkout, verification and refund requests
type PaymentHandler struct {
	logger   *zap.Logger
	payments *usecase.PaymentService
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(logger *zap.Logger, payments *usecase.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		logger:   logger,
		payments: payments,
	}
}

// CreateOrder handles POST /api/v1/payments/orders
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	// An empty body buys the configured product.
	var req dto.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.payments.CreateOrder(c.Request().Context(), user, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// VerifyPayment handles POST /api/v1/payments/verify
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	var req dto.VerifyPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.payments.VerifyPayment(c.Request().Context(), user, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// ListPayments handles GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.payments.ListPayments(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPaymentStatus handles GET /api/v1/payments/:id/status
func (h *PaymentHandler) GetPaymentStatus(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.payments.GetPaymentStatus(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// RequestRefund handles POST /api/v1/payments/refund
func (h *PaymentHandler) RequestRefund(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	var req dto.RefundRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.payments.RequestRefund(c.Request().Context(), user, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetRefundStatus handles GET /api/v1/payments/refund/:paymentId
func (h *PaymentHandler) GetRefundStatus(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.payments.GetRefundStatus(c.Request().Context(), user, c.Param("paymentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
