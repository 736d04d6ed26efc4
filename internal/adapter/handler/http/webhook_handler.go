package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

const (
	headerRazorpaySignature = "X-Razorpay-Signature"
	headerRazorpayEventID   = "X-Razorpay-Event-Id"
)

// WebhookHandler receives gateway webhooks. The body is read raw because the
// signature covers the exact bytes sent.
type WebhookHandler struct {
	logger   *zap.Logger
	webhooks *usecase.WebhookService
}

func NewWebhookHandler(logger *zap.Logger, webhooks *usecase.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		logger:   logger,
		webhooks: webhooks,
	}
}

// HandleWebhook handles POST /webhook/razorpay
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading webhook body", zap.Error(err))
		return errInvalidBody
	}

	err = h.webhooks.Handle(c.Request().Context(), body,
		c.Request().Header.Get(headerRazorpaySignature),
		c.Request().Header.Get(headerRazorpayEventID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
