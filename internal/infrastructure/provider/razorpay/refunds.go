package razorpay

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

type refundBody struct {
	Amount int64             `json:"amount"`
	Speed  string            `json:"speed"`
	Notes  map[string]string `json:"notes,omitempty"`
}

// Refund refunds a captured payment. It is never retried here: a timeout
// leaves the outcome unknown and the webhook settles it.
// POST /v1/payments/{id}/refund
func (r *RazorpayProvider) Refund(ctx context.Context, req *provider.RefundRequest) (*provider.RefundInfo, error) {
	r.logger.Info("RazorpayProvider: Requesting refund",
		zap.String("payment_id", req.PaymentID),
		zap.Int64("amount", req.Amount))

	body := refundBody{Amount: req.Amount, Speed: "normal", Notes: req.Notes}

	var refund provider.RefundInfo
	path := "/payments/" + url.PathEscape(req.PaymentID) + "/refund"
	if err := r.do(ctx, http.MethodPost, path, body, &refund); err != nil {
		return nil, err
	}

	r.logger.Info("RazorpayProvider: Refund accepted",
		zap.String("refund_id", refund.ID),
		zap.String("payment_id", refund.PaymentID),
		zap.String("status", refund.Status))
	return &refund, nil
}
