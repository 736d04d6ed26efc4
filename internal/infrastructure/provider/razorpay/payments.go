package razorpay

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

const badRequestError = "BAD_REQUEST_ERROR"

// FetchPayment reads a payment, retrying transport failures and 5xx answers
// GET /v1/payments/{id}
func (r *RazorpayProvider) FetchPayment(ctx context.Context, paymentID string) (*provider.PaymentInfo, error) {
	path := "/payments/" + url.PathEscape(paymentID)
	backoff := r.retryBackoff

	var lastErr error
	for attempt := 0; attempt <= r.fetchRetries; attempt++ {
		if attempt > 0 {
			r.logger.Warn("RazorpayProvider: Retrying payment fetch",
				zap.String("payment_id", paymentID),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))

			select {
			case <-ctx.Done():
				return nil, &provider.ProviderError{
					Code:    provider.ErrCodeAPI,
					Message: "payment fetch cancelled",
					Details: map[string]interface{}{"error": ctx.Err().Error()},
				}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var info provider.PaymentInfo
		err := r.do(ctx, http.MethodGet, path, nil, &info)
		if err == nil {
			r.logger.Info("RazorpayProvider: Payment fetched",
				zap.String("payment_id", info.ID),
				zap.String("order_id", info.OrderID),
				zap.String("status", info.Status))
			return &info, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, unknownPayment(lastErr)
}

// unknownPayment maps Razorpay's answer for an id it does not have to ErrCodeNotFound.
// The API reports that as 400 BAD_REQUEST_ERROR rather than 404.
func unknownPayment(err error) error {
	pe, ok := err.(*provider.ProviderError)
	if !ok || pe.StatusCode != http.StatusBadRequest {
		return err
	}
	if code, _ := pe.Details["gateway_code"].(string); code == badRequestError {
		pe.Code = provider.ErrCodeNotFound
	}
	return pe
}
