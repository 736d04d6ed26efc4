package razorpay

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

// Webhook headers sent by Razorpay.
const (
	HeaderSignature = "X-Razorpay-Signature"
	HeaderEventID   = "X-Razorpay-Event-Id"
)

type webhookEnvelope struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
		Refund *struct {
			Entity refundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	ErrorDescription string `json:"error_description"`
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Notes     struct {
		FailureReason string `json:"failure_reason"`
	} `json:"notes"`
	ErrorDescription string `json:"error_description"`
}

// EventID returns the delivery id header, or a digest of the body when the
// header is missing so redeliveries still collapse.
func EventID(header string, body []byte) string {
	if header != "" {
		return header
	}
	sum := sha256.Sum256(body)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// ParseWebhookEvent decodes a webhook body. The signature must be verified first.
func ParseWebhookEvent(eventID string, body []byte) (*provider.WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode webhook: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("webhook has no event type")
	}

	event := &provider.WebhookEvent{
		ID:        eventID,
		Event:     env.Event,
		CreatedAt: env.CreatedAt,
	}

	if p := env.Payload.Payment; p != nil {
		event.Payment = &provider.WebhookPayment{
			ID:       p.Entity.ID,
			OrderID:  p.Entity.OrderID,
			Amount:   p.Entity.Amount,
			Currency: p.Entity.Currency,
			Status:   p.Entity.Status,
			Error:    p.Entity.ErrorDescription,
		}
		if event.Payment.OrderID == "" && env.Payload.Order != nil {
			event.Payment.OrderID = env.Payload.Order.Entity.ID
		}
	}

	if rf := env.Payload.Refund; rf != nil {
		reason := rf.Entity.Notes.FailureReason
		if reason == "" {
			reason = rf.Entity.ErrorDescription
		}
		event.Refund = &provider.WebhookRefund{
			ID:            rf.Entity.ID,
			PaymentID:     rf.Entity.PaymentID,
			Amount:        rf.Entity.Amount,
			Status:        rf.Entity.Status,
			FailureReason: reason,
		}
	}

	return event, nil
}
