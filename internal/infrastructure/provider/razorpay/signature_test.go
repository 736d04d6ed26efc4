package razorpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

func TestVerifyPaymentSignature(t *testing.T) {
	valid := Sign("key_secret", []byte("order_1|pay_1"))

	tests := []struct {
		name      string
		secret    string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid", "key_secret", "order_1", "pay_1", valid, true},
		{"wrong secret", "other", "order_1", "pay_1", valid, false},
		{"swapped ids", "key_secret", "pay_1", "order_1", valid, false},
		{"other payment", "key_secret", "order_1", "pay_2", valid, false},
		{"empty signature", "key_secret", "order_1", "pay_1", "", false},
		{"empty secret", "", "order_1", "pay_1", Sign("", []byte("order_1|pay_1")), false},
		{"uppercase hex", "key_secret", "order_1", "pay_1", "ABCDEF", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPaymentSignature(tt.secret, tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := Sign("whsec", body)

	assert.True(t, VerifyWebhookSignature("whsec", body, sig))
	assert.False(t, VerifyWebhookSignature("whsec", []byte(`{"event":"payment.captured" }`), sig))
	assert.False(t, VerifyWebhookSignature("key_secret", body, sig))
	assert.False(t, VerifyWebhookSignature("", body, sig))
}

func TestParseWebhookEvent(t *testing.T) {
	t.Run("payment captured", func(t *testing.T) {
		body := []byte(`{"event":"payment.captured","created_at":1700000000,"payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","amount":19900,"currency":"INR","status":"captured"}}}}`)

		event, err := ParseWebhookEvent("evt_1", body)
		require.NoError(t, err)
		assert.Equal(t, provider.EventPaymentCaptured, event.Event)
		require.NotNil(t, event.Payment)
		assert.Equal(t, "order_1", event.Payment.OrderID)
		assert.Equal(t, int64(19900), event.Payment.Amount)
		assert.Nil(t, event.Refund)
	})

	t.Run("refund failed", func(t *testing.T) {
		body := []byte(`{"event":"refund.failed","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_1","amount":19900,"status":"failed","notes":{"failure_reason":"account closed"}}}}}`)

		event, err := ParseWebhookEvent("evt_2", body)
		require.NoError(t, err)
		require.NotNil(t, event.Refund)
		assert.Equal(t, "pay_1", event.Refund.PaymentID)
		assert.Equal(t, "account closed", event.Refund.FailureReason)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseWebhookEvent("evt_3", []byte(`not json`))
		assert.Error(t, err)
		_, err = ParseWebhookEvent("evt_4", []byte(`{}`))
		assert.Error(t, err)
	})

	t.Run("event id falls back to body digest", func(t *testing.T) {
		body := []byte(`{"event":"order.paid"}`)
		assert.Equal(t, "evt_9", EventID("evt_9", body))
		assert.Equal(t, EventID("", body), EventID("", body))
		assert.NotEqual(t, EventID("", body), EventID("", []byte(`{"event":"payment.failed"}`)))
	})
}
