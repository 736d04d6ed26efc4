package provider

// Webhook event types handled by the reconciler.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
	EventRefundProcessed = "refund.processed"
	EventRefundFailed    = "refund.failed"
)

// WebhookEvent is a decoded gateway notification. Only the entity matching
// the event type is guaranteed to be present.
type WebhookEvent struct {
	ID        string
	Event     string
	CreatedAt int64
	Payment   *WebhookPayment
	Refund    *WebhookRefund
}

type WebhookPayment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
	Error    string
}

type WebhookRefund struct {
	ID            string
	PaymentID     string
	Amount        int64
	Status        string
	FailureReason string
}
