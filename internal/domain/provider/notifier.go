package provider

import "context"

// Notification kinds sent to users.
const (
	NotificationPaymentCompleted = "payment_completed"
	NotificationRefundProcessed  = "refund_processed"
	NotificationRefundFailed     = "refund_failed"
)

// Notification is a user-facing message about a payment.
type Notification struct {
	Kind      string `json:"kind"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reason    string `json:"reason,omitempty"`
}

// Notifier delivers notifications. Callers treat it as fire-and-forget: an error
// is logged and never fails the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
