package provider

import (
	"context"
	"fmt"
)

// PaymentGateway is the boundary to the external payment provider.
// Implementations must honour ctx deadlines; every call may fail with *ProviderError.
type PaymentGateway interface {
	// CreateOrder registers a remote order for amount minor units.
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error)

	// FetchPayment returns the live state of a payment. It is a read and may be retried.
	FetchPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)

	// Refund refunds amount minor units of a captured payment.
	Refund(ctx context.Context, req *RefundRequest) (*RefundInfo, error)

	// PublicKey is the key id handed to the browser checkout.
	PublicKey() string

	// Name identifies the implementation in logs.
	Name() string
}

// CreateOrderRequest describes a new remote order.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's view of an order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// PaymentInfo is the gateway's view of a payment.
type PaymentInfo struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Captured reports whether funds were irrevocably collected.
func (p *PaymentInfo) Captured() bool {
	return p != nil && p.Status == PaymentStatusCaptured
}

// RefundRequest asks for a refund of a captured payment.
type RefundRequest struct {
	PaymentID string            `json:"payment_id"`
	Amount    int64             `json:"amount"`
	Notes     map[string]string `json:"notes,omitempty"`
}

// RefundInfo is the gateway's view of a refund.
type RefundInfo struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// Gateway payment statuses.
const (
	PaymentStatusCreated    = "created"
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusRefunded   = "refunded"
	PaymentStatusFailed     = "failed"
)

// Gateway refund statuses.
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
	RefundStatusFailed    = "failed"
)

// ProviderError is a failure reported by, or while talking to, the gateway.
// Message may contain provider text and is for server logs only.
type ProviderError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway error %s (http %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

// Provider error codes.
const (
	ErrCodeMarshal  = "MARSHAL_ERROR"
	ErrCodeRequest  = "REQUEST_ERROR"
	ErrCodeAPI      = "API_ERROR"
	ErrCodeResponse = "RESPONSE_ERROR"
	ErrCodeParse    = "PARSE_ERROR"
	ErrCodeNotFound = "NOT_FOUND"
)
