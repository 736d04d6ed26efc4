package dto

import (
	"time"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// CreateOrderRequest may omit amount and currency to buy the configured product.
type CreateOrderRequest struct {
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency" validate:"omitempty,len=3,alpha"`
}

type OrderResponse struct {
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Key           string `json:"key"`
	Receipt       string `json:"receipt"`
	DisplayAmount string `json:"displayAmount"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required,max=100"`
	PaymentID string `json:"razorpay_payment_id" validate:"required,max=100"`
	Signature string `json:"razorpay_signature" validate:"required,hexadecimal"`
}

type VerifyPaymentResponse struct {
	Success          bool   `json:"success"`
	PaymentID        string `json:"paymentId"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

type RefundRequest struct {
	PaymentID string `json:"paymentId" validate:"required,max=100"`
	Reason    string `json:"reason" validate:"max=500"`
}

type RefundDTO struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type RefundResponse struct {
	Success bool      `json:"success"`
	Refund  RefundDTO `json:"refund"`
}

// RefundStatusResponse reports the refund side of one payment.
type RefundStatusResponse struct {
	PaymentID     string     `json:"paymentId"`
	Status        string     `json:"status"`
	RefundStatus  string     `json:"refundStatus"`
	RefundID      string     `json:"refundId,omitempty"`
	RefundAmount  int64      `json:"refundAmount,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
	RefundedAt    *time.Time `json:"refundedAt,omitempty"`
}

type PaymentDTO struct {
	ID               string     `json:"id"`
	OrderID          string     `json:"orderId"`
	PaymentID        string     `json:"paymentId,omitempty"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	DisplayAmount    string     `json:"displayAmount"`
	Status           string     `json:"status"`
	CreditsGranted   int        `json:"creditsGranted"`
	CreditsRemaining int        `json:"creditsRemaining"`
	RefundStatus     string     `json:"refundStatus"`
	VerifiedAt       *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type PaymentListResponse struct {
	Payments []PaymentDTO `json:"payments"`
}

func NewPaymentDTO(p *model.Payment) PaymentDTO {
	return PaymentDTO{
		ID:               p.ID.String(),
		OrderID:          p.RazorpayOrderID,
		PaymentID:        p.PaymentIDString(),
		Amount:           p.Amount,
		Currency:         p.Currency,
		DisplayAmount:    model.FormatAmount(p.Amount, p.Currency),
		Status:           string(p.Status),
		CreditsGranted:   p.CreditsGranted,
		CreditsRemaining: p.CreditsRemaining,
		RefundStatus:     string(p.RefundStatus),
		VerifiedAt:       p.VerifiedAt,
		CreatedAt:        p.CreatedAt,
	}
}

func NewRefundStatusResponse(p *model.Payment) RefundStatusResponse {
	resp := RefundStatusResponse{
		PaymentID:    p.PaymentIDString(),
		Status:       string(p.Status),
		RefundStatus: string(p.RefundStatus),
		RefundedAt:   p.RefundedAt,
	}
	if p.RefundID != nil {
		resp.RefundID = *p.RefundID
	}
	if p.RefundAmount != nil {
		resp.RefundAmount = *p.RefundAmount
	}
	if p.RefundFailureReason != nil {
		resp.FailureReason = *p.RefundFailureReason
	}
	return resp
}
