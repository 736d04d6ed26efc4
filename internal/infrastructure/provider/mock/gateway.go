// Package mock is an in-memory payment gateway for local development and tests.
// It is refused in production by config validation.
package mock

import (
	"context"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/razorpay"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Gateway implements provider.PaymentGateway in memory. Payments made through
// Pay are signed with the same key secret the verifier uses.
type Gateway struct {
	mu           sync.Mutex
	keyID        string
	keySecret    string
	orders       map[string]*provider.Order
	payments     map[string]*provider.PaymentInfo
	refunds      map[string]*provider.RefundInfo
	refundStatus string
	failures     map[string]error
	logger       *zap.Logger
}

// NewGateway creates a mock gateway using cfg's key pair.
func NewGateway(cfg config.RazorpayConfig, logger *zap.Logger) *Gateway {
	keyID := cfg.KeyID
	if keyID == "" {
		keyID = "rzp_mock"
	}
	return &Gateway{
		keyID:        keyID,
		keySecret:    cfg.KeySecret,
		orders:       make(map[string]*provider.Order),
		payments:     make(map[string]*provider.PaymentInfo),
		refunds:      make(map[string]*provider.RefundInfo),
		refundStatus: provider.RefundStatusProcessed,
		failures:     make(map[string]error),
		logger:       logger,
	}
}

// Operations that can be made to fail with FailNext.
const (
	OpCreateOrder  = "create_order"
	OpFetchPayment = "fetch_payment"
	OpRefund       = "refund"
)

// FailNext makes the next call of op return err.
func (g *Gateway) FailNext(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[op] = err
}

// SetRefundStatus sets the status reported for new refunds.
func (g *Gateway) SetRefundStatus(status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundStatus = status
}

func (g *Gateway) takeFailure(op string) error {
	err, ok := g.failures[op]
	if ok {
		delete(g.failures, op)
	}
	return err
}

func newID(prefix string) string {
	return prefix + gonanoid.MustGenerate(idAlphabet, 14)
}

func (g *Gateway) Name() string {
	return config.GatewayMock
}

func (g *Gateway) PublicKey() string {
	return g.keyID
}

func (g *Gateway) CreateOrder(ctx context.Context, req *provider.CreateOrderRequest) (*provider.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.takeFailure(OpCreateOrder); err != nil {
		return nil, err
	}

	order := &provider.Order{
		ID:       newID("order_"),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}
	g.orders[order.ID] = order

	g.logger.Debug("MockGateway: order created", zap.String("order_id", order.ID))
	copied := *order
	return &copied, nil
}

// Pay simulates checkout for orderID with the given gateway status and returns
// the payment id and the checkout signature.
func (g *Gateway) Pay(orderID, status string) (string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	payment := &provider.PaymentInfo{
		ID:      newID("pay_"),
		OrderID: orderID,
		Status:  status,
	}
	if order, ok := g.orders[orderID]; ok {
		payment.Amount = order.Amount
		payment.Currency = order.Currency
		if status == provider.PaymentStatusCaptured {
			order.Status = "paid"
		}
	}
	g.payments[payment.ID] = payment

	return payment.ID, razorpay.Sign(g.keySecret, []byte(orderID+"|"+payment.ID))
}

func (g *Gateway) FetchPayment(ctx context.Context, paymentID string) (*provider.PaymentInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.takeFailure(OpFetchPayment); err != nil {
		return nil, err
	}

	payment, ok := g.payments[paymentID]
	if !ok {
		return nil, &provider.ProviderError{
			Code:       provider.ErrCodeNotFound,
			Message:    "payment not found",
			StatusCode: 404,
		}
	}
	copied := *payment
	return &copied, nil
}

func (g *Gateway) Refund(ctx context.Context, req *provider.RefundRequest) (*provider.RefundInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.takeFailure(OpRefund); err != nil {
		return nil, err
	}

	payment, ok := g.payments[req.PaymentID]
	if !ok || payment.Status != provider.PaymentStatusCaptured {
		return nil, &provider.ProviderError{
			Code:       provider.ErrCodeAPI,
			Message:    "payment is not refundable",
			StatusCode: 400,
		}
	}

	refund := &provider.RefundInfo{
		ID:        newID("rfnd_"),
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Status:    g.refundStatus,
	}
	g.refunds[refund.ID] = refund
	payment.Status = provider.PaymentStatusRefunded

	copied := *refund
	return &copied, nil
}
