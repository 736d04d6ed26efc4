package razorpay

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

// CreateOrder creates a remote order
// POST /v1/orders
func (r *RazorpayProvider) CreateOrder(ctx context.Context, req *provider.CreateOrderRequest) (*provider.Order, error) {
	r.logger.Info("RazorpayProvider: Creating order",
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.String("receipt", req.Receipt))

	var order provider.Order
	if err := r.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}

	r.logger.Info("RazorpayProvider: Order created",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status))
	return &order, nil
}
