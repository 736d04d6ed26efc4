package usecase_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/cache"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/database"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/database/sqlitetest"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/metrics"
	gatewaymock "github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/mock"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/razorpay"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

const (
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
)

// MockCompletionProvider is a mock implementation of provider.CompletionProvider
type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompletionProvider) Model() string {
	return "gpt-test"
}

// recordingNotifier keeps every notification it is given.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []provider.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, msg provider.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, msg := range n.sent {
		out = append(out, msg.Kind)
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	repos    *database.Repositories
	gateway  *gatewaymock.Gateway
	llm      *MockCompletionProvider
	notes    *recordingNotifier
	metrics  *metrics.Metrics
	payments *usecase.PaymentService
	analyses *usecase.AnalysisService
	webhooks *usecase.WebhookService
	reports  *usecase.ReportService
	user     *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	db := sqlitetest.New(t)

	env := &testEnv{
		db:      db,
		repos:   database.NewRepositories(db, logger),
		gateway: gatewaymock.NewGateway(config.RazorpayConfig{KeySecret: testKeySecret}, logger),
		llm:     new(MockCompletionProvider),
		notes:   &recordingNotifier{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	credits := nopCache()

	env.payments = usecase.NewPaymentService(usecase.PaymentServiceConfig{
		Product:   config.ProductConfig{Name: "Analysis credit", Amount: 19900, Currency: "INR", Credits: 1},
		KeySecret: testKeySecret,
	}, env.repos.Payment, env.repos.User, env.gateway, env.notes, credits, env.metrics, logger)

	env.analyses = usecase.NewAnalysisService(usecase.AnalysisServiceConfig{
		MinWords: 50,
		MaxWords: 2000,
	}, env.repos.Payment, env.repos.Analysis, env.llm, credits, env.metrics, logger)

	env.webhooks = usecase.NewWebhookService(usecase.WebhookServiceConfig{
		WebhookSecret: testWebhookSecret,
		Credits:       1,
		MaxAttempts:   3,
	}, env.repos.Payment, env.repos.Webhook, env.repos.User, env.notes, credits, env.metrics, logger)

	env.reports = usecase.NewReportService(env.analyses, logger)

	env.user = env.newUser(t, "buyer@example.com")
	return env
}

func (env *testEnv) newUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", Name: "Buyer"}
	require.NoError(t, env.repos.User.Create(context.Background(), user))
	return user
}

// order creates an order for user and pays it at the mock gateway.
func (env *testEnv) order(t *testing.T, user *model.User, status string) *dto.VerifyPaymentRequest {
	t.Helper()
	order, err := env.payments.CreateOrder(context.Background(), user, &dto.CreateOrderRequest{})
	require.NoError(t, err)
	paymentID, signature := env.gateway.Pay(order.OrderID, status)
	return &dto.VerifyPaymentRequest{OrderID: order.OrderID, PaymentID: paymentID, Signature: signature}
}

// paid runs order and verification and returns the verified request.
func (env *testEnv) paid(t *testing.T, user *model.User) *dto.VerifyPaymentRequest {
	t.Helper()
	req := env.order(t, user, provider.PaymentStatusCaptured)
	resp, err := env.payments.VerifyPayment(context.Background(), user, req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	return req
}

func (env *testEnv) expectVerdict(recommendation string) {
	env.llm.On("Complete", mock.Anything, mock.Anything).Return(verdictJSON(recommendation), nil)
}

func verdictJSON(recommendation string) string {
	out, _ := json.Marshal(model.AnalysisResult{
		Recommendation:  recommendation,
		ConfidenceScore: 85,
		Reasoning:       "The workflow is deterministic.",
		CostEstimate:    "$50/month",
		TimeEstimate:    "1 week",
		StarterTemplate: "import csv",
	})
	return string(out)
}

// description returns a project description of exactly n words.
func description(n int) string {
	return strings.TrimSpace(strings.Repeat("invoice ", n))
}

func nopCache() cache.CreditCache {
	return cache.NewNoopCreditCache()
}

// signedWebhook builds a Razorpay style body and its signature.
func signedWebhook(t *testing.T, event string, payload map[string]interface{}) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"entity":     "event",
		"event":      event,
		"created_at": 1700000000,
		"payload":    payload,
	})
	require.NoError(t, err)
	return body, signFor(body)
}

func signFor(body []byte) string {
	return razorpay.Sign(testWebhookSecret, body)
}

func paymentPayload(orderID, paymentID string) map[string]interface{} {
	return map[string]interface{}{
		"payment": map[string]interface{}{
			"entity": map[string]interface{}{
				"id":       paymentID,
				"order_id": orderID,
				"amount":   19900,
				"currency": "INR",
				"status":   "captured",
			},
		},
	}
}

func failedPaymentPayload(orderID, paymentID, reason string) map[string]interface{} {
	payload := paymentPayload(orderID, paymentID)
	entity := payload["payment"].(map[string]interface{})["entity"].(map[string]interface{})
	entity["status"] = "failed"
	entity["error_description"] = reason
	return payload
}

func refundPayload(refundID, paymentID, status, reason string) map[string]interface{} {
	return map[string]interface{}{
		"refund": map[string]interface{}{
			"entity": map[string]interface{}{
				"id":         refundID,
				"payment_id": paymentID,
				"amount":     19900,
				"status":     status,
				"notes":      map[string]interface{}{"failure_reason": reason},
			},
		},
	}
}
