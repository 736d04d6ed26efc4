package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
)

// Scenario A: order, verify, analyse.
func TestAnalysisService_PaidAnalysisConsumesCredit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.expectVerdict(model.RecommendationSimpleScript)

	order, err := env.payments.CreateOrder(ctx, env.user, &dto.CreateOrderRequest{Currency: "INR"})
	require.NoError(t, err)
	paymentID, signature := env.gateway.Pay(order.OrderID, "captured")

	verified, err := env.payments.VerifyPayment(ctx, env.user, &dto.VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	require.NoError(t, err)
	assert.True(t, verified.Success)
	assert.Equal(t, 1, verified.CreditsRemaining)

	desc := description(500)
	resp, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: paymentID, Description: desc})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CreditsRemaining)
	assert.Equal(t, model.RecommendationSimpleScript, resp.Analysis.Result.Recommendation)
	assert.Equal(t, 85, resp.Analysis.Result.ConfidenceScore)
	assert.Equal(t, "gpt-test", resp.Analysis.Model)

	stored, err := env.analyses.GetAnalysis(ctx, env.user, resp.Analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, desc, stored.Description)

	payment, err := env.repos.Payment.FindByOrderID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 0, payment.CreditsRemaining)
	assert.Equal(t, stored.PaymentID, payment.ID.String())

	env.llm.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, desc)
	}))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Analyses.WithLabelValues("completed")))
}

// Scenario B: a second analysis on a one-credit payment.
func TestAnalysisService_NoCreditsRemaining(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.expectVerdict(model.RecommendationAIAgent)
	req := env.paid(t, env.user)

	_, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
	require.NoError(t, err)

	_, err = env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
	assert.ErrorIs(t, err, domainErrors.ErrNoCreditsRemaining)

	env.llm.AssertNumberOfCalls(t, "Complete", 1)
}

// Scenario D: refund before any analysis.
func TestAnalysisService_RefundedPaymentCannotBeAnalyzed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	req := env.paid(t, env.user)

	_, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
	require.NoError(t, err)

	payment, err := env.payments.GetPaymentStatus(ctx, env.user, req.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, string(model.PaymentStatusRefunded), payment.Status)

	_, err = env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
	assert.ErrorIs(t, err, domainErrors.ErrPaymentRefunded)
	env.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnalysisService_RefundAfterAnalysis(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.expectVerdict(model.RecommendationSimpleScript)
	req := env.paid(t, env.user)

	_, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
	require.NoError(t, err)

	_, err = env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
	assert.ErrorIs(t, err, domainErrors.ErrAlreadyAnalyzed)

	payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, payment.Status)
}

// blockingCompletion holds every call until release is closed.
type blockingCompletion struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return verdictJSON(model.RecommendationSimpleScript), nil
}

func (b *blockingCompletion) Model() string {
	return "gpt-test"
}

func TestAnalysisService_RefundWhileAnalysisRunning(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	req := env.paid(t, env.user)

	llm := &blockingCompletion{started: make(chan struct{}), release: make(chan struct{})}
	svc := usecase.NewAnalysisService(usecase.AnalysisServiceConfig{MinWords: 50},
		env.repos.Payment, env.repos.Analysis, llm, nopCache(), env.metrics, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
		done <- err
	}()

	<-llm.started
	_, err := env.payments.RequestRefund(ctx, env.user, &dto.RefundRequest{PaymentID: req.PaymentID})
	assert.ErrorIs(t, err, domainErrors.ErrAlreadyAnalyzed)

	close(llm.release)
	require.NoError(t, <-done)
}

func TestAnalysisService_ConcurrentAnalysesSpendOneCredit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.expectVerdict(model.RecommendationAIAgent)
	req := env.paid(t, env.user)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domainErrors.ErrNoCreditsRemaining):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)

	list, err := env.analyses.ListAnalyses(ctx, env.user)
	require.NoError(t, err)
	assert.Len(t, list.Analyses, 1)
}

func TestAnalysisService_LLMFailureKeepsCredit(t *testing.T) {
	ctx := context.Background()

	failures := map[string]func(env *testEnv){
		"timeout": func(env *testEnv) {
			env.llm.On("Complete", mock.Anything, mock.Anything).Return("", domainErrors.ErrLLMTimeout).Once()
		},
		"rate limited": func(env *testEnv) {
			env.llm.On("Complete", mock.Anything, mock.Anything).Return("", domainErrors.ErrLLMRateLimited).Once()
		},
		"malformed output": func(env *testEnv) {
			env.llm.On("Complete", mock.Anything, mock.Anything).Return("I think a script will do.", nil).Once()
		},
		"score out of range": func(env *testEnv) {
			env.llm.On("Complete", mock.Anything, mock.Anything).
				Return(strings.Replace(verdictJSON(model.RecommendationAIAgent), `"confidenceScore":85`, `"confidenceScore":150`, 1), nil).Once()
		},
	}

	for name, fail := range failures {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			req := env.paid(t, env.user)
			fail(env)

			_, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
			assert.ErrorIs(t, err, domainErrors.ErrAnalysisFailed)

			payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
			require.NoError(t, err)
			assert.Equal(t, 1, payment.CreditsRemaining)

			count, err := env.repos.Analysis.CountByPayment(ctx, payment.ID)
			require.NoError(t, err)
			assert.Zero(t, count)

			env.expectVerdict(model.RecommendationSimpleScript)
			resp, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
			require.NoError(t, err)
			assert.Equal(t, 0, resp.CreditsRemaining)
		})
	}
}

func TestAnalysisService_DescriptionLength(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	req := env.paid(t, env.user)

	_, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(49)})
	assert.ErrorIs(t, err, domainErrors.ErrDescriptionTooShort)

	_, err = env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(2001)})
	assert.ErrorIs(t, err, domainErrors.ErrDescriptionTooLong)

	_, err = env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: "   "})
	assert.ErrorIs(t, err, domainErrors.ErrDescriptionTooShort)

	env.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnalysisService_Ownership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.expectVerdict(model.RecommendationSimpleScript)
	req := env.paid(t, env.user)
	other := env.newUser(t, "other@example.com")

	_, err := env.analyses.Analyze(ctx, other, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)

	resp, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
	require.NoError(t, err)

	_, err = env.analyses.GetAnalysis(ctx, other, resp.Analysis.ID)
	assert.ErrorIs(t, err, domainErrors.ErrAnalysisNotFound)

	_, err = env.analyses.GetAnalysis(ctx, env.user, "not-a-uuid")
	assert.ErrorIs(t, err, domainErrors.ErrAnalysisNotFound)

	list, err := env.analyses.ListAnalyses(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list.Analyses)
}

func TestReportService_Render(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.expectVerdict(model.RecommendationAIAgent)
	req := env.paid(t, env.user)

	resp, err := env.analyses.Analyze(ctx, env.user, &dto.AnalyzeRequest{PaymentID: req.PaymentID, Description: description(60)})
	require.NoError(t, err)
	id := resp.Analysis.ID

	t.Run("markdown", func(t *testing.T) {
		report, err := env.reports.Render(ctx, env.user, id, "")
		require.NoError(t, err)
		assert.Equal(t, "analysis-"+id+".md", report.Filename)
		assert.Contains(t, string(report.Body), "## Recommendation: AI Agent")
		assert.Contains(t, string(report.Body), "**Confidence:** 85/100")
		assert.Contains(t, string(report.Body), "| Cost | $50/month |")
	})

	t.Run("pdf", func(t *testing.T) {
		report, err := env.reports.Render(ctx, env.user, id, usecase.ReportPDF)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", report.ContentType)
		assert.True(t, bytes.HasPrefix(report.Body, []byte("%PDF-")))
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := env.reports.Render(ctx, env.user, id, "docx")
		assert.Error(t, err)
	})

	t.Run("other user", func(t *testing.T) {
		other := env.newUser(t, "other@example.com")
		_, err := env.reports.Render(ctx, other, id, usecase.ReportMarkdown)
		assert.ErrorIs(t, err, domainErrors.ErrAnalysisNotFound)
	})
}

func TestReservationSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	req := env.paid(t, env.user)

	payment, err := env.repos.Payment.FindByOrderID(ctx, req.OrderID)
	require.NoError(t, err)
	_, err = env.repos.Payment.Reserve(ctx, payment.ID, env.user.ID, time.Minute)
	require.NoError(t, err)

	sweeper := usecase.NewReservationSweeper(env.repos.Payment, env.metrics, zap.NewNop())

	n, err := sweeper.Sweep(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = sweeper.Sweep(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ReservationsExpired))
}
