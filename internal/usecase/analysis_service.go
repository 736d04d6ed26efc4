package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/cache"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/llm"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/metrics"
)

const analysisListLimit = 50

// AnalysisServiceConfig bounds descriptions and the LLM call.
type AnalysisServiceConfig struct {
	MinWords       int
	MaxWords       int
	ReservationTTL time.Duration
	LLMTimeout     time.Duration
}

// AnalysisService spends credits on LLM analyses. A credit is consumed only when
// an analysis is persisted.
type AnalysisService struct {
	cfg      AnalysisServiceConfig
	payments repository.PaymentRepository
	analyses repository.AnalysisRepository
	llm      provider.CompletionProvider
	parser   *llm.AnalysisParser
	credits  cache.CreditCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewAnalysisService(
	cfg AnalysisServiceConfig,
	payments repository.PaymentRepository,
	analyses repository.AnalysisRepository,
	completion provider.CompletionProvider,
	credits cache.CreditCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AnalysisService {
	if cfg.MinWords <= 0 {
		cfg.MinWords = 50
	}
	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = 2 * time.Minute
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 30 * time.Second
	}
	return &AnalysisService{
		cfg:      cfg,
		payments: payments,
		analyses: analyses,
		llm:      completion,
		parser:   llm.NewAnalysisParser(),
		credits:  credits,
		metrics:  m,
		logger:   logger,
	}
}

// Analyze reserves one credit of the payment, asks the LLM for a verdict and
// commits the credit together with the stored analysis. Any LLM failure releases
// the reservation and returns ErrAnalysisFailed.
func (s *AnalysisService) Analyze(ctx context.Context, user *model.User, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	description := strings.TrimSpace(req.Description)
	words := len(strings.Fields(description))
	if words < s.cfg.MinWords {
		s.metrics.Analyses.WithLabelValues("rejected").Inc()
		return nil, domainErrors.ErrDescriptionTooShort.WithDetails(
			fmt.Sprintf("description has %d words, at least %d are required", words, s.cfg.MinWords))
	}
	if s.cfg.MaxWords > 0 && words > s.cfg.MaxWords {
		s.metrics.Analyses.WithLabelValues("rejected").Inc()
		return nil, domainErrors.ErrDescriptionTooLong.WithDetails(
			fmt.Sprintf("description has %d words, at most %d are allowed", words, s.cfg.MaxWords))
	}

	payment, err := resolvePayment(ctx, s.payments, user.ID, req.PaymentID)
	if err != nil {
		return nil, err
	}

	reservation, err := s.payments.Reserve(ctx, payment.ID, user.ID, s.cfg.ReservationTTL)
	if err != nil {
		s.metrics.Analyses.WithLabelValues("no_credit").Inc()
		return nil, err
	}

	log := s.logger.With(
		zap.String("user_id", user.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("reservation_id", reservation.ID.String()))
	log.Info("Analysis started", zap.Int("words", words))

	// The LLM call and the commit outlive a disconnected client.
	work := context.WithoutCancel(ctx)
	started := time.Now()

	result, err := s.complete(work, description)
	s.metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		log.Error("Analysis failed, releasing credit", zap.Error(err))
		s.release(work, reservation.ID, log)
		s.metrics.Analyses.WithLabelValues("failed").Inc()
		return nil, domainErrors.ErrAnalysisFailed
	}

	analysis := &model.Analysis{
		Description: description,
		Result:      datatypes.NewJSONType(*result),
		Model:       s.llm.Model(),
	}
	updated, err := s.payments.CommitReservation(work, reservation.ID, analysis)
	if err != nil {
		log.Error("Failed to commit analysis", zap.Error(err))
		s.release(work, reservation.ID, log)
		s.metrics.Analyses.WithLabelValues("failed").Inc()
		if errors.Is(err, domainErrors.ErrNoCreditsRemaining) || errors.Is(err, domainErrors.ErrPaymentRefunded) {
			return nil, err
		}
		return nil, domainErrors.ErrAnalysisFailed
	}

	s.credits.Invalidate(work, user.ID)
	s.metrics.Analyses.WithLabelValues("completed").Inc()
	log.Info("Analysis completed",
		zap.String("analysis_id", analysis.ID.String()),
		zap.String("recommendation", result.Recommendation),
		zap.Int("credits_remaining", updated.CreditsRemaining))

	return &dto.AnalyzeResponse{
		Analysis:         dto.NewAnalysisDTO(analysis),
		CreditsRemaining: updated.CreditsRemaining,
	}, nil
}

func (s *AnalysisService) complete(ctx context.Context, description string) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	defer cancel()

	output, err := s.llm.Complete(ctx, llm.BuildAnalysisPrompt(description))
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(output)
}

func (s *AnalysisService) release(ctx context.Context, reservationID uuid.UUID, log *zap.Logger) {
	if err := s.payments.ReleaseReservation(ctx, reservationID); err != nil {
		// The sweeper expires the lease if this fails.
		log.Error("Failed to release reservation", zap.Error(err))
	}
}

// GetAnalysis returns one of the caller's analyses.
func (s *AnalysisService) GetAnalysis(ctx context.Context, user *model.User, id string) (*dto.AnalysisDTO, error) {
	analysis, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewAnalysisDTO(analysis)
	return &out, nil
}

func (s *AnalysisService) findOwned(ctx context.Context, user *model.User, id string) (*model.Analysis, error) {
	analysisID, err := uuid.Parse(id)
	if err != nil {
		return nil, domainErrors.ErrAnalysisNotFound
	}
	analysis, err := s.analyses.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis.UserID != user.ID {
		return nil, domainErrors.ErrAnalysisNotFound
	}
	return analysis, nil
}

// ListAnalyses returns the caller's most recent analyses.
func (s *AnalysisService) ListAnalyses(ctx context.Context, user *model.User) (*dto.AnalysisListResponse, error) {
	analyses, err := s.analyses.ListByUser(ctx, user.ID, analysisListLimit)
	if err != nil {
		return nil, err
	}

	out := &dto.AnalysisListResponse{Analyses: make([]dto.AnalysisDTO, 0, len(analyses))}
	for _, a := range analyses {
		out.Analyses = append(out.Analyses, dto.NewAnalysisDTO(a))
	}
	return out, nil
}
