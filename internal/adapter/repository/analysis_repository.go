package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	domainRepo "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
)

type analysisRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAnalysisRepository creates a new analysis repository instance
func NewAnalysisRepository(db *gorm.DB, logger *zap.Logger) domainRepo.AnalysisRepository {
	return &analysisRepository{
		db:     db,
		logger: logger,
	}
}

func (r *analysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Analysis, error) {
	var analysis model.Analysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrAnalysisNotFound
		}
		r.logger.Error("Failed to get analysis",
			zap.String("analysis_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return &analysis, nil
}

func (r *analysisRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Analysis, error) {
	var analyses []*model.Analysis

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&analyses).Error; err != nil {
		r.logger.Error("Failed to list analyses",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return analyses, nil
}

func (r *analysisRepository) CountByPayment(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Analysis{}).Where("payment_id = ?", paymentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}
