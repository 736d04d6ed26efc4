package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// AnalysisRepository reads persisted analyses. Analyses are written only through
// PaymentRepository.CommitReservation.
type AnalysisRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Analysis, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Analysis, error)
	CountByPayment(ctx context.Context, paymentID uuid.UUID) (int64, error)
}
