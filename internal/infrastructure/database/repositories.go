package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/adapter/repository"
	domainRepo "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
)

// Repositories groups the gorm-backed repositories.
type Repositories struct {
	User     domainRepo.UserRepository
	Payment  domainRepo.PaymentRepository
	Analysis domainRepo.AnalysisRepository
	Webhook  domainRepo.WebhookRepository
}

// NewRepositories creates all repositories on db.
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:     repository.NewUserRepository(db, logger),
		Payment:  repository.NewPaymentRepository(db, logger),
		Analysis: repository.NewAnalysisRepository(db, logger),
		Webhook:  repository.NewWebhookRepository(db, logger),
	}
}
