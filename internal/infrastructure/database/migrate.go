package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// Migrate creates tables and, on postgres, the constraints that back the
// ledger invariants.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running GORM auto-migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Payment{},
		&model.Analysis{},
		&model.CreditReservation{},
		&model.WebhookEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if db.Dialector.Name() != "postgres" {
		logger.Info("Skipping postgres constraints", zap.String("dialect", db.Dialector.Name()))
		return nil
	}

	logger.Info("Creating ledger constraints...")
	if err := createConstraints(db); err != nil {
		logger.Error("Failed to create constraints", zap.Error(err))
		return err
	}

	logger.Info("Creating custom indexes...")
	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

var paymentConstraints = []struct {
	name string
	expr string
}{
	{"chk_payments_status", "status IN ('pending', 'completed', 'failed', 'refunded')"},
	{"chk_payments_credits", "credits_remaining >= 0 AND credits_remaining <= credits_granted"},
	{"chk_payments_gateway_id", "(razorpay_payment_id IS NOT NULL) = (status IN ('completed', 'refunded'))"},
	{"chk_payments_amount", "amount > 0"},
}

func createConstraints(db *gorm.DB) error {
	for _, c := range paymentConstraints {
		if db.Migrator().HasConstraint(&model.Payment{}, c.name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE payments ADD CONSTRAINT %s CHECK (%s)", c.name, c.expr)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", c.name, err)
		}
	}
	return nil
}

func createCustomIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_credit_reservations_live ON credit_reservations (payment_id, expires_at) WHERE status = 'active'`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_retry ON webhook_events (next_retry_at) WHERE status = 'failed'`).Error; err != nil {
		return err
	}

	return nil
}
