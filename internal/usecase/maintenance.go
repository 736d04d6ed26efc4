package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/metrics"
)

// ReservationSweeper marks credit reservations whose lease ran out as expired.
type ReservationSweeper struct {
	payments repository.PaymentRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewReservationSweeper(payments repository.PaymentRepository, m *metrics.Metrics, logger *zap.Logger) *ReservationSweeper {
	return &ReservationSweeper{payments: payments, metrics: m, logger: logger}
}

// Sweep expires every lease that ended before now.
func (s *ReservationSweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.payments.ExpireReservations(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.ReservationsExpired.Add(float64(n))
		s.logger.Info("Expired credit reservations", zap.Int64("count", n))
	}
	return n, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *ReservationSweeper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Reservation sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reservation sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx, time.Now()); err != nil {
				s.logger.Error("Reservation sweep failed", zap.Error(err))
			}
		}
	}
}
