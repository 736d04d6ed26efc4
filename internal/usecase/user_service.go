package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/dto"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/cache"
)

// profileCreditScan bounds how many payments are summed for the profile.
const profileCreditScan = 100

// dummyHash is compared against when the email is unknown so both paths cost a bcrypt round.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// UserService handles accounts.
type UserService struct {
	users       repository.UserRepository
	payments    repository.PaymentRepository
	credentials *CredentialService
	credits     cache.CreditCache
	logger      *zap.Logger
}

func NewUserService(
	users repository.UserRepository,
	payments repository.PaymentRepository,
	credentials *CredentialService,
	credits cache.CreditCache,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:       users,
		payments:    payments,
		credentials: credentials,
		credits:     credits,
		logger:      logger,
	}
}

// Register creates an account and signs the caller in.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.authResponse(user)
}

// Login checks the password and issues a token.
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("Login rejected", zap.String("user_id", user.ID.String()))
		return nil, domainErrors.ErrInvalidCredentials
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.authResponse(user)
}

func (s *UserService) authResponse(user *model.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.credentials.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserDTO(user),
	}, nil
}

// Profile returns the user and their spendable credits. The total is served
// from the credit cache when present.
func (s *UserService) Profile(ctx context.Context, user *model.User) (*dto.ProfileResponse, error) {
	credits, ok := s.credits.Get(ctx, user.ID)
	if !ok {
		payments, err := s.payments.ListByUser(ctx, user.ID, profileCreditScan)
		if err != nil {
			return nil, err
		}
		credits = 0
		for _, p := range payments {
			if p.Status == model.PaymentStatusCompleted && p.RefundStatus != model.RefundStatusRequested {
				credits += p.CreditsRemaining
			}
		}
		s.credits.Set(ctx, user.ID, credits)
	}

	return &dto.ProfileResponse{
		User:             dto.NewUserDTO(user),
		CreditsRemaining: credits,
	}, nil
}
