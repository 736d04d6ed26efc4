package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/repository"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// Claims carried by issued tokens.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// CredentialService issues and verifies HS256 bearer tokens.
type CredentialService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	users  repository.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewCredentialService(cfg config.JWTConfig, users repository.UserRepository, logger *zap.Logger) *CredentialService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &CredentialService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// IssueToken signs a token for user.
func (s *CredentialService) IssueToken(user *model.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		s.logger.Error("JWT secret is not configured")
		return "", time.Time{}, domainErrors.ErrMisconfigured
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify resolves the user behind an Authorization header value or raw token.
// Every rejection is ErrUnauthenticated; a missing secret is ErrMisconfigured.
func (s *CredentialService) Verify(ctx context.Context, bearer string) (*model.User, error) {
	if len(s.secret) == 0 {
		s.logger.Error("JWT secret is not configured, rejecting request")
		return nil, domainErrors.ErrMisconfigured
	}

	token := strings.TrimSpace(bearer)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, domainErrors.ErrUnauthenticated
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		s.logger.Debug("JWT validation failed", zap.Error(err))
		return nil, domainErrors.ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainErrors.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, domainErrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}
