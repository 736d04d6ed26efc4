package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/errors"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// contextKey is used for storing user in context
type contextKey string

const (
	userContextKey contextKey = "authenticated_user"
)

// TokenVerifier resolves the user behind a bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, bearer string) (*model.User, error)
}

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Verifier  TokenVerifier
	Logger    *zap.Logger
	SkipPaths []string // Paths to skip JWT validation
}

// JWTMiddleware authenticates the request and stores the user in its context.
// Every failure is rendered as the same 401.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, skipPath := range config.SkipPaths {
				if strings.HasPrefix(path, skipPath) {
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				config.Logger.Debug("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return domainErrors.ErrUnauthenticated
			}

			user, err := config.Verifier.Verify(c.Request().Context(), authHeader)
			if err != nil {
				config.Logger.Info("Authentication rejected",
					zap.String("path", path),
					zap.String("ip", c.RealIP()),
					zap.Error(err))
				return err
			}

			ctx := context.WithValue(c.Request().Context(), userContextKey, user)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", user.ID.String())

			return next(c)
		}
	}
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(c echo.Context) (*model.User, error) {
	user, ok := c.Request().Context().Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, domainErrors.ErrUnauthenticated
	}
	return user, nil
}
