// Package ratelimit builds per-IP echo rate limiters for each route family.
package ratelimit

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	apperrors "github.com/Ponna-create/ai-agent-vs-script-validator/pkg/errors"
)

var errTooManyRequests = apperrors.NewAppError(apperrors.ErrRateLimited, "too many requests, please try again later", nil)

// Limiters holds one middleware per route family. Disabled limits pass through.
type Limiters struct {
	API    echo.MiddlewareFunc
	Login  echo.MiddlewareFunc
	Verify echo.MiddlewareFunc
	Refund echo.MiddlewareFunc
}

// New builds the limiters described by cfg.
func New(cfg config.RateLimitConfig, logger *zap.Logger) *Limiters {
	return &Limiters{
		API:    limiter("api", cfg.Enabled, cfg.API, logger),
		Login:  limiter("login", cfg.Enabled, cfg.Login, logger),
		Verify: limiter("verify", cfg.Enabled, cfg.Verify, logger),
		Refund: limiter("refund", cfg.Enabled, cfg.Refund, logger),
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}

// limiter allows lc.Requests per lc.Window for one client IP. The token bucket
// starts full, so a client gets the whole budget up front and then refills
// at Requests/Window.
func limiter(name string, enabled bool, lc config.LimitConfig, logger *zap.Logger) echo.MiddlewareFunc {
	if !enabled || lc.Requests <= 0 || lc.Window <= 0 {
		return passThrough
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(lc.Requests) / lc.Window.Seconds()),
		Burst:     lc.Requests,
		ExpiresIn: maxDuration(lc.Window, 3*time.Minute),
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewAppError(apperrors.ErrUnauthorized, "access denied", err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn("Rate limit exceeded",
				zap.String("limiter", name),
				zap.String("ip", identifier),
				zap.String("path", c.Request().URL.Path))
			return errTooManyRequests
		},
	})
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
