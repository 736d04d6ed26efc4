package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	handlers "github.com/Ponna-create/ai-agent-vs-script-validator/internal/adapter/handler/http"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/middleware/auth"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/middleware/ratelimit"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
	"github.com/Ponna-create/ai-agent-vs-script-validator/pkg/logger"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Users       *usecase.UserService
	Credentials *usecase.CredentialService
	Payments    *usecase.PaymentService
	Analyses    *usecase.AnalysisService
	Reports     *usecase.ReportService
	Webhooks    *usecase.WebhookService
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	services Services
	registry *prometheus.Registry
}

func NewServer(cfg *config.Config, log *zap.Logger, services Services, registry *prometheus.Registry) *Server {
	e := echo.New()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  config.ServiceName,
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	s := &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		services: services,
		registry: registry,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})
	s.echo.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))

	authHandler := handlers.NewAuthHandler(s.logger, s.services.Users)
	paymentHandler := handlers.NewPaymentHandler(s.logger, s.services.Payments)
	analysisHandler := handlers.NewAnalysisHandler(s.logger, s.services.Analyses, s.services.Reports)
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.services.Webhooks)

	limits := ratelimit.New(s.config.RateLimit, s.logger)
	jwtConfig := auth.JWTConfig{
		Verifier: s.services.Credentials,
		Logger:   s.logger,
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1", limits.API)

	// Public routes
	v1.POST("/auth/register", authHandler.Register, limits.Login)
	v1.POST("/auth/login", authHandler.Login, limits.Login)

	// Protected routes (require JWT authentication)
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))
	protected.GET("/users/me", authHandler.Me)

	payments := protected.Group("/payments")
	payments.POST("/orders", paymentHandler.CreateOrder)
	payments.POST("/verify", paymentHandler.VerifyPayment, limits.Verify)
	payments.GET("", paymentHandler.ListPayments)
	payments.GET("/:id/status", paymentHandler.GetPaymentStatus)
	payments.POST("/refund", paymentHandler.RequestRefund, limits.Refund)
	payments.GET("/refund/:paymentId", paymentHandler.GetRefundStatus)

	analyses := protected.Group("/analyses")
	analyses.POST("", analysisHandler.Analyze)
	analyses.GET("", analysisHandler.ListAnalyses)
	analyses.GET("/:id", analysisHandler.GetAnalysis)
	analyses.GET("/:id/report", analysisHandler.DownloadReport)

	// Webhook route (outside API versioning)
	s.echo.POST("/webhook/razorpay", webhookHandler.HandleWebhook)
}
