package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	domainProvider "github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/cache"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/database"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/events"
	httpServer "github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/http"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/llm"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/mail"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/metrics"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/usecase"
	"github.com/Ponna-create/ai-agent-vs-script-validator/pkg/logger"
	"github.com/Ponna-create/ai-agent-vs-script-validator/pkg/messaging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.DefaultZapLogger().Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		logger.DefaultZapLogger().Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer zapLogger.Sync()

	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	gateway, err := provider.NewFactory(cfg, zapLogger).GetGateway()
	if err != nil {
		zapLogger.Fatal("Failed to create payment gateway", zap.Error(err))
	}
	completion, err := llm.NewCompletionProvider(cfg.LLM, cfg.IsProduction(), zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create LLM provider", zap.Error(err))
	}

	var delivery domainProvider.Notifier = mail.NewLogNotifier(zapLogger)
	if cfg.Email.Enabled {
		delivery = mail.NewEmailNotifier(cfg.Email, zapLogger)
	}

	// Redis is optional: without it credits are always read from the ledger and
	// notifications are sent from a goroutine.
	var (
		credits    = cache.NewNoopCreditCache()
		notifier   domainProvider.Notifier
		subscriber *events.Subscriber
		redisConn  *redis.Client
	)
	if cfg.Redis.Enabled {
		redisConn, err = messaging.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisConn.Close()

		bus := messaging.NewRedisClient(redisConn)
		credits = cache.NewRedisCreditCache(redisConn, cfg.Redis.CreditCacheTTL, zapLogger)
		notifier = events.NewPublishingNotifier(bus, cfg.Redis.EventChannel, zapLogger)
		subscriber = events.NewSubscriber(bus, cfg.Redis.EventChannel, delivery, zapLogger)
	} else {
		notifier = events.NewAsyncNotifier(delivery, zapLogger)
	}

	// Use cases
	credentials := usecase.NewCredentialService(cfg.JWT, repos.User, zapLogger)
	users := usecase.NewUserService(repos.User, repos.Payment, credentials, credits, zapLogger)
	payments := usecase.NewPaymentService(usecase.PaymentServiceConfig{
		Product:      cfg.Product,
		KeySecret:    cfg.Razorpay.KeySecret,
		RefundWindow: cfg.Analysis.RefundWindow,
	}, repos.Payment, repos.User, gateway, notifier, credits, m, zapLogger)
	analyses := usecase.NewAnalysisService(usecase.AnalysisServiceConfig{
		MinWords:       cfg.Analysis.MinWords,
		MaxWords:       cfg.Analysis.MaxWords,
		ReservationTTL: cfg.Analysis.ReservationTTL,
		LLMTimeout:     cfg.LLM.Timeout,
	}, repos.Payment, repos.Analysis, completion, credits, m, zapLogger)
	webhooks := usecase.NewWebhookService(usecase.WebhookServiceConfig{
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		Credits:       cfg.Product.Credits,
		MaxAttempts:   cfg.Worker.WebhookMaxAttempts,
		BatchSize:     cfg.Worker.WebhookBatchSize,
	}, repos.Payment, repos.Webhook, repos.User, notifier, credits, m, zapLogger)
	sweeper := usecase.NewReservationSweeper(repos.Payment, m, zapLogger)

	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Services{
		Users:       users,
		Credentials: credentials,
		Payments:    payments,
		Analyses:    analyses,
		Reports:     usecase.NewReportService(analyses, zapLogger),
		Webhooks:    webhooks,
	}, registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return webhooks.RunRetryWorker(gctx, cfg.Worker.WebhookRetryInterval)
	})
	g.Go(func() error {
		return sweeper.Run(gctx, cfg.Worker.SweepInterval)
	})
	if subscriber != nil {
		g.Go(func() error {
			return subscriber.Run(gctx)
		})
	}

	zapLogger.Info("Service started",
		zap.String("environment", cfg.Service.Environment),
		zap.String("gateway", gateway.Name()),
		zap.String("llm_model", completion.Model()))

	if err := g.Wait(); err != nil {
		zapLogger.Error("Service stopped with error", zap.Error(err))
		return
	}
	zapLogger.Info("Service shut down successfully")
}
