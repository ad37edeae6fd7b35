package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketcore/api/routes"
	"ticketcore/internal/payments"
	"ticketcore/internal/seats"
	"ticketcore/internal/shared/config"
	"ticketcore/internal/shared/database"
	"ticketcore/internal/shared/middleware"
	"ticketcore/pkg/kafka"
	"ticketcore/pkg/logger"
	"ticketcore/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		appLogger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Kafka producer for payment requests and booking outcomes
	var publisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewSyncProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers))
		if err != nil {
			appLogger.Error("failed to create kafka producer", slog.Any("error", err))
			os.Exit(1)
		}
		publisher = kafka.NewPublisher(producer, "ticketcore-"+cfg.Ledger.InstanceID)
		defer publisher.Close()
	} else {
		appLogger.Warn("kafka disabled, payment events are accepted through the webhook only")
	}

	appRouter, err := routes.NewRouter(cfg, db, publisher)
	if err != nil {
		appLogger.Error("failed to wire application", slog.Any("error", err))
		os.Exit(1)
	}

	// A booking pending for longer than a hold can live has lost its process
	recoverCtx, recoverCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := appRouter.Bookings.RecoverPending(recoverCtx, cfg.Ledger.HoldTTL); err != nil {
		appLogger.Error("failed to recover pending bookings", slog.Any("error", err))
	} else if n > 0 {
		appLogger.Info("pending bookings recovered", slog.Int("count", n))
	}
	recoverCancel()

	jobs := seats.NewJobProcessor(appRouter.Ledger, &seats.JobConfig{SweepInterval: cfg.Ledger.SweepInterval})
	jobs.Start(context.Background())

	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		consumerConfig := kafka.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.PaymentEventGroupID(), cfg.Kafka.PaymentEventTopic)
		consumer, err = kafka.NewConsumer(consumerConfig, payments.NewEventHandler(appRouter.Bookings))
		if err != nil {
			appLogger.Error("failed to create payment event consumer", slog.Any("error", err))
			os.Exit(1)
		}
		consumer.Start(context.Background(), cfg.Kafka.ConsumerWorkers)
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:                 cfg.RateLimit.Enabled,
			WindowDuration:          cfg.RateLimit.WindowDuration,
			DefaultRequests:         cfg.RateLimit.DefaultRequests,
			PublicRequests:          cfg.RateLimit.PublicRequests,
			BookingRequests:         cfg.RateLimit.BookingRequests,
			BookingCriticalRequests: cfg.RateLimit.BookingCriticalRequests,
			AdminRequests:           cfg.RateLimit.AdminRequests,
			HealthRequests:          cfg.RateLimit.HealthRequests,
			WhitelistedIPs:          cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        setupRouter(appRouter, rateLimiter),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.Bool("redis", db.Redis != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			appLogger.Error("Error stopping payment event consumer", slog.Any("error", err))
		}
	}
	if err := appRouter.Bookings.Shutdown(ctx); err != nil {
		appLogger.Error("Booking transactions did not finish", slog.Any("error", err))
	}
	jobs.Stop()
	appRouter.Ledger.Close(ctx)

	appLogger.Info("Server exited gracefully")
}

func setupRouter(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(middleware.RequestID(), RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Holder-Token", "X-Webhook-Secret", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		reqLogger := l.WithRequestID(middleware.GetRequestID(c))
		if len(c.Params) > 0 {
			fields := make(map[string]interface{}, len(c.Params))
			for _, p := range c.Params {
				fields[p.Key] = p.Value
			}
			reqLogger = reqLogger.WithFields(fields)
		}
		reqLogger.LogHTTPRequest(c, time.Since(start))
	}
}
