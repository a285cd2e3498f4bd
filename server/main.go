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

	"clubtrips/api/routes"
	"clubtrips/internal/notifications"
	"clubtrips/internal/shared/config"
	"clubtrips/internal/shared/database"
	"clubtrips/pkg/logger"
	"clubtrips/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title                       Club Trips Booking API
// @version                     1.0
// @description                 Event availability, booking lifecycle and administration.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	if envErr != nil {
		if cfg.IsProduction() || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	appLogger.Info("Starting booking service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.InitDB(initCtx, cfg, appLogger)
	initCancel()
	if err != nil {
		appLogger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	publisher, err := notifications.NewPublisher(cfg.Kafka, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize booking event publisher", slog.Any("error", err))
		appLogger.Info("Continuing without booking events")
		publisher = notifications.NoopPublisher{}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing booking event publisher", slog.Any("error", err))
		}
	}()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, cfg.RateLimit)
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
			slog.Int("booking_critical_requests", cfg.RateLimit.BookingCriticalRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router, err := setupRouter(cfg, db, publisher, rateLimiter, appLogger)
	if err != nil {
		appLogger.Error("failed to set up routes", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) (*gin.Engine, error) {
	engine := gin.New()

	// Logs requests and recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
	}

	appRouter := routes.NewRouter(cfg, db, publisher, appLogger)
	if err := appRouter.SetupRoutes(engine); err != nil {
		return nil, err
	}
	return engine, nil
}

const requestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware tags each request with an id, echoing the caller's
// X-Request-ID when present, and logs it once the handler chain is done.
func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()
		l.WithRequestID(requestID).LogHTTPRequest(c, time.Since(start))
	}
}
