package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/coursetrack-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursetrack-server-go/internal/http/routes"
	"github.com/mo-amir99/coursetrack-server-go/pkg/cache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/config"
	"github.com/mo-amir99/coursetrack-server-go/pkg/database"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
	"github.com/mo-amir99/coursetrack-server-go/pkg/metrics"
	"github.com/mo-amir99/coursetrack-server-go/pkg/middleware"
	"github.com/mo-amir99/coursetrack-server-go/pkg/request"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	slog.SetDefault(appLogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.ConnectWithRetry(ctx, cfg.Database, appLogger, 5, time.Second)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if err := bootstrap.ApplyDatabaseMigrations(ctx, db, cfg, appLogger); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cacheClient, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		appLogger.Error("cache connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cacheClient.Close()

	if cfg.Redis.Addr == "" {
		appLogger.Info("redis not configured, using in-process cache")
	}

	if err := request.RegisterValidators(); err != nil {
		appLogger.Error("validator registration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := gin.New()

	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Compression(middleware.BestSpeed, "/metrics")) // promhttp negotiates its own encoding
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.NoStore("/api"))
	router.Use(middleware.RequestSizeLimit(1 << 20)) // 1MB
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)
	router.Use(rateLimiter.Middleware())

	routes.Register(router, cfg, db, cacheClient, appLogger)

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
