package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizgrid/backend/internal/application/audit"
	"github.com/bizgrid/backend/internal/application/identityapp"
	"github.com/bizgrid/backend/internal/infrastructure/auth"
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/registry"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"github.com/bizgrid/backend/internal/infrastructure/tenantpool"
	"github.com/bizgrid/backend/internal/interfaces/http/dto"
	"github.com/bizgrid/backend/internal/interfaces/http/handler"
	"github.com/bizgrid/backend/internal/interfaces/http/middleware"
	"github.com/bizgrid/backend/internal/interfaces/http/router"
	"github.com/bizgrid/backend/internal/interfaces/http/tenantctx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting bizgrid backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Control-plane database: tenants and users
	controlDB, err := persistence.OpenControl(&cfg.ControlDB)
	if err != nil {
		log.Fatal("Failed to connect to control database", zap.Error(err))
	}
	defer func() {
		if err := controlDB.Close(); err != nil {
			log.Error("Error closing control database", zap.Error(err))
		}
	}()
	log.Info("Control database connected")

	// Tenant routing: registry over the control plane, pool in front of
	// the per-tenant partitions
	tenantRegistry := registry.NewGormRegistry(controlDB.DB, registry.WithLogger(log))
	pool := tenantpool.New(
		tenantRegistry,
		tenantpool.DefaultBuilder(cfg.Pool, cfg.Telemetry.DBTraceEnabled),
		tenantpool.WithIdleTTL(cfg.Pool.IdleTTL),
		tenantpool.WithSweepInterval(cfg.Pool.SweepInterval),
		tenantpool.WithPoolLogger(log),
	)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Error("Error closing tenant pool", zap.Error(err))
		}
	}()

	tokenService := auth.NewTokenService(cfg.JWT)

	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		defer func() {
			_ = redisBlacklist.Close()
		}()
		blacklist = redisBlacklist
	}

	orch := tenantctx.New(tokenService, blacklist, pool, log)
	recorder := audit.NewRecorder(log)

	userRepo := persistence.NewGormPlatformUserRepository(controlDB.DB)
	authService := identityapp.NewAuthService(userRepo, tokenService, blacklist, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := dto.RegisterValidations(); err != nil {
		log.Fatal("Failed to register binding validations", zap.Error(err))
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies configuration", zap.Error(err))
		}
	}
	engine.Use(
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.App.Name,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(log),
		gin.Recovery(),
	)
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))
	if cfg.HTTP.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	router.NewRouter(engine).
		Register(handler.NewHealthHandler(controlDB, pool)).
		Register(handler.NewAuthHandler(authService, log)).
		Register(handler.NewCompanyHandler(orch, recorder)).
		Register(handler.NewEmployeeHandler(orch, recorder)).
		Register(handler.NewInvoiceHandler(orch, recorder)).
		Register(handler.NewAuditHandler(orch)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
