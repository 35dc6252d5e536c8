// Package main provides the main entry point for the dynamic pricing API
//
// @title Dynamic Pricing API
// @version 1.0
// @description Prices client quotes from pricing models and market conditions and tracks each quote through its lifecycle.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/dynamic-pricing/app/handlers"
	"github.com/amirphl/dynamic-pricing/app/middleware"
	"github.com/amirphl/dynamic-pricing/app/router"
	"github.com/amirphl/dynamic-pricing/app/scheduler"
	"github.com/amirphl/dynamic-pricing/app/services"
	businessflow "github.com/amirphl/dynamic-pricing/business_flow"
	"github.com/amirphl/dynamic-pricing/config"
	"github.com/amirphl/dynamic-pricing/logging"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	metrics   *fiber.App
	config    *config.ProductionConfig
	logger    *zap.Logger
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Init(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dynamic pricing service",
		zap.String("environment", cfg.Deployment.Environment),
		zap.String("version", cfg.Deployment.Version),
		zap.String("commit", cfg.Deployment.CommitHash))

	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	if app.metrics != nil {
		go func() {
			address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port)
			logger.Info("Metrics server starting", zap.String("address", address), zap.String("path", cfg.Metrics.Path))
			if err := app.metrics.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	<-sigChan
	logger.Info("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if app.metrics != nil {
		if err := app.metrics.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Error during metrics shutdown", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity. A nil
// client means the service runs single instance.
func initializeCache(cfg config.CacheConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", opt.Addr), zap.Int("db", cfg.RedisDB))
	return rc, nil
}

// initializeMarket picks the market conditions provider. The configured file (or
// the built-in factors) seeds the provider until an admin publishes a snapshot.
func initializeMarket(cfg config.PricingConfig, rc *redis.Client, prefix string, logger *zap.Logger) (services.MarketConditionsProvider, error) {
	initial, err := pricing.LoadMarketConditions(cfg.MarketFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Market conditions loaded",
		zap.String("snapshot_id", initial.ID()), zap.Int("factors", initial.Len()))

	if rc == nil {
		return services.NewStaticMarketProvider(initial), nil
	}
	return services.NewRedisMarketProvider(rc, prefix, initial, logger), nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig, logger *zap.Logger) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	registry, err := pricing.LoadRegistry(cfg.Pricing.ModelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing models: %w", err)
	}
	if _, err := registry.Get(cfg.Pricing.DefaultModel); err != nil {
		return nil, fmt.Errorf("default pricing model: %w", err)
	}
	logger.Info("Pricing models loaded", zap.Strings("models", registry.Names()))

	market, err := initializeMarket(cfg.Pricing, rc, cfg.Cache.RedisPrefix, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load market conditions: %w", err)
	}

	// Repositories
	adminRepo := repository.NewAdminRepository(db)
	clientRepo := repository.NewClientProfileRepository(db)
	quoteRepo := repository.NewPriceQuoteRepository(db)
	eventRepo := repository.NewQuoteStatusEventRepository(db)

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Business flows
	calculator := pricing.NewCalculator(registry)
	assembler := businessflow.NewQuoteAssembler(cfg.Pricing.QuoteValidity)
	quoteFlow := businessflow.NewQuoteFlow(clientRepo, quoteRepo, eventRepo, calculator, market, assembler, db, logger)
	adminFlow := businessflow.NewAdminAuthFlow(adminRepo, tokenService, logger)

	if cfg.Admin.Username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := adminFlow.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	h := router.Handlers{
		Admin:        handlers.NewAdminHandler(adminFlow, logger),
		Client:       handlers.NewClientHandler(businessflow.NewClientProfileFlow(clientRepo, logger), logger),
		PricingModel: handlers.NewPricingModelHandler(businessflow.NewPricingModelFlow(registry), logger),
		Market:       handlers.NewMarketHandler(businessflow.NewMarketFlow(market, logger), logger),
		Quote:        handlers.NewQuoteHandler(quoteFlow, logger),
		Report:       handlers.NewReportHandler(businessflow.NewPricingReportFlow(quoteRepo, logger), logger),
		ROI:          handlers.NewROIHandler(businessflow.NewROIFlow(), logger),
	}

	appRouter := router.NewFiberRouter(h, middleware.NewAuthMiddleware(tokenService), router.Options{
		AllowOrigins:    cfg.Security.AllowedOrigins,
		EnableDocs:      cfg.Server.EnableDocs,
		RateLimit:       cfg.Security.GlobalRateLimit,
		AuthRateLimit:   cfg.Security.AuthRateLimit,
		EnableAccessLog: cfg.Logging.EnableAccessLog,
		Version:         cfg.Deployment.Version,
		BodyLimit:       cfg.Server.BodyLimit,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ProxyHeader:     cfg.Server.ProxyHeader,
		Compress:        cfg.Server.EnableCompression,
	}, logger)

	if cfg.Scheduler.ExpirySweepEnabled {
		var locker scheduler.Locker
		if rc != nil {
			locker = scheduler.NewRedisLocker(rc, cfg.Cache.RedisPrefix)
		}
		sweeper := scheduler.NewQuoteExpirySweeper(quoteFlow, locker, cfg.Scheduler.ExpirySweepInterval, logger)
		stopFuncs = append([]func(){sweeper.Start(context.Background())}, stopFuncs...)
	}

	var metricsApp *fiber.App
	if cfg.Metrics.Enabled {
		metricsApp = fiber.New(fiber.Config{AppName: "Dynamic Pricing Metrics"})
		metricsApp.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	return &Application{
		router:    appRouter,
		metrics:   metricsApp,
		config:    cfg,
		logger:    logger,
		stopFuncs: stopFuncs,
	}, nil
}
