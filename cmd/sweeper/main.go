package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/config"
	"github.com/feral-file/ff-agent-registry/internal/health"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/messaging"
	"github.com/feral-file/ff-agent-registry/internal/providers/cardano"
	"github.com/feral-file/ff-agent-registry/internal/providers/jetstream"
	"github.com/feral-file/ff-agent-registry/internal/ratelimit"
	"github.com/feral-file/ff-agent-registry/internal/registry"
	"github.com/feral-file/ff-agent-registry/internal/store"
	"github.com/feral-file/ff-agent-registry/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "registry-sweeper",
		Environment:     cfg.Environment,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting registry sweeper")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)
	dataStore := store.NewPGStore(db)

	if err := registry.SeedSources(ctx, dataStore, cfg.Sources); err != nil {
		logger.FatalCtx(ctx, "Failed to seed registry sources", zap.Error(err))
	}

	clock := adapter.NewClock()

	ledgerHTTP := adapter.NewHTTPClientWithRetry(cfg.Cardano.HTTPTimeout, adapter.RetryPolicy{
		InitialInterval: cfg.Cardano.RetryInitial,
		MaxInterval:     cfg.Cardano.RetryMaxInterval,
		MaxElapsedTime:  cfg.Cardano.RetryMaxElapsed,
	})
	var redisClient adapter.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient = adapter.NewRedisClient(adapter.RedisOptions{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
		})
	}
	ledgerLimiter, err := ratelimit.NewProxy(ratelimit.Config{
		RequestsPerSecond:   cfg.Cardano.RateLimit.RequestsPerSecond,
		Burst:               cfg.Cardano.RateLimit.Burst,
		MaxQueueTime:        cfg.Cardano.RateLimit.MaxQueueTime,
		EnableLocalFallback: true,
	}, redisClient, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create ledger rate limiter", zap.Error(err))
	}
	defer func() { _ = ledgerLimiter.Close() }()
	clients := cardano.NewClientFactory(cfg.Cardano.BaseURLs(), ledgerHTTP, ledgerLimiter)

	prober := health.NewProber(adapter.NewHTTPClient(cfg.Health.Timeout), dataStore, clock, health.Config{
		Path:        cfg.Health.Path,
		CacheTTL:    cfg.Health.CacheTTL,
		Concurrency: cfg.Health.Concurrency,
	})

	publisher := messaging.NewNoopPublisher()
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: "registry-sweeper",
		}, adapter.NewNatsJetStream())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
	} else {
		logger.WarnCtx(ctx, "NATS url not configured, entry events are discarded")
	}
	defer publisher.Close()

	reconciler := registry.NewReconciler(dataStore, prober, publisher, clock, cfg.Sync.AssetConcurrency)
	syncer := registry.NewSyncer(dataStore, clients, reconciler,
		registry.NewGuard(cfg.Sync.WaitTimeout, cfg.Sync.RunTimeout),
		clock,
		registry.SyncConfig{
			PageSize:          cfg.Sync.PageSize,
			SourceConcurrency: cfg.Sync.SourceConcurrency,
			ResumeMissPolicy:  cfg.Sync.ResumeMissPolicy,
			RecheckAfterWait:  cfg.Sync.RecheckAfterWait,
		},
	)
	deregistrar := registry.NewDeregistrar(dataStore, clients, publisher,
		registry.NewGuard(cfg.Sweep.WaitTimeout, cfg.Sweep.RunTimeout),
		clock,
		cfg.Sweep.PageSize,
	)

	maintenance := sweeper.NewMaintenanceSweeper(sweeper.MaintenanceSweeperConfig{
		Interval:   cfg.Maintenance.Interval,
		SyncMaxAge: cfg.Maintenance.SyncMaxAge,
	}, deregistrar, syncer, clock)

	logger.InfoCtx(ctx, "Initialized maintenance sweeper",
		zap.Duration("interval", cfg.Maintenance.Interval),
		zap.Duration("sync_max_age", cfg.Maintenance.SyncMaxAge),
		zap.Int("sweep_page_size", cfg.Sweep.PageSize),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := maintenance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := maintenance.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
