// Package main provides the API server entry point for the wallet ledger
// service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallet-ledger/internal/adapter"
	"github.com/wallet-ledger/internal/api"
	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/retry"
	"github.com/wallet-ledger/internal/service"
	"github.com/wallet-ledger/internal/storage"
	"github.com/wallet-ledger/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Init(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	logger := logging.Global()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("structured logging initialized")

	// Storage backends
	postgres, err := storage.NewPostgresDB(&cfg.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Postgres")
	}
	defer postgres.Close()

	if err := storage.RunMigrations(storage.MigrationURL(&cfg.Postgres), cfg.Postgres.MigrationsPath); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	redis, err := storage.NewRedisCache(&cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("storage connections established")

	// External collaborators
	ledgerClient := adapter.NewLedgerClient(&cfg.Provider)
	priceClient := adapter.NewPriceClient(&cfg.Price)

	// Repositories and caches
	walletRepo := storage.NewWalletRepository(postgres)
	txRepo := storage.NewTransactionRepository(postgres)
	periodRepo := storage.NewPeriodRepository(postgres)
	periodCache := storage.NewPeriodCache(redis, cfg.Sync.CacheTTL)
	priceCache := storage.NewPriceCache(redis, priceClient, cfg.Price.CacheTTL)

	// Sync machinery
	tracker := worker.NewTracker()
	accumulator := worker.NewAccumulator(ledgerClient, txRepo, cfg.Provider.PageSize, retry.DefaultPolicy())
	orchestrator := worker.NewOrchestrator(walletRepo, tracker, accumulator, cfg.Sync.Cooldown, logger)

	// Services
	balanceService := service.NewBalanceService(txRepo, priceCache, logger)
	periodService := service.NewPeriodService(periodRepo, periodCache, logger)
	dashboardService := service.NewDashboardService(walletRepo, ledgerClient, periodRepo, periodCache, logger)

	server := api.NewServer(&cfg.Server, api.Deps{
		Wallets:      walletRepo,
		Transactions: txRepo,
		SyncService:  orchestrator,
		SyncStatus:   tracker,
		Balances:     balanceService,
		Periods:      periodService,
		Dashboard:    dashboardService,
		DB:           postgres,
		Cache:        redis,
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exited")
}
