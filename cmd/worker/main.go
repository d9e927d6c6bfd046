// Package main provides the background sync worker entry point. It
// periodically re-walks every active wallet's full transaction history.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallet-ledger/internal/adapter"
	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/retry"
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

	postgres, err := storage.NewPostgresDB(&cfg.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Postgres")
	}
	defer postgres.Close()

	if err := storage.RunMigrations(storage.MigrationURL(&cfg.Postgres), cfg.Postgres.MigrationsPath); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	ledgerClient := adapter.NewLedgerClient(&cfg.Provider)

	walletRepo := storage.NewWalletRepository(postgres)
	txRepo := storage.NewTransactionRepository(postgres)

	tracker := worker.NewTracker()
	accumulator := worker.NewAccumulator(ledgerClient, txRepo, cfg.Provider.PageSize, retry.DefaultPolicy())
	orchestrator := worker.NewOrchestrator(walletRepo, tracker, accumulator, cfg.Sync.Cooldown, logger)

	daemon := worker.NewDaemon(orchestrator, cfg.Sync.PollInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := daemon.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to start sync daemon")
	}

	logger.WithField("interval", cfg.Sync.PollInterval.String()).Info("sync worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down sync worker")
	cancel()
	daemon.Stop()
	logger.Info("sync worker exited")
}
