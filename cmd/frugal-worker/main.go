package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frugal/internal/amqp"
	"frugal/internal/cli"
	"frugal/internal/sheets"
	"frugal/internal/worker"
)

func main() {
	cli.LoadEnv()
	logger := cli.SetupLogger()
	logger.Info("Starting frugal-worker")

	cfg := cli.MustLoadConfig(logger)
	repo := cli.MustOpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the sync worker")
		os.Exit(1)
	}
	ledger, err := sheets.NewFromEnv(ctx, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize ledger client", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, ledger, cfg.SyncBatchSize)

	// Catch anything that queued up while the worker was down
	if err := syncWorker.ProcessPendingExpenses(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	// Periodic re-check for messages lost in transit
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.ProcessPendingExpenses(ctx); err != nil {
					logger.Error("Periodic sync check failed", "error", err)
				}
			}
		}
	}()

	err = amqpClient.ConsumeExpenseSync(ctx, func(msg *amqp.ExpenseSyncMessage) error {
		return syncWorker.HandleMessage(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
