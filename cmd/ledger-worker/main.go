package main

import (
	"context"
	"errors"
	"os"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/core"
	ledgerlog "ledger/internal/log"
	"ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/sheets/memory"
	"ledger/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(ledgerlog.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting ledger-worker")

	journal, err := newJournal(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize journal", "error", err)
		os.Exit(1)
	}
	exporter := worker.NewExportWorker(journal, cfg.ExportBatchSize)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})

	if cfg.BackfillOnStart {
		if err := backfill(ctx, cfg, logger, exporter); err != nil {
			logger.Error("Journal backfill failed", "error", err)
			// Keep consuming; events still reach the journal.
		}
	}

	go func() {
		err := amqpClient.ConsumeTransactionEvents(ctx, exporter.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

// newJournal targets the configured spreadsheet, or an in-process journal
// when none is set.
func newJournal(cfg *config.Config, logger *ledgerlog.Logger) (sheets.JournalWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, journal rows are kept in memory only")
		return memory.New(), nil
	}
	client, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets journal initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil
}

// backfill opens the ledger store read side and mirrors every transaction.
func backfill(ctx context.Context, cfg *config.Config, logger *ledgerlog.Logger, exporter *worker.ExportWorker) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// Events are consumed, never published, from here.
	backendCfg.AMQPURL = ""

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	written, err := exporter.Backfill(ctx, res.Store, core.DateRange{})
	if err != nil {
		return err
	}
	logger.Info("Journal backfill finished", "rows", written)
	return nil
}
