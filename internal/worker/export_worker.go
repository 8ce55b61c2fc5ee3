package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ports"
	"ledger/internal/sheets"
)

// ExportWorker mirrors transaction events into the spreadsheet journal.
type ExportWorker struct {
	journal   sheets.JournalWriter
	batchSize int
	now       func() time.Time
}

func NewExportWorker(journal sheets.JournalWriter, batchSize int) *ExportWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &ExportWorker{journal: journal, batchSize: batchSize, now: time.Now}
}

// HandleEvent writes one journal row for a transaction event. It is the
// handler passed to the AMQP consumer; a returned error requeues the event.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	row := sheets.NewJournalRow(string(ev.Op), ev.Transaction, ev.Timestamp)
	ref, err := w.journal.AppendJournal(ctx, []sheets.JournalRow{row})
	if err != nil {
		return fmt.Errorf("append journal row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored transaction event",
		"op", ev.Op,
		"transaction_id", ev.Transaction.ID,
		"amount_cents", ev.Transaction.AmountCents,
		"sheets_ref", ref)
	return nil
}

// Backfill writes a snapshot row for every stored transaction in the range,
// oldest first, in batches. It lets a fresh journal catch up with a ledger
// that existed before the worker was started.
func (w *ExportWorker) Backfill(ctx context.Context, reader ports.ReportReader, r core.DateRange) (int, error) {
	txs, err := reader.TransactionsInRange(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("read transactions: %w", err)
	}

	slog.InfoContext(ctx, "Starting journal backfill", "count", len(txs), "batch_size", w.batchSize)

	at := w.now()
	written := 0
	for start := 0; start < len(txs); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := min(start+w.batchSize, len(txs))
		rows := make([]sheets.JournalRow, 0, end-start)
		for _, t := range txs[start:end] {
			rows = append(rows, sheets.NewJournalRow(sheets.OpSnapshot, t, at))
		}
		if _, err := w.journal.AppendJournal(ctx, rows); err != nil {
			return written, fmt.Errorf("append batch at %d: %w", start, err)
		}
		written += len(rows)
	}

	slog.InfoContext(ctx, "Journal backfill completed", "written", written)
	return written, nil
}
