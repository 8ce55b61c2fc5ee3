package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/sheets"
	"ledger/internal/storage/memory"
)

type fakeJournal struct {
	calls [][]sheets.JournalRow
	err   error
}

func (f *fakeJournal) AppendJournal(_ context.Context, rows []sheets.JournalRow) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, rows)
	return "Journal!A1", nil
}

func TestHandleEvent(t *testing.T) {
	j := &fakeJournal{}
	w := NewExportWorker(j, 10)
	ev := amqp.NewTransactionEvent(amqp.OpDeleted, core.Transaction{
		ID: "t1", Date: core.NewDate(2025, 5, 1), AmountCents: 250, Type: core.Expense, AccountID: "a",
	})

	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	if len(j.calls) != 1 || len(j.calls[0]) != 1 {
		t.Fatalf("calls = %+v", j.calls)
	}
	row := j.calls[0][0]
	if row.Op != "deleted" || row.TransactionID != "t1" || row.AmountCents != -250 {
		t.Fatalf("row = %+v", row)
	}
}

func TestHandleEventError(t *testing.T) {
	w := NewExportWorker(&fakeJournal{err: errors.New("quota")}, 10)
	ev := amqp.NewTransactionEvent(amqp.OpCreated, core.Transaction{ID: "t1"})
	if err := w.HandleEvent(context.Background(), ev); err == nil {
		t.Fatal("expected error so the event is requeued")
	}
}

func TestBackfillBatches(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_ = store.CreateAccount(ctx, core.Account{ID: "a", Name: "Main", Type: core.AccountBank})
	for i := 1; i <= 5; i++ {
		err := store.CreateTransaction(ctx, core.Transaction{
			ID: string(rune('0' + i)), Date: core.NewDate(2025, 1, i), AmountCents: int64(i), Type: core.Income, AccountID: "a",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	j := &fakeJournal{}
	w := NewExportWorker(j, 2)
	w.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	n, err := w.Backfill(ctx, store, core.DateRange{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || len(j.calls) != 3 {
		t.Fatalf("written=%d batches=%d", n, len(j.calls))
	}
	if j.calls[0][0].TransactionID != "1" || j.calls[2][0].TransactionID != "5" {
		t.Fatalf("backfill not oldest first: %+v", j.calls)
	}
	if j.calls[0][0].Op != sheets.OpSnapshot {
		t.Fatalf("op = %s", j.calls[0][0].Op)
	}
}

func TestBackfillStopsOnError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_ = store.CreateAccount(ctx, core.Account{ID: "a"})
	_ = store.CreateTransaction(ctx, core.Transaction{ID: "x", Date: core.NewDate(2025, 1, 1), AmountCents: 1, Type: core.Income, AccountID: "a"})

	w := NewExportWorker(&fakeJournal{err: errors.New("down")}, 10)
	if n, err := w.Backfill(ctx, store, core.DateRange{}); err == nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}
