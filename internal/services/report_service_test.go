package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/report"
	"ledger/internal/storage/memory"
	"ledger/internal/validate"
)

func newTestReports(store *memory.Store) *ReportService {
	svc := NewReportService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestReportWindow(t *testing.T) {
	svc := newTestReports(memory.New())
	tests := []struct {
		name       string
		q          ReportQuery
		wantPeriod string
		wantFrom   core.Date
		wantTo     core.Date
	}{
		{"default monthly", ReportQuery{}, report.Monthly, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)},
		{"daily uses month", ReportQuery{Period: report.Daily}, report.Daily, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)},
		{"yearly", ReportQuery{Period: report.Yearly}, report.Yearly, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31)},
		{"start alone is ignored", ReportQuery{StartDate: core.NewDate(2024, 2, 10)}, report.Monthly, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)},
		{"end alone is ignored", ReportQuery{Period: report.Daily, EndDate: core.NewDate(2024, 2, 10)}, report.Daily, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)},
		{"explicit both", ReportQuery{Period: report.Monthly, StartDate: core.NewDate(2023, 1, 1), EndDate: core.NewDate(2023, 6, 30)}, report.Monthly, core.NewDate(2023, 1, 1), core.NewDate(2023, 6, 30)},
		{"yearly ignores dates", ReportQuery{Period: report.Yearly, StartDate: core.NewDate(2024, 3, 1), EndDate: core.NewDate(2024, 3, 15)}, report.Yearly, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			period, w, err := svc.Window(tc.q)
			if err != nil {
				t.Fatal(err)
			}
			if period != tc.wantPeriod || !w.From.Equal(tc.wantFrom.Time) || !w.To.Equal(tc.wantTo.Time) {
				t.Fatalf("got %s %s..%s", period, w.From, w.To)
			}
		})
	}
}

func TestReportWindow_Invalid(t *testing.T) {
	svc := newTestReports(memory.New())
	for _, q := range []ReportQuery{
		{Period: "weekly"},
		{StartDate: core.NewDate(2024, 3, 10), EndDate: core.NewDate(2024, 3, 1)},
	} {
		if _, _, err := svc.Window(q); err == nil {
			t.Errorf("%+v: expected error", q)
		} else if _, ok := validate.AsError(err); !ok {
			t.Errorf("%+v: expected validation error, got %v", q, err)
		}
	}
}

func TestIncomeExpense(t *testing.T) {
	ledger, store := newTestLedger(t, nil)
	ctx := context.Background()
	acc := mustAccount(t, ledger, "Bank", 0)
	for _, in := range []NewTransaction{
		{Date: core.NewDate(2024, 3, 1), AmountCents: 1000, Type: core.Income, AccountID: acc.ID},
		{Date: core.NewDate(2024, 3, 2), AmountCents: 400, Type: core.Expense, AccountID: acc.ID},
		{Date: core.NewDate(2024, 3, 2), AmountCents: 999, Type: core.Transfer, AccountID: acc.ID},
		{Date: core.NewDate(2024, 2, 28), AmountCents: 5000, Type: core.Income, AccountID: acc.ID},
	} {
		if _, err := ledger.CreateTransaction(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	got, err := newTestReports(store).IncomeExpense(ctx, ReportQuery{Period: report.Daily})
	if err != nil {
		t.Fatal(err)
	}
	if got.Totals.IncomeCents != 1000 || got.Totals.ExpenseCents != 400 || got.Totals.NetCents != 600 {
		t.Fatalf("totals = %+v", got.Totals)
	}
	if len(got.Series) != 2 || got.Series[0].PeriodLabel != "2024-03-01" {
		t.Fatalf("series = %+v", got.Series)
	}
}

func TestSummary(t *testing.T) {
	ledger, store := newTestLedger(t, nil)
	ctx := context.Background()
	bank := mustAccount(t, ledger, "Bank", 100000)
	cash := mustAccount(t, ledger, "Cash", 0)
	for _, in := range []NewTransaction{
		{Date: core.NewDate(2024, 3, 10), AmountCents: 2000, Type: core.Income, AccountID: cash.ID},
		{Date: core.NewDate(2024, 3, 20), AmountCents: 700, Type: core.Expense, AccountID: cash.ID},
		{Date: core.NewDate(2024, 1, 5), AmountCents: 30000, Type: core.Expense, AccountID: bank.ID},
	} {
		if _, err := ledger.CreateTransaction(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	s, err := newTestReports(store).Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// The month window ends today (15th), so the expense on the 20th is excluded.
	if s.MonthIncomeCents != 2000 || s.MonthExpenseCents != 0 || s.MonthNetCents != 2000 {
		t.Errorf("month = %d/%d/%d", s.MonthIncomeCents, s.MonthExpenseCents, s.MonthNetCents)
	}
	if s.TotalIncomeCents != 2000 || s.TotalExpenseCents != 30700 || s.TotalNetCents != -28700 {
		t.Errorf("totals = %d/%d/%d", s.TotalIncomeCents, s.TotalExpenseCents, s.TotalNetCents)
	}
	if s.AccountCount != 2 || len(s.AccountBalances) != 2 {
		t.Fatalf("accounts = %d, balances = %d", s.AccountCount, len(s.AccountBalances))
	}
	if s.TotalBalanceCents != 70000+1300 {
		t.Errorf("total balance = %d", s.TotalBalanceCents)
	}
}

func TestSummary_Empty(t *testing.T) {
	s, err := newTestReports(memory.New()).Summary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.AccountBalances == nil || s.AccountCount != 0 || s.TotalBalanceCents != 0 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestReportCache_InvalidatedByWrites(t *testing.T) {
	ledger, store := newTestLedger(t, nil)
	reports := newTestReports(store).WithCache(8, time.Hour)
	ledger.OnChange(reports.Invalidate)
	ctx := context.Background()
	acc := mustAccount(t, ledger, "Bank", 0)

	first, err := reports.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.MonthIncomeCents != 0 {
		t.Fatalf("month income = %d", first.MonthIncomeCents)
	}

	// Writes that bypass the service are not seen while cached.
	if err := store.CreateTransaction(ctx, core.Transaction{
		ID: "direct", Date: core.NewDate(2024, 3, 1), AmountCents: 100, Type: core.Income, AccountID: acc.ID,
		CreatedBy: core.DefaultActor, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}); err != nil {
		t.Fatal(err)
	}
	if cached, _ := reports.Summary(ctx); cached.MonthIncomeCents != 0 {
		t.Fatalf("expected cached summary, got %d", cached.MonthIncomeCents)
	}

	if _, err := ledger.CreateTransaction(ctx, NewTransaction{
		Date: core.NewDate(2024, 3, 2), AmountCents: 50, Type: core.Income, AccountID: acc.ID,
	}); err != nil {
		t.Fatal(err)
	}
	fresh, err := reports.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.MonthIncomeCents != 150 {
		t.Fatalf("month income after write = %d, want 150", fresh.MonthIncomeCents)
	}
	if len(reports.Caches()) != 2 {
		t.Fatalf("caches = %d", len(reports.Caches()))
	}
}

// pausingStore holds one read open after it has fetched its rows, so a
// write can commit while the result is still on its way to the cache.
type pausingStore struct {
	*memory.Store
	pauseRange atomic.Bool
	pauseSums  atomic.Bool
	fetched    chan struct{}
	resume     chan struct{}
}

func newPausingStore(store *memory.Store) *pausingStore {
	return &pausingStore{Store: store, fetched: make(chan struct{}), resume: make(chan struct{})}
}

func (p *pausingStore) hold() {
	p.fetched <- struct{}{}
	<-p.resume
}

func (p *pausingStore) TransactionsInRange(ctx context.Context, r core.DateRange) ([]core.Transaction, error) {
	txs, err := p.Store.TransactionsInRange(ctx, r)
	if p.pauseRange.CompareAndSwap(true, false) {
		p.hold()
	}
	return txs, err
}

func (p *pausingStore) SumByAccountAndType(ctx context.Context) ([]core.AccountTypeSum, error) {
	sums, err := p.Store.SumByAccountAndType(ctx)
	if p.pauseSums.CompareAndSwap(true, false) {
		p.hold()
	}
	return sums, err
}

func newCachedReports(t *testing.T) (*LedgerService, *pausingStore, *ReportService, core.Account) {
	t.Helper()
	ledger, store := newTestLedger(t, nil)
	paused := newPausingStore(store)
	reports := NewReportService(paused).WithCache(8, time.Hour)
	reports.now = func() time.Time { return fixedNow }
	ledger.OnChange(reports.Invalidate)
	return ledger, paused, reports, mustAccount(t, ledger, "Bank", 0)
}

func TestReportCache_WriteDuringReadIsNotCached(t *testing.T) {
	ledger, paused, reports, acc := newCachedReports(t)
	ctx := context.Background()

	paused.pauseRange.Store(true)
	inflight := make(chan report.IncomeExpense, 1)
	go func() {
		rep, err := reports.IncomeExpense(ctx, ReportQuery{})
		if err != nil {
			t.Error(err)
		}
		inflight <- rep
	}()

	<-paused.fetched
	if _, err := ledger.CreateTransaction(ctx, NewTransaction{
		Date: core.NewDate(2024, 3, 10), AmountCents: 1000, Type: core.Income, AccountID: acc.ID,
	}); err != nil {
		t.Fatal(err)
	}
	close(paused.resume)

	if rep := <-inflight; rep.Totals.IncomeCents != 0 {
		t.Fatalf("in-flight report income = %d, want 0", rep.Totals.IncomeCents)
	}
	rep, err := reports.IncomeExpense(ctx, ReportQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Totals.IncomeCents != 1000 {
		t.Fatalf("report after write income = %d, want 1000", rep.Totals.IncomeCents)
	}
}

func TestSummaryCache_WriteDuringReadIsNotCached(t *testing.T) {
	ledger, paused, reports, acc := newCachedReports(t)
	ctx := context.Background()

	paused.pauseSums.Store(true)
	inflight := make(chan error, 1)
	go func() {
		_, err := reports.Summary(ctx)
		inflight <- err
	}()

	<-paused.fetched
	if _, err := ledger.CreateTransaction(ctx, NewTransaction{
		Date: core.NewDate(2024, 3, 10), AmountCents: 1000, Type: core.Income, AccountID: acc.ID,
	}); err != nil {
		t.Fatal(err)
	}
	close(paused.resume)
	if err := <-inflight; err != nil {
		t.Fatal(err)
	}

	sum, err := reports.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.MonthIncomeCents != 1000 || sum.TotalBalanceCents != 1000 {
		t.Fatalf("summary after write = %d income, %d balance", sum.MonthIncomeCents, sum.TotalBalanceCents)
	}
}
