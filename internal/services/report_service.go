package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/ports"
	"ledger/internal/report"
	"ledger/internal/validate"
)

// ReportQuery selects an income/expense report. The dates are used only
// for daily and monthly reports, and only when both are set.
type ReportQuery struct {
	Period    string
	StartDate core.Date
	EndDate   core.Date
}

// ReportService reads aggregates from storage and assembles reports. All
// calendar arithmetic is in UTC.
type ReportService struct {
	store ports.ReportReader
	reads ports.AccountStore
	now   func() time.Time

	// Optional result caches, emptied by Invalidate.
	reportCache  *cache.LRUCache[report.IncomeExpense]
	summaryCache *cache.LRUCache[report.Summary]

	// generation counts invalidations. A result is cached only if no
	// invalidation happened between its storage read and the Set.
	mu         sync.Mutex
	generation uint64
}

func NewReportService(store ports.Store) *ReportService {
	return &ReportService{
		store: store,
		reads: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithCache keeps up to maxEntries built reports for ttl. Callers must invoke
// Invalidate after every ledger write.
func (s *ReportService) WithCache(maxEntries int, ttl time.Duration) *ReportService {
	s.reportCache = cache.NewLRUCache[report.IncomeExpense]("income_expense", maxEntries, ttl)
	s.summaryCache = cache.NewLRUCache[report.Summary]("summary", maxEntries, ttl)
	return s
}

// Caches lists the active caches for periodic cleanup.
func (s *ReportService) Caches() []cache.Cleaner {
	if s.reportCache == nil {
		return nil
	}
	return []cache.Cleaner{s.reportCache, s.summaryCache}
}

// Invalidate drops every cached report, including results whose reads are
// still in flight.
func (s *ReportService) Invalidate() {
	if s.reportCache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.reportCache.Purge()
	s.summaryCache.Purge()
}

func (s *ReportService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// storeIfCurrent runs set unless an invalidation happened since gen.
func (s *ReportService) storeIfCurrent(gen uint64, set func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		set()
	}
}

// Window resolves the date range of a report. Yearly reports always cover
// the current year. Daily and monthly reports use the requested dates when
// both are given and the current month otherwise.
func (s *ReportService) Window(q ReportQuery) (string, core.DateRange, error) {
	period := q.Period
	if period == "" {
		period = report.Monthly
	}
	if _, err := report.GranularityFor(period); err != nil {
		return "", core.DateRange{}, validate.Errorf("period", "must be one of daily, monthly, yearly")
	}

	today := core.DateOf(s.now())
	from, to := today.MonthStart(), today.MonthEnd()
	switch {
	case period == report.Yearly:
		from, to = today.YearStart(), today.YearEnd()
	case !q.StartDate.IsZero() && !q.EndDate.IsZero():
		from, to = q.StartDate, q.EndDate
	}

	window := core.DateRange{From: from, To: to}
	if err := checkRange(window); err != nil {
		return "", core.DateRange{}, err
	}
	return period, window, nil
}

// IncomeExpense builds the period series and category breakdown for a window.
func (s *ReportService) IncomeExpense(ctx context.Context, q ReportQuery) (report.IncomeExpense, error) {
	period, window, err := s.Window(q)
	if err != nil {
		return report.IncomeExpense{}, err
	}
	key := period + "|" + window.From.String() + "|" + window.To.String()
	gen := s.currentGeneration()
	if s.reportCache != nil {
		if rep, ok := s.reportCache.Get(key); ok {
			return rep, nil
		}
	}

	txs, err := s.store.TransactionsInRange(ctx, window)
	if err != nil {
		return report.IncomeExpense{}, fmt.Errorf("read transactions: %w", err)
	}
	rep, err := report.BuildIncomeExpense(period, window, txs)
	if err != nil {
		return report.IncomeExpense{}, err
	}
	if s.reportCache != nil {
		s.storeIfCurrent(gen, func() { s.reportCache.Set(key, rep) })
	}
	return rep, nil
}

// Summary assembles the dashboard. Its storage reads are independent and run
// concurrently; the first failure cancels the rest.
func (s *ReportService) Summary(ctx context.Context) (report.Summary, error) {
	today := core.DateOf(s.now())
	month := core.DateRange{From: today.MonthStart(), To: today}
	gen := s.currentGeneration()
	if s.summaryCache != nil {
		if sum, ok := s.summaryCache.Get(today.String()); ok {
			return sum, nil
		}
	}

	var in report.SummaryInput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.MonthByType, err = s.store.SumByType(gctx, month)
		return wrap("month totals", err)
	})
	g.Go(func() (err error) {
		in.TotalByType, err = s.store.SumByType(gctx, core.DateRange{})
		return wrap("all-time totals", err)
	})
	g.Go(func() (err error) {
		in.Accounts, err = s.reads.ListAccounts(gctx)
		return wrap("accounts", err)
	})
	g.Go(func() (err error) {
		in.AccountSums, err = s.store.SumByAccountAndType(gctx)
		return wrap("account sums", err)
	})
	if err := g.Wait(); err != nil {
		return report.Summary{}, err
	}
	sum := report.AssembleSummary(in)
	if s.summaryCache != nil {
		s.storeIfCurrent(gen, func() { s.summaryCache.Set(today.String(), sum) })
	}
	return sum, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}
