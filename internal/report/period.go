package report

import (
	"fmt"
	"sort"

	"ledger/internal/core"
)

// Granularity is the width of a period bucket.
type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Period names accepted by the report endpoint.
const (
	Daily   = "daily"
	Monthly = "monthly"
	Yearly  = "yearly"
)

// GranularityFor maps a report period name to its bucket width.
func GranularityFor(period string) (Granularity, error) {
	switch period {
	case Daily:
		return Day, nil
	case Monthly:
		return Month, nil
	case Yearly:
		return Year, nil
	default:
		return "", fmt.Errorf("unknown period %q", period)
	}
}

// PeriodLabel returns the bucket label of d: YYYY, YYYY-MM or YYYY-MM-DD.
// Labels sort chronologically as plain strings.
func PeriodLabel(d core.Date, g Granularity) string {
	switch g {
	case Year:
		return d.Format("2006")
	case Month:
		return d.Format("2006-01")
	default:
		return d.Format(core.DateLayout)
	}
}

// PeriodPoint is one bucket of a period series.
type PeriodPoint struct {
	PeriodLabel  string `json:"periodLabel"`
	IncomeCents  int64  `json:"incomeCents"`
	ExpenseCents int64  `json:"expenseCents"`
	NetCents     int64  `json:"netCents"`
}

// Totals are income and expense summed over a whole report.
type Totals struct {
	IncomeCents  int64 `json:"incomeCents"`
	ExpenseCents int64 `json:"expenseCents"`
	NetCents     int64 `json:"netCents"`
}

// Add accumulates a transaction. Transfers are ignored.
func (t *Totals) Add(typ core.TransactionType, amountCents int64) {
	switch typ {
	case core.Income:
		t.IncomeCents += amountCents
	case core.Expense:
		t.ExpenseCents += amountCents
	default:
		return
	}
	t.NetCents = t.IncomeCents - t.ExpenseCents
}

// AggregateByPeriod buckets transactions by period label. The series is
// sorted by label and never nil. Every transaction opens its bucket; transfers
// add nothing to it.
func AggregateByPeriod(txs []core.Transaction, g Granularity) ([]PeriodPoint, Totals) {
	buckets := make(map[string]*Totals)
	for _, t := range txs {
		label := PeriodLabel(t.Date, g)
		b, ok := buckets[label]
		if !ok {
			b = &Totals{}
			buckets[label] = b
		}
		b.Add(t.Type, t.AmountCents)
	}

	series := make([]PeriodPoint, 0, len(buckets))
	var totals Totals
	for label, b := range buckets {
		series = append(series, PeriodPoint{
			PeriodLabel:  label,
			IncomeCents:  b.IncomeCents,
			ExpenseCents: b.ExpenseCents,
			NetCents:     b.IncomeCents - b.ExpenseCents,
		})
		totals.IncomeCents += b.IncomeCents
		totals.ExpenseCents += b.ExpenseCents
	}
	totals.NetCents = totals.IncomeCents - totals.ExpenseCents

	sort.Slice(series, func(i, j int) bool {
		return series[i].PeriodLabel < series[j].PeriodLabel
	})
	return series, totals
}
