package report

import "ledger/internal/core"

// IncomeExpense is the income/expense report over a date window.
type IncomeExpense struct {
	Period              string          `json:"period"`
	StartDate           core.Date       `json:"startDate"`
	EndDate             core.Date       `json:"endDate"`
	Series              []PeriodPoint   `json:"series"`
	Totals              Totals          `json:"totals"`
	BreakdownByCategory []CategoryTotal `json:"breakdownByCategory"`
}

// BuildIncomeExpense aggregates the transactions of a window by period and by category.
func BuildIncomeExpense(period string, window core.DateRange, txs []core.Transaction) (IncomeExpense, error) {
	g, err := GranularityFor(period)
	if err != nil {
		return IncomeExpense{}, err
	}
	series, totals := AggregateByPeriod(txs, g)
	return IncomeExpense{
		Period:              period,
		StartDate:           window.From,
		EndDate:             window.To,
		Series:              series,
		Totals:              totals,
		BreakdownByCategory: AggregateByCategory(txs),
	}, nil
}
