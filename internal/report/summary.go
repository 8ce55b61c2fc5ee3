package report

import "ledger/internal/core"

// Summary is the dashboard payload.
type Summary struct {
	MonthIncomeCents  int64            `json:"monthIncomeCents"`
	MonthExpenseCents int64            `json:"monthExpenseCents"`
	MonthNetCents     int64            `json:"monthNetCents"`
	TotalIncomeCents  int64            `json:"totalIncomeCents"`
	TotalExpenseCents int64            `json:"totalExpenseCents"`
	TotalNetCents     int64            `json:"totalNetCents"`
	AccountCount      int64            `json:"accountCount"`
	AccountBalances   []AccountBalance `json:"accountBalances"`
	TotalBalanceCents int64            `json:"totalBalanceCents"`
}

// SummaryInput holds the storage reads a summary is assembled from.
type SummaryInput struct {
	MonthByType map[core.TransactionType]int64
	TotalByType map[core.TransactionType]int64
	Accounts    []core.Account
	AccountSums []core.AccountTypeSum
}

// AssembleSummary combines month and all-time cash flow with account balances.
// The account count is taken from the same listing as the balances.
func AssembleSummary(in SummaryInput) Summary {
	balances := AccountBalances(in.Accounts, in.AccountSums)
	var total int64
	for _, b := range balances {
		total += b.BalanceCents
	}

	monthIncome, monthExpense := in.MonthByType[core.Income], in.MonthByType[core.Expense]
	allIncome, allExpense := in.TotalByType[core.Income], in.TotalByType[core.Expense]

	return Summary{
		MonthIncomeCents:  monthIncome,
		MonthExpenseCents: monthExpense,
		MonthNetCents:     monthIncome - monthExpense,
		TotalIncomeCents:  allIncome,
		TotalExpenseCents: allExpense,
		TotalNetCents:     allIncome - allExpense,
		AccountCount:      int64(len(balances)),
		AccountBalances:   balances,
		TotalBalanceCents: total,
	}
}
