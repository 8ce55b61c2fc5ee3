// Package report reduces transaction rows into balances, period series,
// category breakdowns and the dashboard summary.
//
// Every function here is pure: callers fetch rows through the storage ports
// and hand them in. All arithmetic is on integer cents.
package report

import "ledger/internal/core"

// Entry is a signed contribution to a balance: a single transaction or a
// pre-summed group of transactions sharing a type.
type Entry struct {
	Type        core.TransactionType
	AmountCents int64
}

// Signed returns the entry's effect on a balance. Expenses subtract,
// everything else adds.
func (e Entry) Signed() int64 {
	if e.Type == core.Expense {
		return -e.AmountCents
	}
	return e.AmountCents
}

// Balance returns openingCents plus the signed sum of entries.
func Balance(openingCents int64, entries []Entry) int64 {
	balance := openingCents
	for _, e := range entries {
		balance += e.Signed()
	}
	return balance
}

// EntriesOf converts transactions to balance entries.
func EntriesOf(txs []core.Transaction) []Entry {
	entries := make([]Entry, len(txs))
	for i, t := range txs {
		entries[i] = Entry{Type: t.Type, AmountCents: t.AmountCents}
	}
	return entries
}

// AccountBalance is an account with its current balance.
type AccountBalance struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Type         core.AccountType `json:"type"`
	BalanceCents int64            `json:"balanceCents"`
}

// AccountBalances computes the balance of every account from per account and
// type sums. The result follows the order of accounts.
func AccountBalances(accounts []core.Account, sums []core.AccountTypeSum) []AccountBalance {
	byAccount := make(map[string][]Entry, len(accounts))
	for _, s := range sums {
		byAccount[s.AccountID] = append(byAccount[s.AccountID], Entry{Type: s.Type, AmountCents: s.AmountCents})
	}

	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountBalance{
			ID:           a.ID,
			Name:         a.Name,
			Type:         a.Type,
			BalanceCents: Balance(a.OpeningCents, byAccount[a.ID]),
		})
	}
	return out
}
