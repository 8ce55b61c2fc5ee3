package report

import "ledger/internal/core"

// Uncategorized labels transactions without a category.
const Uncategorized = "Uncategorized"

// CategoryTotal is the income and expense of one category.
type CategoryTotal struct {
	Name         string `json:"name"`
	IncomeCents  int64  `json:"incomeCents"`
	ExpenseCents int64  `json:"expenseCents"`
}

// AggregateByCategory groups transactions by category name, in the order each
// name is first seen. A transfer opens its category's entry but adds nothing.
func AggregateByCategory(txs []core.Transaction) []CategoryTotal {
	out := []CategoryTotal{}
	index := make(map[string]int)
	for _, t := range txs {
		name := Uncategorized
		if t.Category != nil && t.Category.Name != "" {
			name = t.Category.Name
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryTotal{Name: name})
		}
		switch t.Type {
		case core.Income:
			out[i].IncomeCents += t.AmountCents
		case core.Expense:
			out[i].ExpenseCents += t.AmountCents
		}
	}
	return out
}
