package validate

import "ledger/internal/core"

// Schemas for every input shape accepted by the API.
var (
	CreateAccount = Schema{
		{Name: "name", Kind: String, Required: true, MaxLen: core.MaxNameLength},
		{Name: "type", Kind: Enum, Nullable: true, Enum: core.AccountTypes()},
		{Name: "number", Kind: String, Nullable: true, MaxLen: core.MaxNameLength},
		{Name: "opening", Kind: Decimal, Nullable: true},
	}

	CreateNamed = Schema{
		{Name: "name", Kind: String, Required: true, MaxLen: core.MaxNameLength},
	}

	CreateTransaction = Schema{
		{Name: "date", Kind: Date, Required: true},
		{Name: "amountCents", Kind: PositiveInt, Required: true},
		{Name: "type", Kind: Enum, Required: true, Enum: core.TransactionTypes()},
		{Name: "accountId", Kind: ID, Required: true},
		{Name: "categoryId", Kind: ID, Nullable: true},
		{Name: "memberId", Kind: ID, Nullable: true},
		{Name: "description", Kind: String, Nullable: true, MaxLen: core.MaxTextLength},
		{Name: "reference", Kind: String, Nullable: true, MaxLen: core.MaxTextLength},
	}

	// UpdateTransaction accepts the same fields as CreateTransaction, all
	// optional. Fields a transaction cannot lack are not nullable.
	UpdateTransaction = Schema{
		{Name: "id", Kind: ID, Required: true},
		{Name: "date", Kind: Date},
		{Name: "amountCents", Kind: PositiveInt},
		{Name: "type", Kind: Enum, Enum: core.TransactionTypes()},
		{Name: "accountId", Kind: ID},
		{Name: "categoryId", Kind: ID, Nullable: true},
		{Name: "memberId", Kind: ID, Nullable: true},
		{Name: "description", Kind: String, Nullable: true, MaxLen: core.MaxTextLength},
		{Name: "reference", Kind: String, Nullable: true, MaxLen: core.MaxTextLength},
	}

	DeleteTransaction = Schema{
		{Name: "id", Kind: ID, Required: true},
	}

	ListTransactions = Schema{
		{Name: "page", Kind: PositiveInt},
		{Name: "pageSize", Kind: PositiveInt},
		{Name: "startDate", Kind: Date},
		{Name: "endDate", Kind: Date},
	}

	IncomeExpenseReport = Schema{
		{Name: "period", Kind: Enum, Enum: []string{"daily", "monthly", "yearly"}},
		{Name: "startDate", Kind: Date},
		{Name: "endDate", Kind: Date},
	}
)
