package ports

import (
	"context"

	"ledger/internal/core"
)

// Ports for storage adapters. Lookups of missing records return core.ErrNotFound.
type (
	AccountStore interface {
		CreateAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, id string) (core.Account, error)
		// ListAccounts returns every account, newest first.
		ListAccounts(ctx context.Context) ([]core.Account, error)
	}

	DirectoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) error
		GetCategory(ctx context.Context, id string) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)

		CreateMember(ctx context.Context, m core.Member) error
		GetMember(ctx context.Context, id string) (core.Member, error)
		ListMembers(ctx context.Context) ([]core.Member, error)
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// UpdateTransaction replaces every mutable column of an existing row.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		// ListTransactions returns one page ordered by date then creation
		// time, newest first, with references resolved, plus the number of
		// rows matching the filter.
		ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, int64, error)
	}

	// ReportReader serves the aggregation reads behind reports and the summary.
	ReportReader interface {
		// TransactionsInRange returns matching transactions with their
		// category resolved, in date order.
		TransactionsInRange(ctx context.Context, r core.DateRange) ([]core.Transaction, error)
		// SumByType totals amounts per transaction type within the range.
		SumByType(ctx context.Context, r core.DateRange) (map[core.TransactionType]int64, error)
		// SumByAccountAndType totals amounts per account and type over all time.
		SumByAccountAndType(ctx context.Context) ([]core.AccountTypeSum, error)
	}

	// Store is the full storage accessor.
	Store interface {
		AccountStore
		DirectoryStore
		TransactionStore
		ReportReader
		Ping(ctx context.Context) error
		Close() error
	}
)
