package storage

import "database/sql"

// Row types mirror the tables. Timestamps are stored as fixed-width UTC text
// so that string order is chronological order.

type Account struct {
	ID           string
	Name         string
	Type         string
	Number       sql.NullString
	OpeningCents int64
	CreatedAt    string
}

type Category struct {
	ID        string
	Name      string
	CreatedAt string
}

type Member struct {
	ID        string
	Name      string
	CreatedAt string
}

type Transaction struct {
	ID          string
	Date        string
	AmountCents int64
	Type        string
	AccountID   string
	CategoryID  sql.NullString
	MemberID    sql.NullString
	Description sql.NullString
	Reference   sql.NullString
	CreatedBy   string
	CreatedAt   string
	UpdatedAt   string
}

// TransactionRow is a transaction joined with its references.
type TransactionRow struct {
	Transaction
	AccountName      string
	AccountType      string
	AccountNumber    sql.NullString
	AccountOpening   int64
	AccountCreatedAt string
	CategoryName     sql.NullString
	CategoryCreated  sql.NullString
	MemberName       sql.NullString
	MemberCreated    sql.NullString
}
