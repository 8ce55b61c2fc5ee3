package storage

import (
	"context"
	"database/sql"
)

const createAccount = `
INSERT INTO accounts (id, name, type, number, opening_cents, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateAccountParams struct {
	ID           string
	Name         string
	Type         string
	Number       sql.NullString
	OpeningCents int64
	CreatedAt    string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.ExecContext(ctx, createAccount,
		arg.ID, arg.Name, arg.Type, arg.Number, arg.OpeningCents, arg.CreatedAt)
	return err
}

const getAccount = `
SELECT id, name, type, number, opening_cents, created_at
FROM accounts
WHERE id = ?
`

func (q *Queries) GetAccount(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, id)
	var i Account
	err := row.Scan(&i.ID, &i.Name, &i.Type, &i.Number, &i.OpeningCents, &i.CreatedAt)
	return i, err
}

const listAccounts = `
SELECT id, name, type, number, opening_cents, created_at
FROM accounts
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(&i.ID, &i.Name, &i.Type, &i.Number, &i.OpeningCents, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCategory = `INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, createCategory, arg.ID, arg.Name, arg.CreatedAt)
	return err
}

const getCategory = `SELECT id, name, created_at FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id string) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const listCategories = `SELECT id, name, created_at FROM categories ORDER BY name COLLATE NOCASE, id`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createMember = `INSERT INTO members (id, name, created_at) VALUES (?, ?, ?)`

func (q *Queries) CreateMember(ctx context.Context, arg Member) error {
	_, err := q.db.ExecContext(ctx, createMember, arg.ID, arg.Name, arg.CreatedAt)
	return err
}

const getMember = `SELECT id, name, created_at FROM members WHERE id = ?`

func (q *Queries) GetMember(ctx context.Context, id string) (Member, error) {
	row := q.db.QueryRowContext(ctx, getMember, id)
	var i Member
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const listMembers = `SELECT id, name, created_at FROM members ORDER BY name COLLATE NOCASE, id`

func (q *Queries) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := q.db.QueryContext(ctx, listMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Member
	for rows.Next() {
		var i Member
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `
INSERT INTO transactions (
    id, date, amount_cents, type, account_id, category_id, member_id,
    description, reference, created_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.Date, arg.AmountCents, arg.Type, arg.AccountID, arg.CategoryID, arg.MemberID,
		arg.Description, arg.Reference, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const updateTransaction = `
UPDATE transactions
SET date = ?, amount_cents = ?, type = ?, account_id = ?, category_id = ?, member_id = ?,
    description = ?, reference = ?, updated_at = ?
WHERE id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Date, arg.AmountCents, arg.Type, arg.AccountID, arg.CategoryID, arg.MemberID,
		arg.Description, arg.Reference, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionColumns = `
    t.id, t.date, t.amount_cents, t.type, t.account_id, t.category_id, t.member_id,
    t.description, t.reference, t.created_by, t.created_at, t.updated_at,
    a.name, a.type, a.number, a.opening_cents, a.created_at,
    c.name, c.created_at, m.name, m.created_at
FROM transactions t
JOIN accounts a ON a.id = t.account_id
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN members m ON m.id = t.member_id
`

// An empty bound leaves that side of the range open.
const dateBounds = `(?1 = '' OR t.date >= ?1) AND (?2 = '' OR t.date <= ?2)`

const getTransaction = `SELECT` + transactionColumns + `WHERE t.id = ?1`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	return scanTransactionRow(q.db.QueryRowContext(ctx, getTransaction, id))
}

const listTransactions = `SELECT` + transactionColumns + `WHERE ` + dateBounds + `
ORDER BY t.date DESC, t.created_at DESC, t.id DESC
LIMIT ?3 OFFSET ?4
`

type ListTransactionsParams struct {
	From   string
	To     string
	Limit  int64
	Offset int64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]TransactionRow, error) {
	return q.queryTransactionRows(ctx, listTransactions, arg.From, arg.To, arg.Limit, arg.Offset)
}

const countTransactions = `SELECT COUNT(*) FROM transactions t WHERE ` + dateBounds

func (q *Queries) CountTransactions(ctx context.Context, from, to string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions, from, to)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const transactionsInRange = `SELECT` + transactionColumns + `WHERE ` + dateBounds + `
ORDER BY t.date, t.created_at, t.id
`

func (q *Queries) TransactionsInRange(ctx context.Context, from, to string) ([]TransactionRow, error) {
	return q.queryTransactionRows(ctx, transactionsInRange, from, to)
}

const sumByType = `
SELECT t.type, COALESCE(SUM(t.amount_cents), 0)
FROM transactions t
WHERE ` + dateBounds + `
GROUP BY t.type
`

type SumByTypeRow struct {
	Type        string
	AmountCents int64
}

func (q *Queries) SumByType(ctx context.Context, from, to string) ([]SumByTypeRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByType, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumByTypeRow
	for rows.Next() {
		var i SumByTypeRow
		if err := rows.Scan(&i.Type, &i.AmountCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumByAccountAndType = `
SELECT account_id, type, SUM(amount_cents)
FROM transactions
GROUP BY account_id, type
ORDER BY account_id, type
`

type SumByAccountAndTypeRow struct {
	AccountID   string
	Type        string
	AmountCents int64
}

func (q *Queries) SumByAccountAndType(ctx context.Context) ([]SumByAccountAndTypeRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByAccountAndType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumByAccountAndTypeRow
	for rows.Next() {
		var i SumByAccountAndTypeRow
		if err := rows.Scan(&i.AccountID, &i.Type, &i.AmountCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) queryTransactionRows(ctx context.Context, query string, args ...interface{}) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		i, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransactionRow(s scanner) (TransactionRow, error) {
	var i TransactionRow
	err := s.Scan(
		&i.ID, &i.Date, &i.AmountCents, &i.Type, &i.AccountID, &i.CategoryID, &i.MemberID,
		&i.Description, &i.Reference, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt,
		&i.AccountName, &i.AccountType, &i.AccountNumber, &i.AccountOpening, &i.AccountCreatedAt,
		&i.CategoryName, &i.CategoryCreated, &i.MemberName, &i.MemberCreated,
	)
	return i, err
}
