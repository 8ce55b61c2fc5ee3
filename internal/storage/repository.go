package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the pool opens so every connection sees the schema.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

// dsn enables foreign keys and a busy timeout on every pooled connection.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateAccount implements ports.AccountStore
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	err := r.queries.CreateAccount(ctx, CreateAccountParams{
		ID:           a.ID,
		Name:         a.Name,
		Type:         string(a.Type),
		Number:       nullString(a.Number),
		OpeningCents: a.OpeningCents,
		CreatedAt:    formatTime(a.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved to SQLite", "id", a.ID, "type", a.Type)
	return nil
}

// GetAccount implements ports.AccountStore
func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row, err := r.queries.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, notFound(err, "get account %s", id)
	}
	return toAccount(row), nil
}

// ListAccounts implements ports.AccountStore
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.queries.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.Account, len(rows))
	for i, row := range rows {
		out[i] = toAccount(row)
	}
	return out, nil
}

// CreateCategory implements ports.DirectoryStore
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	if err := r.queries.CreateCategory(ctx, Category{ID: c.ID, Name: c.Name, CreatedAt: formatTime(c.CreatedAt)}); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, notFound(err, "get category %s", id)
	}
	return core.Category{ID: row.ID, Name: row.Name, CreatedAt: parseTime(row.CreatedAt)}, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = core.Category{ID: row.ID, Name: row.Name, CreatedAt: parseTime(row.CreatedAt)}
	}
	return out, nil
}

// CreateMember implements ports.DirectoryStore
func (r *SQLiteRepository) CreateMember(ctx context.Context, m core.Member) error {
	if err := r.queries.CreateMember(ctx, Member{ID: m.ID, Name: m.Name, CreatedAt: formatTime(m.CreatedAt)}); err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetMember(ctx context.Context, id string) (core.Member, error) {
	row, err := r.queries.GetMember(ctx, id)
	if err != nil {
		return core.Member{}, notFound(err, "get member %s", id)
	}
	return core.Member{ID: row.ID, Name: row.Name, CreatedAt: parseTime(row.CreatedAt)}, nil
}

func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := r.queries.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]core.Member, len(rows))
	for i, row := range rows {
		out[i] = core.Member{ID: row.ID, Name: row.Name, CreatedAt: parseTime(row.CreatedAt)}
	}
	return out, nil
}

// CreateTransaction implements ports.TransactionStore
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := r.queries.CreateTransaction(ctx, fromTransaction(t)); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.AmountCents,
		"date", t.Date.String())
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, notFound(err, "get transaction %s", id)
	}
	return toTransaction(row), nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := r.queries.UpdateTransaction(ctx, fromTransaction(t))
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update transaction %s: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %s: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, int64, error) {
	from, to := rangeBounds(f.Range)
	total, err := r.queries.CountTransactions(ctx, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		From:   from,
		To:     to,
		Limit:  int64(f.Limit),
		Offset: int64(f.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return toTransactions(rows), total, nil
}

// TransactionsInRange implements ports.ReportReader
func (r *SQLiteRepository) TransactionsInRange(ctx context.Context, dr core.DateRange) ([]core.Transaction, error) {
	from, to := rangeBounds(dr)
	rows, err := r.queries.TransactionsInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("transactions in range: %w", err)
	}
	return toTransactions(rows), nil
}

func (r *SQLiteRepository) SumByType(ctx context.Context, dr core.DateRange) (map[core.TransactionType]int64, error) {
	from, to := rangeBounds(dr)
	rows, err := r.queries.SumByType(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum by type: %w", err)
	}
	out := make(map[core.TransactionType]int64, len(rows))
	for _, row := range rows {
		out[core.TransactionType(row.Type)] = row.AmountCents
	}
	return out, nil
}

func (r *SQLiteRepository) SumByAccountAndType(ctx context.Context) ([]core.AccountTypeSum, error) {
	rows, err := r.queries.SumByAccountAndType(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum by account and type: %w", err)
	}
	out := make([]core.AccountTypeSum, len(rows))
	for i, row := range rows {
		out[i] = core.AccountTypeSum{
			AccountID:   row.AccountID,
			Type:        core.TransactionType(row.Type),
			AmountCents: row.AmountCents,
		}
	}
	return out, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		err = core.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func rangeBounds(r core.DateRange) (string, string) {
	var from, to string
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return from, to
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toAccount(row Account) core.Account {
	return core.Account{
		ID:           row.ID,
		Name:         row.Name,
		Type:         core.AccountType(row.Type),
		Number:       stringPtr(row.Number),
		OpeningCents: row.OpeningCents,
		CreatedAt:    parseTime(row.CreatedAt),
	}
}

func fromTransaction(t core.Transaction) Transaction {
	return Transaction{
		ID:          t.ID,
		Date:        t.Date.String(),
		AmountCents: t.AmountCents,
		Type:        string(t.Type),
		AccountID:   t.AccountID,
		CategoryID:  nullString(t.CategoryID),
		MemberID:    nullString(t.MemberID),
		Description: nullString(t.Description),
		Reference:   nullString(t.Reference),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func toTransaction(row TransactionRow) core.Transaction {
	date, _ := core.ParseDate(row.Date)
	t := core.Transaction{
		ID:          row.ID,
		Date:        date,
		AmountCents: row.AmountCents,
		Type:        core.TransactionType(row.Type),
		AccountID:   row.AccountID,
		CategoryID:  stringPtr(row.CategoryID),
		MemberID:    stringPtr(row.MemberID),
		Description: stringPtr(row.Description),
		Reference:   stringPtr(row.Reference),
		CreatedBy:   row.CreatedBy,
		CreatedAt:   parseTime(row.CreatedAt),
		UpdatedAt:   parseTime(row.UpdatedAt),
		Account: &core.Account{
			ID:           row.AccountID,
			Name:         row.AccountName,
			Type:         core.AccountType(row.AccountType),
			Number:       stringPtr(row.AccountNumber),
			OpeningCents: row.AccountOpening,
			CreatedAt:    parseTime(row.AccountCreatedAt),
		},
	}
	if row.CategoryID.Valid && row.CategoryName.Valid {
		t.Category = &core.Category{ID: row.CategoryID.String, Name: row.CategoryName.String, CreatedAt: parseTime(row.CategoryCreated.String)}
	}
	if row.MemberID.Valid && row.MemberName.Valid {
		t.Member = &core.Member{ID: row.MemberID.String, Name: row.MemberName.String, CreatedAt: parseTime(row.MemberCreated.String)}
	}
	return t
}

func toTransactions(rows []TransactionRow) []core.Transaction {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = toTransaction(row)
	}
	return out
}
