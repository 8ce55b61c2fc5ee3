package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ledger/internal/amqp"
	"ledger/internal/core"
	ledgerlog "ledger/internal/log"
	"ledger/internal/ports"
	"ledger/internal/validate"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Publisher announces transaction changes to downstream consumers.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

type (
	NewAccount struct {
		Name         string
		Type         core.AccountType
		Number       *string
		OpeningCents int64
	}

	NewTransaction struct {
		Date        core.Date
		AmountCents int64
		Type        core.TransactionType
		AccountID   string
		CategoryID  *string
		MemberID    *string
		Description *string
		Reference   *string
	}

	// TransactionPatch changes only the fields it sets. Required fields use
	// nil for "unchanged"; optional fields use core.Update so they can be cleared.
	TransactionPatch struct {
		ID          string
		Date        *core.Date
		AmountCents *int64
		Type        *core.TransactionType
		AccountID   *string
		CategoryID  core.Update[string]
		MemberID    core.Update[string]
		Description core.Update[string]
		Reference   core.Update[string]
	}

	ListQuery struct {
		Page     int
		PageSize int
		Range    core.DateRange
	}

	TransactionPage struct {
		Items    []core.Transaction
		Page     int
		PageSize int
		Total    int64
	}
)

// LedgerService orchestrates writes and listings across storage and AMQP.
type LedgerService struct {
	store     ports.Store
	publisher Publisher
	now       func() time.Time
	newID     func() string
	onChange  []func()
}

// NewLedgerService wires the service. publisher may be nil, in which case no
// events are published.
func NewLedgerService(store ports.Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// OnChange registers fn to run after every successful write.
func (s *LedgerService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *LedgerService) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

func (s *LedgerService) CreateAccount(ctx context.Context, in NewAccount) (core.Account, error) {
	if in.Type == "" {
		in.Type = core.AccountOther
	}
	a := core.Account{
		ID:           s.newID(),
		Name:         in.Name,
		Type:         in.Type,
		Number:       in.Number,
		OpeningCents: in.OpeningCents,
		CreatedAt:    s.now(),
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, invalid(err)
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	s.changed()
	return a, nil
}

func (s *LedgerService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *LedgerService) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{ID: s.newID(), Name: name, CreatedAt: s.now()}
	if err := c.Validate(); err != nil {
		return core.Category{}, invalid(err)
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	s.changed()
	return c, nil
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) CreateMember(ctx context.Context, name string) (core.Member, error) {
	m := core.Member{ID: s.newID(), Name: name, CreatedAt: s.now()}
	if err := m.Validate(); err != nil {
		return core.Member{}, invalid(err)
	}
	if err := s.store.CreateMember(ctx, m); err != nil {
		return core.Member{}, fmt.Errorf("save member: %w", err)
	}
	s.changed()
	return m, nil
}

func (s *LedgerService) ListMembers(ctx context.Context) ([]core.Member, error) {
	return s.store.ListMembers(ctx)
}

// CreateTransaction validates and stores a transaction, then publishes a
// created event. References that do not exist yield core.ErrNotFound.
func (s *LedgerService) CreateTransaction(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	now := s.now()
	t := core.Transaction{
		ID:          s.newID(),
		Date:        in.Date,
		AmountCents: in.AmountCents,
		Type:        in.Type,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		MemberID:    in.MemberID,
		Description: in.Description,
		Reference:   in.Reference,
		CreatedBy:   core.DefaultActor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	if err := s.resolveReferences(ctx, &t); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.changed()
	s.logChange(ctx, "Transaction created", ledgerlog.OpCreate, t)

	s.publish(ctx, amqp.OpCreated, t)
	return t, nil
}

// UpdateTransaction applies a partial update to an existing transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, p TransactionPatch) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, p.ID)
	if err != nil {
		return core.Transaction{}, lookupErr("transaction", p.ID, err)
	}

	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.AmountCents != nil {
		t.AmountCents = *p.AmountCents
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	t.CategoryID = p.CategoryID.Apply(t.CategoryID)
	t.MemberID = p.MemberID.Apply(t.MemberID)
	t.Description = p.Description.Apply(t.Description)
	t.Reference = p.Reference.Apply(t.Reference)
	t.UpdatedAt = s.now()

	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	t.Account, t.Category, t.Member = nil, nil, nil
	if err := s.resolveReferences(ctx, &t); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, lookupErr("transaction", p.ID, err)
		}
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.changed()
	s.logChange(ctx, "Transaction updated", ledgerlog.OpUpdate, t)
	s.publish(ctx, amqp.OpUpdated, t)
	return t, nil
}

// DeleteTransaction hard deletes a transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return lookupErr("transaction", id, err)
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return lookupErr("transaction", id, err)
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.changed()
	s.logChange(ctx, "Transaction deleted", ledgerlog.OpDelete, t)
	s.publish(ctx, amqp.OpDeleted, t)
	return nil
}

// ListTransactions returns one page, newest first. Page defaults to 1 and
// page size to DefaultPageSize, capped at MaxPageSize.
func (s *LedgerService) ListTransactions(ctx context.Context, q ListQuery) (TransactionPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = DefaultPageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	if err := checkRange(q.Range); err != nil {
		return TransactionPage{}, err
	}

	items, total, err := s.store.ListTransactions(ctx, core.TransactionFilter{
		Range:  q.Range,
		Limit:  q.PageSize,
		Offset: (q.Page - 1) * q.PageSize,
	})
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	if items == nil {
		items = []core.Transaction{}
	}
	return TransactionPage{Items: items, Page: q.Page, PageSize: q.PageSize, Total: total}, nil
}

// resolveReferences checks that every referenced record exists and attaches it.
func (s *LedgerService) resolveReferences(ctx context.Context, t *core.Transaction) error {
	a, err := s.store.GetAccount(ctx, t.AccountID)
	if err != nil {
		return lookupErr("account", t.AccountID, err)
	}
	t.Account = &a

	if t.CategoryID != nil {
		c, err := s.store.GetCategory(ctx, *t.CategoryID)
		if err != nil {
			return lookupErr("category", *t.CategoryID, err)
		}
		t.Category = &c
	}
	if t.MemberID != nil {
		m, err := s.store.GetMember(ctx, *t.MemberID)
		if err != nil {
			return lookupErr("member", *t.MemberID, err)
		}
		t.Member = &m
	}
	return nil
}

func (s *LedgerService) logChange(ctx context.Context, msg, op string, t core.Transaction) {
	fields := ledgerlog.NewFields().
		WithOperation(op).
		WithTransaction(t.ID, t.AccountID, string(t.Type), t.AmountCents)
	ledgerlog.FromContext(ctx).WithComponent(ledgerlog.ComponentLedger).InfoContext(ctx, msg, fields.ToSlice()...)
}

// publish never fails the request: the change is already stored.
func (s *LedgerService) publish(ctx context.Context, op amqp.EventOp, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(op, t)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"op", op, "id", t.ID, "error", err)
	}
}

func lookupErr(kind, id string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%s %q: %w", kind, id, core.ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", kind, err)
}

func invalid(err error) error {
	return &validate.Error{Violations: []validate.Violation{{Message: err.Error()}}}
}

func checkRange(r core.DateRange) error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return validate.Errorf("startDate", "must not be after endDate")
	}
	return nil
}
