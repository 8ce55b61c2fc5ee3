package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AccountBank  AccountType = "BANK"
	AccountCash  AccountType = "CASH"
	AccountOther AccountType = "OTHER"

	Income   TransactionType = "INCOME"
	Expense  TransactionType = "EXPENSE"
	Transfer TransactionType = "TRANSFER"

	// DefaultActor is recorded as the creator of every transaction.
	DefaultActor = "treasurer"

	MaxNameLength = 120
	MaxTextLength = 500
)

type (
	AccountType     string
	TransactionType string

	Account struct {
		ID           string      `json:"id"`
		Name         string      `json:"name"`
		Type         AccountType `json:"type"`
		Number       *string     `json:"number"`
		OpeningCents int64       `json:"openingCents"`
		CreatedAt    time.Time   `json:"createdAt"`
	}

	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Member struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		AmountCents int64           `json:"amountCents"`
		Type        TransactionType `json:"type"`
		AccountID   string          `json:"accountId"`
		CategoryID  *string         `json:"categoryId"`
		MemberID    *string         `json:"memberId"`
		Description *string         `json:"description"`
		Reference   *string         `json:"reference"`
		CreatedBy   string          `json:"createdBy"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`

		// Resolved references, populated by reads.
		Account  *Account  `json:"account,omitempty"`
		Category *Category `json:"category,omitempty"`
		Member   *Member   `json:"member,omitempty"`
	}

	// TransactionFilter selects a page of transactions. Zero dates leave the
	// range open on that side.
	TransactionFilter struct {
		Range  DateRange
		Limit  int
		Offset int
	}

	// AccountTypeSum is the summed amount of one account's transactions of one type.
	AccountTypeSum struct {
		AccountID   string
		Type        TransactionType
		AmountCents int64
	}

	// Update carries one optional field of a partial update. Set reports
	// whether the field was present; a nil Value clears it.
	Update[T any] struct {
		Set   bool
		Value *T
	}
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrEmptyName              = errors.New("empty name")
	ErrNameTooLong            = errors.New("name too long")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrMissingAccount         = errors.New("missing account")
	ErrTextTooLong            = errors.New("text too long")
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountBank, AccountCash, AccountOther:
		return true
	default:
		return false
	}
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	default:
		return false
	}
}

// AccountTypes lists every accepted account type.
func AccountTypes() []string {
	return []string{string(AccountBank), string(AccountCash), string(AccountOther)}
}

// TransactionTypes lists every accepted transaction type.
func TransactionTypes() []string {
	return []string{string(Income), string(Expense), string(Transfer)}
}

func (a Account) Validate() error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	if !a.Type.IsValid() {
		return ErrInvalidAccountType
	}
	if a.Number != nil && len(*a.Number) > MaxNameLength {
		return ErrTextTooLong
	}
	return nil
}

func (c Category) Validate() error {
	return validateName(c.Name)
}

func (m Member) Validate() error {
	return validateName(m.Name)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrMissingAccount
	}
	for _, s := range []*string{t.Description, t.Reference} {
		if s != nil && len(*s) > MaxTextLength {
			return ErrTextTooLong
		}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// Apply returns the field's new value, or current when the field was not set.
func (u Update[T]) Apply(current *T) *T {
	if !u.Set {
		return current
	}
	return u.Value
}

// Clear builds an Update that removes the field's value.
func Clear[T any]() Update[T] {
	return Update[T]{Set: true}
}

// Set builds an Update that assigns v.
func Set[T any](v T) Update[T] {
	return Update[T]{Set: true, Value: &v}
}
