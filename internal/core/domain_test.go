package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-01-15", "2025-01-15", true},
		{" 2024-02-29 ", "2024-02-29", true},
		{"2025-03-01T23:30:00-02:00", "2025-03-02", true}, // UTC date is kept
		{"2025-02-30", "", false},
		{"2025-13-01", "", false},
		{"15/01/2025", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateBoundaries(t *testing.T) {
	d := NewDate(2024, 2, 17)
	if got := d.MonthStart().String(); got != "2024-02-01" {
		t.Errorf("MonthStart = %s", got)
	}
	if got := d.MonthEnd().String(); got != "2024-02-29" {
		t.Errorf("MonthEnd = %s", got)
	}
	if got := d.YearStart().String(); got != "2024-01-01" {
		t.Errorf("YearStart = %s", got)
	}
	if got := d.YearEnd().String(); got != "2024-12-31" {
		t.Errorf("YearEnd = %s", got)
	}
	if got := NewDate(2024, 12, 5).MonthEnd().String(); got != "2024-12-31" {
		t.Errorf("December MonthEnd = %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2025, 4, 9)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"d":"2025-04-09"}` {
		t.Fatalf("unexpected json %s", b)
	}

	var out struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2025-04-09"}`), &out); err != nil {
		t.Fatal(err)
	}
	if !out.D.Equal(NewDate(2025, 4, 9).Time) {
		t.Fatalf("round trip mismatch: %s", out.D)
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{From: NewDate(2025, 1, 1), To: NewDate(2025, 1, 31)}
	if !r.Contains(NewDate(2025, 1, 1)) || !r.Contains(NewDate(2025, 1, 31)) {
		t.Fatal("bounds must be inclusive")
	}
	if r.Contains(NewDate(2024, 12, 31)) || r.Contains(NewDate(2025, 2, 1)) {
		t.Fatal("dates outside range accepted")
	}
	if !(DateRange{}).Contains(NewDate(1999, 1, 1)) {
		t.Fatal("open range must contain everything")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		AmountCents: 100,
		Type:        Expense,
		AccountID:   "acc",
		Description: strPtr("rent"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := string(make([]byte, MaxTextLength+1))
	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{AmountCents: 1, Type: Income, AccountID: "a"}, nil}, // zero date
		{Transaction{Date: NewDate(2025, 1, 1), AmountCents: 0, Type: Income, AccountID: "a"}, ErrInvalidAmount},
		{Transaction{Date: NewDate(2025, 1, 1), AmountCents: -100, Type: Income, AccountID: "a"}, ErrInvalidAmount},
		{Transaction{Date: NewDate(2025, 1, 1), AmountCents: 1, Type: "GIFT", AccountID: "a"}, ErrInvalidTransactionType},
		{Transaction{Date: NewDate(2025, 1, 1), AmountCents: 1, Type: Income, AccountID: " "}, ErrMissingAccount},
		{Transaction{Date: NewDate(2025, 1, 1), AmountCents: 1, Type: Income, AccountID: "a", Reference: &long}, ErrTextTooLong},
	}
	for i, tc := range bads {
		err := tc.tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Main", Type: AccountBank}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: "  ", Type: AccountBank}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Account{Name: "Main", Type: "SAFE"}).Validate(); !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType, got %v", err)
	}
}

func TestUpdateApply(t *testing.T) {
	cur := strPtr("old")
	if got := (Update[string]{}).Apply(cur); got != cur {
		t.Fatal("unset update must keep current value")
	}
	if got := Clear[string]().Apply(cur); got != nil {
		t.Fatal("clear must return nil")
	}
	if got := Set("new").Apply(cur); got == nil || *got != "new" {
		t.Fatal("set must return new value")
	}
}
