// Package sheets mirrors ledger changes into an append-only spreadsheet journal.
package sheets

import (
	"time"

	"ledger/internal/core"
	"ledger/internal/report"
)

// OpSnapshot marks rows written by a backfill rather than by a live change.
const OpSnapshot = "snapshot"

// JournalHeader names the journal columns, in order.
var JournalHeader = []string{
	"Recorded At", "Op", "Transaction ID", "Date", "Type", "Amount",
	"Account", "Category", "Member", "Description", "Reference",
}

// JournalRow is one journal line. Amount is signed the way balances see it.
type JournalRow struct {
	RecordedAt    time.Time
	Op            string
	TransactionID string
	Date          core.Date
	Type          core.TransactionType
	AmountCents   int64
	AccountID     string
	CategoryID    string
	MemberID      string
	Description   string
	Reference     string
}

// NewJournalRow builds the row recording op on t.
func NewJournalRow(op string, t core.Transaction, at time.Time) JournalRow {
	return JournalRow{
		RecordedAt:    at.UTC(),
		Op:            op,
		TransactionID: t.ID,
		Date:          t.Date,
		Type:          t.Type,
		AmountCents:   report.Entry{Type: t.Type, AmountCents: t.AmountCents}.Signed(),
		AccountID:     t.AccountID,
		CategoryID:    deref(t.CategoryID),
		MemberID:      deref(t.MemberID),
		Description:   deref(t.Description),
		Reference:     deref(t.Reference),
	}
}

// Values renders the row as spreadsheet cells. Amounts are decimal strings
// so the sheet never sees floating point.
func (r JournalRow) Values() []any {
	return []any{
		r.RecordedAt.Format(time.RFC3339),
		r.Op,
		r.TransactionID,
		r.Date.String(),
		string(r.Type),
		core.FormatCents(r.AmountCents),
		r.AccountID,
		r.CategoryID,
		r.MemberID,
		r.Description,
		r.Reference,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
