package sheets

import "context"

// Ports for outbound spreadsheet adapters.
type (
	// JournalWriter appends rows to the transaction journal and returns a
	// reference to where they landed.
	JournalWriter interface {
		AppendJournal(ctx context.Context, rows []JournalRow) (ref string, err error)
	}
)
