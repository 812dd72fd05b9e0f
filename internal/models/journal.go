package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the database model for the journal_entries table.
type JournalEntry struct {
	EntryID          string          `db:"entry_id"`
	EntryNumber      string          `db:"entry_number"`
	EntryDate        time.Time       `db:"entry_date"`
	ReferenceKind    string          `db:"reference_kind"`
	ReferenceID      int64           `db:"reference_id"`
	Description      string          `db:"description"`
	Status           string          `db:"status"`
	TotalDebit       decimal.Decimal `db:"total_debit"`
	TotalCredit      decimal.Decimal `db:"total_credit"`
	OriginalEntryID  *string         `db:"original_entry_id"`
	ReversingEntryID *string         `db:"reversing_entry_id"`
	CreatedAt        time.Time       `db:"created_at"`
	CreatedBy        string          `db:"created_by"`
	LastUpdatedAt    time.Time       `db:"last_updated_at"`
	LastUpdatedBy    string          `db:"last_updated_by"`
}

// JournalLine is the database model for the journal_lines table.
type JournalLine struct {
	LineID        string          `db:"line_id"`
	EntryID       string          `db:"entry_id"`
	AccountID     string          `db:"account_id"`
	DebitAmount   decimal.Decimal `db:"debit_amount"`
	CreditAmount  decimal.Decimal `db:"credit_amount"`
	Description   *string         `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
	LastUpdatedBy string          `db:"last_updated_by"`
}
