package repositories

import (
	"context"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

// EntryReader defines read operations for journal entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific journal entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindPostedEntryByReference retrieves the POSTED entry for a
	// (reference_kind, reference_id) fingerprint, or apperrors.ErrNotFound.
	FindPostedEntryByReference(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines belonging to one entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)
}

// EntryWriter defines write operations for journal entry data
type EntryWriter interface {
	// SaveEntry persists an entry header with its lines and additively
	// updates the touched account balances, all within one database
	// transaction. It assigns entry.EntryNumber from the year-scoped
	// sequence. A racing duplicate fingerprint returns apperrors.ErrDuplicate.
	SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine, changes map[string]domain.BalanceDelta) error

	// SaveReversalEntry persists a reversing entry and marks the original
	// REVERSED (with cross links) in the same transaction.
	SaveReversalEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine, changes map[string]domain.BalanceDelta, originalEntryID string, actor string, now time.Time) error
}

// BalanceReader answers balance and trial-balance queries from POSTED lines.
type BalanceReader interface {
	// GetAccountTotalsAsOf sums POSTED lines dated on or before asOf for one account.
	GetAccountTotalsAsOf(ctx context.Context, accountID string, asOf time.Time) (domain.BalanceTotals, error)

	// GetTrialBalanceData retrieves per-account POSTED debit/credit sums as of a date.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, map[string]domain.NormalBalance, error)

	// SumPostedTotals sums debits and credits across every POSTED entry,
	// for the global Σdebit == Σcredit safety net.
	SumPostedTotals(ctx context.Context) (domain.BalanceTotals, error)
}

// EntryRepositoryFacade combines all journal-entry repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
	BalanceReader
}
