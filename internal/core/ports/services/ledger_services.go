package services

import (
	"context"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade validates and persists balanced journal entries and
// answers balance queries. Read operations only ever reflect POSTED entries.
type LedgerSvcFacade interface {
	// PostEntry validates and atomically persists a balanced entry. If a
	// POSTED entry already exists for the request's fingerprint it returns
	// that entry instead of creating a duplicate.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, actor string) (*domain.JournalEntry, error)

	// ReverseEntry creates a balanced counter-entry and marks the original
	// REVERSED, in one transaction.
	ReverseEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetAccountBalance sums POSTED lines dated on or before asOf,
	// sign-adjusted by the account's normal balance.
	GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)

	// GetTrialBalance lists every active account with |balance| above the
	// tolerance, split into debit/credit columns by sign.
	GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)

	// GetAccountsByType lists active accounts of a type with balances as of a date.
	GetAccountsByType(ctx context.Context, accountType domain.AccountType, asOf time.Time) ([]dto.AccountResponse, error)
}
