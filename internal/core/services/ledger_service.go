package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/clinicore/clinic_ledger_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ledgerService struct {
	entryRepo   portsrepo.EntryRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	now         func() time.Time
}

// NewLedgerService creates the journal posting and reporting service.
func NewLedgerService(entryRepo portsrepo.EntryRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		now:         time.Now,
	}
}

// PostEntry validates the request, resolves account codes, and persists the
// entry atomically. The (reference_kind, reference_id) fingerprint makes
// posting idempotent: a second call returns the entry the first one created.
func (s *ledgerService) PostEntry(ctx context.Context, req dto.PostEntryRequest, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.ReferenceKind == "" || req.ReferenceID == 0 {
		return nil, fmt.Errorf("%w: reference kind and reference id are required", apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: entry must have at least one line", apperrors.ErrValidation)
	}

	// Fast path for replays: the storage constraint is the authority, but
	// most duplicates are caught here without opening a transaction.
	existing, err := s.entryRepo.FindPostedEntryByReference(ctx, req.ReferenceKind, req.ReferenceID)
	if err == nil {
		logger.Info("Posting request matched existing entry",
			slog.String("entry_id", existing.EntryID),
			slog.String("reference_kind", string(req.ReferenceKind)),
			slog.Int64("reference_id", req.ReferenceID))
		return s.withLines(ctx, existing)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing entry: %w", err)
	}

	accounts, err := s.resolveAccounts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entryID := uuid.NewString()
	lines := make([]domain.JournalLine, 0, len(req.Lines))
	changes := make(map[string]domain.BalanceDelta)
	for _, reqLine := range req.Lines {
		account := accounts[reqLine.AccountCode]
		line := domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    account.AccountID,
			DebitAmount:  reqLine.Debit,
			CreditAmount: reqLine.Credit,
			Description:  reqLine.Description,
			AuditFields: domain.AuditFields{
				CreatedAt: now, CreatedBy: actor,
				LastUpdatedAt: now, LastUpdatedBy: actor,
			},
		}
		lines = append(lines, line)

		delta := changes[account.AccountID]
		delta.Debit = delta.Debit.Add(line.DebitAmount)
		delta.Credit = delta.Credit.Add(line.CreditAmount)
		changes[account.AccountID] = delta
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	totalDebit, totalCredit := accounting.SumLines(lines)
	entry := &domain.JournalEntry{
		EntryID:       entryID,
		EntryDate:     req.Date,
		ReferenceKind: req.ReferenceKind,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		Status:        domain.Posted,
		TotalDebit:    totalDebit,
		TotalCredit:   totalCredit,
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: actor,
			LastUpdatedAt: now, LastUpdatedBy: actor,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry, lines, changes); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race against a concurrent poster. The winner's entry
			// is the canonical one.
			winner, findErr := s.entryRepo.FindPostedEntryByReference(ctx, req.ReferenceKind, req.ReferenceID)
			if findErr != nil {
				return nil, fmt.Errorf("duplicate entry detected but winner not found: %w", findErr)
			}
			logger.Info("Lost posting race, returning winner entry",
				slog.String("entry_id", winner.EntryID),
				slog.String("reference_kind", string(req.ReferenceKind)),
				slog.Int64("reference_id", req.ReferenceID))
			return s.withLines(ctx, winner)
		}
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	entry.Lines = lines
	logger.Info("Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("reference_kind", string(entry.ReferenceKind)),
		slog.Int64("reference_id", entry.ReferenceID),
		slog.String("total_debit", entry.TotalDebit.String()))
	return entry, nil
}

// ReverseEntry creates a counter-entry with swapped sides and marks the
// original REVERSED, in one transaction. Only POSTED entries can be reversed.
func (s *ledgerService) ReverseEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry to reverse: %w", err)
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s has status %s and cannot be reversed", apperrors.ErrConflict, entryID, original.Status)
	}
	if original.OriginalEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrConflict, entryID)
	}

	originalLines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of entry %s: %w", entryID, err)
	}

	now := s.now()
	reversalID := uuid.NewString()
	lines := make([]domain.JournalLine, 0, len(originalLines))
	changes := make(map[string]domain.BalanceDelta)
	for _, orig := range originalLines {
		line := domain.JournalLine{
			LineID:    uuid.NewString(),
			EntryID:   reversalID,
			AccountID: orig.AccountID,
			// Sides swap so the counter-entry cancels the original.
			DebitAmount:  orig.CreditAmount,
			CreditAmount: orig.DebitAmount,
			Description:  orig.Description,
			AuditFields: domain.AuditFields{
				CreatedAt: now, CreatedBy: actor,
				LastUpdatedAt: now, LastUpdatedBy: actor,
			},
		}
		lines = append(lines, line)

		delta := changes[orig.AccountID]
		delta.Debit = delta.Debit.Add(line.DebitAmount)
		delta.Credit = delta.Credit.Add(line.CreditAmount)
		changes[orig.AccountID] = delta
	}

	entry := &domain.JournalEntry{
		EntryID:         reversalID,
		EntryDate:       original.EntryDate,
		ReferenceKind:   original.ReferenceKind,
		ReferenceID:     original.ReferenceID,
		Description:     fmt.Sprintf("Reversal of %s", original.EntryNumber),
		Status:          domain.Posted,
		TotalDebit:      original.TotalCredit,
		TotalCredit:     original.TotalDebit,
		OriginalEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: actor,
			LastUpdatedAt: now, LastUpdatedBy: actor,
		},
	}

	if err := s.entryRepo.SaveReversalEntry(ctx, entry, lines, changes, original.EntryID, actor, now); err != nil {
		return nil, fmt.Errorf("failed to save reversal of entry %s: %w", entryID, err)
	}

	entry.Lines = lines
	logger.Info("Journal entry reversed",
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversal_entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber))
	return entry, nil
}

func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return s.withLines(ctx, entry)
}

func (s *ledgerService) GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	totals, err := s.entryRepo.GetAccountTotalsAsOf(ctx, accountID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum lines for account %s: %w", accountID, err)
	}
	return accounting.AdjustedBalance(totals, account.NormalBalance), nil
}

// GetTrialBalance reports each active account's sign-adjusted balance,
// placed in the debit or credit column by sign. An account whose adjusted
// balance is negative appears on the opposite side of its normal balance.
func (s *ledgerService) GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	rawRows, normals, err := s.entryRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load trial balance data: %w", err)
	}

	tb := &domain.TrialBalance{
		AsOf:        asOf,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, raw := range rawRows {
		normal, ok := normals[raw.AccountID]
		if !ok {
			normal = domain.NormalBalanceFor(raw.AccountType)
		}
		adjusted := accounting.AdjustedBalance(domain.BalanceTotals{Debit: raw.Debit, Credit: raw.Credit}, normal)
		if adjusted.Abs().LessThanOrEqual(accounting.BalanceTolerance) {
			continue
		}

		row := domain.TrialBalanceRow{
			AccountID:   raw.AccountID,
			AccountCode: raw.AccountCode,
			AccountName: raw.AccountName,
			AccountType: raw.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		debitSide := normal == domain.DebitNormal
		if adjusted.IsNegative() {
			debitSide = !debitSide
			adjusted = adjusted.Abs()
		}
		if debitSide {
			row.Debit = adjusted
		} else {
			row.Credit = adjusted
		}

		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	return tb, nil
}

func (s *ledgerService) GetAccountsByType(ctx context.Context, accountType domain.AccountType, asOf time.Time) ([]dto.AccountResponse, error) {
	accounts, err := s.accountRepo.ListAccountsByType(ctx, accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts of type %s: %w", accountType, err)
	}

	responses := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		account := accounts[i]
		totals, err := s.entryRepo.GetAccountTotalsAsOf(ctx, account.AccountID, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to sum lines for account %s: %w", account.AccountID, err)
		}
		balance := accounting.AdjustedBalance(totals, account.NormalBalance)

		resp := dto.ToAccountResponse(&account)
		resp.Balance = &balance
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *ledgerService) resolveAccounts(ctx context.Context, reqLines []dto.PostEntryLine) (map[string]domain.Account, error) {
	seen := make(map[string]struct{}, len(reqLines))
	codes := make([]string, 0, len(reqLines))
	for _, line := range reqLines {
		if _, ok := seen[line.AccountCode]; ok {
			continue
		}
		seen[line.AccountCode] = struct{}{}
		codes = append(codes, line.AccountCode)
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account codes: %w", err)
	}
	for _, code := range codes {
		account, ok := accounts[code]
		if !ok {
			return nil, fmt.Errorf("%w: unknown account code %q", apperrors.ErrValidation, code)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %q is inactive", apperrors.ErrValidation, code)
		}
	}
	return accounts, nil
}

func (s *ledgerService) withLines(ctx context.Context, entry *domain.JournalEntry) (*domain.JournalEntry, error) {
	if len(entry.Lines) > 0 {
		return entry, nil
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entry.EntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of entry %s: %w", entry.EntryID, err)
	}
	entry.Lines = lines
	return entry, nil
}
