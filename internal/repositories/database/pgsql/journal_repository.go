package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	"github.com/clinicore/clinic_ledger_app/internal/models"
	"github.com/clinicore/clinic_ledger_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, entry_number, entry_date, reference_kind, reference_id, description, status,
	total_debit, total_credit, original_entry_id, reversing_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, debit_amount, credit_amount, description,
	created_at, created_by, last_updated_at, last_updated_by`

// postedFingerprintConstraint is the partial unique index guaranteeing at
// most one POSTED entry per (reference_kind, reference_id).
const postedFingerprintConstraint = "uq_journal_entries_posted_fingerprint"

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID, &m.EntryNumber, &m.EntryDate, &m.ReferenceKind, &m.ReferenceID, &m.Description, &m.Status,
		&m.TotalDebit, &m.TotalCredit, &m.OriginalEntryID, &m.ReversingEntryID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// nextEntryNumber bumps the year-scoped counter inside the caller's
// transaction and formats the entry number. The counter row is created on
// first use; the upsert serializes concurrent posters on the row lock.
func nextEntryNumber(ctx context.Context, tx pgx.Tx, entryDate time.Time) (string, error) {
	year := entryDate.Year()
	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO entry_number_sequences (year, last_value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = entry_number_sequences.last_value + 1
		RETURNING last_value;
	`, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("failed to advance entry number sequence for year %d: %w", year, err)
	}
	return fmt.Sprintf("JE%d%06d", year, seq), nil
}

func isDuplicateFingerprint(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == postedFingerprintConstraint
}

// SaveEntry persists the entry header and lines and additively updates the
// touched balances, all in one transaction. It assigns entry.EntryNumber.
// A racing duplicate fingerprint rolls everything back, sequence bump
// included, and surfaces apperrors.ErrDuplicate.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine, changes map[string]domain.BalanceDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	entryNumber, err := nextEntryNumber(ctx, tx, entry.EntryDate)
	if err != nil {
		return apperrors.NewAppError(500, "failed to assign entry number", err)
	}
	entry.EntryNumber = entryNumber

	if err := r.insertEntryInTx(ctx, tx, *entry); err != nil {
		return err
	}

	accountIDs := make([]string, 0, len(changes))
	for accountID := range changes {
		accountIDs = append(accountIDs, accountID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for posting", err)
	}
	if err := r.accountRepo.UpsertDailyBalancesInTx(ctx, tx, entry.EntryDate, changes); err != nil {
		return err
	}

	if err := r.insertLinesInTx(ctx, tx, lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SaveReversalEntry marks the original REVERSED and persists the reversing
// entry in the same transaction. The original's status flips before the
// reversal inserts so the POSTED fingerprint constraint never sees two
// POSTED rows for the same reference.
func (r *PgxEntryRepository) SaveReversalEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine, changes map[string]domain.BalanceDelta, originalEntryID string, actor string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1 AND status = $6;
	`, originalEntryID, string(domain.Reversed), entry.EntryID, now, actor, string(domain.Posted))
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark original entry reversed", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not in POSTED status", apperrors.ErrConflict, originalEntryID)
	}

	entryNumber, err := nextEntryNumber(ctx, tx, entry.EntryDate)
	if err != nil {
		return apperrors.NewAppError(500, "failed to assign entry number", err)
	}
	entry.EntryNumber = entryNumber

	if err := r.insertEntryInTx(ctx, tx, *entry); err != nil {
		return err
	}

	accountIDs := make([]string, 0, len(changes))
	for accountID := range changes {
		accountIDs = append(accountIDs, accountID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for reversal", err)
	}
	if err := r.accountRepo.UpsertDailyBalancesInTx(ctx, tx, entry.EntryDate, changes); err != nil {
		return err
	}

	if err := r.insertLinesInTx(ctx, tx, lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxEntryRepository) insertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelEntry(entry)
	query := `
		INSERT INTO journal_entries (entry_id, entry_number, entry_date, reference_kind, reference_id, description, status,
			total_debit, total_credit, original_entry_id, reversing_entry_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID, m.EntryNumber, m.EntryDate, m.ReferenceKind, m.ReferenceID, m.Description, m.Status,
		m.TotalDebit, m.TotalCredit, m.OriginalEntryID, m.ReversingEntryID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isDuplicateFingerprint(err) {
			return fmt.Errorf("posted entry for %s %d: %w", m.ReferenceKind, m.ReferenceID, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert journal entry "+m.EntryID, err)
	}
	return nil
}

func (r *PgxEntryRepository) insertLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	query := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, debit_amount, credit_amount, description,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelLine(line)
		batch.Queue(query,
			m.LineID, m.EntryID, m.AccountID, m.DebitAmount, m.CreditAmount, m.Description,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to insert journal lines", err)
		}
	}
	return nil
}

// FindEntryByID retrieves a specific journal entry by its unique identifier.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("journal entry %s: %w", entryID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry "+entryID, err)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// FindPostedEntryByReference retrieves the POSTED entry for a fingerprint.
func (r *PgxEntryRepository) FindPostedEntryByReference(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE reference_kind = $1 AND reference_id = $2 AND status = $3;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, string(kind), referenceID, string(domain.Posted)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("posted entry for %s %d: %w", kind, referenceID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find posted entry by reference", err)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines belonging to one entry.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY line_id;`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines of entry "+entryID, err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(
			&m.LineID, &m.EntryID, &m.AccountID, &m.DebitAmount, &m.CreditAmount, &m.Description,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line row", err)
		}
		lines = append(lines, mapping.ToDomainLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading journal line rows", err)
	}
	return lines, nil
}

// GetAccountTotalsAsOf sums POSTED lines dated on or before asOf for one account.
func (r *PgxEntryRepository) GetAccountTotalsAsOf(ctx context.Context, accountID string, asOf time.Time) (domain.BalanceTotals, error) {
	query := `
		SELECT COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1 AND e.status = $2 AND e.entry_date <= $3;
	`
	var totals domain.BalanceTotals
	err := r.Pool.QueryRow(ctx, query, accountID, string(domain.Posted), asOf).Scan(&totals.Debit, &totals.Credit)
	if err != nil {
		return domain.BalanceTotals{}, apperrors.NewAppError(500, "failed to sum lines for account "+accountID, err)
	}
	return totals, nil
}

// GetTrialBalanceData retrieves per-account POSTED debit/credit sums as of
// a date, for every active account, plus the normal balances needed to
// sign-adjust them.
func (r *PgxEntryRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, map[string]domain.NormalBalance, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type, a.normal_balance,
			COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM accounts a
		LEFT JOIN (journal_lines l
			JOIN journal_entries e ON e.entry_id = l.entry_id
				AND e.status = $1 AND e.entry_date <= $2)
			ON l.account_id = a.account_id
		WHERE a.is_active
		GROUP BY a.account_id, a.code, a.name, a.account_type, a.normal_balance
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.Posted), asOf)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query trial balance data", err)
	}
	defer rows.Close()

	var result []domain.TrialBalanceRow
	normals := make(map[string]domain.NormalBalance)
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType, normal string
		if err := rows.Scan(&row.AccountID, &row.AccountCode, &row.AccountName, &accountType, &normal,
			&row.Debit, &row.Credit); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		row.AccountType = domain.AccountType(accountType)
		normals[row.AccountID] = domain.NormalBalance(normal)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading trial balance rows", err)
	}
	return result, normals, nil
}

// SumPostedTotals sums header totals across every POSTED entry.
func (r *PgxEntryRepository) SumPostedTotals(ctx context.Context) (domain.BalanceTotals, error) {
	query := `
		SELECT COALESCE(SUM(total_debit), 0), COALESCE(SUM(total_credit), 0)
		FROM journal_entries
		WHERE status = $1;
	`
	var totals domain.BalanceTotals
	err := r.Pool.QueryRow(ctx, query, string(domain.Posted)).Scan(&totals.Debit, &totals.Credit)
	if err != nil {
		return domain.BalanceTotals{}, apperrors.NewAppError(500, "failed to sum posted entry totals", err)
	}
	return totals, nil
}
