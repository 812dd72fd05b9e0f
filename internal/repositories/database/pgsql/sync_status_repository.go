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
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSyncStatusRepository struct {
	pool *pgxpool.Pool
}

// newPgxSyncStatusRepository creates a new repository for per-fingerprint
// sync status records.
func newPgxSyncStatusRepository(pool *pgxpool.Pool) portsrepo.SyncStatusRepository {
	return &PgxSyncStatusRepository{pool: pool}
}

var _ portsrepo.SyncStatusRepository = (*PgxSyncStatusRepository)(nil)

// Get retrieves the status for a fingerprint.
func (r *PgxSyncStatusRepository) Get(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*domain.SyncStatus, error) {
	query := `
		SELECT reference_kind, reference_id, synced, journal_entry_id, last_error, attempt_count, last_updated_at
		FROM sync_statuses
		WHERE reference_kind = $1 AND reference_id = $2;
	`
	var m models.SyncStatus
	err := r.pool.QueryRow(ctx, query, string(kind), referenceID).Scan(
		&m.ReferenceKind, &m.ReferenceID, &m.Synced, &m.JournalEntryID, &m.LastError, &m.AttemptCount, &m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sync status for %s %d: %w", kind, referenceID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find sync status", err)
	}
	status := mapping.ToDomainSyncStatus(m)
	return &status, nil
}

// UpsertSuccess records a successful posting outcome. An empty entry id
// (a delete with nothing to reverse) stores NULL.
func (r *PgxSyncStatusRepository) UpsertSuccess(ctx context.Context, kind domain.ReferenceKind, referenceID int64, journalEntryID string, now time.Time) error {
	var entryID *string
	if journalEntryID != "" {
		entryID = &journalEntryID
	}
	query := `
		INSERT INTO sync_statuses (reference_kind, reference_id, synced, journal_entry_id, last_error, attempt_count, last_updated_at)
		VALUES ($1, $2, TRUE, $3, NULL, 1, $4)
		ON CONFLICT (reference_kind, reference_id) DO UPDATE SET
			synced = TRUE,
			journal_entry_id = EXCLUDED.journal_entry_id,
			last_error = NULL,
			attempt_count = sync_statuses.attempt_count + 1,
			last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := r.pool.Exec(ctx, query, string(kind), referenceID, entryID, now); err != nil {
		return apperrors.NewAppError(500, "failed to upsert sync success", err)
	}
	return nil
}

// UpsertFailure records a failed attempt without clearing a previous success.
func (r *PgxSyncStatusRepository) UpsertFailure(ctx context.Context, kind domain.ReferenceKind, referenceID int64, lastError string, now time.Time) error {
	query := `
		INSERT INTO sync_statuses (reference_kind, reference_id, synced, journal_entry_id, last_error, attempt_count, last_updated_at)
		VALUES ($1, $2, FALSE, NULL, $3, 1, $4)
		ON CONFLICT (reference_kind, reference_id) DO UPDATE SET
			last_error = EXCLUDED.last_error,
			attempt_count = sync_statuses.attempt_count + 1,
			last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := r.pool.Exec(ctx, query, string(kind), referenceID, lastError, now); err != nil {
		return apperrors.NewAppError(500, "failed to upsert sync failure", err)
	}
	return nil
}
