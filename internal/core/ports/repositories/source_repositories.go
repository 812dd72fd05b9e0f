package repositories

import (
	"context"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

// SourceRepository reads the operational billing tables that feed the
// ledger. Reconciliation consumes it read-only; it never writes sources.
type SourceRepository interface {
	// FindUnsyncedRevenue finds qualifying source records of one kind with
	// no corresponding POSTED entry and no task already waiting in the
	// queue (an anti-join), up to limit rows.
	FindUnsyncedRevenue(ctx context.Context, kind domain.ReferenceKind, limit int) ([]domain.RevenueEvent, error)

	// SourceRecordExists reports whether the fingerprint still resolves to
	// a source-of-truth row.
	SourceRecordExists(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (bool, error)

	// FindOrphanedEntries finds POSTED entries whose fingerprint no longer
	// resolves to any known source record.
	FindOrphanedEntries(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}
