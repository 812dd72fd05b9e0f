package pgsql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	"github.com/clinicore/clinic_ledger_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sourceTables maps each reference kind onto the billing table that owns
// its source-of-truth rows. All billing tables share the same shape:
// id, total_amount, tax_amount, payment_mode, occurred_at, description,
// deleted_at.
var sourceTables = map[domain.ReferenceKind]string{
	domain.KindConsultation:    "consultations",
	domain.KindPharmacy:        "pharmacy_bills",
	domain.KindLab:             "lab_bills",
	domain.KindUltrasound:      "ultrasound_bills",
	domain.KindPurchaseInvoice: "purchase_invoices",
}

type PgxSourceRepository struct {
	pool *pgxpool.Pool
}

// newPgxSourceRepository creates a read-only repository over the billing
// source tables.
func newPgxSourceRepository(pool *pgxpool.Pool) portsrepo.SourceRepository {
	return &PgxSourceRepository{pool: pool}
}

var _ portsrepo.SourceRepository = (*PgxSourceRepository)(nil)

func sourceTableFor(kind domain.ReferenceKind) (string, error) {
	table, ok := sourceTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: no source table for reference kind %q", apperrors.ErrValidation, kind)
	}
	return table, nil
}

// FindUnsyncedRevenue anti-joins one billing table against POSTED entries
// and the live queue: rows returned have neither a posting nor a pending
// task, so enqueueing them cannot create duplicates.
func (r *PgxSourceRepository) FindUnsyncedRevenue(ctx context.Context, kind domain.ReferenceKind, limit int) ([]domain.RevenueEvent, error) {
	table, err := sourceTableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT s.id, s.total_amount, s.tax_amount, s.payment_mode, s.occurred_at, s.description
		FROM %s s
		WHERE s.deleted_at IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM journal_entries e
				WHERE e.reference_kind = $1 AND e.reference_id = s.id AND e.status = 'POSTED'
			)
			AND NOT EXISTS (
				SELECT 1 FROM sync_tasks t
				WHERE t.reference_kind = $1 AND t.reference_id = s.id
					AND t.processed_at IS NULL AND NOT t.abandoned
			)
		ORDER BY s.id
		LIMIT $2;
	`, table)

	rows, err := r.pool.Query(ctx, query, string(kind), limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan source table "+table, err)
	}
	defer rows.Close()

	var events []domain.RevenueEvent
	for rows.Next() {
		var event domain.RevenueEvent
		var description *string
		if err := rows.Scan(&event.ReferenceID, &event.Amount, &event.TaxAmount, &event.PaymentMode, &event.Date, &description); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan source row from "+table, err)
		}
		event.Kind = kind
		if description != nil {
			event.Description = *description
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading source rows from "+table, err)
	}
	return events, nil
}

// SourceRecordExists reports whether the fingerprint still resolves to a
// live source-of-truth row.
func (r *PgxSourceRepository) SourceRecordExists(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (bool, error) {
	table, err := sourceTableFor(kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND deleted_at IS NULL);`, table)
	var exists bool
	if err := r.pool.QueryRow(ctx, query, referenceID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check source record in "+table, err)
	}
	return exists, nil
}

// FindOrphanedEntries finds POSTED entries whose fingerprint no longer
// resolves to any live source record.
func (r *PgxSourceRepository) FindOrphanedEntries(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	kinds := make([]domain.ReferenceKind, 0, len(sourceTables))
	for kind := range sourceTables {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	conditions := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		conditions = append(conditions, fmt.Sprintf(
			`(e.reference_kind = '%s' AND NOT EXISTS (SELECT 1 FROM %s s WHERE s.id = e.reference_id AND s.deleted_at IS NULL))`,
			kind, sourceTables[kind]))
	}

	query := fmt.Sprintf(`
		SELECT e.entry_id, e.entry_number, e.entry_date, e.reference_kind, e.reference_id, e.description, e.status,
			e.total_debit, e.total_credit, e.original_entry_id, e.reversing_entry_id,
			e.created_at, e.created_by, e.last_updated_at, e.last_updated_by
		FROM journal_entries e
		WHERE e.status = 'POSTED' AND (%s)
		ORDER BY e.entry_date, e.entry_id
		LIMIT $1;
	`, strings.Join(conditions, " OR "))

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query orphaned entries", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan orphaned entry row", err)
		}
		entries = append(entries, mapping.ToDomainEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading orphaned entry rows", err)
	}
	return entries, nil
}
