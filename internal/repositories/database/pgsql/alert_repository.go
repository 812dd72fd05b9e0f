package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	"github.com/clinicore/clinic_ledger_app/internal/models"
	"github.com/clinicore/clinic_ledger_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAlertRepository struct {
	pool *pgxpool.Pool
}

// newPgxAlertRepository creates a new repository for alerts and health
// snapshots.
func newPgxAlertRepository(pool *pgxpool.Pool) portsrepo.AlertRepository {
	return &PgxAlertRepository{pool: pool}
}

var _ portsrepo.AlertRepository = (*PgxAlertRepository)(nil)

// InsertIfAbsent inserts the alert unless an unresolved alert of the same
// type exists. The partial unique index on (alert_type) WHERE resolved_at
// IS NULL makes the dedup atomic under concurrent raisers.
func (r *PgxAlertRepository) InsertIfAbsent(ctx context.Context, alert domain.Alert) (bool, error) {
	m := mapping.ToModelAlert(alert)
	query := `
		INSERT INTO alerts (alert_id, alert_type, severity, message, detail, triggered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (alert_type) WHERE resolved_at IS NULL DO NOTHING;
	`
	tag, err := r.pool.Exec(ctx, query, m.AlertID, m.Type, m.Severity, m.Message, m.Detail, m.TriggeredAt)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to insert alert", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Resolve marks an alert resolved.
func (r *PgxAlertRepository) Resolve(ctx context.Context, alertID string, now time.Time) error {
	query := `UPDATE alerts SET resolved_at = $2 WHERE alert_id = $1 AND resolved_at IS NULL;`
	tag, err := r.pool.Exec(ctx, query, alertID, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to resolve alert "+alertID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unresolved alert %s: %w", alertID, apperrors.ErrNotFound)
	}
	return nil
}

// ListUnresolved retrieves all unresolved alerts, newest first.
func (r *PgxAlertRepository) ListUnresolved(ctx context.Context) ([]domain.Alert, error) {
	query := `
		SELECT alert_id, alert_type, severity, message, detail, triggered_at, resolved_at
		FROM alerts
		WHERE resolved_at IS NULL
		ORDER BY triggered_at DESC;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unresolved alerts", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var m models.Alert
		if err := rows.Scan(&m.AlertID, &m.Type, &m.Severity, &m.Message, &m.Detail, &m.TriggeredAt, &m.ResolvedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan alert row", err)
		}
		alerts = append(alerts, mapping.ToDomainAlert(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading alert rows", err)
	}
	return alerts, nil
}

// SaveHealthSnapshot appends a health snapshot.
func (r *PgxAlertRepository) SaveHealthSnapshot(ctx context.Context, snapshot domain.HealthSnapshot) error {
	query := `
		INSERT INTO health_snapshots (snapshot_id, queue_depth, failed_count, avg_latency_ms, status, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.pool.Exec(ctx, query,
		snapshot.SnapshotID, snapshot.QueueDepth, snapshot.FailedCount, snapshot.AvgLatencyMS,
		string(snapshot.Status), snapshot.TakenAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert health snapshot", err)
	}
	return nil
}

// ListHealthHistory retrieves the most recent snapshots, newest first.
func (r *PgxAlertRepository) ListHealthHistory(ctx context.Context, limit int) ([]domain.HealthSnapshot, error) {
	query := `
		SELECT snapshot_id, queue_depth, failed_count, avg_latency_ms, status, taken_at
		FROM health_snapshots
		ORDER BY taken_at DESC
		LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query health history", err)
	}
	defer rows.Close()

	var snapshots []domain.HealthSnapshot
	for rows.Next() {
		var m models.HealthSnapshot
		if err := rows.Scan(&m.SnapshotID, &m.QueueDepth, &m.FailedCount, &m.AvgLatencyMS, &m.Status, &m.TakenAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan health snapshot row", err)
		}
		snapshots = append(snapshots, mapping.ToDomainHealthSnapshot(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading health snapshot rows", err)
	}
	return snapshots, nil
}
