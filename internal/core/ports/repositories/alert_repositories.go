package repositories

import (
	"context"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

// AlertRepository persists deduplicated operator alerts and health history.
type AlertRepository interface {
	// InsertIfAbsent inserts the alert unless an unresolved alert of the
	// same type already exists. Reports whether a row was inserted.
	InsertIfAbsent(ctx context.Context, alert domain.Alert) (bool, error)

	// Resolve marks an alert resolved. Returns apperrors.ErrNotFound when
	// no unresolved alert with that id exists.
	Resolve(ctx context.Context, alertID string, now time.Time) error

	// ListUnresolved retrieves all unresolved alerts, newest first.
	ListUnresolved(ctx context.Context) ([]domain.Alert, error)

	// SaveHealthSnapshot appends a health snapshot.
	SaveHealthSnapshot(ctx context.Context, snapshot domain.HealthSnapshot) error

	// ListHealthHistory retrieves the most recent snapshots, newest first.
	ListHealthHistory(ctx context.Context, limit int) ([]domain.HealthSnapshot, error)
}
