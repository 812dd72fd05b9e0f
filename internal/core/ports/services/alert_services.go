package services

import (
	"context"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

// AlertSvcFacade raises deduplicated operator alerts and records health
// history. Alerts are informational only; they never alter ledger state.
type AlertSvcFacade interface {
	// Raise inserts an alert unless an unresolved alert of the same type
	// already exists. detail is JSON-marshalled into the alert payload.
	Raise(ctx context.Context, alertType domain.AlertType, severity domain.AlertSeverity, message string, detail any) error

	// Resolve marks an alert resolved.
	Resolve(ctx context.Context, alertID string) error

	// ListUnresolved retrieves all live alerts.
	ListUnresolved(ctx context.Context) ([]domain.Alert, error)

	// RecordHealth appends a health snapshot.
	RecordHealth(ctx context.Context, snapshot domain.HealthSnapshot) error

	// ListHealthHistory retrieves recent snapshots, newest first.
	ListHealthHistory(ctx context.Context, limit int) ([]domain.HealthSnapshot, error)
}
