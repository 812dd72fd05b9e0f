package mapping

import (
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/models"
)

// ToDomainAlert converts an alert database model to its domain type.
func ToDomainAlert(m models.Alert) domain.Alert {
	return domain.Alert{
		AlertID:     m.AlertID,
		Type:        domain.AlertType(m.Type),
		Severity:    domain.AlertSeverity(m.Severity),
		Message:     m.Message,
		Detail:      m.Detail,
		TriggeredAt: m.TriggeredAt,
		ResolvedAt:  m.ResolvedAt,
	}
}

// ToModelAlert converts a domain alert to its database model.
func ToModelAlert(a domain.Alert) models.Alert {
	return models.Alert{
		AlertID:     a.AlertID,
		Type:        string(a.Type),
		Severity:    string(a.Severity),
		Message:     a.Message,
		Detail:      a.Detail,
		TriggeredAt: a.TriggeredAt,
		ResolvedAt:  a.ResolvedAt,
	}
}

// ToDomainHealthSnapshot converts a health snapshot model to its domain type.
func ToDomainHealthSnapshot(m models.HealthSnapshot) domain.HealthSnapshot {
	return domain.HealthSnapshot{
		SnapshotID:   m.SnapshotID,
		QueueDepth:   m.QueueDepth,
		FailedCount:  m.FailedCount,
		AvgLatencyMS: m.AvgLatencyMS,
		Status:       domain.HealthStatus(m.Status),
		TakenAt:      m.TakenAt,
	}
}
