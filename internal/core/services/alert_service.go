package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/google/uuid"
)

type alertService struct {
	alertRepo portsrepo.AlertRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewAlertService creates the deduplicated alerting service.
func NewAlertService(alertRepo portsrepo.AlertRepository, logger *slog.Logger) portssvc.AlertSvcFacade {
	if logger == nil {
		logger = slog.Default()
	}
	return &alertService{alertRepo: alertRepo, logger: logger, now: time.Now}
}

func (s *alertService) Raise(ctx context.Context, alertType domain.AlertType, severity domain.AlertSeverity, message string, detail any) error {
	var payload json.RawMessage
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal alert detail: %w", err)
		}
		payload = raw
	}

	alert := domain.Alert{
		AlertID:     uuid.NewString(),
		Type:        alertType,
		Severity:    severity,
		Message:     message,
		Detail:      payload,
		TriggeredAt: s.now(),
	}
	inserted, err := s.alertRepo.InsertIfAbsent(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	if inserted {
		s.logger.Warn("Alert raised",
			slog.String("alert_id", alert.AlertID),
			slog.String("type", string(alertType)),
			slog.String("severity", string(severity)),
			slog.String("message", message))
	} else {
		s.logger.Debug("Alert suppressed, unresolved alert of same type exists",
			slog.String("type", string(alertType)))
	}
	return nil
}

func (s *alertService) Resolve(ctx context.Context, alertID string) error {
	if err := s.alertRepo.Resolve(ctx, alertID, s.now()); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Alert resolved", slog.String("alert_id", alertID))
	return nil
}

func (s *alertService) ListUnresolved(ctx context.Context) ([]domain.Alert, error) {
	return s.alertRepo.ListUnresolved(ctx)
}

func (s *alertService) RecordHealth(ctx context.Context, snapshot domain.HealthSnapshot) error {
	return s.alertRepo.SaveHealthSnapshot(ctx, snapshot)
}

func (s *alertService) ListHealthHistory(ctx context.Context, limit int) ([]domain.HealthSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.alertRepo.ListHealthHistory(ctx, limit)
}
