package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/clinicore/clinic_ledger_app/internal/platform/config"
)

type revenueService struct {
	ledgerSvc portssvc.LedgerSvcFacade
	syncSvc   portssvc.SyncSvcFacade
	registry  *PostingRegistry
	cfg       config.SyncConfig
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewRevenueService creates the direct posting path used by billing
// collaborators. A posting failure degrades to a queued task instead of
// failing the caller's own transaction.
func NewRevenueService(ledgerSvc portssvc.LedgerSvcFacade, syncSvc portssvc.SyncSvcFacade, registry *PostingRegistry, cfg config.SyncConfig) portssvc.RevenueSvcFacade {
	return &revenueService{
		ledgerSvc: ledgerSvc,
		syncSvc:   syncSvc,
		registry:  registry,
		cfg:       cfg,
		sleep:     sleepCtx,
	}
}

func (s *revenueService) RecordRevenue(ctx context.Context, event domain.RevenueEvent, actor string) (*string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	adapter, err := s.registry.Adapter(event.Kind)
	if err != nil {
		return nil, err
	}
	req, err := adapter.BuildEntry(event)
	if err != nil {
		return nil, err
	}

	attempts := s.cfg.DirectMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		entry, postErr := s.ledgerSvc.PostEntry(ctx, req, actor)
		if postErr == nil {
			return &entry.EntryID, nil
		}
		if errors.Is(postErr, apperrors.ErrValidation) {
			// Malformed input will never succeed on retry; the caller must fix it.
			return nil, postErr
		}
		lastErr = postErr
		logger.Warn("Direct posting attempt failed",
			slog.String("reference_kind", string(event.Kind)),
			slog.Int64("reference_id", event.ReferenceID),
			slog.Int("attempt", attempt),
			slog.String("error", postErr.Error()))

		if attempt == attempts {
			break
		}
		// Short linear pause between direct attempts; the exponential
		// schedule belongs to the queue processor, not this hot path.
		if err := s.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
			break
		}
	}

	if _, err := s.syncSvc.EnqueueEvent(ctx, event, domain.OpInsert, adapter.Priority()); err != nil {
		return nil, fmt.Errorf("direct posting failed (%v) and enqueue failed: %w", lastErr, err)
	}

	logger.Warn("Direct posting exhausted, event queued for background sync",
		slog.String("reference_kind", string(event.Kind)),
		slog.Int64("reference_id", event.ReferenceID),
		slog.String("last_error", lastErr.Error()))
	return nil, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
