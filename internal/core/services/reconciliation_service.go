package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/utils/accounting"
)

type reconciliationService struct {
	sourceRepo portsrepo.SourceRepository
	entryRepo  portsrepo.BalanceReader
	syncSvc    portssvc.SyncSvcFacade
	alertSvc   portssvc.AlertSvcFacade
	registry   *PostingRegistry
	interval   time.Duration
	batchSize  int
	logger     *slog.Logger
	now        func() time.Time
}

// NewReconciliationService creates the periodic source-vs-ledger scanner.
func NewReconciliationService(
	sourceRepo portsrepo.SourceRepository,
	entryRepo portsrepo.BalanceReader,
	syncSvc portssvc.SyncSvcFacade,
	alertSvc portssvc.AlertSvcFacade,
	registry *PostingRegistry,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) portssvc.ReconciliationSvcFacade {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &reconciliationService{
		sourceRepo: sourceRepo,
		entryRepo:  entryRepo,
		syncSvc:    syncSvc,
		alertSvc:   alertSvc,
		registry:   registry,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce performs one reconciliation pass. It repairs gaps by enqueueing,
// never by posting directly; the queue processor keeps posting on a single
// code path.
func (s *reconciliationService) RunOnce(ctx context.Context) (*domain.ReconciliationReport, error) {
	report := &domain.ReconciliationReport{StartedAt: s.now()}

	for _, kind := range s.registry.Kinds() {
		events, err := s.sourceRepo.FindUnsyncedRevenue(ctx, kind, s.batchSize)
		if err != nil {
			// One unreadable source table must not stop the other scans.
			s.logger.Error("Reconciliation scan failed for source",
				slog.String("reference_kind", string(kind)),
				slog.String("error", err.Error()))
			continue
		}
		for _, event := range events {
			if _, err := s.syncSvc.EnqueueEvent(ctx, event, domain.OpInsert, domain.PriorityNormal); err != nil {
				s.logger.Error("Failed to enqueue reconciliation gap",
					slog.String("reference_kind", string(event.Kind)),
					slog.Int64("reference_id", event.ReferenceID),
					slog.String("error", err.Error()))
				continue
			}
			report.GapsEnqueued++
		}
	}

	orphans, err := s.sourceRepo.FindOrphanedEntries(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("Orphan scan failed", slog.String("error", err.Error()))
	} else if len(orphans) > 0 {
		report.OrphansFound = len(orphans)
		fingerprints := make([]map[string]any, 0, len(orphans))
		for _, entry := range orphans {
			fingerprints = append(fingerprints, map[string]any{
				"entryID":       entry.EntryID,
				"entryNumber":   entry.EntryNumber,
				"referenceKind": entry.ReferenceKind,
				"referenceID":   entry.ReferenceID,
			})
		}
		// Orphans need a human decision; an automatic reversal could
		// destroy a legitimate posting whose source was mistakenly purged.
		if err := s.alertSvc.Raise(ctx, domain.AlertDataInconsistency, domain.SeverityMedium,
			fmt.Sprintf("%d posted entries have no source record", len(orphans)),
			fingerprints); err != nil {
			s.logger.Error("Failed to raise orphan alert", slog.String("error", err.Error()))
		}
	}

	totals, err := s.entryRepo.SumPostedTotals(ctx)
	if err != nil {
		s.logger.Error("Global balance check failed", slog.String("error", err.Error()))
	} else {
		diff := totals.Debit.Sub(totals.Credit).Abs()
		report.GlobalBalanced = diff.LessThanOrEqual(accounting.BalanceTolerance)
		if !report.GlobalBalanced {
			if err := s.alertSvc.Raise(ctx, domain.AlertDataInconsistency, domain.SeverityHigh,
				fmt.Sprintf("Ledger out of balance: total debits %s, total credits %s", totals.Debit, totals.Credit),
				map[string]string{
					"totalDebit":  totals.Debit.String(),
					"totalCredit": totals.Credit.String(),
					"difference":  diff.String(),
				}); err != nil {
				s.logger.Error("Failed to raise balance alert", slog.String("error", err.Error()))
			}
		}
	}

	report.FinishedAt = s.now()
	s.logger.Info("Reconciliation pass finished",
		slog.Int("gaps_enqueued", report.GapsEnqueued),
		slog.Int("orphans_found", report.OrphansFound),
		slog.Bool("global_balanced", report.GlobalBalanced),
		slog.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

// Start runs reconciliation on the configured interval until ctx is
// cancelled. The first pass runs shortly after startup.
func (s *reconciliationService) Start(ctx context.Context) {
	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	// Short initial delay so startup migrations and workers settle first.
	select {
	case <-ctx.Done():
		return
	case <-time.After(30 * time.Second):
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Reconciliation pass failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
