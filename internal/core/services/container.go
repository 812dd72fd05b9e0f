package services

import (
	"log/slog"

	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/platform/config"
	"github.com/clinicore/clinic_ledger_app/internal/platform/metrics"
)

// NewServiceContainer wires every service with its repositories and
// cross-service dependencies. metrics may be nil in tests.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, m *metrics.Metrics, logger *slog.Logger) *portssvc.ServiceContainer {
	registry := DefaultPostingRegistry()

	accountSvc := NewAccountService(repos.AccountRepo)
	ledgerSvc := NewLedgerService(repos.EntryRepo, repos.AccountRepo)
	alertSvc := NewAlertService(repos.AlertRepo, logger)
	syncSvc := NewSyncService(
		repos.SyncQueueRepo,
		repos.SyncStatusRepo,
		repos.EntryRepo,
		ledgerSvc,
		alertSvc,
		registry,
		cfg.Sync,
		cfg.Health,
		m,
		logger,
	)
	revenueSvc := NewRevenueService(ledgerSvc, syncSvc, registry, cfg.Sync)
	reconSvc := NewReconciliationService(
		repos.SourceRepo,
		repos.EntryRepo,
		syncSvc,
		alertSvc,
		registry,
		cfg.ReconInterval,
		cfg.ReconBatchSize,
		logger,
	)

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Ledger:         ledgerSvc,
		Revenue:        revenueSvc,
		Sync:           syncSvc,
		Reconciliation: reconSvc,
		Alert:          alertSvc,
	}
}
