package pgsql

import (
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgsql repository over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo)
	syncQueueRepo := newPgxSyncQueueRepository(dbPool)
	syncStatusRepo := newPgxSyncStatusRepository(dbPool)
	alertRepo := newPgxAlertRepository(dbPool)
	sourceRepo := newPgxSourceRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:    accountRepo,
		EntryRepo:      entryRepo,
		SyncQueueRepo:  syncQueueRepo,
		SyncStatusRepo: syncStatusRepo,
		AlertRepo:      alertRepo,
		SourceRepo:     sourceRepo,
	}
}
