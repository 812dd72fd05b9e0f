package services

// ServiceContainer holds all service facades for dependency injection into
// handlers and background workers.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Ledger         LedgerSvcFacade
	Revenue        RevenueSvcFacade
	Sync           SyncSvcFacade
	Reconciliation ReconciliationSvcFacade
	Alert          AlertSvcFacade
}
