package services

import (
	"context"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
)

// RevenueSvcFacade is the direct posting path used by billing operations.
type RevenueSvcFacade interface {
	// RecordRevenue attempts synchronous posting with a small bounded
	// number of retries; on exhaustion it enqueues a sync task and returns
	// a nil entry id. Only validation errors propagate to the caller.
	RecordRevenue(ctx context.Context, event domain.RevenueEvent, actor string) (*string, error)
}

// SyncSvcFacade drains the durable queue and exposes the admin surface.
type SyncSvcFacade interface {
	// Enqueue persists a sync task from an admin request.
	Enqueue(ctx context.Context, req dto.EnqueueTaskRequest) (*domain.SyncTask, error)

	// EnqueueEvent persists a sync task carrying a revenue event snapshot.
	EnqueueEvent(ctx context.Context, event domain.RevenueEvent, op domain.OperationType, priority int) (*domain.SyncTask, error)

	// ProcessOnce leases and processes one batch of due tasks. Returns the
	// number of tasks attempted.
	ProcessOnce(ctx context.Context, workerID string) (int, error)

	// Start runs the worker pool and the health reporter until ctx is
	// cancelled, finishing in-flight tasks before returning.
	Start(ctx context.Context)

	// ForceRetry makes one task due again immediately, clearing retry state.
	ForceRetry(ctx context.Context, operationID string) error

	// ForceRetryAllFailed resets every abandoned task.
	ForceRetryAllFailed(ctx context.Context) (int64, error)

	// ListTasks pages tasks in the given lifecycle state.
	ListTasks(ctx context.Context, state domain.TaskState, limit int, nextToken *string) (*dto.ListTasksResponse, error)

	// IsSynced reports whether the fingerprint has a successful posting.
	IsSynced(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (bool, error)

	// ExistingEntryID returns the journal entry id a fingerprint resolved
	// to, or nil when nothing has been posted for it yet.
	ExistingEntryID(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*string, error)

	// CaptureHealthSnapshot measures queue health, persists a snapshot, and
	// raises a QUEUE_BACKUP alert on CRITICAL.
	CaptureHealthSnapshot(ctx context.Context) (*domain.HealthSnapshot, error)
}

// ReconciliationSvcFacade compares source records against the ledger.
type ReconciliationSvcFacade interface {
	// RunOnce performs one reconciliation pass: enqueue gaps, flag orphans,
	// verify the global balance invariant. It never posts directly.
	RunOnce(ctx context.Context) (*domain.ReconciliationReport, error)

	// Start runs reconciliation on the configured interval until ctx is cancelled.
	Start(ctx context.Context)
}
