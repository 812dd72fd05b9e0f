package repositories

import (
	"context"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

// SyncQueueRepository is the durable store of pending synchronization tasks.
type SyncQueueRepository interface {
	// Enqueue persists a task. Re-enqueueing an existing operation_id is a no-op.
	Enqueue(ctx context.Context, task domain.SyncTask) error

	// LeaseDueTasks atomically claims up to batchSize due tasks whose lease
	// is absent or older than lockTTL, so no two workers ever process the
	// same task concurrently.
	LeaseDueTasks(ctx context.Context, workerID string, batchSize int, lockTTL time.Duration, now time.Time) ([]domain.SyncTask, error)

	// MarkProcessed records successful processing and releases the lease.
	MarkProcessed(ctx context.Context, operationID string, now time.Time) error

	// Reschedule records a failed attempt and releases the lease, making the
	// task due again at nextAt.
	Reschedule(ctx context.Context, operationID string, retryCount int, nextAt time.Time, lastError string) error

	// Abandon marks a task permanently failed and releases the lease.
	Abandon(ctx context.Context, operationID string, retryCount int, lastError string) error

	// ReleaseLease clears the lease without changing scheduling, used on
	// worker shutdown for tasks claimed but not attempted.
	ReleaseLease(ctx context.Context, operationID string) error

	// ResetTask clears retry and abandonment state so the task is retried
	// immediately. Returns apperrors.ErrNotFound for an unknown operation.
	ResetTask(ctx context.Context, operationID string, now time.Time) error

	// ResetAllAbandoned resets every abandoned task and reports how many.
	ResetAllAbandoned(ctx context.Context, now time.Time) (int64, error)

	// ListTasks retrieves tasks in the given state with keyset pagination.
	ListTasks(ctx context.Context, state domain.TaskState, lockTTL time.Duration, limit int, nextToken *string) ([]domain.SyncTask, *string, error)

	// CountDue counts unprocessed, unabandoned tasks that are due now.
	CountDue(ctx context.Context, now time.Time) (int, error)

	// CountAbandoned counts abandoned tasks.
	CountAbandoned(ctx context.Context) (int, error)

	// AvgProcessingLatency averages processed_at - scheduled_at over tasks
	// processed since the given time. Returns zero when there were none.
	AvgProcessingLatency(ctx context.Context, since time.Time) (time.Duration, error)
}

// SyncStatusRepository is the durable per-fingerprint idempotency record.
type SyncStatusRepository interface {
	// Get retrieves the status for a fingerprint, or apperrors.ErrNotFound.
	Get(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*domain.SyncStatus, error)

	// UpsertSuccess records a successful posting outcome.
	UpsertSuccess(ctx context.Context, kind domain.ReferenceKind, referenceID int64, journalEntryID string, now time.Time) error

	// UpsertFailure records a failed attempt.
	UpsertFailure(ctx context.Context, kind domain.ReferenceKind, referenceID int64, lastError string, now time.Time) error
}
