package domain

import (
	"encoding/json"
	"time"
)

// OperationType indicates what happened to the source record a task mirrors.
type OperationType string

const (
	OpInsert OperationType = "INSERT"
	OpUpdate OperationType = "UPDATE"
	OpDelete OperationType = "DELETE"
)

// Task priorities. Higher values are leased first.
const (
	PriorityLow    = 0
	PriorityNormal = 5
	PriorityHigh   = 10
)

// SyncTask is a durable pending synchronization task. Created by a failed
// direct-path posting attempt or by reconciliation; marked processed (or
// abandoned) by the processor.
type SyncTask struct {
	OperationID   string          `json:"operationID"` // Unique task identifier
	ReferenceKind ReferenceKind   `json:"referenceKind"`
	ReferenceID   int64           `json:"referenceID"`
	OperationType OperationType   `json:"operationType"`
	Payload       json.RawMessage `json:"payload"` // Full source snapshot at enqueue time
	Priority      int             `json:"priority"`
	RetryCount    int             `json:"retryCount"`
	MaxRetries    int             `json:"maxRetries"`
	ScheduledAt   time.Time       `json:"scheduledAt"`
	LockedAt      *time.Time      `json:"lockedAt,omitempty"` // Lease start; expired leases are reclaimable
	LockedBy      *string         `json:"lockedBy,omitempty"` // Worker holding the lease
	ProcessedAt   *time.Time      `json:"processedAt,omitempty"`
	Abandoned     bool            `json:"abandoned"`
	LastError     *string         `json:"lastError,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TaskState is a coarse task lifecycle state derived from columns, used by
// the administration surface.
type TaskState string

const (
	TaskPending   TaskState = "PENDING"
	TaskLocked    TaskState = "LOCKED"
	TaskProcessed TaskState = "PROCESSED"
	TaskAbandoned TaskState = "ABANDONED"
)

// State derives the lifecycle state of the task at the given instant.
func (t SyncTask) State(now time.Time, lockTTL time.Duration) TaskState {
	switch {
	case t.ProcessedAt != nil:
		return TaskProcessed
	case t.Abandoned:
		return TaskAbandoned
	case t.LockedAt != nil && t.LockedAt.After(now.Add(-lockTTL)):
		return TaskLocked
	default:
		return TaskPending
	}
}

// SyncStatus is the durable idempotency record for one fingerprint,
// upserted on every processing outcome.
type SyncStatus struct {
	ReferenceKind  ReferenceKind `json:"referenceKind"`
	ReferenceID    int64         `json:"referenceID"`
	Synced         bool          `json:"synced"`
	JournalEntryID *string       `json:"journalEntryID,omitempty"`
	LastError      *string       `json:"lastError,omitempty"`
	AttemptCount   int           `json:"attemptCount"`
	LastUpdatedAt  time.Time     `json:"lastUpdatedAt"`
}
