package models

import (
	"encoding/json"
	"time"
)

// SyncTask is the database model for the sync_tasks table.
type SyncTask struct {
	OperationID   string          `db:"operation_id"`
	ReferenceKind string          `db:"reference_kind"`
	ReferenceID   int64           `db:"reference_id"`
	OperationType string          `db:"operation_type"`
	Payload       json.RawMessage `db:"payload"`
	Priority      int             `db:"priority"`
	RetryCount    int             `db:"retry_count"`
	MaxRetries    int             `db:"max_retries"`
	ScheduledAt   time.Time       `db:"scheduled_at"`
	LockedAt      *time.Time      `db:"locked_at"`
	LockedBy      *string         `db:"locked_by"`
	ProcessedAt   *time.Time      `db:"processed_at"`
	Abandoned     bool            `db:"abandoned"`
	LastError     *string         `db:"last_error"`
	CreatedAt     time.Time       `db:"created_at"`
}

// SyncStatus is the database model for the sync_statuses table.
type SyncStatus struct {
	ReferenceKind  string    `db:"reference_kind"`
	ReferenceID    int64     `db:"reference_id"`
	Synced         bool      `db:"synced"`
	JournalEntryID *string   `db:"journal_entry_id"`
	LastError      *string   `db:"last_error"`
	AttemptCount   int       `db:"attempt_count"`
	LastUpdatedAt  time.Time `db:"last_updated_at"`
}
