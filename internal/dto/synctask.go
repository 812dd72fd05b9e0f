package dto

import (
	"encoding/json"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

// EnqueueTaskRequest defines the admin request body for enqueueing a task.
type EnqueueTaskRequest struct {
	ReferenceKind domain.ReferenceKind `json:"referenceKind" binding:"required"`
	ReferenceID   int64                `json:"referenceID" binding:"required"`
	OperationType domain.OperationType `json:"operationType" binding:"required,oneof=INSERT UPDATE DELETE"`
	Payload       json.RawMessage      `json:"payload" binding:"required"`
	Priority      int                  `json:"priority"`
	MaxRetries    int                  `json:"maxRetries"`
}

// TaskResponse defines the data returned for a sync task.
type TaskResponse struct {
	OperationID   string          `json:"operationID"`
	ReferenceKind string          `json:"referenceKind"`
	ReferenceID   int64           `json:"referenceID"`
	OperationType string          `json:"operationType"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Priority      int             `json:"priority"`
	RetryCount    int             `json:"retryCount"`
	MaxRetries    int             `json:"maxRetries"`
	State         string          `json:"state"`
	ScheduledAt   time.Time       `json:"scheduledAt"`
	ProcessedAt   *time.Time      `json:"processedAt,omitempty"`
	LastError     *string         `json:"lastError,omitempty"`
}

// ToTaskResponse converts a domain.SyncTask to TaskResponse DTO.
func ToTaskResponse(t *domain.SyncTask, now time.Time, lockTTL time.Duration) TaskResponse {
	return TaskResponse{
		OperationID:   t.OperationID,
		ReferenceKind: string(t.ReferenceKind),
		ReferenceID:   t.ReferenceID,
		OperationType: string(t.OperationType),
		Payload:       t.Payload,
		Priority:      t.Priority,
		RetryCount:    t.RetryCount,
		MaxRetries:    t.MaxRetries,
		State:         string(t.State(now, lockTTL)),
		ScheduledAt:   t.ScheduledAt,
		ProcessedAt:   t.ProcessedAt,
		LastError:     t.LastError,
	}
}

// ListTasksResponse is a paginated page of tasks.
type ListTasksResponse struct {
	Tasks     []TaskResponse `json:"tasks"`
	NextToken *string        `json:"nextToken,omitempty"`
}
