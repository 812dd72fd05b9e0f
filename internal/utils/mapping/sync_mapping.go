package mapping

import (
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/models"
)

// ToDomainSyncTask converts a sync task database model to its domain type.
func ToDomainSyncTask(m models.SyncTask) domain.SyncTask {
	return domain.SyncTask{
		OperationID:   m.OperationID,
		ReferenceKind: domain.ReferenceKind(m.ReferenceKind),
		ReferenceID:   m.ReferenceID,
		OperationType: domain.OperationType(m.OperationType),
		Payload:       m.Payload,
		Priority:      m.Priority,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		ScheduledAt:   m.ScheduledAt,
		LockedAt:      m.LockedAt,
		LockedBy:      m.LockedBy,
		ProcessedAt:   m.ProcessedAt,
		Abandoned:     m.Abandoned,
		LastError:     m.LastError,
		CreatedAt:     m.CreatedAt,
	}
}

// ToModelSyncTask converts a domain sync task to its database model.
func ToModelSyncTask(t domain.SyncTask) models.SyncTask {
	return models.SyncTask{
		OperationID:   t.OperationID,
		ReferenceKind: string(t.ReferenceKind),
		ReferenceID:   t.ReferenceID,
		OperationType: string(t.OperationType),
		Payload:       t.Payload,
		Priority:      t.Priority,
		RetryCount:    t.RetryCount,
		MaxRetries:    t.MaxRetries,
		ScheduledAt:   t.ScheduledAt,
		LockedAt:      t.LockedAt,
		LockedBy:      t.LockedBy,
		ProcessedAt:   t.ProcessedAt,
		Abandoned:     t.Abandoned,
		LastError:     t.LastError,
		CreatedAt:     t.CreatedAt,
	}
}

// ToDomainSyncStatus converts a sync status database model to its domain type.
func ToDomainSyncStatus(m models.SyncStatus) domain.SyncStatus {
	return domain.SyncStatus{
		ReferenceKind:  domain.ReferenceKind(m.ReferenceKind),
		ReferenceID:    m.ReferenceID,
		Synced:         m.Synced,
		JournalEntryID: m.JournalEntryID,
		LastError:      m.LastError,
		AttemptCount:   m.AttemptCount,
		LastUpdatedAt:  m.LastUpdatedAt,
	}
}
