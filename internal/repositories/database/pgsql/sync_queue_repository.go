package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	"github.com/clinicore/clinic_ledger_app/internal/models"
	"github.com/clinicore/clinic_ledger_app/internal/utils/mapping"
	"github.com/clinicore/clinic_ledger_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `operation_id, reference_kind, reference_id, operation_type, payload, priority,
	retry_count, max_retries, scheduled_at, locked_at, locked_by, processed_at, abandoned, last_error, created_at`

type PgxSyncQueueRepository struct {
	pool *pgxpool.Pool
}

// newPgxSyncQueueRepository creates a new repository for the sync task queue.
func newPgxSyncQueueRepository(pool *pgxpool.Pool) portsrepo.SyncQueueRepository {
	return &PgxSyncQueueRepository{pool: pool}
}

var _ portsrepo.SyncQueueRepository = (*PgxSyncQueueRepository)(nil)

func scanTask(row pgx.Row) (models.SyncTask, error) {
	var m models.SyncTask
	err := row.Scan(
		&m.OperationID, &m.ReferenceKind, &m.ReferenceID, &m.OperationType, &m.Payload, &m.Priority,
		&m.RetryCount, &m.MaxRetries, &m.ScheduledAt, &m.LockedAt, &m.LockedBy, &m.ProcessedAt,
		&m.Abandoned, &m.LastError, &m.CreatedAt,
	)
	return m, err
}

// Enqueue persists a task. Re-enqueueing an existing operation_id is a no-op.
func (r *PgxSyncQueueRepository) Enqueue(ctx context.Context, task domain.SyncTask) error {
	m := mapping.ToModelSyncTask(task)
	query := `
		INSERT INTO sync_tasks (operation_id, reference_kind, reference_id, operation_type, payload, priority,
			retry_count, max_retries, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (operation_id) DO NOTHING;
	`
	_, err := r.pool.Exec(ctx, query,
		m.OperationID, m.ReferenceKind, m.ReferenceID, m.OperationType, m.Payload, m.Priority,
		m.RetryCount, m.MaxRetries, m.ScheduledAt, m.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to enqueue sync task "+m.OperationID, err)
	}
	return nil
}

// LeaseDueTasks atomically claims a batch of due tasks. SKIP LOCKED keeps
// concurrent workers from blocking on each other's claims; the lease
// columns keep a claim visible across connections until lockTTL elapses.
func (r *PgxSyncQueueRepository) LeaseDueTasks(ctx context.Context, workerID string, batchSize int, lockTTL time.Duration, now time.Time) ([]domain.SyncTask, error) {
	staleBefore := now.Add(-lockTTL)
	query := `
		UPDATE sync_tasks
		SET locked_at = $1, locked_by = $2
		WHERE operation_id IN (
			SELECT operation_id FROM sync_tasks
			WHERE processed_at IS NULL
				AND NOT abandoned
				AND scheduled_at <= $1
				AND (locked_at IS NULL OR locked_at <= $3)
			ORDER BY priority DESC, scheduled_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + taskColumns + `;
	`
	rows, err := r.pool.Query(ctx, query, now, workerID, staleBefore, batchSize)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lease sync tasks", err)
	}
	defer rows.Close()

	var tasks []domain.SyncTask
	for rows.Next() {
		m, err := scanTask(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan leased task row", err)
		}
		tasks = append(tasks, mapping.ToDomainSyncTask(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading leased task rows", err)
	}
	return tasks, nil
}

// MarkProcessed records successful processing and releases the lease.
func (r *PgxSyncQueueRepository) MarkProcessed(ctx context.Context, operationID string, now time.Time) error {
	query := `
		UPDATE sync_tasks
		SET processed_at = $2, locked_at = NULL, locked_by = NULL, last_error = NULL
		WHERE operation_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, operationID, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark task processed "+operationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync task %s: %w", operationID, apperrors.ErrNotFound)
	}
	return nil
}

// Reschedule records a failed attempt and releases the lease.
func (r *PgxSyncQueueRepository) Reschedule(ctx context.Context, operationID string, retryCount int, nextAt time.Time, lastError string) error {
	query := `
		UPDATE sync_tasks
		SET retry_count = $2, scheduled_at = $3, last_error = $4, locked_at = NULL, locked_by = NULL
		WHERE operation_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, operationID, retryCount, nextAt, lastError)
	if err != nil {
		return apperrors.NewAppError(500, "failed to reschedule task "+operationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync task %s: %w", operationID, apperrors.ErrNotFound)
	}
	return nil
}

// Abandon marks a task permanently failed and releases the lease.
func (r *PgxSyncQueueRepository) Abandon(ctx context.Context, operationID string, retryCount int, lastError string) error {
	query := `
		UPDATE sync_tasks
		SET abandoned = TRUE, retry_count = $2, last_error = $3, locked_at = NULL, locked_by = NULL
		WHERE operation_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, operationID, retryCount, lastError)
	if err != nil {
		return apperrors.NewAppError(500, "failed to abandon task "+operationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync task %s: %w", operationID, apperrors.ErrNotFound)
	}
	return nil
}

// ReleaseLease clears the lease without changing scheduling.
func (r *PgxSyncQueueRepository) ReleaseLease(ctx context.Context, operationID string) error {
	query := `UPDATE sync_tasks SET locked_at = NULL, locked_by = NULL WHERE operation_id = $1;`
	if _, err := r.pool.Exec(ctx, query, operationID); err != nil {
		return apperrors.NewAppError(500, "failed to release lease on task "+operationID, err)
	}
	return nil
}

// ResetTask clears retry and abandonment state so the task is due immediately.
func (r *PgxSyncQueueRepository) ResetTask(ctx context.Context, operationID string, now time.Time) error {
	query := `
		UPDATE sync_tasks
		SET abandoned = FALSE, retry_count = 0, scheduled_at = $2, last_error = NULL,
			locked_at = NULL, locked_by = NULL
		WHERE operation_id = $1 AND processed_at IS NULL;
	`
	tag, err := r.pool.Exec(ctx, query, operationID, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to reset task "+operationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unprocessed sync task %s: %w", operationID, apperrors.ErrNotFound)
	}
	return nil
}

// ResetAllAbandoned resets every abandoned task and reports how many.
func (r *PgxSyncQueueRepository) ResetAllAbandoned(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE sync_tasks
		SET abandoned = FALSE, retry_count = 0, scheduled_at = $1, last_error = NULL,
			locked_at = NULL, locked_by = NULL
		WHERE abandoned AND processed_at IS NULL;
	`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to reset abandoned tasks", err)
	}
	return tag.RowsAffected(), nil
}

// ListTasks retrieves tasks in the given state with keyset pagination
// ordered by (scheduled_at, operation_id).
func (r *PgxSyncQueueRepository) ListTasks(ctx context.Context, state domain.TaskState, lockTTL time.Duration, limit int, nextToken *string) ([]domain.SyncTask, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	staleBefore := time.Now().Add(-lockTTL)
	query := `SELECT ` + taskColumns + ` FROM sync_tasks WHERE `
	switch state {
	case domain.TaskProcessed:
		query += "processed_at IS NOT NULL"
	case domain.TaskAbandoned:
		query += "abandoned AND processed_at IS NULL"
	case domain.TaskLocked:
		query += "processed_at IS NULL AND NOT abandoned AND locked_at IS NOT NULL AND locked_at > " + arg(staleBefore)
	case domain.TaskPending:
		query += "processed_at IS NULL AND NOT abandoned AND (locked_at IS NULL OR locked_at <= " + arg(staleBefore) + ")"
	default:
		return nil, nil, fmt.Errorf("%w: unknown task state %q", apperrors.ErrValidation, state)
	}

	if nextToken != nil {
		afterTime, afterID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += " AND (scheduled_at, operation_id) > (" + arg(afterTime) + ", " + arg(afterID) + ")"
	}
	// Fetch one extra row to learn whether another page exists.
	query += " ORDER BY scheduled_at, operation_id LIMIT " + arg(limit+1) + ";"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list sync tasks", err)
	}
	defer rows.Close()

	var tasks []domain.SyncTask
	for rows.Next() {
		m, err := scanTask(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan task row", err)
		}
		tasks = append(tasks, mapping.ToDomainSyncTask(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading task rows", err)
	}

	var next *string
	if len(tasks) > limit {
		tasks = tasks[:limit]
		last := tasks[len(tasks)-1]
		token := pagination.EncodeToken(last.ScheduledAt, last.OperationID)
		next = &token
	}
	return tasks, next, nil
}

// CountDue counts unprocessed, unabandoned tasks that are due now.
func (r *PgxSyncQueueRepository) CountDue(ctx context.Context, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM sync_tasks
		WHERE processed_at IS NULL AND NOT abandoned AND scheduled_at <= $1;
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, now).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count due tasks", err)
	}
	return count, nil
}

// CountAbandoned counts abandoned tasks.
func (r *PgxSyncQueueRepository) CountAbandoned(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM sync_tasks WHERE abandoned AND processed_at IS NULL;`
	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count abandoned tasks", err)
	}
	return count, nil
}

// AvgProcessingLatency averages processed_at - scheduled_at over tasks
// processed since the given time.
func (r *PgxSyncQueueRepository) AvgProcessingLatency(ctx context.Context, since time.Time) (time.Duration, error) {
	query := `
		SELECT COALESCE(EXTRACT(EPOCH FROM AVG(processed_at - scheduled_at)), 0)
		FROM sync_tasks
		WHERE processed_at IS NOT NULL AND processed_at >= $1;
	`
	var seconds float64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&seconds); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, apperrors.NewAppError(500, "failed to measure processing latency", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
