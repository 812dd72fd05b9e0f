package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/clinicore/clinic_ledger_app/internal/platform/config"
	"github.com/clinicore/clinic_ledger_app/internal/platform/metrics"
	"github.com/google/uuid"
)

type syncService struct {
	queueRepo  portsrepo.SyncQueueRepository
	statusRepo portsrepo.SyncStatusRepository
	entryRepo  portsrepo.EntryReader
	ledgerSvc  portssvc.LedgerSvcFacade
	alertSvc   portssvc.AlertSvcFacade
	registry   *PostingRegistry
	cfg        config.SyncConfig
	health     config.HealthConfig
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewSyncService creates the queue processor and its admin surface.
// metrics may be nil in tests.
func NewSyncService(
	queueRepo portsrepo.SyncQueueRepository,
	statusRepo portsrepo.SyncStatusRepository,
	entryRepo portsrepo.EntryReader,
	ledgerSvc portssvc.LedgerSvcFacade,
	alertSvc portssvc.AlertSvcFacade,
	registry *PostingRegistry,
	cfg config.SyncConfig,
	health config.HealthConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) portssvc.SyncSvcFacade {
	if logger == nil {
		logger = slog.Default()
	}
	return &syncService{
		queueRepo:  queueRepo,
		statusRepo: statusRepo,
		entryRepo:  entryRepo,
		ledgerSvc:  ledgerSvc,
		alertSvc:   alertSvc,
		registry:   registry,
		cfg:        cfg,
		health:     health,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *syncService) Enqueue(ctx context.Context, req dto.EnqueueTaskRequest) (*domain.SyncTask, error) {
	if _, err := s.registry.Adapter(req.ReferenceKind); err != nil {
		return nil, err
	}

	now := s.now()
	task := domain.SyncTask{
		OperationID:   uuid.NewString(),
		ReferenceKind: req.ReferenceKind,
		ReferenceID:   req.ReferenceID,
		OperationType: req.OperationType,
		Payload:       req.Payload,
		Priority:      req.Priority,
		MaxRetries:    req.MaxRetries,
		ScheduledAt:   now,
		CreatedAt:     now,
	}
	if task.MaxRetries <= 0 {
		task.MaxRetries = s.cfg.MaxRetries
	}
	if err := s.queueRepo.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}
	return &task, nil
}

func (s *syncService) EnqueueEvent(ctx context.Context, event domain.RevenueEvent, op domain.OperationType, priority int) (*domain.SyncTask, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return s.Enqueue(ctx, dto.EnqueueTaskRequest{
		ReferenceKind: event.Kind,
		ReferenceID:   event.ReferenceID,
		OperationType: op,
		Payload:       payload,
		Priority:      priority,
	})
}

// ProcessOnce leases one batch of due tasks and processes them serially.
// On cancellation mid-batch, unattempted tasks have their lease released so
// another worker can pick them up immediately.
func (s *syncService) ProcessOnce(ctx context.Context, workerID string) (int, error) {
	now := s.now()
	tasks, err := s.queueRepo.LeaseDueTasks(ctx, workerID, s.cfg.BatchSize, s.cfg.LockTTL, now)
	if err != nil {
		return 0, fmt.Errorf("failed to lease tasks: %w", err)
	}

	attempted := 0
	for i, task := range tasks {
		if ctx.Err() != nil {
			s.releaseRemaining(tasks[i:])
			break
		}
		s.processTask(ctx, task)
		attempted++
	}
	return attempted, nil
}

// Start runs the worker pool and the periodic health reporter until ctx is
// cancelled. In-flight batches finish before Start returns.
func (s *syncService) Start(ctx context.Context) {
	var wg sync.WaitGroup

	workers := s.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		workerID := fmt.Sprintf("sync-worker-%d-%s", i, uuid.NewString()[:8])
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runWorker(ctx, workerID)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runHealthReporter(ctx)
	}()

	wg.Wait()
}

func (s *syncService) runWorker(ctx context.Context, workerID string) {
	logger := s.logger.With(slog.String("worker_id", workerID))
	logger.Info("Sync worker started")
	for {
		attempted, err := s.ProcessOnce(ctx, workerID)
		if err != nil && ctx.Err() == nil {
			logger.Error("Sync batch failed", slog.String("error", err.Error()))
		}

		// Poll again immediately after a full batch; the queue likely has more.
		if attempted > 0 && ctx.Err() == nil {
			continue
		}
		select {
		case <-ctx.Done():
			logger.Info("Sync worker stopped")
			return
		case <-time.After(s.cfg.PollInterval):
		}
	}
}

func (s *syncService) runHealthReporter(ctx context.Context) {
	interval := s.health.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CaptureHealthSnapshot(ctx); err != nil {
				s.logger.Error("Health snapshot failed", slog.String("error", err.Error()))
			}
		}
	}
}

// processTask attempts a leased task and records the outcome: processed,
// rescheduled with exponential backoff, or abandoned with a HIGH alert.
func (s *syncService) processTask(ctx context.Context, task domain.SyncTask) {
	logger := s.logger.With(
		slog.String("operation_id", task.OperationID),
		slog.String("reference_kind", string(task.ReferenceKind)),
		slog.Int64("reference_id", task.ReferenceID),
		slog.String("operation_type", string(task.OperationType)))
	ctx = middleware.ContextWithLogger(ctx, logger)

	entryID, err := s.dispatch(ctx, task)
	now := s.now()
	if err == nil {
		if markErr := s.queueRepo.MarkProcessed(ctx, task.OperationID, now); markErr != nil {
			logger.Error("Failed to mark task processed", slog.String("error", markErr.Error()))
			return
		}
		if statusErr := s.statusRepo.UpsertSuccess(ctx, task.ReferenceKind, task.ReferenceID, entryID, now); statusErr != nil {
			logger.Error("Failed to record sync status", slog.String("error", statusErr.Error()))
		}
		if s.metrics != nil {
			s.metrics.SyncSuccesses.Inc()
		}
		logger.Info("Sync task processed", slog.String("journal_entry_id", entryID))
		return
	}

	if s.metrics != nil {
		s.metrics.SyncFailures.Inc()
	}
	retryCount := task.RetryCount + 1
	if statusErr := s.statusRepo.UpsertFailure(ctx, task.ReferenceKind, task.ReferenceID, err.Error(), now); statusErr != nil {
		logger.Error("Failed to record sync status", slog.String("error", statusErr.Error()))
	}

	// Validation failures are permanent; retrying cannot change the payload.
	permanent := errors.Is(err, apperrors.ErrValidation)
	if permanent || retryCount >= task.MaxRetries {
		s.abandonTask(ctx, task, retryCount, err, logger)
		return
	}

	nextAt := now.Add(s.backoffDelay(retryCount))
	if rescheduleErr := s.queueRepo.Reschedule(ctx, task.OperationID, retryCount, nextAt, err.Error()); rescheduleErr != nil {
		logger.Error("Failed to reschedule task", slog.String("error", rescheduleErr.Error()))
		return
	}
	logger.Warn("Sync task failed, rescheduled",
		slog.Int("retry_count", retryCount),
		slog.Time("next_attempt_at", nextAt),
		slog.String("error", err.Error()))
}

func (s *syncService) abandonTask(ctx context.Context, task domain.SyncTask, retryCount int, cause error, logger *slog.Logger) {
	if err := s.queueRepo.Abandon(ctx, task.OperationID, retryCount, cause.Error()); err != nil {
		logger.Error("Failed to abandon task", slog.String("error", err.Error()))
		return
	}
	logger.Error("Sync task abandoned",
		slog.Int("retry_count", retryCount),
		slog.String("error", cause.Error()))

	// One alert per abandonment transition; the storage-side dedup keeps
	// at most one unresolved SYNC_FAILURES alert live.
	alertErr := s.alertSvc.Raise(ctx, domain.AlertSyncFailures, domain.SeverityHigh,
		fmt.Sprintf("Sync task %s for %s %d abandoned after %d attempts: %s",
			task.OperationID, task.ReferenceKind, task.ReferenceID, retryCount, cause.Error()),
		map[string]any{
			"operationID":   task.OperationID,
			"referenceKind": task.ReferenceKind,
			"referenceID":   task.ReferenceID,
			"retryCount":    retryCount,
		})
	if alertErr != nil {
		logger.Error("Failed to raise abandonment alert", slog.String("error", alertErr.Error()))
	}
}

// dispatch executes the task's operation against the ledger. Posting is
// idempotent, so a task replayed after a crashed worker is harmless.
func (s *syncService) dispatch(ctx context.Context, task domain.SyncTask) (string, error) {
	var event domain.RevenueEvent
	if err := json.Unmarshal(task.Payload, &event); err != nil {
		return "", fmt.Errorf("%w: undecodable task payload: %s", apperrors.ErrValidation, err.Error())
	}
	if event.Kind == "" {
		event.Kind = task.ReferenceKind
	}
	if event.ReferenceID == 0 {
		event.ReferenceID = task.ReferenceID
	}

	switch task.OperationType {
	case domain.OpInsert:
		return s.postEvent(ctx, event)

	case domain.OpUpdate:
		// Reverse the stale posting, then post the fresh snapshot.
		existing, err := s.entryRepo.FindPostedEntryByReference(ctx, task.ReferenceKind, task.ReferenceID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
		if err == nil {
			if _, err := s.ledgerSvc.ReverseEntry(ctx, existing.EntryID, middleware.SystemActor); err != nil {
				return "", err
			}
		}
		return s.postEvent(ctx, event)

	case domain.OpDelete:
		existing, err := s.entryRepo.FindPostedEntryByReference(ctx, task.ReferenceKind, task.ReferenceID)
		if errors.Is(err, apperrors.ErrNotFound) {
			// Nothing posted for this fingerprint; the delete is a no-op.
			return "", nil
		}
		if err != nil {
			return "", err
		}
		reversal, err := s.ledgerSvc.ReverseEntry(ctx, existing.EntryID, middleware.SystemActor)
		if err != nil {
			return "", err
		}
		return reversal.EntryID, nil

	default:
		return "", fmt.Errorf("%w: unknown operation type %q", apperrors.ErrValidation, task.OperationType)
	}
}

func (s *syncService) postEvent(ctx context.Context, event domain.RevenueEvent) (string, error) {
	adapter, err := s.registry.Adapter(event.Kind)
	if err != nil {
		return "", err
	}
	req, err := adapter.BuildEntry(event)
	if err != nil {
		return "", err
	}
	entry, err := s.ledgerSvc.PostEntry(ctx, req, middleware.SystemActor)
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.EntriesPosted.Inc()
	}
	return entry.EntryID, nil
}

// backoffDelay computes the exponential retry delay for the given attempt
// number, capped at the configured maximum.
func (s *syncService) backoffDelay(retryCount int) time.Duration {
	base := s.cfg.BaseRetryDelay
	if base <= 0 {
		base = 30 * time.Second
	}
	multiplier := s.cfg.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 2
	}
	delay := time.Duration(float64(base) * math.Pow(multiplier, float64(retryCount-1)))
	if s.cfg.MaxRetryDelay > 0 && delay > s.cfg.MaxRetryDelay {
		delay = s.cfg.MaxRetryDelay
	}
	return delay
}

func (s *syncService) releaseRemaining(tasks []domain.SyncTask) {
	// Shutdown path: use a fresh context since the worker's one is cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, task := range tasks {
		if err := s.queueRepo.ReleaseLease(ctx, task.OperationID); err != nil {
			s.logger.Error("Failed to release lease on shutdown",
				slog.String("operation_id", task.OperationID),
				slog.String("error", err.Error()))
		}
	}
}

func (s *syncService) ForceRetry(ctx context.Context, operationID string) error {
	if err := s.queueRepo.ResetTask(ctx, operationID, s.now()); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Task reset for retry", slog.String("operation_id", operationID))
	return nil
}

func (s *syncService) ForceRetryAllFailed(ctx context.Context) (int64, error) {
	count, err := s.queueRepo.ResetAllAbandoned(ctx, s.now())
	if err != nil {
		return 0, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Abandoned tasks reset for retry", slog.Int64("count", count))
	return count, nil
}

func (s *syncService) ListTasks(ctx context.Context, state domain.TaskState, limit int, nextToken *string) (*dto.ListTasksResponse, error) {
	tasks, next, err := s.queueRepo.ListTasks(ctx, state, s.cfg.LockTTL, limit, nextToken)
	if err != nil {
		return nil, err
	}
	now := s.now()
	resp := &dto.ListTasksResponse{
		Tasks:     make([]dto.TaskResponse, len(tasks)),
		NextToken: next,
	}
	for i := range tasks {
		resp.Tasks[i] = dto.ToTaskResponse(&tasks[i], now, s.cfg.LockTTL)
	}
	return resp, nil
}

func (s *syncService) IsSynced(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (bool, error) {
	status, err := s.statusRepo.Get(ctx, kind, referenceID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status.Synced, nil
}

func (s *syncService) ExistingEntryID(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*string, error) {
	status, err := s.statusRepo.Get(ctx, kind, referenceID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !status.Synced {
		return nil, nil
	}
	return status.JournalEntryID, nil
}

// CaptureHealthSnapshot measures queue depth, abandonment count, and recent
// processing latency, classifies them against thresholds, persists the
// snapshot, and raises a QUEUE_BACKUP alert when CRITICAL.
func (s *syncService) CaptureHealthSnapshot(ctx context.Context) (*domain.HealthSnapshot, error) {
	now := s.now()
	depth, err := s.queueRepo.CountDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count due tasks: %w", err)
	}
	failed, err := s.queueRepo.CountAbandoned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count abandoned tasks: %w", err)
	}
	latency, err := s.queueRepo.AvgProcessingLatency(ctx, now.Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to measure processing latency: %w", err)
	}

	status := domain.HealthHealthy
	if depth >= s.health.QueueWarningDepth || failed >= s.health.FailedWarning {
		status = domain.HealthWarning
	}
	if depth >= s.health.QueueCriticalDepth || failed >= s.health.FailedCritical {
		status = domain.HealthCritical
	}

	snapshot := domain.HealthSnapshot{
		SnapshotID:   uuid.NewString(),
		QueueDepth:   depth,
		FailedCount:  failed,
		AvgLatencyMS: float64(latency.Milliseconds()),
		Status:       status,
		TakenAt:      now,
	}
	if err := s.alertSvc.RecordHealth(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save health snapshot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.QueueDepth.Set(float64(depth))
		s.metrics.AbandonedTasks.Set(float64(failed))
		s.metrics.AvgLatencyMS.Set(snapshot.AvgLatencyMS)
		s.metrics.HealthStatus.Set(healthGaugeValue(status))
	}

	if status == domain.HealthCritical {
		if err := s.alertSvc.Raise(ctx, domain.AlertQueueBackup, domain.SeverityCritical,
			fmt.Sprintf("Sync queue critical: %d due tasks, %d abandoned", depth, failed),
			snapshot); err != nil {
			s.logger.Error("Failed to raise queue backup alert", slog.String("error", err.Error()))
		}
	}
	return &snapshot, nil
}

func healthGaugeValue(status domain.HealthStatus) float64 {
	switch status {
	case domain.HealthCritical:
		return 2
	case domain.HealthWarning:
		return 1
	default:
		return 0
	}
}
