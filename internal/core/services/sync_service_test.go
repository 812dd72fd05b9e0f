package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/core/services"
	"github.com/clinicore/clinic_ledger_app/internal/platform/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SyncServiceTestSuite struct {
	suite.Suite
	mockQueueRepo  *MockSyncQueueRepository
	mockStatusRepo *MockSyncStatusRepository
	mockEntryRepo  *MockEntryRepository
	mockLedgerSvc  *MockLedgerService
	mockAlertSvc   *MockAlertService
	service        portssvc.SyncSvcFacade
	cfg            config.SyncConfig
	health         config.HealthConfig
	workerID       string
}

func (suite *SyncServiceTestSuite) SetupTest() {
	suite.mockQueueRepo = new(MockSyncQueueRepository)
	suite.mockStatusRepo = new(MockSyncStatusRepository)
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.mockAlertSvc = new(MockAlertService)
	suite.cfg = config.SyncConfig{
		WorkerCount:       1,
		BatchSize:         10,
		PollInterval:      time.Second,
		LockTTL:           time.Minute,
		MaxRetries:        3,
		BaseRetryDelay:    30 * time.Second,
		MaxRetryDelay:     10 * time.Minute,
		BackoffMultiplier: 2,
	}
	suite.health = config.HealthConfig{
		QueueWarningDepth:  50,
		QueueCriticalDepth: 100,
		FailedWarning:      5,
		FailedCritical:     20,
	}
	suite.service = services.NewSyncService(
		suite.mockQueueRepo, suite.mockStatusRepo, suite.mockEntryRepo,
		suite.mockLedgerSvc, suite.mockAlertSvc,
		services.DefaultPostingRegistry(), suite.cfg, suite.health, nil, nil)
	suite.workerID = "sync-worker-test"
}

func (suite *SyncServiceTestSuite) pharmacyTask(op domain.OperationType) domain.SyncTask {
	event := domain.RevenueEvent{
		Kind:        domain.KindPharmacy,
		ReferenceID: 42,
		Amount:      decimal.NewFromInt(1180),
		TaxAmount:   decimal.NewFromInt(180),
		PaymentMode: "CASH",
		Date:        time.Now(),
	}
	payload, err := json.Marshal(event)
	suite.Require().NoError(err)
	return domain.SyncTask{
		OperationID:   uuid.NewString(),
		ReferenceKind: domain.KindPharmacy,
		ReferenceID:   42,
		OperationType: op,
		Payload:       payload,
		Priority:      domain.PriorityNormal,
		MaxRetries:    suite.cfg.MaxRetries,
		ScheduledAt:   time.Now(),
		CreatedAt:     time.Now(),
	}
}

func (suite *SyncServiceTestSuite) expectLease(tasks ...domain.SyncTask) {
	suite.mockQueueRepo.On("LeaseDueTasks", mock.Anything, suite.workerID,
		suite.cfg.BatchSize, suite.cfg.LockTTL, mock.AnythingOfType("time.Time")).
		Return(tasks, nil).Once()
}

func (suite *SyncServiceTestSuite) TestProcessOnce_InsertSuccess() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpInsert)
	entry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}

	suite.expectLease(task)
	suite.mockLedgerSvc.On("PostEntry", mock.Anything, mock.AnythingOfType("dto.PostEntryRequest"), "system").
		Return(entry, nil).Once()
	suite.mockQueueRepo.On("MarkProcessed", mock.Anything, task.OperationID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockStatusRepo.On("UpsertSuccess", mock.Anything, domain.KindPharmacy, int64(42), entry.EntryID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	attempted, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockQueueRepo.AssertExpectations(suite.T())
	suite.mockStatusRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockAlertSvc.AssertNotCalled(suite.T(), "Raise", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestProcessOnce_TransientFailureReschedules() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpInsert)
	transient := apperrors.ErrTransient

	suite.expectLease(task)
	suite.mockLedgerSvc.On("PostEntry", mock.Anything, mock.Anything, "system").
		Return(nil, transient).Once()
	suite.mockStatusRepo.On("UpsertFailure", mock.Anything, domain.KindPharmacy, int64(42), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	before := time.Now()
	suite.mockQueueRepo.On("Reschedule", mock.Anything, task.OperationID, 1,
		mock.MatchedBy(func(nextAt time.Time) bool {
			// First retry backs off by the 30s base delay.
			delay := nextAt.Sub(before)
			return delay >= 29*time.Second && delay <= 31*time.Second
		}), mock.AnythingOfType("string")).
		Return(nil).Once()

	attempted, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockQueueRepo.AssertExpectations(suite.T())
	suite.mockQueueRepo.AssertNotCalled(suite.T(), "Abandon", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAlertSvc.AssertNotCalled(suite.T(), "Raise", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestProcessOnce_BackoffDoublesOnSecondRetry() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpInsert)
	task.RetryCount = 1

	suite.expectLease(task)
	suite.mockLedgerSvc.On("PostEntry", mock.Anything, mock.Anything, "system").
		Return(nil, apperrors.ErrTransient).Once()
	suite.mockStatusRepo.On("UpsertFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	before := time.Now()
	suite.mockQueueRepo.On("Reschedule", mock.Anything, task.OperationID, 2,
		mock.MatchedBy(func(nextAt time.Time) bool {
			delay := nextAt.Sub(before)
			return delay >= 59*time.Second && delay <= 61*time.Second
		}), mock.AnythingOfType("string")).
		Return(nil).Once()

	_, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.mockQueueRepo.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestProcessOnce_ExhaustedRetriesAbandonWithAlert() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpInsert)
	task.RetryCount = 2 // next failure is attempt 3 of 3

	suite.expectLease(task)
	suite.mockLedgerSvc.On("PostEntry", mock.Anything, mock.Anything, "system").
		Return(nil, apperrors.ErrTransient).Once()
	suite.mockStatusRepo.On("UpsertFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()
	suite.mockQueueRepo.On("Abandon", mock.Anything, task.OperationID, 3, mock.AnythingOfType("string")).
		Return(nil).Once()
	suite.mockAlertSvc.On("Raise", mock.Anything, domain.AlertSyncFailures, domain.SeverityHigh,
		mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()

	_, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.mockQueueRepo.AssertExpectations(suite.T())
	suite.mockAlertSvc.AssertExpectations(suite.T())
	suite.mockQueueRepo.AssertNotCalled(suite.T(), "Reschedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestProcessOnce_UndecodablePayloadAbandonsImmediately() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpInsert)
	task.Payload = json.RawMessage(`{not json`)

	suite.expectLease(task)
	suite.mockStatusRepo.On("UpsertFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()
	suite.mockQueueRepo.On("Abandon", mock.Anything, task.OperationID, 1, mock.AnythingOfType("string")).
		Return(nil).Once()
	suite.mockAlertSvc.On("Raise", mock.Anything, domain.AlertSyncFailures, domain.SeverityHigh,
		mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()

	_, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.mockQueueRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestProcessOnce_DeleteWithoutPostingIsNoOp() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpDelete)

	suite.expectLease(task)
	suite.mockEntryRepo.On("FindPostedEntryByReference", mock.Anything, domain.KindPharmacy, int64(42)).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockQueueRepo.On("MarkProcessed", mock.Anything, task.OperationID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockStatusRepo.On("UpsertSuccess", mock.Anything, domain.KindPharmacy, int64(42), "", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	_, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.mockQueueRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "ReverseEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestProcessOnce_DeleteReversesPosting() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpDelete)
	existing := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}
	reversal := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}

	suite.expectLease(task)
	suite.mockEntryRepo.On("FindPostedEntryByReference", mock.Anything, domain.KindPharmacy, int64(42)).
		Return(existing, nil).Once()
	suite.mockLedgerSvc.On("ReverseEntry", mock.Anything, existing.EntryID, "system").
		Return(reversal, nil).Once()
	suite.mockQueueRepo.On("MarkProcessed", mock.Anything, task.OperationID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockStatusRepo.On("UpsertSuccess", mock.Anything, domain.KindPharmacy, int64(42), reversal.EntryID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	_, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockStatusRepo.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestProcessOnce_UpdateReversesThenReposts() {
	ctx := context.Background()
	task := suite.pharmacyTask(domain.OpUpdate)
	stale := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}
	reversal := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}
	fresh := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}

	suite.expectLease(task)
	suite.mockEntryRepo.On("FindPostedEntryByReference", mock.Anything, domain.KindPharmacy, int64(42)).
		Return(stale, nil).Once()
	suite.mockLedgerSvc.On("ReverseEntry", mock.Anything, stale.EntryID, "system").
		Return(reversal, nil).Once()
	suite.mockLedgerSvc.On("PostEntry", mock.Anything, mock.Anything, "system").
		Return(fresh, nil).Once()
	suite.mockQueueRepo.On("MarkProcessed", mock.Anything, task.OperationID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockStatusRepo.On("UpsertSuccess", mock.Anything, domain.KindPharmacy, int64(42), fresh.EntryID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	_, err := suite.service.ProcessOnce(ctx, suite.workerID)

	suite.Require().NoError(err)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockStatusRepo.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestEnqueueEvent_DefaultsAndPayload() {
	ctx := context.Background()
	event := domain.RevenueEvent{
		Kind:        domain.KindLab,
		ReferenceID: 9,
		Amount:      decimal.NewFromInt(350),
		PaymentMode: "CARD",
		Date:        time.Now(),
	}

	var captured domain.SyncTask
	suite.mockQueueRepo.On("Enqueue", ctx, mock.AnythingOfType("domain.SyncTask")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.SyncTask)
		}).
		Return(nil).Once()

	task, err := suite.service.EnqueueEvent(ctx, event, domain.OpInsert, domain.PriorityHigh)

	suite.Require().NoError(err)
	suite.Require().NotNil(task)
	suite.NotEmpty(captured.OperationID)
	suite.Equal(domain.KindLab, captured.ReferenceKind)
	suite.Equal(int64(9), captured.ReferenceID)
	suite.Equal(domain.OpInsert, captured.OperationType)
	suite.Equal(domain.PriorityHigh, captured.Priority)
	suite.Equal(suite.cfg.MaxRetries, captured.MaxRetries)

	var roundTripped domain.RevenueEvent
	suite.Require().NoError(json.Unmarshal(captured.Payload, &roundTripped))
	suite.True(roundTripped.Amount.Equal(event.Amount))
}

func (suite *SyncServiceTestSuite) TestEnqueue_UnknownKindRejected() {
	ctx := context.Background()

	_, err := suite.service.EnqueueEvent(ctx, domain.RevenueEvent{
		Kind:        domain.ReferenceKind("XRAY"),
		ReferenceID: 1,
		Amount:      decimal.NewFromInt(100),
	}, domain.OpInsert, domain.PriorityNormal)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockQueueRepo.AssertNotCalled(suite.T(), "Enqueue", mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestIsSynced() {
	ctx := context.Background()

	suite.mockStatusRepo.On("Get", ctx, domain.KindLab, int64(1)).
		Return(nil, apperrors.ErrNotFound).Once()
	synced, err := suite.service.IsSynced(ctx, domain.KindLab, 1)
	suite.Require().NoError(err)
	suite.False(synced)

	entryID := uuid.NewString()
	suite.mockStatusRepo.On("Get", ctx, domain.KindLab, int64(2)).
		Return(&domain.SyncStatus{Synced: true, JournalEntryID: &entryID}, nil).Once()
	synced, err = suite.service.IsSynced(ctx, domain.KindLab, 2)
	suite.Require().NoError(err)
	suite.True(synced)
}

func (suite *SyncServiceTestSuite) TestExistingEntryID() {
	ctx := context.Background()

	suite.mockStatusRepo.On("Get", ctx, domain.KindLab, int64(1)).
		Return(nil, apperrors.ErrNotFound).Once()
	got, err := suite.service.ExistingEntryID(ctx, domain.KindLab, 1)
	suite.Require().NoError(err)
	suite.Nil(got)

	// A fingerprint with only failed attempts resolves to nothing.
	suite.mockStatusRepo.On("Get", ctx, domain.KindLab, int64(2)).
		Return(&domain.SyncStatus{Synced: false}, nil).Once()
	got, err = suite.service.ExistingEntryID(ctx, domain.KindLab, 2)
	suite.Require().NoError(err)
	suite.Nil(got)

	entryID := uuid.NewString()
	suite.mockStatusRepo.On("Get", ctx, domain.KindLab, int64(3)).
		Return(&domain.SyncStatus{Synced: true, JournalEntryID: &entryID}, nil).Once()
	got, err = suite.service.ExistingEntryID(ctx, domain.KindLab, 3)
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(entryID, *got)
}

func (suite *SyncServiceTestSuite) TestForceRetry_NotFound() {
	ctx := context.Background()
	operationID := uuid.NewString()

	suite.mockQueueRepo.On("ResetTask", ctx, operationID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrNotFound).Once()

	err := suite.service.ForceRetry(ctx, operationID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SyncServiceTestSuite) TestCaptureHealthSnapshot_Healthy() {
	ctx := context.Background()

	suite.mockQueueRepo.On("CountDue", ctx, mock.AnythingOfType("time.Time")).Return(3, nil).Once()
	suite.mockQueueRepo.On("CountAbandoned", ctx).Return(0, nil).Once()
	suite.mockQueueRepo.On("AvgProcessingLatency", ctx, mock.AnythingOfType("time.Time")).
		Return(250*time.Millisecond, nil).Once()
	suite.mockAlertSvc.On("RecordHealth", ctx, mock.AnythingOfType("domain.HealthSnapshot")).
		Return(nil).Once()

	snapshot, err := suite.service.CaptureHealthSnapshot(ctx)

	suite.Require().NoError(err)
	suite.Equal(domain.HealthHealthy, snapshot.Status)
	suite.Equal(3, snapshot.QueueDepth)
	suite.Equal(float64(250), snapshot.AvgLatencyMS)
	suite.mockAlertSvc.AssertNotCalled(suite.T(), "Raise", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestCaptureHealthSnapshot_WarningOnFailedCount() {
	ctx := context.Background()

	suite.mockQueueRepo.On("CountDue", ctx, mock.AnythingOfType("time.Time")).Return(3, nil).Once()
	suite.mockQueueRepo.On("CountAbandoned", ctx).Return(7, nil).Once()
	suite.mockQueueRepo.On("AvgProcessingLatency", ctx, mock.AnythingOfType("time.Time")).
		Return(time.Duration(0), nil).Once()
	suite.mockAlertSvc.On("RecordHealth", ctx, mock.AnythingOfType("domain.HealthSnapshot")).
		Return(nil).Once()

	snapshot, err := suite.service.CaptureHealthSnapshot(ctx)

	suite.Require().NoError(err)
	suite.Equal(domain.HealthWarning, snapshot.Status)
	suite.mockAlertSvc.AssertNotCalled(suite.T(), "Raise", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestCaptureHealthSnapshot_CriticalRaisesAlert() {
	ctx := context.Background()

	suite.mockQueueRepo.On("CountDue", ctx, mock.AnythingOfType("time.Time")).Return(150, nil).Once()
	suite.mockQueueRepo.On("CountAbandoned", ctx).Return(2, nil).Once()
	suite.mockQueueRepo.On("AvgProcessingLatency", ctx, mock.AnythingOfType("time.Time")).
		Return(5*time.Second, nil).Once()
	suite.mockAlertSvc.On("RecordHealth", ctx, mock.AnythingOfType("domain.HealthSnapshot")).
		Return(nil).Once()
	suite.mockAlertSvc.On("Raise", ctx, domain.AlertQueueBackup, domain.SeverityCritical,
		mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()

	snapshot, err := suite.service.CaptureHealthSnapshot(ctx)

	suite.Require().NoError(err)
	suite.Equal(domain.HealthCritical, snapshot.Status)
	suite.mockAlertSvc.AssertExpectations(suite.T())
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}
