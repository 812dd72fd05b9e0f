package services_test

import (
	"context"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	args := m.Called(ctx, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpsertDailyBalancesInTx(ctx context.Context, tx pgx.Tx, balanceDate time.Time, changes map[string]domain.BalanceDelta) error {
	args := m.Called(ctx, tx, balanceDate, changes)
	return args.Error(0)
}

// --- Mock EntryRepository ---

type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryFacade = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindPostedEntryByReference(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, kind, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine, changes map[string]domain.BalanceDelta) error {
	args := m.Called(ctx, entry, lines, changes)
	return args.Error(0)
}

func (m *MockEntryRepository) SaveReversalEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalLine, changes map[string]domain.BalanceDelta, originalEntryID string, actor string, now time.Time) error {
	args := m.Called(ctx, entry, lines, changes, originalEntryID, actor, now)
	return args.Error(0)
}

func (m *MockEntryRepository) GetAccountTotalsAsOf(ctx context.Context, accountID string, asOf time.Time) (domain.BalanceTotals, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(domain.BalanceTotals), args.Error(1)
}

func (m *MockEntryRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, map[string]domain.NormalBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Get(1).(map[string]domain.NormalBalance), args.Error(2)
}

func (m *MockEntryRepository) SumPostedTotals(ctx context.Context) (domain.BalanceTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.BalanceTotals), args.Error(1)
}

// --- Mock SyncQueueRepository ---

type MockSyncQueueRepository struct {
	mock.Mock
}

var _ portsrepo.SyncQueueRepository = (*MockSyncQueueRepository)(nil)

func (m *MockSyncQueueRepository) Enqueue(ctx context.Context, task domain.SyncTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) LeaseDueTasks(ctx context.Context, workerID string, batchSize int, lockTTL time.Duration, now time.Time) ([]domain.SyncTask, error) {
	args := m.Called(ctx, workerID, batchSize, lockTTL, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SyncTask), args.Error(1)
}

func (m *MockSyncQueueRepository) MarkProcessed(ctx context.Context, operationID string, now time.Time) error {
	args := m.Called(ctx, operationID, now)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) Reschedule(ctx context.Context, operationID string, retryCount int, nextAt time.Time, lastError string) error {
	args := m.Called(ctx, operationID, retryCount, nextAt, lastError)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) Abandon(ctx context.Context, operationID string, retryCount int, lastError string) error {
	args := m.Called(ctx, operationID, retryCount, lastError)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) ReleaseLease(ctx context.Context, operationID string) error {
	args := m.Called(ctx, operationID)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) ResetTask(ctx context.Context, operationID string, now time.Time) error {
	args := m.Called(ctx, operationID, now)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) ResetAllAbandoned(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSyncQueueRepository) ListTasks(ctx context.Context, state domain.TaskState, lockTTL time.Duration, limit int, nextToken *string) ([]domain.SyncTask, *string, error) {
	args := m.Called(ctx, state, lockTTL, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		token := args.Get(1).(string)
		next = &token
	}
	return args.Get(0).([]domain.SyncTask), next, args.Error(2)
}

func (m *MockSyncQueueRepository) CountDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockSyncQueueRepository) CountAbandoned(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSyncQueueRepository) AvgProcessingLatency(ctx context.Context, since time.Time) (time.Duration, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(time.Duration), args.Error(1)
}

// --- Mock SyncStatusRepository ---

type MockSyncStatusRepository struct {
	mock.Mock
}

var _ portsrepo.SyncStatusRepository = (*MockSyncStatusRepository)(nil)

func (m *MockSyncStatusRepository) Get(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*domain.SyncStatus, error) {
	args := m.Called(ctx, kind, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncStatus), args.Error(1)
}

func (m *MockSyncStatusRepository) UpsertSuccess(ctx context.Context, kind domain.ReferenceKind, referenceID int64, journalEntryID string, now time.Time) error {
	args := m.Called(ctx, kind, referenceID, journalEntryID, now)
	return args.Error(0)
}

func (m *MockSyncStatusRepository) UpsertFailure(ctx context.Context, kind domain.ReferenceKind, referenceID int64, lastError string, now time.Time) error {
	args := m.Called(ctx, kind, referenceID, lastError, now)
	return args.Error(0)
}

// --- Mock AlertRepository ---

type MockAlertRepository struct {
	mock.Mock
}

var _ portsrepo.AlertRepository = (*MockAlertRepository)(nil)

func (m *MockAlertRepository) InsertIfAbsent(ctx context.Context, alert domain.Alert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) Resolve(ctx context.Context, alertID string, now time.Time) error {
	args := m.Called(ctx, alertID, now)
	return args.Error(0)
}

func (m *MockAlertRepository) ListUnresolved(ctx context.Context) ([]domain.Alert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Alert), args.Error(1)
}

func (m *MockAlertRepository) SaveHealthSnapshot(ctx context.Context, snapshot domain.HealthSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockAlertRepository) ListHealthHistory(ctx context.Context, limit int) ([]domain.HealthSnapshot, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HealthSnapshot), args.Error(1)
}

// --- Mock SourceRepository ---

type MockSourceRepository struct {
	mock.Mock
}

var _ portsrepo.SourceRepository = (*MockSourceRepository)(nil)

func (m *MockSourceRepository) FindUnsyncedRevenue(ctx context.Context, kind domain.ReferenceKind, limit int) ([]domain.RevenueEvent, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RevenueEvent), args.Error(1)
}

func (m *MockSourceRepository) SourceRecordExists(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (bool, error) {
	args := m.Called(ctx, kind, referenceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSourceRepository) FindOrphanedEntries(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

// --- Mock LedgerService ---

type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) PostEntry(ctx context.Context, req dto.PostEntryRequest, actor string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

func (m *MockLedgerService) GetAccountsByType(ctx context.Context, accountType domain.AccountType, asOf time.Time) ([]dto.AccountResponse, error) {
	args := m.Called(ctx, accountType, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.AccountResponse), args.Error(1)
}

// --- Mock SyncService ---

type MockSyncService struct {
	mock.Mock
}

var _ portssvc.SyncSvcFacade = (*MockSyncService)(nil)

func (m *MockSyncService) Enqueue(ctx context.Context, req dto.EnqueueTaskRequest) (*domain.SyncTask, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncTask), args.Error(1)
}

func (m *MockSyncService) EnqueueEvent(ctx context.Context, event domain.RevenueEvent, op domain.OperationType, priority int) (*domain.SyncTask, error) {
	args := m.Called(ctx, event, op, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncTask), args.Error(1)
}

func (m *MockSyncService) ProcessOnce(ctx context.Context, workerID string) (int, error) {
	args := m.Called(ctx, workerID)
	return args.Int(0), args.Error(1)
}

func (m *MockSyncService) Start(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockSyncService) ForceRetry(ctx context.Context, operationID string) error {
	args := m.Called(ctx, operationID)
	return args.Error(0)
}

func (m *MockSyncService) ForceRetryAllFailed(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSyncService) ListTasks(ctx context.Context, state domain.TaskState, limit int, nextToken *string) (*dto.ListTasksResponse, error) {
	args := m.Called(ctx, state, limit, nextToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTasksResponse), args.Error(1)
}

func (m *MockSyncService) IsSynced(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (bool, error) {
	args := m.Called(ctx, kind, referenceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSyncService) ExistingEntryID(ctx context.Context, kind domain.ReferenceKind, referenceID int64) (*string, error) {
	args := m.Called(ctx, kind, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockSyncService) CaptureHealthSnapshot(ctx context.Context) (*domain.HealthSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthSnapshot), args.Error(1)
}

// --- Mock AlertService ---

type MockAlertService struct {
	mock.Mock
}

var _ portssvc.AlertSvcFacade = (*MockAlertService)(nil)

func (m *MockAlertService) Raise(ctx context.Context, alertType domain.AlertType, severity domain.AlertSeverity, message string, detail any) error {
	args := m.Called(ctx, alertType, severity, message, detail)
	return args.Error(0)
}

func (m *MockAlertService) Resolve(ctx context.Context, alertID string) error {
	args := m.Called(ctx, alertID)
	return args.Error(0)
}

func (m *MockAlertService) ListUnresolved(ctx context.Context) ([]domain.Alert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Alert), args.Error(1)
}

func (m *MockAlertService) RecordHealth(ctx context.Context, snapshot domain.HealthSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockAlertService) ListHealthHistory(ctx context.Context, limit int) ([]domain.HealthSnapshot, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HealthSnapshot), args.Error(1)
}
