package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockSourceRepo *MockSourceRepository
	mockEntryRepo  *MockEntryRepository
	mockSyncSvc    *MockSyncService
	mockAlertSvc   *MockAlertService
	service        portssvc.ReconciliationSvcFacade
	batchSize      int
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockSourceRepo = new(MockSourceRepository)
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockSyncSvc = new(MockSyncService)
	suite.mockAlertSvc = new(MockAlertService)
	suite.batchSize = 100
	suite.service = services.NewReconciliationService(
		suite.mockSourceRepo, suite.mockEntryRepo, suite.mockSyncSvc, suite.mockAlertSvc,
		services.DefaultPostingRegistry(), 15*time.Minute, suite.batchSize, nil)
}

// expectEmptyScans registers empty source scans for every kind except the
// listed exceptions, which the test mocks itself.
func (suite *ReconciliationServiceTestSuite) expectEmptyScans(ctx context.Context, except ...domain.ReferenceKind) {
	skip := make(map[domain.ReferenceKind]bool, len(except))
	for _, kind := range except {
		skip[kind] = true
	}
	for _, kind := range services.DefaultPostingRegistry().Kinds() {
		if skip[kind] {
			continue
		}
		suite.mockSourceRepo.On("FindUnsyncedRevenue", ctx, kind, suite.batchSize).
			Return([]domain.RevenueEvent{}, nil).Once()
	}
}

func (suite *ReconciliationServiceTestSuite) expectBalancedLedger(ctx context.Context) {
	suite.mockSourceRepo.On("FindOrphanedEntries", ctx, suite.batchSize).
		Return([]domain.JournalEntry{}, nil).Once()
	suite.mockEntryRepo.On("SumPostedTotals", ctx).
		Return(domain.BalanceTotals{Debit: decimal.NewFromInt(5000), Credit: decimal.NewFromInt(5000)}, nil).Once()
}

func (suite *ReconciliationServiceTestSuite) TestRunOnce_CleanPass() {
	ctx := context.Background()
	suite.expectEmptyScans(ctx)
	suite.expectBalancedLedger(ctx)

	report, err := suite.service.RunOnce(ctx)

	suite.Require().NoError(err)
	suite.Equal(0, report.GapsEnqueued)
	suite.Equal(0, report.OrphansFound)
	suite.True(report.GlobalBalanced)
	suite.mockAlertSvc.AssertNotCalled(suite.T(), "Raise", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockSyncSvc.AssertNotCalled(suite.T(), "EnqueueEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestRunOnce_EnqueuesGaps() {
	ctx := context.Background()
	gaps := []domain.RevenueEvent{
		{Kind: domain.KindPharmacy, ReferenceID: 41, Amount: decimal.NewFromInt(200), Date: time.Now()},
		{Kind: domain.KindPharmacy, ReferenceID: 43, Amount: decimal.NewFromInt(350), Date: time.Now()},
	}

	suite.expectEmptyScans(ctx, domain.KindPharmacy)
	suite.mockSourceRepo.On("FindUnsyncedRevenue", ctx, domain.KindPharmacy, suite.batchSize).
		Return(gaps, nil).Once()
	suite.mockSyncSvc.On("EnqueueEvent", ctx, mock.AnythingOfType("domain.RevenueEvent"), domain.OpInsert, domain.PriorityNormal).
		Return(&domain.SyncTask{OperationID: uuid.NewString()}, nil).Twice()
	suite.expectBalancedLedger(ctx)

	report, err := suite.service.RunOnce(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, report.GapsEnqueued)
	suite.mockSyncSvc.AssertExpectations(suite.T())
	// Gaps are repaired through the queue, never posted here.
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestRunOnce_SourceScanErrorDoesNotStopOthers() {
	ctx := context.Background()
	gap := []domain.RevenueEvent{
		{Kind: domain.KindLab, ReferenceID: 5, Amount: decimal.NewFromInt(150), Date: time.Now()},
	}

	suite.expectEmptyScans(ctx, domain.KindPharmacy, domain.KindLab)
	suite.mockSourceRepo.On("FindUnsyncedRevenue", ctx, domain.KindPharmacy, suite.batchSize).
		Return(nil, assert.AnError).Once()
	suite.mockSourceRepo.On("FindUnsyncedRevenue", ctx, domain.KindLab, suite.batchSize).
		Return(gap, nil).Once()
	suite.mockSyncSvc.On("EnqueueEvent", ctx, mock.Anything, domain.OpInsert, domain.PriorityNormal).
		Return(&domain.SyncTask{OperationID: uuid.NewString()}, nil).Once()
	suite.expectBalancedLedger(ctx)

	report, err := suite.service.RunOnce(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, report.GapsEnqueued)
	suite.mockSourceRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunOnce_OrphansRaiseMediumAlert() {
	ctx := context.Background()
	orphans := []domain.JournalEntry{
		{EntryID: uuid.NewString(), EntryNumber: "JE2026000009", ReferenceKind: domain.KindUltrasound, ReferenceID: 77, Status: domain.Posted},
	}

	suite.expectEmptyScans(ctx)
	suite.mockSourceRepo.On("FindOrphanedEntries", ctx, suite.batchSize).
		Return(orphans, nil).Once()
	suite.mockAlertSvc.On("Raise", ctx, domain.AlertDataInconsistency, domain.SeverityMedium,
		mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()
	suite.mockEntryRepo.On("SumPostedTotals", ctx).
		Return(domain.BalanceTotals{Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(100)}, nil).Once()

	report, err := suite.service.RunOnce(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, report.OrphansFound)
	suite.True(report.GlobalBalanced)
	suite.mockAlertSvc.AssertExpectations(suite.T())
	// Orphans are flagged for a human, never auto-reversed.
	suite.mockSyncSvc.AssertNotCalled(suite.T(), "EnqueueEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestRunOnce_UnbalancedLedgerRaisesHighAlert() {
	ctx := context.Background()

	suite.expectEmptyScans(ctx)
	suite.mockSourceRepo.On("FindOrphanedEntries", ctx, suite.batchSize).
		Return([]domain.JournalEntry{}, nil).Once()
	suite.mockEntryRepo.On("SumPostedTotals", ctx).
		Return(domain.BalanceTotals{Debit: decimal.NewFromInt(5000), Credit: decimal.NewFromInt(4900)}, nil).Once()
	suite.mockAlertSvc.On("Raise", ctx, domain.AlertDataInconsistency, domain.SeverityHigh,
		mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()

	report, err := suite.service.RunOnce(ctx)

	suite.Require().NoError(err)
	suite.False(report.GlobalBalanced)
	suite.mockAlertSvc.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunOnce_ToleranceIsNotAnImbalance() {
	ctx := context.Background()

	suite.expectEmptyScans(ctx)
	suite.mockSourceRepo.On("FindOrphanedEntries", ctx, suite.batchSize).
		Return([]domain.JournalEntry{}, nil).Once()
	// A rounding residue inside the tolerance must not alert.
	suite.mockEntryRepo.On("SumPostedTotals", ctx).
		Return(domain.BalanceTotals{Debit: decimal.NewFromFloat(5000.01), Credit: decimal.NewFromInt(5000)}, nil).Once()

	report, err := suite.service.RunOnce(ctx)

	suite.Require().NoError(err)
	suite.True(report.GlobalBalanced)
	suite.mockAlertSvc.AssertNotCalled(suite.T(), "Raise", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
