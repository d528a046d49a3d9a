package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/core/services"
	"github.com/strataops/strataledger/internal/dto"
)

// --- Mock OutboxRepository ---
type MockOutboxRepository struct {
	mock.Mock
}

// Ensure MockOutboxRepository implements portsrepo.OutboxRepository
var _ portsrepo.OutboxRepository = (*MockOutboxRepository)(nil)

func (m *MockOutboxRepository) EnqueueTask(ctx context.Context, task domain.OutboxTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockOutboxRepository) FindTaskByID(ctx context.Context, associationID string, taskID string) (*domain.OutboxTask, error) {
	args := m.Called(ctx, associationID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxTask), args.Error(1)
}

func (m *MockOutboxRepository) ListPendingTasks(ctx context.Context, limit int) ([]domain.OutboxTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxTask), args.Error(1)
}

func (m *MockOutboxRepository) ListTasks(ctx context.Context, associationID string, status *domain.OutboxStatus, limit int) ([]domain.OutboxTask, error) {
	args := m.Called(ctx, associationID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxTask), args.Error(1)
}

func (m *MockOutboxRepository) MarkTaskSent(ctx context.Context, taskID string, now time.Time) error {
	args := m.Called(ctx, taskID, now)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkTaskFailed(ctx context.Context, taskID string, taskErr string) error {
	args := m.Called(ctx, taskID, taskErr)
	return args.Error(0)
}

func (m *MockOutboxRepository) RequeueTask(ctx context.Context, associationID string, taskID string) error {
	args := m.Called(ctx, associationID, taskID)
	return args.Error(0)
}

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

// Ensure MockJournalService implements portssvc.JournalSvcFacade
var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) GetEntryByID(ctx context.Context, associationID string, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, associationID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ListEntries(ctx context.Context, associationID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, associationID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockJournalService) CreateEntry(ctx context.Context, associationID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, associationID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) SubmitEntry(ctx context.Context, associationID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, associationID, entryID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) PostEntry(ctx context.Context, associationID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, associationID, entryID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ReverseEntry(ctx context.Context, associationID string, entryID string, req dto.ReverseEntryRequest, requestingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, associationID, entryID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) PostSourcedEntry(ctx context.Context, associationID string, req dto.CreateEntryRequest, source domain.SourceType, sourceID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, associationID, req, source, sourceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock TransactionManager ---
type MockTxManager struct{}

// Ensure MockTxManager implements portsrepo.TransactionManager
var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Test Suite Setup ---
type OutboxServiceTestSuite struct {
	suite.Suite
	mockOutboxRepo  *MockOutboxRepository
	mockChargeRepo  *MockChargeRepository
	mockPaymentRepo *MockPaymentRepository
	mockAssocRepo   *MockAssociationRepository
	mockAccountRepo *MockAccountRepository
	mockJournal     *MockJournalService
	service         portssvc.OutboxSvcFacade
	associationID   string
	userID          string
	cashAccount     *domain.Account
	receivable      *domain.Account
	incomeAccount   *domain.Account
	badDebtAccount  *domain.Account
}

func (suite *OutboxServiceTestSuite) SetupTest() {
	suite.mockOutboxRepo = new(MockOutboxRepository)
	suite.mockChargeRepo = new(MockChargeRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockAssocRepo = new(MockAssociationRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournal = new(MockJournalService)
	suite.service = services.NewOutboxService(
		suite.mockOutboxRepo,
		suite.mockChargeRepo,
		suite.mockPaymentRepo,
		suite.mockAssocRepo,
		suite.mockAccountRepo,
		suite.mockJournal,
		new(MockTxManager),
	)

	suite.associationID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.cashAccount = suite.systemAccount("1000", domain.Asset)
	suite.receivable = suite.systemAccount("1200", domain.Asset)
	suite.incomeAccount = suite.systemAccount("4000", domain.Revenue)
	suite.badDebtAccount = suite.systemAccount("5900", domain.Expense)
}

func (suite *OutboxServiceTestSuite) systemAccount(number string, accountType domain.AccountType) *domain.Account {
	return &domain.Account{
		AccountID:     uuid.NewString(),
		AssociationID: suite.associationID,
		AccountNumber: number,
		AccountType:   accountType,
		NormalDebit:   accountType.IsDebitNormal(),
		Balance:       decimal.Zero,
		IsSystem:      true,
		IsActive:      true,
	}
}

func (suite *OutboxServiceTestSuite) chargeTask(chargeID string) domain.OutboxTask {
	return domain.OutboxTask{
		TaskID:        uuid.NewString(),
		AssociationID: suite.associationID,
		TaskType:      domain.TaskChargeGLPost,
		Payload:       json.RawMessage(fmt.Sprintf(`{"associationID":%q,"chargeID":%q}`, suite.associationID, chargeID)),
		Status:        domain.OutboxPending,
		CreatedAt:     time.Now(),
	}
}

func (suite *OutboxServiceTestSuite) paymentTask(paymentID string, taskType domain.OutboxTaskType) domain.OutboxTask {
	return domain.OutboxTask{
		TaskID:        uuid.NewString(),
		AssociationID: suite.associationID,
		TaskType:      taskType,
		Payload:       json.RawMessage(fmt.Sprintf(`{"associationID":%q,"paymentID":%q}`, suite.associationID, paymentID)),
		Status:        domain.OutboxPending,
		CreatedAt:     time.Now(),
	}
}

// --- Test Cases ---

func (suite *OutboxServiceTestSuite) TestEnqueue_Success() {
	ctx := context.Background()
	payload := map[string]string{"associationID": suite.associationID, "chargeID": "chg-1"}

	suite.mockOutboxRepo.On("EnqueueTask", ctx, mock.MatchedBy(func(t domain.OutboxTask) bool {
		var body struct {
			AssociationID string `json:"associationID"`
			ChargeID      string `json:"chargeID"`
		}
		if err := json.Unmarshal(t.Payload, &body); err != nil {
			return false
		}
		return t.Status == domain.OutboxPending &&
			t.TaskType == domain.TaskChargeGLPost &&
			t.AssociationID == suite.associationID &&
			body.ChargeID == "chg-1"
	})).Return(nil).Once()

	err := suite.service.Enqueue(ctx, suite.associationID, domain.TaskChargeGLPost, payload)

	suite.Require().NoError(err)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestProcessPending_EmptyQueue() {
	ctx := context.Background()

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{}, nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 10)

	suite.Require().NoError(err)
	suite.Zero(attempted)
	suite.mockOutboxRepo.AssertNotCalled(suite.T(), "MarkTaskSent", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OutboxServiceTestSuite) TestProcessPending_PostsChargeEntry() {
	ctx := context.Background()
	charge := &domain.Charge{
		ChargeID:         uuid.NewString(),
		AssociationID:    suite.associationID,
		UnitID:           uuid.NewString(),
		AssessmentTypeID: uuid.NewString(),
		Description:      "Monthly Assessment",
		TotalAmount:      decimal.RequireFromString("250.00"),
		PaidAmount:       decimal.Zero,
		BalanceDue:       decimal.RequireFromString("250.00"),
		Status:           domain.ChargeBilled,
		DueDate:          time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		AuditFields:      domain.AuditFields{CreatedBy: suite.userID},
	}
	assessmentType := &domain.AssessmentType{
		AssessmentTypeID:    charge.AssessmentTypeID,
		AssociationID:       suite.associationID,
		Name:                "Monthly Assessment",
		IncomeAccountNumber: "4000",
	}
	task := suite.chargeTask(charge.ChargeID)
	glEntry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.EntryPosted}

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockChargeRepo.On("FindChargeByID", ctx, suite.associationID, charge.ChargeID).Return(charge, nil).Once()
	suite.mockAssocRepo.On("FindAssessmentTypeByID", ctx, suite.associationID, charge.AssessmentTypeID).Return(assessmentType, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.associationID, "1200").Return(suite.receivable, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.associationID, "4000").Return(suite.incomeAccount, nil).Once()
	suite.mockJournal.On("PostSourcedEntry", ctx, suite.associationID, mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
		return len(req.Lines) == 2 &&
			req.Lines[0].AccountID == suite.receivable.AccountID &&
			req.Lines[0].Debit.Equal(charge.TotalAmount) &&
			req.Lines[1].AccountID == suite.incomeAccount.AccountID &&
			req.Lines[1].Credit.Equal(charge.TotalAmount) &&
			req.Description == "Charge billed: Monthly Assessment" &&
			req.EntryDate.Equal(charge.DueDate)
	}), domain.SourceCharge, charge.ChargeID, suite.userID).Return(glEntry, nil).Once()
	suite.mockChargeRepo.On("SetChargeGLEntry", ctx, charge.ChargeID, glEntry.EntryID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertExpectations(suite.T())
	suite.mockChargeRepo.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestProcessPending_SkipsChargeAlreadyPosted() {
	ctx := context.Background()
	entryID := uuid.NewString()
	charge := &domain.Charge{
		ChargeID:      uuid.NewString(),
		AssociationID: suite.associationID,
		GLEntryID:     &entryID,
	}
	task := suite.chargeTask(charge.ChargeID)

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockChargeRepo.On("FindChargeByID", ctx, suite.associationID, charge.ChargeID).Return(charge, nil).Once()
	// Skipping still marks the task delivered; re-delivery must not double-post.
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertNotCalled(suite.T(), "PostSourcedEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestProcessPending_PostsWriteoffEntry() {
	ctx := context.Background()
	charge := &domain.Charge{
		ChargeID:      uuid.NewString(),
		AssociationID: suite.associationID,
		Description:   "Special Assessment",
		TotalAmount:   decimal.RequireFromString("200.00"),
		PaidAmount:    decimal.RequireFromString("140.00"),
		BalanceDue:    decimal.RequireFromString("60.00"),
		Status:        domain.ChargeWrittenOff,
		AuditFields:   domain.AuditFields{CreatedBy: suite.userID, LastUpdatedBy: suite.userID},
	}
	task := suite.chargeTask(charge.ChargeID)
	task.TaskType = domain.TaskChargeGLWriteoff
	glEntry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.EntryPosted}

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockChargeRepo.On("FindChargeByID", ctx, suite.associationID, charge.ChargeID).Return(charge, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.associationID, "5900").Return(suite.badDebtAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.associationID, "1200").Return(suite.receivable, nil).Once()
	suite.mockJournal.On("PostSourcedEntry", ctx, suite.associationID, mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
		// Only the uncollected remainder moves to bad debt.
		return len(req.Lines) == 2 &&
			req.Lines[0].AccountID == suite.badDebtAccount.AccountID &&
			req.Lines[0].Debit.Equal(decimal.RequireFromString("60.00")) &&
			req.Lines[1].AccountID == suite.receivable.AccountID &&
			req.Lines[1].Credit.Equal(decimal.RequireFromString("60.00")) &&
			req.Description == "Charge written off: Special Assessment"
	}), domain.SourceCharge, charge.ChargeID, suite.userID).Return(glEntry, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestProcessPending_WriteoffSkipsZeroBalance() {
	ctx := context.Background()
	charge := &domain.Charge{
		ChargeID:      uuid.NewString(),
		AssociationID: suite.associationID,
		TotalAmount:   decimal.RequireFromString("200.00"),
		PaidAmount:    decimal.RequireFromString("200.00"),
		BalanceDue:    decimal.Zero,
		Status:        domain.ChargeWrittenOff,
	}
	task := suite.chargeTask(charge.ChargeID)
	task.TaskType = domain.TaskChargeGLWriteoff

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockChargeRepo.On("FindChargeByID", ctx, suite.associationID, charge.ChargeID).Return(charge, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertNotCalled(suite.T(), "PostSourcedEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OutboxServiceTestSuite) TestProcessPending_PostsPaymentEntry() {
	ctx := context.Background()
	payment := &domain.Payment{
		PaymentID:     uuid.NewString(),
		AssociationID: suite.associationID,
		UnitID:        uuid.NewString(),
		Amount:        decimal.RequireFromString("70.00"),
		Status:        domain.PaymentCleared,
		Method:        domain.MethodCheck,
		Reference:     "1042",
		ReceivedDate:  time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		AuditFields:   domain.AuditFields{CreatedBy: suite.userID},
	}
	task := suite.paymentTask(payment.PaymentID, domain.TaskPaymentGLPost)
	glEntry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.EntryPosted}

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.associationID, "1000").Return(suite.cashAccount, nil).Once()
	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.associationID, "1200").Return(suite.receivable, nil).Once()
	suite.mockJournal.On("PostSourcedEntry", ctx, suite.associationID, mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
		return len(req.Lines) == 2 &&
			req.Lines[0].AccountID == suite.cashAccount.AccountID &&
			req.Lines[0].Debit.Equal(payment.Amount) &&
			req.Lines[1].AccountID == suite.receivable.AccountID &&
			req.Lines[1].Credit.Equal(payment.Amount) &&
			req.Description == "Payment received: CHECK 1042" &&
			req.EntryDate.Equal(payment.ReceivedDate)
	}), domain.SourcePayment, payment.PaymentID, suite.userID).Return(glEntry, nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentAmounts", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.GLEntryID != nil && *p.GLEntryID == glEntry.EntryID
	})).Return(nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestProcessPending_ReversesVoidedPaymentEntry() {
	ctx := context.Background()
	entryID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID:     uuid.NewString(),
		AssociationID: suite.associationID,
		Amount:        decimal.RequireFromString("70.00"),
		Status:        domain.PaymentVoided,
		Method:        domain.MethodCheck,
		GLEntryID:     &entryID,
		AuditFields:   domain.AuditFields{LastUpdatedBy: suite.userID},
	}
	task := suite.paymentTask(payment.PaymentID, domain.TaskPaymentGLReverse)
	postedEntry := &domain.JournalEntry{EntryID: entryID, Status: domain.EntryPosted}
	reversal := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.EntryPosted, IsReversal: true}

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockJournal.On("GetEntryByID", ctx, suite.associationID, entryID).Return(postedEntry, nil).Once()
	suite.mockJournal.On("ReverseEntry", ctx, suite.associationID, entryID, mock.MatchedBy(func(req dto.ReverseEntryRequest) bool {
		return req.Reason == "Payment voided"
	}), suite.userID).Return(reversal, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestProcessPending_ReverseSkipsUnpostedPayment() {
	ctx := context.Background()
	payment := &domain.Payment{
		PaymentID:     uuid.NewString(),
		AssociationID: suite.associationID,
		Status:        domain.PaymentVoided,
	}
	task := suite.paymentTask(payment.PaymentID, domain.TaskPaymentGLReverse)

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertNotCalled(suite.T(), "GetEntryByID", mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournal.AssertNotCalled(suite.T(), "ReverseEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OutboxServiceTestSuite) TestProcessPending_ReverseSkipsAlreadyReversedEntry() {
	ctx := context.Background()
	entryID := uuid.NewString()
	payment := &domain.Payment{
		PaymentID:     uuid.NewString(),
		AssociationID: suite.associationID,
		Status:        domain.PaymentVoided,
		GLEntryID:     &entryID,
	}
	task := suite.paymentTask(payment.PaymentID, domain.TaskPaymentGLReverse)
	reversedEntry := &domain.JournalEntry{EntryID: entryID, Status: domain.EntryReversed}

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockJournal.On("GetEntryByID", ctx, suite.associationID, entryID).Return(reversedEntry, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockJournal.AssertNotCalled(suite.T(), "ReverseEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OutboxServiceTestSuite) TestProcessPending_DispatchFailureMarksTaskFailed() {
	ctx := context.Background()
	chargeID := uuid.NewString()
	task := suite.chargeTask(chargeID)

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockChargeRepo.On("FindChargeByID", ctx, suite.associationID, chargeID).Return(nil, assert.AnError).Once()
	suite.mockOutboxRepo.On("MarkTaskFailed", ctx, task.TaskID, mock.AnythingOfType("string")).Return(nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 1)

	// A failing task is recorded and the batch carries on.
	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockOutboxRepo.AssertNotCalled(suite.T(), "MarkTaskSent", mock.Anything, mock.Anything, mock.Anything)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestProcessPending_StopsWhenQueueEmpties() {
	ctx := context.Background()
	entryID := uuid.NewString()
	charge := &domain.Charge{
		ChargeID:      uuid.NewString(),
		AssociationID: suite.associationID,
		GLEntryID:     &entryID, // dispatch is a cheap skip
	}
	task := suite.chargeTask(charge.ChargeID)

	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{task}, nil).Once()
	suite.mockChargeRepo.On("FindChargeByID", ctx, suite.associationID, charge.ChargeID).Return(charge, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskSent", ctx, task.TaskID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockOutboxRepo.On("ListPendingTasks", ctx, 1).Return([]domain.OutboxTask{}, nil).Once()

	attempted, err := suite.service.ProcessPending(ctx, 5)

	suite.Require().NoError(err)
	suite.Equal(1, attempted)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestRetryTask_Success() {
	ctx := context.Background()
	taskID := uuid.NewString()
	requeued := &domain.OutboxTask{
		TaskID:        taskID,
		AssociationID: suite.associationID,
		TaskType:      domain.TaskChargeGLPost,
		Status:        domain.OutboxPending,
	}

	suite.mockOutboxRepo.On("RequeueTask", ctx, suite.associationID, taskID).Return(nil).Once()
	suite.mockOutboxRepo.On("FindTaskByID", ctx, suite.associationID, taskID).Return(requeued, nil).Once()

	task, err := suite.service.RetryTask(ctx, suite.associationID, taskID)

	suite.Require().NoError(err)
	suite.Equal(domain.OutboxPending, task.Status)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *OutboxServiceTestSuite) TestRetryTask_NotFailed() {
	ctx := context.Background()
	taskID := uuid.NewString()

	suite.mockOutboxRepo.On("RequeueTask", ctx, suite.associationID, taskID).Return(apperrors.ErrConflict).Once()

	_, err := suite.service.RetryTask(ctx, suite.associationID, taskID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockOutboxRepo.AssertNotCalled(suite.T(), "FindTaskByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OutboxServiceTestSuite) TestListTasks_DefaultsLimitAndNeverNil() {
	ctx := context.Background()

	suite.mockOutboxRepo.On("ListTasks", ctx, suite.associationID, (*domain.OutboxStatus)(nil), 50).Return(nil, nil).Once()

	tasks, err := suite.service.ListTasks(ctx, suite.associationID, nil, 0)

	suite.Require().NoError(err)
	suite.NotNil(tasks)
	suite.Empty(tasks)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestOutboxService(t *testing.T) {
	suite.Run(t, new(OutboxServiceTestSuite))
}
