package services_test

import (
	"context"
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

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

// Ensure MockPaymentRepository implements portsrepo.PaymentRepositoryWithTx
var _ portsrepo.PaymentRepositoryWithTx = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, associationID string, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, associationID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByUnit(ctx context.Context, associationID string, unitID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	args := m.Called(ctx, associationID, unitID, limit, nextToken)
	var payments []domain.Payment
	if args.Get(0) != nil {
		payments = args.Get(0).([]domain.Payment)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return payments, returnedNextToken, args.Error(2)
}

func (m *MockPaymentRepository) FindApplicationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentApplication, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentApplication), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentAmounts(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveApplications(ctx context.Context, applications []domain.PaymentApplication) error {
	args := m.Called(ctx, applications)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteApplicationsByPaymentID(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type PaymentServiceTestSuite struct {
	suite.Suite
	mockPaymentRepo *MockPaymentRepository
	mockChargeRepo  *MockChargeRepository
	mockAssocRepo   *MockAssociationRepository
	mockOutbox      *MockOutboxService
	service         portssvc.PaymentSvcFacade
	associationID   string
	userID          string
	unit            *domain.Unit
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockChargeRepo = new(MockChargeRepository)
	suite.mockAssocRepo = new(MockAssociationRepository)
	suite.mockOutbox = new(MockOutboxService)
	suite.service = services.NewPaymentService(suite.mockPaymentRepo, suite.mockChargeRepo, suite.mockAssocRepo, suite.mockOutbox)

	suite.associationID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.unit = &domain.Unit{
		UnitID:        uuid.NewString(),
		AssociationID: suite.associationID,
		UnitNumber:    "7A",
	}
}

func (suite *PaymentServiceTestSuite) openCharge(total string, dueDate time.Time) domain.Charge {
	amount := decimal.RequireFromString(total)
	return domain.Charge{
		ChargeID:      uuid.NewString(),
		AssociationID: suite.associationID,
		UnitID:        suite.unit.UnitID,
		TotalAmount:   amount,
		PaidAmount:    decimal.Zero,
		BalanceDue:    amount,
		Status:        domain.ChargeBilled,
		DueDate:       dueDate,
	}
}

func (suite *PaymentServiceTestSuite) clearedPayment(amount string) *domain.Payment {
	total := decimal.RequireFromString(amount)
	return &domain.Payment{
		PaymentID:       uuid.NewString(),
		AssociationID:   suite.associationID,
		UnitID:          suite.unit.UnitID,
		Amount:          total,
		AppliedAmount:   decimal.Zero,
		UnappliedAmount: total,
		Status:          domain.PaymentCleared,
		Method:          domain.MethodCheck,
		Reference:       "1042",
		ReceivedDate:    time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
	}
}

// --- Test Cases ---

func (suite *PaymentServiceTestSuite) TestRecordPayment_AllocatesOldestFirst() {
	ctx := context.Background()
	january := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	march := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	chargeA := suite.openCharge("50.00", january)
	chargeB := suite.openCharge("30.00", february)
	chargeC := suite.openCharge("20.00", march)
	req := dto.RecordPaymentRequest{
		UnitID:       suite.unit.UnitID,
		Amount:       decimal.RequireFromString("70.00"),
		Method:       domain.MethodCheck,
		Reference:    "1042",
		ReceivedDate: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	}

	suite.mockAssocRepo.On("FindUnitByID", ctx, suite.associationID, suite.unit.UnitID).Return(suite.unit, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentCleared &&
			p.Amount.Equal(req.Amount) &&
			p.AppliedAmount.IsZero() &&
			p.UnappliedAmount.Equal(req.Amount)
	})).Return(nil).Once()
	suite.mockChargeRepo.On("FindOpenChargesByUnitForUpdate", ctx, suite.associationID, suite.unit.UnitID).
		Return([]domain.Charge{chargeA, chargeB, chargeC}, nil).Once()
	// 70.00 covers the January charge in full and 20.00 of February's;
	// March's charge is never touched.
	suite.mockChargeRepo.On("UpdateChargeAmounts", ctx, mock.MatchedBy(func(c domain.Charge) bool {
		return c.ChargeID == chargeA.ChargeID &&
			c.Status == domain.ChargePaid &&
			c.PaidAmount.Equal(decimal.RequireFromString("50.00")) &&
			c.BalanceDue.IsZero()
	})).Return(nil).Once()
	suite.mockChargeRepo.On("UpdateChargeAmounts", ctx, mock.MatchedBy(func(c domain.Charge) bool {
		return c.ChargeID == chargeB.ChargeID &&
			c.Status == domain.ChargePartiallyPaid &&
			c.PaidAmount.Equal(decimal.RequireFromString("20.00")) &&
			c.BalanceDue.Equal(decimal.RequireFromString("10.00"))
	})).Return(nil).Once()
	suite.mockPaymentRepo.On("SaveApplications", ctx, mock.MatchedBy(func(apps []domain.PaymentApplication) bool {
		return len(apps) == 2 &&
			apps[0].ChargeID == chargeA.ChargeID && apps[0].Amount.Equal(decimal.RequireFromString("50.00")) &&
			apps[1].ChargeID == chargeB.ChargeID && apps[1].Amount.Equal(decimal.RequireFromString("20.00"))
	})).Return(nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentAmounts", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.AppliedAmount.Equal(decimal.RequireFromString("70.00")) && p.UnappliedAmount.IsZero()
	})).Return(nil).Once()
	suite.mockOutbox.On("Enqueue", ctx, suite.associationID, domain.TaskPaymentGLPost, mock.Anything).Return(nil).Once()

	payment, err := suite.service.RecordPayment(ctx, suite.associationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(payment)
	suite.True(payment.AppliedAmount.Equal(decimal.RequireFromString("70.00")))
	suite.True(payment.UnappliedAmount.IsZero())
	suite.Len(payment.Applications, 2)
	suite.mockChargeRepo.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockOutbox.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_SurplusStaysUnapplied() {
	ctx := context.Background()
	charge := suite.openCharge("60.00", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	req := dto.RecordPaymentRequest{
		UnitID:       suite.unit.UnitID,
		Amount:       decimal.RequireFromString("100.00"),
		Method:       domain.MethodACH,
		ReceivedDate: time.Now(),
	}

	suite.mockAssocRepo.On("FindUnitByID", ctx, suite.associationID, suite.unit.UnitID).Return(suite.unit, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.Anything).Return(nil).Once()
	suite.mockChargeRepo.On("FindOpenChargesByUnitForUpdate", ctx, suite.associationID, suite.unit.UnitID).
		Return([]domain.Charge{charge}, nil).Once()
	suite.mockChargeRepo.On("UpdateChargeAmounts", ctx, mock.MatchedBy(func(c domain.Charge) bool {
		return c.ChargeID == charge.ChargeID && c.Status == domain.ChargePaid
	})).Return(nil).Once()
	suite.mockPaymentRepo.On("SaveApplications", ctx, mock.MatchedBy(func(apps []domain.PaymentApplication) bool {
		return len(apps) == 1 && apps[0].Amount.Equal(decimal.RequireFromString("60.00"))
	})).Return(nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentAmounts", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.AppliedAmount.Equal(decimal.RequireFromString("60.00")) &&
			p.UnappliedAmount.Equal(decimal.RequireFromString("40.00"))
	})).Return(nil).Once()
	suite.mockOutbox.On("Enqueue", ctx, suite.associationID, domain.TaskPaymentGLPost, mock.Anything).Return(nil).Once()

	payment, err := suite.service.RecordPayment(ctx, suite.associationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(payment.UnappliedAmount.Equal(decimal.RequireFromString("40.00")))
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_NoOpenCharges() {
	ctx := context.Background()
	req := dto.RecordPaymentRequest{
		UnitID:       suite.unit.UnitID,
		Amount:       decimal.RequireFromString("25.00"),
		Method:       domain.MethodCash,
		ReceivedDate: time.Now(),
	}

	suite.mockAssocRepo.On("FindUnitByID", ctx, suite.associationID, suite.unit.UnitID).Return(suite.unit, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.Anything).Return(nil).Once()
	suite.mockChargeRepo.On("FindOpenChargesByUnitForUpdate", ctx, suite.associationID, suite.unit.UnitID).
		Return([]domain.Charge{}, nil).Once()
	suite.mockOutbox.On("Enqueue", ctx, suite.associationID, domain.TaskPaymentGLPost, mock.Anything).Return(nil).Once()

	payment, err := suite.service.RecordPayment(ctx, suite.associationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(payment.UnappliedAmount.Equal(req.Amount))
	suite.True(payment.AppliedAmount.IsZero())
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SaveApplications", mock.Anything, mock.Anything)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePaymentAmounts", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_AutoApplyDisabled() {
	ctx := context.Background()
	autoApply := false
	req := dto.RecordPaymentRequest{
		UnitID:       suite.unit.UnitID,
		Amount:       decimal.RequireFromString("80.00"),
		Method:       domain.MethodCard,
		ReceivedDate: time.Now(),
		AutoApply:    &autoApply,
	}

	suite.mockAssocRepo.On("FindUnitByID", ctx, suite.associationID, suite.unit.UnitID).Return(suite.unit, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.Anything).Return(nil).Once()
	suite.mockOutbox.On("Enqueue", ctx, suite.associationID, domain.TaskPaymentGLPost, mock.Anything).Return(nil).Once()

	payment, err := suite.service.RecordPayment(ctx, suite.associationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(payment.UnappliedAmount.Equal(req.Amount))
	suite.mockChargeRepo.AssertNotCalled(suite.T(), "FindOpenChargesByUnitForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.RecordPaymentRequest{
		UnitID:       suite.unit.UnitID,
		Amount:       decimal.RequireFromString("-5.00"),
		Method:       domain.MethodCheck,
		ReceivedDate: time.Now(),
	}

	_, err := suite.service.RecordPayment(ctx, suite.associationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_UnitNotFound() {
	ctx := context.Background()
	req := dto.RecordPaymentRequest{
		UnitID:       suite.unit.UnitID,
		Amount:       decimal.RequireFromString("25.00"),
		Method:       domain.MethodCheck,
		ReceivedDate: time.Now(),
	}

	suite.mockAssocRepo.On("FindUnitByID", ctx, suite.associationID, suite.unit.UnitID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.RecordPayment(ctx, suite.associationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_Success() {
	ctx := context.Background()
	payment := suite.clearedPayment("25.00")
	charge := suite.openCharge("40.00", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockChargeRepo.On("FindOpenChargesByUnitForUpdate", ctx, suite.associationID, suite.unit.UnitID).
		Return([]domain.Charge{charge}, nil).Once()
	suite.mockChargeRepo.On("UpdateChargeAmounts", ctx, mock.MatchedBy(func(c domain.Charge) bool {
		return c.ChargeID == charge.ChargeID &&
			c.Status == domain.ChargePartiallyPaid &&
			c.PaidAmount.Equal(decimal.RequireFromString("25.00")) &&
			c.BalanceDue.Equal(decimal.RequireFromString("15.00"))
	})).Return(nil).Once()
	suite.mockPaymentRepo.On("SaveApplications", ctx, mock.Anything).Return(nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentAmounts", ctx, mock.Anything).Return(nil).Once()
	suite.mockPaymentRepo.On("FindApplicationsByPaymentID", ctx, payment.PaymentID).
		Return([]domain.PaymentApplication{{
			ApplicationID: uuid.NewString(),
			PaymentID:     payment.PaymentID,
			ChargeID:      charge.ChargeID,
			Amount:        decimal.RequireFromString("25.00"),
		}}, nil).Once()

	applied, err := suite.service.ApplyPayment(ctx, suite.associationID, payment.PaymentID, suite.userID)

	suite.Require().NoError(err)
	suite.True(applied.AppliedAmount.Equal(decimal.RequireFromString("25.00")))
	suite.True(applied.UnappliedAmount.IsZero())
	suite.Len(applied.Applications, 1)
	suite.mockChargeRepo.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_NothingUnapplied() {
	ctx := context.Background()
	payment := suite.clearedPayment("25.00")
	payment.AppliedAmount = payment.Amount
	payment.UnappliedAmount = decimal.Zero

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.ApplyPayment(ctx, suite.associationID, payment.PaymentID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockChargeRepo.AssertNotCalled(suite.T(), "FindOpenChargesByUnitForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestApplyPayment_VoidedPayment() {
	ctx := context.Background()
	payment := suite.clearedPayment("25.00")
	payment.Status = domain.PaymentVoided

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.ApplyPayment(ctx, suite.associationID, payment.PaymentID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockChargeRepo.AssertNotCalled(suite.T(), "FindOpenChargesByUnitForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestVoidPayment_RestoresCharges() {
	ctx := context.Background()
	payment := suite.clearedPayment("70.00")
	payment.AppliedAmount = decimal.RequireFromString("70.00")
	payment.UnappliedAmount = decimal.Zero

	// Charge A was fully covered by this payment. Charge B carries 5.00 from
	// an earlier payment on top of this payment's 20.00.
	chargeA := suite.openCharge("50.00", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	chargeA.PaidAmount = decimal.RequireFromString("50.00")
	chargeA.BalanceDue = decimal.Zero
	chargeA.Status = domain.ChargePaid
	chargeB := suite.openCharge("30.00", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	chargeB.PaidAmount = decimal.RequireFromString("25.00")
	chargeB.BalanceDue = decimal.RequireFromString("5.00")
	chargeB.Status = domain.ChargePartiallyPaid

	applications := []domain.PaymentApplication{
		{ApplicationID: uuid.NewString(), PaymentID: payment.PaymentID, ChargeID: chargeA.ChargeID, Amount: decimal.RequireFromString("50.00")},
		{ApplicationID: uuid.NewString(), PaymentID: payment.PaymentID, ChargeID: chargeB.ChargeID, Amount: decimal.RequireFromString("20.00")},
	}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockPaymentRepo.On("FindApplicationsByPaymentID", ctx, payment.PaymentID).Return(applications, nil).Once()
	suite.mockChargeRepo.On("FindChargesByIDsForUpdate", ctx, []string{chargeA.ChargeID, chargeB.ChargeID}).
		Return(map[string]domain.Charge{chargeA.ChargeID: chargeA, chargeB.ChargeID: chargeB}, nil).Once()
	suite.mockChargeRepo.On("UpdateChargeAmounts", ctx, mock.MatchedBy(func(c domain.Charge) bool {
		return c.ChargeID == chargeA.ChargeID &&
			c.Status == domain.ChargeBilled &&
			c.PaidAmount.IsZero() &&
			c.BalanceDue.Equal(decimal.RequireFromString("50.00"))
	})).Return(nil).Once()
	suite.mockChargeRepo.On("UpdateChargeAmounts", ctx, mock.MatchedBy(func(c domain.Charge) bool {
		// Only this payment's slice comes off; the earlier payment's 5.00 stays.
		return c.ChargeID == chargeB.ChargeID &&
			c.Status == domain.ChargePartiallyPaid &&
			c.PaidAmount.Equal(decimal.RequireFromString("5.00")) &&
			c.BalanceDue.Equal(decimal.RequireFromString("25.00"))
	})).Return(nil).Once()
	suite.mockPaymentRepo.On("DeleteApplicationsByPaymentID", ctx, payment.PaymentID).Return(nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentAmounts", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentVoided &&
			p.AppliedAmount.IsZero() &&
			p.UnappliedAmount.Equal(p.Amount)
	})).Return(nil).Once()
	suite.mockOutbox.On("Enqueue", ctx, suite.associationID, domain.TaskPaymentGLReverse, mock.Anything).Return(nil).Once()

	voided, err := suite.service.VoidPayment(ctx, suite.associationID, payment.PaymentID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentVoided, voided.Status)
	suite.Empty(voided.Applications)
	suite.mockChargeRepo.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockOutbox.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestVoidPayment_AlreadyVoided() {
	ctx := context.Background()
	payment := suite.clearedPayment("70.00")
	payment.Status = domain.PaymentVoided

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()

	_, err := suite.service.VoidPayment(ctx, suite.associationID, payment.PaymentID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "UpdatePaymentAmounts", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestVoidPayment_UnappliedPayment() {
	ctx := context.Background()
	payment := suite.clearedPayment("30.00")

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockPaymentRepo.On("FindApplicationsByPaymentID", ctx, payment.PaymentID).
		Return([]domain.PaymentApplication{}, nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentAmounts", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentVoided
	})).Return(nil).Once()
	suite.mockOutbox.On("Enqueue", ctx, suite.associationID, domain.TaskPaymentGLReverse, mock.Anything).Return(nil).Once()

	voided, err := suite.service.VoidPayment(ctx, suite.associationID, payment.PaymentID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentVoided, voided.Status)
	suite.mockChargeRepo.AssertNotCalled(suite.T(), "FindChargesByIDsForUpdate", mock.Anything, mock.Anything)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "DeleteApplicationsByPaymentID", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestVoidPayment_EnqueueFailureDoesNotBlockVoid() {
	ctx := context.Background()
	payment := suite.clearedPayment("30.00")

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockPaymentRepo.On("FindApplicationsByPaymentID", ctx, payment.PaymentID).
		Return([]domain.PaymentApplication{}, nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentAmounts", ctx, mock.Anything).Return(nil).Once()
	suite.mockOutbox.On("Enqueue", ctx, suite.associationID, domain.TaskPaymentGLReverse, mock.Anything).
		Return(assert.AnError).Once()

	voided, err := suite.service.VoidPayment(ctx, suite.associationID, payment.PaymentID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentVoided, voided.Status)
	suite.mockOutbox.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestGetPaymentByID_Success() {
	ctx := context.Background()
	payment := suite.clearedPayment("45.00")
	apps := []domain.PaymentApplication{{
		ApplicationID: uuid.NewString(),
		PaymentID:     payment.PaymentID,
		ChargeID:      uuid.NewString(),
		Amount:        decimal.RequireFromString("45.00"),
	}}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, suite.associationID, payment.PaymentID).Return(payment, nil).Once()
	suite.mockPaymentRepo.On("FindApplicationsByPaymentID", ctx, payment.PaymentID).Return(apps, nil).Once()

	got, err := suite.service.GetPaymentByID(ctx, suite.associationID, payment.PaymentID)

	suite.Require().NoError(err)
	suite.Len(got.Applications, 1)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestListPaymentsByUnit_ClampsLimit() {
	ctx := context.Background()
	payments := []domain.Payment{*suite.clearedPayment("10.00")}

	suite.mockAssocRepo.On("FindUnitByID", ctx, suite.associationID, suite.unit.UnitID).Return(suite.unit, nil).Once()
	suite.mockPaymentRepo.On("ListPaymentsByUnit", ctx, suite.associationID, suite.unit.UnitID, 100, (*string)(nil)).
		Return(payments, nil, nil).Once()

	resp, err := suite.service.ListPaymentsByUnit(ctx, suite.associationID, suite.unit.UnitID, dto.ListPaymentsParams{Limit: 1000})

	suite.Require().NoError(err)
	suite.Len(resp.Payments, 1)
	suite.Nil(resp.NextToken)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
