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

	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	"github.com/strataops/strataledger/internal/core/services"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

// Ensure MockReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetTrialBalanceRows(ctx context.Context, associationID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, associationID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetIncomeStatementActivity(ctx context.Context, associationID string, from, to time.Time) ([]domain.AccountActivity, []domain.AccountActivity, error) {
	args := m.Called(ctx, associationID, from, to)
	var revenue, expenses []domain.AccountActivity
	if args.Get(0) != nil {
		revenue = args.Get(0).([]domain.AccountActivity)
	}
	if args.Get(1) != nil {
		expenses = args.Get(1).([]domain.AccountActivity)
	}
	return revenue, expenses, args.Error(2)
}

func (m *MockReportingRepository) GetBalanceSheetActivity(ctx context.Context, associationID string, asOf time.Time) ([]domain.AccountActivity, []domain.AccountActivity, []domain.AccountActivity, decimal.Decimal, error) {
	args := m.Called(ctx, associationID, asOf)
	var assets, liabilities, equity []domain.AccountActivity
	if args.Get(0) != nil {
		assets = args.Get(0).([]domain.AccountActivity)
	}
	if args.Get(1) != nil {
		liabilities = args.Get(1).([]domain.AccountActivity)
	}
	if args.Get(2) != nil {
		equity = args.Get(2).([]domain.AccountActivity)
	}
	netIncome := decimal.Zero
	if args.Get(3) != nil {
		netIncome = args.Get(3).(decimal.Decimal)
	}
	return assets, liabilities, equity, netIncome, args.Error(4)
}

// --- Test Suite Setup ---
type ReportingServiceTestSuite struct {
	suite.Suite
	mockRepo      *MockReportingRepository
	service       *services.ReportingService
	associationID string
	asOf          time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockReportingRepository)
	suite.service = services.NewReportingService(suite.mockRepo)

	suite.associationID = uuid.NewString()
	suite.asOf = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
}

func activity(number, name, amount string) domain.AccountActivity {
	return domain.AccountActivity{
		AccountID:     uuid.NewString(),
		AccountNumber: number,
		Name:          name,
		NetAmount:     decimal.RequireFromString(amount),
	}
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestTrialBalance_Success() {
	ctx := context.Background()
	rows := []domain.TrialBalanceRow{
		{AccountNumber: "1200", AccountName: "Assessments Receivable", AccountType: domain.Asset, Debit: decimal.RequireFromString("850.00"), Credit: decimal.Zero},
		{AccountNumber: "4000", AccountName: "Assessment Income", AccountType: domain.Revenue, Debit: decimal.Zero, Credit: decimal.RequireFromString("850.00")},
	}

	suite.mockRepo.On("GetTrialBalanceRows", ctx, suite.associationID, suite.asOf).Return(rows, nil).Once()

	result, err := suite.service.TrialBalance(ctx, suite.associationID, suite.asOf)

	suite.Require().NoError(err)
	suite.Equal(rows, result)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_RepoError() {
	ctx := context.Background()
	repoErr := assert.AnError

	suite.mockRepo.On("GetTrialBalanceRows", ctx, suite.associationID, suite.asOf).Return(nil, repoErr).Once()

	_, err := suite.service.TrialBalance(ctx, suite.associationID, suite.asOf)

	suite.Require().Error(err)
	suite.ErrorIs(err, repoErr)
}

func (suite *ReportingServiceTestSuite) TestIncomeStatement_ComputesTotals() {
	ctx := context.Background()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	revenue := []domain.AccountActivity{
		activity("4000", "Assessment Income", "1200.00"),
		activity("4100", "Late Fee Income", "50.00"),
	}
	expenses := []domain.AccountActivity{
		activity("5100", "Landscaping Expense", "300.00"),
	}

	suite.mockRepo.On("GetIncomeStatementActivity", ctx, suite.associationID, from, suite.asOf).Return(revenue, expenses, nil).Once()

	report, err := suite.service.IncomeStatement(ctx, suite.associationID, from, suite.asOf)

	suite.Require().NoError(err)
	suite.True(report.TotalRevenue.Equal(decimal.RequireFromString("1250.00")), "total revenue was %s", report.TotalRevenue)
	suite.True(report.TotalExpenses.Equal(decimal.RequireFromString("300.00")), "total expenses were %s", report.TotalExpenses)
	suite.True(report.NetIncome.Equal(decimal.RequireFromString("950.00")), "net income was %s", report.NetIncome)
	suite.Len(report.Revenue, 2)
	suite.Len(report.Expenses, 1)
}

func (suite *ReportingServiceTestSuite) TestIncomeStatement_EmptyPeriod() {
	ctx := context.Background()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("GetIncomeStatementActivity", ctx, suite.associationID, from, suite.asOf).
		Return([]domain.AccountActivity{}, []domain.AccountActivity{}, nil).Once()

	report, err := suite.service.IncomeStatement(ctx, suite.associationID, from, suite.asOf)

	suite.Require().NoError(err)
	suite.True(report.TotalRevenue.IsZero())
	suite.True(report.TotalExpenses.IsZero())
	suite.True(report.NetIncome.IsZero())
	suite.NotNil(report.Revenue)
	suite.NotNil(report.Expenses)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_Ties() {
	ctx := context.Background()
	assets := []domain.AccountActivity{
		activity("1000", "Operating Cash", "700.00"),
		activity("1200", "Assessments Receivable", "550.00"),
	}
	equity := []domain.AccountActivity{
		activity("3000", "Reserve Fund Balance", "300.00"),
	}
	netIncome := decimal.RequireFromString("950.00")

	suite.mockRepo.On("GetBalanceSheetActivity", ctx, suite.associationID, suite.asOf).
		Return(assets, []domain.AccountActivity{}, equity, netIncome, nil).Once()

	report, err := suite.service.BalanceSheet(ctx, suite.associationID, suite.asOf)

	suite.Require().NoError(err)
	suite.True(report.TotalAssets.Equal(decimal.RequireFromString("1250.00")), "total assets were %s", report.TotalAssets)
	suite.True(report.TotalLiabilities.IsZero())
	suite.True(report.TotalEquity.Equal(decimal.RequireFromString("300.00")))

	// Assets must equal liabilities + equity + unclosed net income.
	rightSide := report.TotalLiabilities.Add(report.TotalEquity).Add(report.NetIncomeToDate)
	suite.True(report.TotalAssets.Equal(rightSide), "balance sheet does not tie: %s vs %s", report.TotalAssets, rightSide)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_RepoError() {
	ctx := context.Background()
	repoErr := assert.AnError

	suite.mockRepo.On("GetBalanceSheetActivity", ctx, suite.associationID, suite.asOf).
		Return(nil, nil, nil, decimal.Zero, repoErr).Once()

	_, err := suite.service.BalanceSheet(ctx, suite.associationID, suite.asOf)

	suite.Require().Error(err)
	suite.ErrorIs(err, repoErr)
}

// --- Run Test Suite ---
func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
