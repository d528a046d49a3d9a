package handlers

// In-package so the tests can mount the unexported route registrars behind the
// same middleware chain main wires up.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/middleware"
)

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) GetAccountByID(ctx context.Context, associationID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, associationID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByNumber(ctx context.Context, associationID string, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, associationID, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, associationID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, associationID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, associationID string, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, associationID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, associationID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, associationID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, associationID string, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	args := m.Called(ctx, associationID, accountID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, associationID string, accountID string, requestingUserID string) error {
	args := m.Called(ctx, associationID, accountID, requestingUserID)
	return args.Error(0)
}

func (m *MockAccountService) SeedDefaultAccounts(ctx context.Context, associationID string, requestingUserID string) (int, error) {
	args := m.Called(ctx, associationID, requestingUserID)
	return args.Int(0), args.Error(1)
}

// --- Mock AssociationService (scope middleware lookup) ---

type MockAssociationService struct {
	mock.Mock
}

var _ portssvc.AssociationReaderSvc = (*MockAssociationService)(nil)

func (m *MockAssociationService) GetAssociationByID(ctx context.Context, associationID string) (*domain.Association, error) {
	args := m.Called(ctx, associationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Association), args.Error(1)
}

func (m *MockAssociationService) ListUnits(ctx context.Context, associationID string) ([]domain.Unit, error) {
	args := m.Called(ctx, associationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Unit), args.Error(1)
}

func (m *MockAssociationService) GetUnitByID(ctx context.Context, associationID string, unitID string) (*domain.Unit, error) {
	args := m.Called(ctx, associationID, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

func (m *MockAssociationService) ListAssessmentTypes(ctx context.Context, associationID string) ([]domain.AssessmentType, error) {
	args := m.Called(ctx, associationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssessmentType), args.Error(1)
}

// --- Test Suite Setup ---

type AccountHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockAccounts  *MockAccountService
	mockAssocs    *MockAssociationService
	jwtSecret     string
	testUserID    string
	associationID string
	association   *domain.Association
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockAccounts = new(MockAccountService)
	suite.mockAssocs = new(MockAssociationService)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.testUserID = uuid.NewString()
	suite.associationID = uuid.NewString()
	suite.association = &domain.Association{
		AssociationID: suite.associationID,
		Name:          "Cedar Ridge HOA",
		Timezone:      "UTC",
		IsActive:      true,
	}

	// Same chain as RegisterRoutes: auth first, then association scoping.
	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(suite.jwtSecret))
	scoped := v1.Group("", middleware.AssociationScopeMiddleware(suite.mockAssocs))
	registerAccountRoutes(scoped, suite.mockAccounts)
}

// generateTestToken signs a short-lived HS256 token matching what the auth
// middleware expects.
func (suite *AccountHandlerTestSuite) generateTestToken(userID string) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "strataledger-test",
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	suite.Require().NoError(err, "Failed to sign test token")
	return signed
}

// doRequest performs a request with a valid token and scope header set.
func (suite *AccountHandlerTestSuite) doRequest(method, target string, body []byte) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	suite.Require().NoError(err)
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.testUserID))
	req.Header.Set("X-Association-ID", suite.associationID)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// expectScopeResolved primes the association lookup the scope middleware performs.
func (suite *AccountHandlerTestSuite) expectScopeResolved() {
	suite.mockAssocs.On("GetAssociationByID", mock.Anything, suite.associationID).Return(suite.association, nil).Once()
}

func (suite *AccountHandlerTestSuite) testAccount() *domain.Account {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Account{
		AccountID:     uuid.NewString(),
		AssociationID: suite.associationID,
		AccountNumber: "1200",
		Name:          "Assessments Receivable",
		AccountType:   domain.Asset,
		Category:      "receivables",
		NormalDebit:   true,
		Balance:       decimal.RequireFromString("150.00"),
		IsActive:      true,
		AuditFields:   domain.NewAuditFields(suite.testUserID, now),
	}
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	suite.expectScopeResolved()

	created := suite.testAccount()
	created.AccountNumber = "1310"
	created.Name = "Special Assessments Receivable"
	created.Balance = decimal.Zero

	suite.mockAccounts.On("CreateAccount", mock.Anything, suite.associationID,
		mock.MatchedBy(func(r dto.CreateAccountRequest) bool {
			return r.AccountNumber == "1310" && r.AccountType == domain.Asset
		}), suite.testUserID).Return(created, nil).Once()

	body, err := json.Marshal(dto.CreateAccountRequest{
		AccountNumber: "1310",
		Name:          "Special Assessments Receivable",
		AccountType:   domain.Asset,
		Category:      "receivables",
	})
	suite.Require().NoError(err)

	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.AccountID, resp.AccountID)
	suite.Equal("1310", resp.AccountNumber)
	suite.True(resp.NormalDebit)
	suite.mockAccounts.AssertExpectations(suite.T())
	suite.mockAssocs.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidAccountType() {
	suite.expectScopeResolved()

	// The oneof binding tag rejects this before the service is reached.
	body := []byte(`{"accountNumber":"1310","name":"Bad","accountType":"BANANA"}`)
	w := suite.doRequest(http.MethodPost, "/api/v1/accounts", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccounts.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_Success() {
	suite.expectScopeResolved()

	account := suite.testAccount()
	suite.mockAccounts.On("GetAccountByID", mock.Anything, suite.associationID, account.AccountID).Return(account, nil).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s", account.AccountID), nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(account.AccountID, resp.AccountID)
	suite.Equal(account.Name, resp.Name)
	suite.True(resp.Balance.Equal(account.Balance))
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.expectScopeResolved()

	accountID := uuid.NewString()
	suite.mockAccounts.On("GetAccountByID", mock.Anything, suite.associationID, accountID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/accounts/%s", accountID), nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "Account not found")
}

func (suite *AccountHandlerTestSuite) TestListAccounts_DefaultsToActiveOnly() {
	suite.expectScopeResolved()

	suite.mockAccounts.On("ListAccounts", mock.Anything, suite.associationID, false).
		Return([]domain.Account{*suite.testAccount()}, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Accounts, 1)
	suite.Equal("1200", resp.Accounts[0].AccountNumber)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListAccounts_IncludeInactive() {
	suite.expectScopeResolved()

	suite.mockAccounts.On("ListAccounts", mock.Anything, suite.associationID, true).
		Return([]domain.Account{}, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts?includeInactive=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestSeedAccounts_Success() {
	suite.expectScopeResolved()

	suite.mockAccounts.On("SeedDefaultAccounts", mock.Anything, suite.associationID, suite.testUserID).Return(16, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/accounts/seed", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.SeedAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(16, resp.AccountsCreated)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestUpdateAccount_SystemAccountForbidden() {
	suite.expectScopeResolved()

	accountID := uuid.NewString()
	suite.mockAccounts.On("UpdateAccount", mock.Anything, suite.associationID, accountID,
		mock.AnythingOfType("dto.UpdateAccountRequest"), suite.testUserID).
		Return(nil, fmt.Errorf("account is system managed: %w", apperrors.ErrForbidden)).Once()

	newName := "Renamed"
	body, err := json.Marshal(dto.UpdateAccountRequest{Name: &newName})
	suite.Require().NoError(err)

	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/v1/accounts/%s", accountID), body)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_Success() {
	suite.expectScopeResolved()

	accountID := uuid.NewString()
	suite.mockAccounts.On("DeleteAccount", mock.Anything, suite.associationID, accountID, suite.testUserID).Return(nil).Once()

	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/accounts/%s", accountID), nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_WithActivityConflict() {
	suite.expectScopeResolved()

	accountID := uuid.NewString()
	suite.mockAccounts.On("DeleteAccount", mock.Anything, suite.associationID, accountID, suite.testUserID).
		Return(fmt.Errorf("account has journal activity: %w", apperrors.ErrConflict)).Once()

	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/accounts/%s", accountID), nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestRequestWithoutToken_Unauthorized() {
	req, err := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	suite.Require().NoError(err)
	req.Header.Set("X-Association-ID", suite.associationID)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Authorization header required")
	suite.mockAssocs.AssertNotCalled(suite.T(), "GetAssociationByID", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestRequestWithoutAssociationHeader_BadRequest() {
	req, err := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.testUserID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "X-Association-ID header required")
	suite.mockAccounts.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestDeactivatedAssociation_Forbidden() {
	inactive := &domain.Association{
		AssociationID: suite.associationID,
		Name:          suite.association.Name,
		IsActive:      false,
	}
	suite.mockAssocs.On("GetAssociationByID", mock.Anything, suite.associationID).Return(inactive, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts", nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "Association is deactivated")
	suite.mockAccounts.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Test Suite ---

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
