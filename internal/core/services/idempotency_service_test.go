package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	"github.com/strataops/strataledger/internal/core/services"
)

// --- Mock IdempotencyRepository ---
type MockIdempotencyRepository struct {
	mock.Mock
}

// Ensure MockIdempotencyRepository implements portsrepo.IdempotencyRepositoryWithTx
var _ portsrepo.IdempotencyRepositoryWithTx = (*MockIdempotencyRepository)(nil)

func (m *MockIdempotencyRepository) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockIdempotencyRepository) InsertInProgress(ctx context.Context, record domain.IdempotencyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) FindRecord(ctx context.Context, associationID string, operation string, idempotencyKey string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, associationID, operation, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

func (m *MockIdempotencyRepository) ClaimForRetry(ctx context.Context, associationID string, operation string, idempotencyKey string, staleBefore time.Time, now time.Time) (bool, error) {
	args := m.Called(ctx, associationID, operation, idempotencyKey, staleBefore, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyRepository) MarkCompleted(ctx context.Context, associationID string, operation string, idempotencyKey string, result []byte, now time.Time) error {
	args := m.Called(ctx, associationID, operation, idempotencyKey, result, now)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) MarkFailed(ctx context.Context, associationID string, operation string, idempotencyKey string, now time.Time) error {
	args := m.Called(ctx, associationID, operation, idempotencyKey, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

const testTakeoverAfter = 10 * time.Minute

type IdempotencyServiceTestSuite struct {
	suite.Suite
	mockIdemRepo  *MockIdempotencyRepository
	service       *services.IdempotencyService
	associationID string
	operation     string
	key           string
}

func (suite *IdempotencyServiceTestSuite) SetupTest() {
	suite.mockIdemRepo = new(MockIdempotencyRepository)
	suite.service = services.NewIdempotencyService(suite.mockIdemRepo, testTakeoverAfter)

	suite.associationID = uuid.NewString()
	suite.operation = "payment.record"
	suite.key = uuid.NewString()
}

// --- Test Cases ---

func (suite *IdempotencyServiceTestSuite) TestExecute_FirstRun() {
	ctx := context.Background()

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.MatchedBy(func(r domain.IdempotencyRecord) bool {
		return r.AssociationID == suite.associationID &&
			r.Operation == suite.operation &&
			r.IdempotencyKey == suite.key &&
			r.Status == domain.IdempotencyInProgress
	})).Return(nil).Once()
	suite.mockIdemRepo.On("MarkCompleted", ctx, suite.associationID, suite.operation, suite.key, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, replayed, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		return map[string]string{"paymentID": "pay-1"}, nil
	})

	suite.Require().NoError(err)
	suite.False(replayed)
	suite.JSONEq(`{"paymentID":"pay-1"}`, string(result))
	suite.mockIdemRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_InvalidKey() {
	ctx := context.Background()

	_, _, err := suite.service.Execute(ctx, suite.associationID, suite.operation, "not-a-uuid", func(ctx context.Context) (interface{}, error) {
		suite.FailNow("operation must not run with an invalid key")
		return nil, nil
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockIdemRepo.AssertNotCalled(suite.T(), "InsertInProgress", mock.Anything, mock.Anything)
}

func (suite *IdempotencyServiceTestSuite) TestExecute_ReplaysCompletedResult() {
	ctx := context.Background()
	stored := json.RawMessage(`{"chargeID":"chg-7"}`)
	record := &domain.IdempotencyRecord{
		AssociationID:  suite.associationID,
		Operation:      suite.operation,
		IdempotencyKey: suite.key,
		Status:         domain.IdempotencyCompleted,
		Result:         stored,
		CreatedAt:      time.Now().Add(-time.Hour),
	}

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.mockIdemRepo.On("FindRecord", ctx, suite.associationID, suite.operation, suite.key).Return(record, nil).Once()

	result, replayed, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		suite.FailNow("operation must not run again on replay")
		return nil, nil
	})

	suite.Require().NoError(err)
	suite.True(replayed)
	suite.JSONEq(`{"chargeID":"chg-7"}`, string(result))
	suite.mockIdemRepo.AssertNotCalled(suite.T(), "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IdempotencyServiceTestSuite) TestExecute_InFlightConflict() {
	ctx := context.Background()
	record := &domain.IdempotencyRecord{
		AssociationID:  suite.associationID,
		Operation:      suite.operation,
		IdempotencyKey: suite.key,
		Status:         domain.IdempotencyInProgress,
		CreatedAt:      time.Now(), // fresh, another request is live
	}

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.mockIdemRepo.On("FindRecord", ctx, suite.associationID, suite.operation, suite.key).Return(record, nil).Once()

	_, replayed, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		suite.FailNow("operation must not run while another execution holds the key")
		return nil, nil
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.False(replayed)
	suite.mockIdemRepo.AssertNotCalled(suite.T(), "ClaimForRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IdempotencyServiceTestSuite) TestExecute_StaleInProgressTakeover() {
	ctx := context.Background()
	record := &domain.IdempotencyRecord{
		AssociationID:  suite.associationID,
		Operation:      suite.operation,
		IdempotencyKey: suite.key,
		Status:         domain.IdempotencyInProgress,
		CreatedAt:      time.Now().Add(-time.Hour), // well past takeoverAfter
	}

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.mockIdemRepo.On("FindRecord", ctx, suite.associationID, suite.operation, suite.key).Return(record, nil).Once()
	suite.mockIdemRepo.On("ClaimForRetry", ctx, suite.associationID, suite.operation, suite.key, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	suite.mockIdemRepo.On("MarkCompleted", ctx, suite.associationID, suite.operation, suite.key, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil).Once()

	ran := false
	result, replayed, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		ran = true
		return map[string]int{"attempt": 2}, nil
	})

	suite.Require().NoError(err)
	suite.True(ran)
	suite.False(replayed)
	suite.JSONEq(`{"attempt":2}`, string(result))
	suite.mockIdemRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_RetriesFailedRecord() {
	ctx := context.Background()
	record := &domain.IdempotencyRecord{
		AssociationID:  suite.associationID,
		Operation:      suite.operation,
		IdempotencyKey: suite.key,
		Status:         domain.IdempotencyFailed,
		CreatedAt:      time.Now().Add(-time.Minute),
	}

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.mockIdemRepo.On("FindRecord", ctx, suite.associationID, suite.operation, suite.key).Return(record, nil).Once()
	suite.mockIdemRepo.On("ClaimForRetry", ctx, suite.associationID, suite.operation, suite.key, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	suite.mockIdemRepo.On("MarkCompleted", ctx, suite.associationID, suite.operation, suite.key, mock.Anything, mock.AnythingOfType("time.Time")).Return(nil).Once()

	ran := false
	_, replayed, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		ran = true
		return "retried", nil
	})

	suite.Require().NoError(err)
	suite.True(ran)
	suite.False(replayed)
}

func (suite *IdempotencyServiceTestSuite) TestExecute_LostClaimRaceReplaysWinner() {
	ctx := context.Background()
	failed := &domain.IdempotencyRecord{
		AssociationID:  suite.associationID,
		Operation:      suite.operation,
		IdempotencyKey: suite.key,
		Status:         domain.IdempotencyFailed,
		CreatedAt:      time.Now().Add(-time.Minute),
	}
	completed := &domain.IdempotencyRecord{
		AssociationID:  suite.associationID,
		Operation:      suite.operation,
		IdempotencyKey: suite.key,
		Status:         domain.IdempotencyCompleted,
		Result:         json.RawMessage(`{"winner":true}`),
		CreatedAt:      failed.CreatedAt,
	}

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	// First read sees FAILED, but another executor claims it first and
	// completes; the second read replays that result.
	suite.mockIdemRepo.On("FindRecord", ctx, suite.associationID, suite.operation, suite.key).Return(failed, nil).Once()
	suite.mockIdemRepo.On("ClaimForRetry", ctx, suite.associationID, suite.operation, suite.key, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(false, nil).Once()
	suite.mockIdemRepo.On("FindRecord", ctx, suite.associationID, suite.operation, suite.key).Return(completed, nil).Once()

	result, replayed, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		suite.FailNow("loser of the claim race must not execute")
		return nil, nil
	})

	suite.Require().NoError(err)
	suite.True(replayed)
	suite.JSONEq(`{"winner":true}`, string(result))
	suite.mockIdemRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_ClaimExhaustionConflicts() {
	ctx := context.Background()
	failed := &domain.IdempotencyRecord{
		AssociationID:  suite.associationID,
		Operation:      suite.operation,
		IdempotencyKey: suite.key,
		Status:         domain.IdempotencyFailed,
		CreatedAt:      time.Now().Add(-time.Minute),
	}

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.mockIdemRepo.On("FindRecord", ctx, suite.associationID, suite.operation, suite.key).Return(failed, nil).Twice()
	suite.mockIdemRepo.On("ClaimForRetry", ctx, suite.associationID, suite.operation, suite.key, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(false, nil).Twice()

	_, _, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		suite.FailNow("operation must not run after losing every claim attempt")
		return nil, nil
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockIdemRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_OperationErrorMarksFailed() {
	ctx := context.Background()
	opErr := assert.AnError

	suite.mockIdemRepo.On("InsertInProgress", ctx, mock.Anything).Return(nil).Once()
	// MarkFailed runs on a detached context so a canceled request can still
	// record the failure; match the ctx loosely.
	suite.mockIdemRepo.On("MarkFailed", mock.Anything, suite.associationID, suite.operation, suite.key, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, replayed, err := suite.service.Execute(ctx, suite.associationID, suite.operation, suite.key, func(ctx context.Context) (interface{}, error) {
		return nil, opErr
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, opErr)
	suite.Nil(result)
	suite.False(replayed)
	suite.mockIdemRepo.AssertNotCalled(suite.T(), "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockIdemRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestIdempotencyService(t *testing.T) {
	suite.Run(t, new(IdempotencyServiceTestSuite))
}
