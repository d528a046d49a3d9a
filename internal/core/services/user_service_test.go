package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	"github.com/strataops/strataledger/internal/core/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/utils"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

// Ensure MockUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProvider(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Test Suite Setup ---
type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      *services.UserService
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

// --- Test Cases ---

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Name:     "Pat Resident",
		Email:    "  Pat.Resident@Example.COM ",
		Password: "correct-horse-battery",
	}

	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "pat.resident@example.com" &&
			u.AuthProvider == domain.ProviderLocal &&
			u.IsActive &&
			u.PasswordHash != nil &&
			*u.PasswordHash != req.Password &&
			utils.CheckPasswordHash(req.Password, *u.PasswordHash) &&
			u.CreatedBy == u.UserID
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.NotEmpty(user.UserID)
	suite.Equal("pat.resident@example.com", user.Email)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Name:     "Pat Resident",
		Email:    "pat.resident@example.com",
		Password: "correct-horse-battery",
	}

	suite.mockUserRepo.On("SaveUser", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateUser(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	hash, hashErr := utils.HashPassword("correct-horse-battery")
	suite.Require().NoError(hashErr)
	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "pat.resident@example.com",
		PasswordHash: &hash,
		AuthProvider: domain.ProviderLocal,
		IsActive:     true,
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "pat.resident@example.com").Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, " Pat.Resident@Example.COM ", "correct-horse-battery")

	suite.Require().NoError(err)
	suite.Equal(user.UserID, authed.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	hash, hashErr := utils.HashPassword("correct-horse-battery")
	suite.Require().NoError(hashErr)
	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "pat.resident@example.com",
		PasswordHash: &hash,
		IsActive:     true,
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "pat.resident@example.com").Return(user, nil).Once()

	_, err := suite.service.AuthenticateUser(ctx, "pat.resident@example.com", "wrong")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownEmail() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.AuthenticateUser(ctx, "nobody@example.com", "whatever")

	// Unknown email and wrong password answer identically.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_OAuthOnlyAccount() {
	ctx := context.Background()
	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "pat.resident@example.com",
		PasswordHash: nil, // signed up through a provider
		AuthProvider: domain.ProviderGoogle,
		IsActive:     true,
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "pat.resident@example.com").Return(user, nil).Once()

	_, err := suite.service.AuthenticateUser(ctx, "pat.resident@example.com", "anything")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_DeactivatedAccount() {
	ctx := context.Background()
	hash, hashErr := utils.HashPassword("correct-horse-battery")
	suite.Require().NoError(hashErr)
	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "pat.resident@example.com",
		PasswordHash: &hash,
		IsActive:     false,
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "pat.resident@example.com").Return(user, nil).Once()

	_, err := suite.service.AuthenticateUser(ctx, "pat.resident@example.com", "correct-horse-battery")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_ExistingProviderIdentity() {
	ctx := context.Background()
	providerUserID := "google-sub-123"
	existing := &domain.User{
		UserID:         uuid.NewString(),
		Email:          "pat.resident@example.com",
		AuthProvider:   domain.ProviderGoogle,
		ProviderUserID: &providerUserID,
		IsActive:       true,
	}

	suite.mockUserRepo.On("FindUserByProvider", ctx, domain.ProviderGoogle, providerUserID).Return(existing, nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "Pat Resident", "pat.resident@example.com", "GOOGLE", providerUserID, true)

	suite.Require().NoError(err)
	suite.Equal(existing.UserID, user.UserID)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_LinksVerifiedEmail() {
	ctx := context.Background()
	providerUserID := "google-sub-123"
	hash := "some-bcrypt-hash"
	existing := &domain.User{
		UserID:       uuid.NewString(),
		Email:        "pat.resident@example.com",
		PasswordHash: &hash,
		AuthProvider: domain.ProviderLocal,
		IsActive:     true,
	}

	suite.mockUserRepo.On("FindUserByProvider", ctx, domain.ProviderGoogle, providerUserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "pat.resident@example.com").Return(existing, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == existing.UserID &&
			u.AuthProvider == domain.ProviderGoogle &&
			u.ProviderUserID != nil && *u.ProviderUserID == providerUserID
	})).Return(nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "Pat Resident", "Pat.Resident@Example.com", "GOOGLE", providerUserID, true)

	suite.Require().NoError(err)
	suite.Equal(existing.UserID, user.UserID)
	suite.Equal(domain.ProviderGoogle, user.AuthProvider)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_CreatesNewUser() {
	ctx := context.Background()
	providerUserID := "google-sub-456"

	suite.mockUserRepo.On("FindUserByProvider", ctx, domain.ProviderGoogle, providerUserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "new.owner@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "new.owner@example.com" &&
			u.AuthProvider == domain.ProviderGoogle &&
			u.ProviderUserID != nil && *u.ProviderUserID == providerUserID &&
			u.PasswordHash == nil &&
			u.IsActive
	})).Return(nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "New Owner", "new.owner@example.com", "GOOGLE", providerUserID, true)

	suite.Require().NoError(err)
	suite.NotEmpty(user.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_UnverifiedEmailNeverLinks() {
	ctx := context.Background()
	providerUserID := "google-sub-789"

	suite.mockUserRepo.On("FindUserByProvider", ctx, domain.ProviderGoogle, providerUserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.AuthProvider == domain.ProviderGoogle && u.ProviderUserID != nil
	})).Return(nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "Pat Resident", "pat.resident@example.com", "GOOGLE", providerUserID, false)

	suite.Require().NoError(err)
	suite.NotEmpty(user.UserID)
	// An unverified email must not capture an existing account.
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByEmail", mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
