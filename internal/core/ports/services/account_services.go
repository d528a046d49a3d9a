package services

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, associationID string, accountID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its chart number.
	GetAccountByNumber(ctx context.Context, associationID string, accountNumber string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, associationID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the association's chart of accounts.
	ListAccounts(ctx context.Context, associationID string, includeInactive bool) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, associationID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's editable details.
	UpdateAccount(ctx context.Context, associationID string, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error)

	// DeleteAccount soft-deletes an account that has no activity.
	DeleteAccount(ctx context.Context, associationID string, accountID string, requestingUserID string) error
}

// AccountSeederSvc defines chart bootstrap operations
type AccountSeederSvc interface {
	// SeedDefaultAccounts installs the standard chart and assessment types for
	// an association. It is a no-op when the chart already has accounts; the
	// returned count is the number of accounts created.
	SeedDefaultAccounts(ctx context.Context, associationID string, requestingUserID string) (int, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountSeederSvc
}
