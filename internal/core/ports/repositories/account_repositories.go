package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, associationID string, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its chart number within an association.
	FindAccountByNumber(ctx context.Context, associationID string, accountNumber string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts of an association by their IDs.
	FindAccountsByIDs(ctx context.Context, associationID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the chart of accounts for an association.
	ListAccounts(ctx context.Context, associationID string, includeInactive bool) ([]domain.Account, error)

	// CountAccounts returns the number of non-deleted accounts in an association's chart.
	CountAccounts(ctx context.Context, associationID string) (int64, error)

	// HasJournalLines reports whether any journal line references the account.
	HasJournalLines(ctx context.Context, accountID string) (bool, error)

	// HasChildAccounts reports whether any account names this one as its parent.
	HasChildAccounts(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveAccounts persists a batch of new accounts, used when seeding a chart.
	SaveAccounts(ctx context.Context, accounts []domain.Account) error

	// UpdateAccount updates an existing account's editable details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SoftDeleteAccount marks an account deleted and inactive.
	SoftDeleteAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations used while posting, inside an
// ambient transaction.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and row-locks them, in
	// ascending account_id order so concurrent postings cannot deadlock.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceChanges adds the given deltas to the locked accounts' balances.
	ApplyBalanceChanges(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
