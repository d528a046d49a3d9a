package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/middleware"
)

// Well-known chart numbers referenced by the charge/payment GL postings.
// They exist in every association because the seeder installs them.
const (
	acctNumOperatingCash         = "1000"
	acctNumAssessmentsReceivable = "1200"
	acctNumAssessmentIncome      = "4000"
	acctNumLateFeeIncome         = "4100"
	acctNumBadDebtExpense        = "5900"
)

// defaultChart is the standard association chart installed by SeedDefaultAccounts.
var defaultChart = []struct {
	Number      string
	Name        string
	AccountType domain.AccountType
	Category    string
}{
	{acctNumOperatingCash, "Operating Cash", domain.Asset, "cash"},
	{"1010", "Reserve Cash", domain.Asset, "cash"},
	{acctNumAssessmentsReceivable, "Assessments Receivable", domain.Asset, "receivable"},
	{"2000", "Accounts Payable", domain.Liability, "payable"},
	{"2100", "Prepaid Assessments", domain.Liability, "deferred_revenue"},
	{"3000", "Reserve Fund Balance", domain.Equity, "reserves"},
	{"3100", "Retained Earnings", domain.Equity, "retained_earnings"},
	{acctNumAssessmentIncome, "Assessment Income", domain.Revenue, "assessments"},
	{acctNumLateFeeIncome, "Late Fee Income", domain.Revenue, "fees"},
	{"4200", "Interest Income", domain.Revenue, "other_income"},
	{"5000", "Landscaping Expense", domain.Expense, "grounds"},
	{"5100", "Utilities Expense", domain.Expense, "utilities"},
	{"5200", "Insurance Expense", domain.Expense, "insurance"},
	{"5300", "Management Fees", domain.Expense, "management"},
	{"5400", "Repairs & Maintenance", domain.Expense, "maintenance"},
	{acctNumBadDebtExpense, "Bad Debt Expense", domain.Expense, "bad_debt"},
}

// defaultAssessmentTypes are seeded alongside the chart; each points at the
// income account its charges are posted against.
var defaultAssessmentTypes = []struct {
	Name                string
	IncomeAccountNumber string
}{
	{"Monthly Assessment", acctNumAssessmentIncome},
	{"Special Assessment", acctNumAssessmentIncome},
	{"Late Fee", acctNumLateFeeIncome},
}

// AccountService manages an association's chart of accounts.
type AccountService struct {
	accountRepo portsrepo.AccountRepositoryWithTx
	assocRepo   portsrepo.AssociationRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, assocRepo portsrepo.AssociationRepositoryFacade) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		assocRepo:   assocRepo,
	}
}

// Ensure AccountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// CreateAccount validates and persists a new account in the association's chart.
func (s *AccountService) CreateAccount(ctx context.Context, associationID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := req.AccountType
	if !accountType.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid account type %q", req.AccountType))
	}

	var parentID *string
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		if _, err := s.accountRepo.FindAccountByID(ctx, associationID, *req.ParentAccountID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError(fmt.Sprintf("parent account %s not found", *req.ParentAccountID))
			}
			logger.Error("Failed to check parent account", slog.String("error", err.Error()), slog.String("parent_account_id", *req.ParentAccountID))
			return nil, fmt.Errorf("failed to validate parent account: %w", err)
		}
		pid := *req.ParentAccountID
		parentID = &pid
	}

	now := time.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		AssociationID:   associationID,
		AccountNumber:   req.AccountNumber,
		Name:            req.Name,
		AccountType:     accountType,
		Category:        req.Category,
		NormalDebit:     accountType.IsDebitNormal(),
		ParentAccountID: parentID,
		Description:     req.Description,
		Balance:         decimal.Zero,
		IsSystem:        false,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_number", req.AccountNumber))
		}
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_number", account.AccountNumber))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its ID.
func (s *AccountService) GetAccountByID(ctx context.Context, associationID string, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByID(ctx, associationID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByNumber retrieves an account by its chart number.
func (s *AccountService) GetAccountByNumber(ctx context.Context, associationID string, accountNumber string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByNumber(ctx, associationID, accountNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by number in repository", slog.String("error", err.Error()), slog.String("account_number", accountNumber))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts by their IDs. Missing accounts
// are simply absent from the returned map.
func (s *AccountService) GetAccountsByIDs(ctx context.Context, associationID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, associationID, accountIDs)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to find accounts by IDs in repository", slog.String("error", err.Error()), slog.Int("count", len(accountIDs)))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves the association's chart of accounts.
func (s *AccountService) ListAccounts(ctx context.Context, associationID string, includeInactive bool) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	accounts, err := s.accountRepo.ListAccounts(ctx, associationID, includeInactive)
	if err != nil {
		logger.Error("Failed to list accounts from repository", slog.String("error", err.Error()), slog.String("association_id", associationID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// UpdateAccount updates an existing account's editable details. System
// accounts are protected; reparenting is validated against cycles.
func (s *AccountService) UpdateAccount(ctx context.Context, associationID string, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, associationID, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsSystem {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("account %s is a system account and cannot be modified", account.AccountNumber))
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("account name must not be empty")
		}
		account.Name = *req.Name
	}
	if req.Category != nil {
		account.Category = *req.Category
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.ParentAccountID != nil {
		if *req.ParentAccountID == "" {
			account.ParentAccountID = nil
		} else {
			if err := s.validateReparent(ctx, associationID, accountID, *req.ParentAccountID); err != nil {
				return nil, err
			}
			pid := *req.ParentAccountID
			account.ParentAccountID = &pid
		}
	}

	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = requestingUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

// validateReparent checks that the new parent exists in the same association
// and that attaching to it does not close a loop in the account tree.
func (s *AccountService) validateReparent(ctx context.Context, associationID string, accountID string, newParentID string) error {
	if newParentID == accountID {
		return apperrors.NewValidationError("account cannot be its own parent")
	}

	const maxDepth = 100
	current := newParentID
	for depth := 0; depth < maxDepth; depth++ {
		ancestor, err := s.accountRepo.FindAccountByID(ctx, associationID, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				if current == newParentID {
					return apperrors.NewNotFoundError(fmt.Sprintf("parent account %s not found", newParentID))
				}
				// Broken ancestor link; nothing above can loop back.
				return nil
			}
			return fmt.Errorf("failed to walk account ancestry: %w", err)
		}
		if ancestor.AccountID == accountID {
			return apperrors.NewValidationError("reparenting would create a cycle in the account tree")
		}
		if ancestor.ParentAccountID == nil || *ancestor.ParentAccountID == "" {
			return nil
		}
		current = *ancestor.ParentAccountID
	}
	return apperrors.NewValidationError(fmt.Sprintf("account ancestry deeper than %d levels", maxDepth))
}

// DeleteAccount soft-deletes an account that has no activity. Accounts with
// journal lines or child accounts cannot be removed; system accounts never can.
func (s *AccountService) DeleteAccount(ctx context.Context, associationID string, accountID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	return s.accountRepo.RunInTx(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, associationID, accountID)
		if err != nil {
			return err
		}
		if account.IsSystem {
			return apperrors.NewForbiddenError(fmt.Sprintf("account %s is a system account and cannot be deleted", account.AccountNumber))
		}

		hasLines, err := s.accountRepo.HasJournalLines(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to check journal lines for account %s: %w", accountID, err)
		}
		if hasLines {
			return apperrors.NewConflictError(fmt.Sprintf("account %s has journal lines and cannot be deleted", account.AccountNumber))
		}

		hasChildren, err := s.accountRepo.HasChildAccounts(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to check child accounts for account %s: %w", accountID, err)
		}
		if hasChildren {
			return apperrors.NewConflictError(fmt.Sprintf("account %s has child accounts and cannot be deleted", account.AccountNumber))
		}

		if err := s.accountRepo.SoftDeleteAccount(ctx, accountID, requestingUserID, time.Now()); err != nil {
			logger.Error("Failed to soft-delete account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
			return err
		}

		logger.Info("Account deleted", slog.String("account_id", accountID))
		return nil
	})
}

// SeedDefaultAccounts installs the standard chart and assessment types for an
// association. The whole operation is a no-op when any account already exists,
// which makes re-running it safe.
func (s *AccountService) SeedDefaultAccounts(ctx context.Context, associationID string, requestingUserID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var created int
	err := s.accountRepo.RunInTx(ctx, func(ctx context.Context) error {
		count, err := s.accountRepo.CountAccounts(ctx, associationID)
		if err != nil {
			return fmt.Errorf("failed to count existing accounts: %w", err)
		}
		if count > 0 {
			logger.Debug("Chart already seeded, skipping", slog.String("association_id", associationID), slog.Int64("existing_accounts", count))
			return nil
		}

		now := time.Now()
		accounts := make([]domain.Account, 0, len(defaultChart))
		for _, def := range defaultChart {
			accounts = append(accounts, domain.Account{
				AccountID:     uuid.NewString(),
				AssociationID: associationID,
				AccountNumber: def.Number,
				Name:          def.Name,
				AccountType:   def.AccountType,
				Category:      def.Category,
				NormalDebit:   def.AccountType.IsDebitNormal(),
				Balance:       decimal.Zero,
				IsSystem:      true,
				IsActive:      true,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     requestingUserID,
					LastUpdatedAt: now,
					LastUpdatedBy: requestingUserID,
				},
			})
		}
		if err := s.accountRepo.SaveAccounts(ctx, accounts); err != nil {
			return fmt.Errorf("failed to seed chart of accounts: %w", err)
		}

		types := make([]domain.AssessmentType, 0, len(defaultAssessmentTypes))
		for _, def := range defaultAssessmentTypes {
			types = append(types, domain.AssessmentType{
				AssessmentTypeID:    uuid.NewString(),
				AssociationID:       associationID,
				Name:                def.Name,
				IncomeAccountNumber: def.IncomeAccountNumber,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     requestingUserID,
					LastUpdatedAt: now,
					LastUpdatedBy: requestingUserID,
				},
			})
		}
		if err := s.assocRepo.SaveAssessmentTypes(ctx, types); err != nil {
			return fmt.Errorf("failed to seed assessment types: %w", err)
		}

		created = len(accounts)
		return nil
	})
	if err != nil {
		logger.Error("Failed to seed default accounts", slog.String("error", err.Error()), slog.String("association_id", associationID))
		return 0, err
	}

	if created > 0 {
		logger.Info("Default chart seeded", slog.String("association_id", associationID), slog.Int("accounts_created", created))
	}
	return created, nil
}
