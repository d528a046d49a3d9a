package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	AccountNumber   string             `json:"accountNumber" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Category        string             `json:"category"`        // Optional grouping label (e.g. "Operating Income")
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	Description     string             `json:"description"`     // Optional
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name            *string `json:"name"`            // Optional: New name
	Category        *string `json:"category"`        // Optional: New category label
	Description     *string `json:"description"`     // Optional: New description
	IsActive        *bool   `json:"isActive"`        // Optional: New active status
	ParentAccountID *string `json:"parentAccountID"` // Optional: New parent, "" detaches
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	AccountNumber   string             `json:"accountNumber"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	Category        string             `json:"category"`
	NormalDebit     bool               `json:"normalDebit"`
	ParentAccountID *string            `json:"parentAccountID,omitempty"`
	Description     string             `json:"description"`
	Balance         decimal.Decimal    `json:"balance"`
	IsSystem        bool               `json:"isSystem"`
	IsActive        bool               `json:"isActive"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		AccountNumber:   acc.AccountNumber,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		Category:        acc.Category,
		NormalDebit:     acc.NormalDebit,
		ParentAccountID: acc.ParentAccountID,
		Description:     acc.Description,
		Balance:         acc.Balance,
		IsSystem:        acc.IsSystem,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc) // Reuse the single converter
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	IncludeInactive bool `form:"includeInactive,default=false"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// SeedAccountsResponse reports the outcome of installing the default chart.
type SeedAccountsResponse struct {
	AccountsCreated int `json:"accountsCreated"`
}
