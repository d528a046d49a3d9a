package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsDebitNormal reports whether accounts of this type increase on the debit side.
// Asset and expense accounts are debit-normal; liability, equity and revenue
// accounts are credit-normal.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Valid reports whether t is one of the five fundamental account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents one general-ledger account in an association's chart.
// This is the primary representation used by services.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (UUID)
	AssociationID   string          `json:"associationID"`   // FK -> associations.association_id (NON-NULL)
	AccountNumber   string          `json:"accountNumber"`   // Chart code, unique within the association (e.g. "1200")
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	Category        string          `json:"category"`        // Sub-classification (e.g. "operating_cash")
	NormalDebit     bool            `json:"normalDebit"`     // Derived from AccountType at creation, never updated
	ParentAccountID *string         `json:"parentAccountID"` // Nullable FK -> accounts.account_id (self-referencing)
	Description     string          `json:"description"`     // Nullable user description
	Balance         decimal.Decimal `json:"balance"`         // Persisted balance, moved only by posting
	IsSystem        bool            `json:"isSystem"`        // Seeded accounts, protected from edit/delete
	IsActive        bool            `json:"isActive"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"` // Soft delete
	AuditFields
}
