package models

import (
	"database/sql"

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

// Account represents one general-ledger account row.
type Account struct {
	AccountID       string          `db:"account_id"`
	AssociationID   string          `db:"association_id"`
	AccountNumber   string          `db:"account_number"`
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	Category        string          `db:"category"`
	NormalDebit     bool            `db:"normal_debit"`
	ParentAccountID sql.NullString  `db:"parent_account_id"` // Nullable self-FK
	Description     string          `db:"description"`
	Balance         decimal.Decimal `db:"balance"`
	IsSystem        bool            `db:"is_system"`
	IsActive        bool            `db:"is_active"`
	DeletedAt       sql.NullTime    `db:"deleted_at"`
	AuditFields
}
