package services

import (
	"context"
	"time"

	"github.com/strataops/strataledger/internal/core/domain"
)

// ReportingSvcFacade defines operations for generating financial reports.
// Reports are computed from posted journal lines, so they honor as-of dates
// and period windows that the running account balances cannot answer.
type ReportingSvcFacade interface {
	// TrialBalance lists each account's net posted balance as of a date.
	TrialBalance(ctx context.Context, associationID string, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// IncomeStatement summarizes revenue against expenses for a period.
	IncomeStatement(ctx context.Context, associationID string, from, to time.Time) (*domain.IncomeStatement, error)

	// BalanceSheet reports asset, liability and equity positions as of a date.
	BalanceSheet(ctx context.Context, associationID string, asOf time.Time) (*domain.BalanceSheet, error)
}
