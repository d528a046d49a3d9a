package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// ReportingRepository aggregates posted journal lines into report figures.
// All methods read only POSTED, non-reversal entries, so a reversed entry and
// its reversal cancel out of every report.
type ReportingRepository interface {
	// GetTrialBalanceRows returns each account's net posted balance through
	// asOf, presented in the account's normal column. Accounts with no net
	// activity are omitted.
	GetTrialBalanceRows(ctx context.Context, associationID string, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetIncomeStatementActivity returns net revenue and expense movement for
	// entries dated within [from, to].
	GetIncomeStatementActivity(ctx context.Context, associationID string, from, to time.Time) (revenue []domain.AccountActivity, expenses []domain.AccountActivity, err error)

	// GetBalanceSheetActivity returns asset, liability and equity positions
	// through asOf, plus the net income accumulated over the same window.
	GetBalanceSheetActivity(ctx context.Context, associationID string, asOf time.Time) (assets []domain.AccountActivity, liabilities []domain.AccountActivity, equity []domain.AccountActivity, netIncome decimal.Decimal, err error)
}
