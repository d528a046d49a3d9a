package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
)

// ReportingService builds financial reports from posted journal lines.
type ReportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) *ReportingService {
	return &ReportingService{
		reportingRepo: reportingRepo,
	}
}

// Ensure ReportingService implements the facade interface
var _ portssvc.ReportingSvcFacade = (*ReportingService)(nil)

// TrialBalance lists each account's net posted balance through asOf in the
// account's normal column.
func (s *ReportingService) TrialBalance(ctx context.Context, associationID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	rows, err := s.reportingRepo.GetTrialBalanceRows(ctx, associationID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to build trial balance",
			slog.String("association_id", associationID),
			slog.String("as_of", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to build trial balance: %w", err)
	}

	s.LogInfo(ctx, "Trial balance generated",
		slog.String("association_id", associationID),
		slog.Int("row_count", len(rows)))
	return rows, nil
}

// IncomeStatement summarizes revenue against expenses for entries dated
// within [from, to].
func (s *ReportingService) IncomeStatement(ctx context.Context, associationID string, from, to time.Time) (*domain.IncomeStatement, error) {
	revenue, expenses, err := s.reportingRepo.GetIncomeStatementActivity(ctx, associationID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to build income statement",
			slog.String("association_id", associationID),
			slog.String("from", from.Format(time.RFC3339)),
			slog.String("to", to.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to build income statement: %w", err)
	}

	report := &domain.IncomeStatement{
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  sumActivity(revenue),
		TotalExpenses: sumActivity(expenses),
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)

	s.LogInfo(ctx, "Income statement generated",
		slog.String("association_id", associationID),
		slog.Int("revenue_accounts", len(revenue)),
		slog.Int("expense_accounts", len(expenses)))
	return report, nil
}

// BalanceSheet reports asset, liability and equity positions through asOf.
// Unclosed net income rides along so the statement ties.
func (s *ReportingService) BalanceSheet(ctx context.Context, associationID string, asOf time.Time) (*domain.BalanceSheet, error) {
	assets, liabilities, equity, netIncome, err := s.reportingRepo.GetBalanceSheetActivity(ctx, associationID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to build balance sheet",
			slog.String("association_id", associationID),
			slog.String("as_of", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to build balance sheet: %w", err)
	}

	report := &domain.BalanceSheet{
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		TotalAssets:      sumActivity(assets),
		TotalLiabilities: sumActivity(liabilities),
		TotalEquity:      sumActivity(equity),
		NetIncomeToDate:  netIncome,
	}

	s.LogInfo(ctx, "Balance sheet generated",
		slog.String("association_id", associationID),
		slog.Int("asset_accounts", len(assets)),
		slog.Int("liability_accounts", len(liabilities)),
		slog.Int("equity_accounts", len(equity)))
	return report, nil
}

func sumActivity(rows []domain.AccountActivity) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.NetAmount)
	}
	return total
}
