package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// TrialBalanceRowResponse represents one account row in the trial balance.
type TrialBalanceRowResponse struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	AccountType   string          `json:"accountType"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response.
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
}

// AccountActivityResponse represents an account with its net movement in a
// financial report.
type AccountActivityResponse struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
}

// IncomeStatementResponse represents the income statement report response.
type IncomeStatementResponse struct {
	FromDate string                    `json:"fromDate"`
	ToDate   string                    `json:"toDate"`
	Revenue  []AccountActivityResponse `json:"revenue"`
	Expenses []AccountActivityResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetIncome     decimal.Decimal `json:"netIncome"`
	} `json:"summary"`
}

// BalanceSheetResponse represents the balance sheet report response.
type BalanceSheetResponse struct {
	AsOf        string                    `json:"asOf"`
	Assets      []AccountActivityResponse `json:"assets"`
	Liabilities []AccountActivityResponse `json:"liabilities"`
	Equity      []AccountActivityResponse `json:"equity"`
	Summary     struct {
		TotalAssets          decimal.Decimal `json:"totalAssets"`
		TotalLiabilities     decimal.Decimal `json:"totalLiabilities"`
		TotalEquity          decimal.Decimal `json:"totalEquity"`
		NetIncomeToDate      decimal.Decimal `json:"netIncomeToDate"`
		LiabilitiesAndEquity decimal.Decimal `json:"liabilitiesAndEquity"`
	} `json:"summary"`
}

// ToTrialBalanceResponse converts domain trial balance rows to a DTO response.
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow, asOf time.Time) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf: asOf.Format("2006-01-02"),
		Rows: make([]TrialBalanceRowResponse, len(rows)),
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, row := range rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:     row.AccountID,
			AccountNumber: row.AccountNumber,
			AccountName:   row.AccountName,
			AccountType:   string(row.AccountType),
			Debit:         row.Debit,
			Credit:        row.Credit,
		}

		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}

	response.Totals.Debit = totalDebit
	response.Totals.Credit = totalCredit

	return response
}

func toActivityResponses(rows []domain.AccountActivity) []AccountActivityResponse {
	out := make([]AccountActivityResponse, len(rows))
	for i, r := range rows {
		out[i] = AccountActivityResponse{
			AccountID:     r.AccountID,
			AccountNumber: r.AccountNumber,
			Name:          r.Name,
			Amount:        r.NetAmount,
		}
	}
	return out
}

// ToIncomeStatementResponse converts a domain income statement to a DTO response.
func ToIncomeStatementResponse(report *domain.IncomeStatement, from, to time.Time) IncomeStatementResponse {
	response := IncomeStatementResponse{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Revenue:  toActivityResponses(report.Revenue),
		Expenses: toActivityResponses(report.Expenses),
	}
	response.Summary.TotalRevenue = report.TotalRevenue
	response.Summary.TotalExpenses = report.TotalExpenses
	response.Summary.NetIncome = report.NetIncome
	return response
}

// ToBalanceSheetResponse converts a domain balance sheet to a DTO response.
func ToBalanceSheetResponse(report *domain.BalanceSheet, asOf time.Time) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:        asOf.Format("2006-01-02"),
		Assets:      toActivityResponses(report.Assets),
		Liabilities: toActivityResponses(report.Liabilities),
		Equity:      toActivityResponses(report.Equity),
	}
	response.Summary.TotalAssets = report.TotalAssets
	response.Summary.TotalLiabilities = report.TotalLiabilities
	response.Summary.TotalEquity = report.TotalEquity
	response.Summary.NetIncomeToDate = report.NetIncomeToDate
	response.Summary.LiabilitiesAndEquity = report.TotalLiabilities.Add(report.TotalEquity).Add(report.NetIncomeToDate)
	return response
}
