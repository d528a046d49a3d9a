package domain

import (
	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's net posted balance, shown in its normal
// column. Accounts with zero net activity are omitted from the report.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// AccountActivity is an account's net posted movement over a report window,
// signed by the account's normal balance (positive when the account grew).
type AccountActivity struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	NetAmount     decimal.Decimal `json:"netAmount"`
}

// IncomeStatement summarizes assessment income against operating expenses for
// a reporting period.
type IncomeStatement struct {
	Revenue       []AccountActivity `json:"revenue"`
	Expenses      []AccountActivity `json:"expenses"`
	TotalRevenue  decimal.Decimal   `json:"totalRevenue"`
	TotalExpenses decimal.Decimal   `json:"totalExpenses"`
	NetIncome     decimal.Decimal   `json:"netIncome"`
}

// BalanceSheet groups asset, liability and equity positions as of a date.
// NetIncomeToDate carries the unclosed revenue-minus-expense remainder so the
// statement ties: TotalAssets == TotalLiabilities + TotalEquity + NetIncomeToDate.
type BalanceSheet struct {
	Assets           []AccountActivity `json:"assets"`
	Liabilities      []AccountActivity `json:"liabilities"`
	Equity           []AccountActivity `json:"equity"`
	TotalAssets      decimal.Decimal   `json:"totalAssets"`
	TotalLiabilities decimal.Decimal   `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal   `json:"totalEquity"`
	NetIncomeToDate  decimal.Decimal   `json:"netIncomeToDate"`
}
