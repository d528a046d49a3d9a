package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for report aggregation.
func newPgxReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// Reports read POSTED non-reversal entries only: a reversed original flips to
// REVERSED and its reversal carries is_reversal, so the pair cancels out of
// every report.
const reportEntryFilter = `e.status = 'POSTED' AND e.is_reversal = FALSE`

// GetTrialBalanceRows aggregates each account's net posted balance through
// asOf and presents it in the account's normal column. Accounts that net to
// zero are dropped.
func (r *PgxReportingRepository) GetTrialBalanceRows(ctx context.Context, associationID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.account_number,
			a.name,
			a.account_type,
			SUM(COALESCE(l.debit, 0) - COALESCE(l.credit, 0)) AS net
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE e.association_id = $1
		  AND ` + reportEntryFilter + `
		  AND e.entry_date <= $2
		GROUP BY a.account_id, a.account_number, a.name, a.account_type
		HAVING SUM(COALESCE(l.debit, 0) - COALESCE(l.credit, 0)) <> 0
		ORDER BY a.account_number;
	`
	rows, err := r.q(ctx).Query(ctx, query, associationID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance rows: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string
		var net decimal.Decimal

		if err := rows.Scan(&row.AccountID, &row.AccountNumber, &row.AccountName, &accountType, &net); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		row.AccountType = domain.AccountType(accountType)

		if net.IsPositive() {
			row.Debit = net
			row.Credit = decimal.Zero
		} else {
			row.Debit = decimal.Zero
			row.Credit = net.Neg()
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}

	return result, nil
}

// activityQuery sums each account's posted movement in the polarity of its
// normal balance, so growth reads positive for every account type.
const activityQuery = `
	SELECT
		a.account_id,
		a.account_number,
		a.name,
		a.account_type,
		SUM(CASE WHEN a.normal_debit
			THEN COALESCE(l.debit, 0) - COALESCE(l.credit, 0)
			ELSE COALESCE(l.credit, 0) - COALESCE(l.debit, 0) END) AS net
	FROM journal_lines l
	JOIN journal_entries e ON l.entry_id = e.entry_id
	JOIN accounts a ON l.account_id = a.account_id
	WHERE e.association_id = $1
	  AND ` + reportEntryFilter + `
	  %s
	GROUP BY a.account_id, a.account_number, a.name, a.account_type
	ORDER BY a.account_number;
`

func scanActivityRows(rows pgx.Rows) (map[domain.AccountType][]domain.AccountActivity, error) {
	grouped := map[domain.AccountType][]domain.AccountActivity{}
	for rows.Next() {
		var activity domain.AccountActivity
		var accountType string

		if err := rows.Scan(&activity.AccountID, &activity.AccountNumber, &activity.Name, &accountType, &activity.NetAmount); err != nil {
			return nil, fmt.Errorf("failed to scan account activity row: %w", err)
		}
		t := domain.AccountType(accountType)
		grouped[t] = append(grouped[t], activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account activity rows: %w", err)
	}
	return grouped, nil
}

// GetIncomeStatementActivity returns net revenue and expense movement for
// entries dated within [from, to].
func (r *PgxReportingRepository) GetIncomeStatementActivity(ctx context.Context, associationID string, from, to time.Time) ([]domain.AccountActivity, []domain.AccountActivity, error) {
	query := fmt.Sprintf(activityQuery, `AND e.entry_date BETWEEN $2 AND $3
	  AND a.account_type IN ('REVENUE', 'EXPENSE')`)

	rows, err := r.q(ctx).Query(ctx, query, associationID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query income statement activity: %w", err)
	}
	defer rows.Close()

	grouped, err := scanActivityRows(rows)
	if err != nil {
		return nil, nil, err
	}

	revenue := grouped[domain.Revenue]
	expenses := grouped[domain.Expense]
	if revenue == nil {
		revenue = []domain.AccountActivity{}
	}
	if expenses == nil {
		expenses = []domain.AccountActivity{}
	}
	return revenue, expenses, nil
}

// GetBalanceSheetActivity returns asset, liability and equity positions
// through asOf. Revenue and expense movement over the same window folds into
// the returned net income, which is what makes the statement tie before any
// closing entry exists.
func (r *PgxReportingRepository) GetBalanceSheetActivity(ctx context.Context, associationID string, asOf time.Time) ([]domain.AccountActivity, []domain.AccountActivity, []domain.AccountActivity, decimal.Decimal, error) {
	query := fmt.Sprintf(activityQuery, `AND e.entry_date <= $2`)

	rows, err := r.q(ctx).Query(ctx, query, associationID, asOf)
	if err != nil {
		return nil, nil, nil, decimal.Zero, fmt.Errorf("failed to query balance sheet activity: %w", err)
	}
	defer rows.Close()

	grouped, err := scanActivityRows(rows)
	if err != nil {
		return nil, nil, nil, decimal.Zero, err
	}

	netIncome := decimal.Zero
	for _, rev := range grouped[domain.Revenue] {
		netIncome = netIncome.Add(rev.NetAmount)
	}
	for _, exp := range grouped[domain.Expense] {
		netIncome = netIncome.Sub(exp.NetAmount)
	}

	assets := grouped[domain.Asset]
	liabilities := grouped[domain.Liability]
	equity := grouped[domain.Equity]
	if assets == nil {
		assets = []domain.AccountActivity{}
	}
	if liabilities == nil {
		liabilities = []domain.AccountActivity{}
	}
	if equity == nil {
		equity = []domain.AccountActivity{}
	}
	return assets, liabilities, equity, netIncome, nil
}
