package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// BalanceTolerance is the maximum imbalance accepted when validating an entry,
// absorbing rounding residue from upstream percentage and proration math.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// WithinTolerance reports whether a and b differ by at most BalanceTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(BalanceTolerance)
}

// BalanceDelta returns the signed change a line applies to its account's
// balance, following the normal-balance convention:
// debit-normal accounts (ASSET/EXPENSE) grow by debit - credit,
// credit-normal accounts (LIABILITY/EQUITY/REVENUE) grow by credit - debit.
func BalanceDelta(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.Valid() {
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, line.AccountID)
	}
	if accountType.IsDebitNormal() {
		return line.Debit.Sub(line.Credit), nil
	}
	return line.Credit.Sub(line.Debit), nil
}

// ReversalDelta returns the balance change that undoes a previously posted line.
func ReversalDelta(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	delta, err := BalanceDelta(line, accountType)
	if err != nil {
		return decimal.Zero, err
	}
	return delta.Neg(), nil
}

// ValidateEntryBalance checks the double-entry rule for a set of lines:
// at least two lines, each one-sided and positive, and total debits equal to
// total credits within BalanceTolerance.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		debits = debits.Add(lines[i].Debit)
		credits = credits.Add(lines[i].Credit)
	}

	if !WithinTolerance(debits, credits) {
		return fmt.Errorf("journal entry does not balance: debits %s, credits %s, difference %s",
			debits.String(), credits.String(), debits.Sub(credits).Abs().String())
	}
	return nil
}

// RoundMoney normalizes a monetary amount to cents, half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
