package accounting

import (
	"fmt"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the correct sign to a journal line based on the
// account type it hits. Used by both services and repositories so the
// balance convention lives in one place.
//
// DEBIT to ASSET/EXPENSE -> positive; CREDIT -> negative.
// DEBIT to LIABILITY/EQUITY/REVENUE -> negative; CREDIT -> positive.
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	amount := line.Amount()
	isDebit := line.IsDebit()

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			amount = amount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			amount = amount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, line.AccountID)
	}
	return amount, nil
}

// Totals sums the debit and credit sides of a set of lines.
func Totals(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}
	return debits, credits
}

// ValidateBalanced checks the double-entry shape of a set of lines: at least
// one line, each line one-sided with a positive amount, and debit total equal
// to credit total exactly.
func ValidateBalanced(lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("entry must have at least one line")
	}
	for i, l := range lines {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	debits, credits := Totals(lines)
	if !debits.Equal(credits) {
		return fmt.Errorf("entry does not balance: debits %s, credits %s", debits.String(), credits.String())
	}
	return nil
}

// BalanceChanges folds a set of lines into net signed deltas per account.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		accountType, ok := accountTypes[l.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not known for account %s", l.AccountID)
		}
		signed, err := SignedAmount(l, accountType)
		if err != nil {
			return nil, err
		}
		changes[l.AccountID] = changes[l.AccountID].Add(signed)
	}
	return changes, nil
}
