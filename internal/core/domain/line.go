package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// JournalLine is a single debit or credit within a journal entry, affecting
// one account. Exactly one of DebitAmount / CreditAmount is non-zero.
type JournalLine struct {
	LineID       string          `json:"lineID"`  // Primary Key (UUID)
	EntryID      string          `json:"entryID"` // FK -> journal_entries.entry_id
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes"` // Nullable
	AuditFields
}

// IsDebit reports whether the line carries a debit amount.
func (l JournalLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Amount returns the magnitude of the line regardless of side.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// Validate enforces the one-sided, positive-amount shape of a line.
func (l JournalLine) Validate() error {
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return fmt.Errorf("line amounts must not be negative")
	}
	debitSet := l.DebitAmount.IsPositive()
	creditSet := l.CreditAmount.IsPositive()
	if debitSet == creditSet {
		return fmt.Errorf("exactly one of debit or credit must be non-zero")
	}
	return nil
}
