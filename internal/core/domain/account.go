package domain

import (
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

// IsValid reports whether t is one of the five closed account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account is a node in the chart of accounts. Journal lines debit or credit
// accounts; once a posted line references an account it is never deleted,
// only deactivated.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (UUID)
	Code            string          `json:"code"`            // Unique human-assigned code, e.g. "1000"
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	CurrencyCode    string          `json:"currencyCode"`    // Currency of the account (Not Null)
	ParentAccountID string          `json:"parentAccountID"` // Nullable self-reference, forms a tree
	Description     string          `json:"description"`     // Nullable user description
	IsActive        bool            `json:"isActive"`        // Inactive accounts reject new lines
	IsSystem        bool            `json:"isSystem"`        // System accounts cannot be deactivated
	Balance         decimal.Decimal `json:"balance"`         // Persisted signed balance
	AuditFields
}

// AccountMapping caches the resolution of a business category to a ledger
// account. Unique on (Module, Category); identical lookups always return
// the same account once the mapping exists.
type AccountMapping struct {
	MappingID string `json:"mappingID"` // Primary Key (UUID)
	Module    string `json:"module"`    // Originating subsystem, e.g. "revenue"
	Category  string `json:"category"`  // Business category, e.g. "sales"
	AccountID string `json:"accountID"` // FK -> accounts.account_id
	AuditFields
}
