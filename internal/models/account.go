package models

import "github.com/shopspring/decimal"

// AccountType mirrors the closed set of account types at the DB layer.
type AccountType string

// Account is the persistence shape of a chart-of-accounts node.
type Account struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	CurrencyCode    string          `json:"currencyCode"`
	ParentAccountID string          `json:"parentAccountID"`
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	IsSystem        bool            `json:"isSystem"`
	Balance         decimal.Decimal `json:"balance"`
	AuditFields
}

// AccountMapping is the persistence shape of a category->account resolution.
type AccountMapping struct {
	MappingID string `json:"mappingID"`
	Module    string `json:"module"`
	Category  string `json:"category"`
	AccountID string `json:"accountID"`
	AuditFields
}
