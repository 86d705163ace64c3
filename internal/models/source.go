package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueEntry holds the approval-relevant columns of a revenue document.
type RevenueEntry struct {
	RevenueID  string          `json:"revenueID"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	EntryDate  time.Time       `json:"entryDate"`
	CreatedBy  string          `json:"createdBy"`
	IsApproved bool            `json:"isApproved"`
	ApprovedBy *string         `json:"approvedBy"`
	ApprovedAt *time.Time      `json:"approvedAt"`
}

// ExpenseEntry holds the approval-relevant columns of an expense document.
type ExpenseEntry struct {
	ExpenseID  string          `json:"expenseID"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	EntryDate  time.Time       `json:"entryDate"`
	CreatedBy  string          `json:"createdBy"`
	IsApproved bool            `json:"isApproved"`
	ApprovedBy *string         `json:"approvedBy"`
	ApprovedAt *time.Time      `json:"approvedAt"`
}
