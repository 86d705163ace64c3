package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueEntry carries the approval-relevant slice of a revenue document.
// Its CRUD lifecycle is owned by the surrounding application; the ledger
// core only flips the approval fields.
type RevenueEntry struct {
	RevenueID  string          `json:"revenueID"` // Primary Key (UUID)
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"` // Resolved to a ledger account on approval
	EntryDate  time.Time       `json:"entryDate"`
	CreatedBy  string          `json:"createdBy"`
	IsApproved bool            `json:"isApproved"`
	ApprovedBy *string         `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
}

// ExpenseEntry carries the approval-relevant slice of an expense document.
type ExpenseEntry struct {
	ExpenseID  string          `json:"expenseID"` // Primary Key (UUID)
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	EntryDate  time.Time       `json:"entryDate"`
	CreatedBy  string          `json:"createdBy"`
	IsApproved bool            `json:"isApproved"`
	ApprovedBy *string         `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty"`
}
