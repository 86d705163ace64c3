package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors the journal entry state at the DB layer.
type EntryStatus string

// JournalEntry is the persistence shape of a journal entry header.
type JournalEntry struct {
	EntryID         string      `json:"entryID"`
	EntryNumber     string      `json:"entryNumber"`
	EntryDate       time.Time   `json:"entryDate"`
	Description     string      `json:"description"`
	ReferenceType   string      `json:"referenceType"`
	ReferenceID     *string     `json:"referenceID"`
	Status          EntryStatus `json:"status"`
	PostedAt        *time.Time  `json:"postedAt"`
	PostedBy        *string     `json:"postedBy"`
	ReversedAt      *time.Time  `json:"reversedAt"`
	ReversedBy      *string     `json:"reversedBy"`
	ReversalEntryID *string     `json:"reversalEntryID"`
	AuditFields
}

// JournalLine is the persistence shape of a single debit/credit line.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes"`
	AuditFields
}
