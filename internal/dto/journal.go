package dto

import (
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest defines one line of a new journal entry. Exactly one of
// debitAmount / creditAmount must be positive; the service rejects the rest.
type CreateLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes"`
}

// ReferenceRequest links an entry to its source document.
type ReferenceRequest struct {
	Type domain.ReferenceType `json:"type" binding:"required,oneof=REVENUE EXPENSE SALE INVENTORY MANUAL OPENING_BALANCE ADJUSTMENT"`
	ID   *string              `json:"id"`
}

// CreateEntryRequest defines the data needed to create a journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time           `json:"entryDate" binding:"required"`
	Description string              `json:"description" binding:"required"`
	Reference   ReferenceRequest    `json:"reference" binding:"required"`
	Lines       []CreateLineRequest `json:"lines" binding:"required,min=2,dive"`
	Post        bool                `json:"post"` // Create and post in one call
}

// PostedEntrySpec describes an entry that other services create and post
// inside their own transaction. Lines arrive in domain form because the
// caller already built them.
type PostedEntrySpec struct {
	EntryDate   time.Time
	Description string
	Reference   domain.EntryReference
	Lines       []domain.JournalLine
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID         string                `json:"entryID"`
	EntryNumber     string                `json:"entryNumber"`
	EntryDate       time.Time             `json:"entryDate"`
	Description     string                `json:"description"`
	Reference       domain.EntryReference `json:"reference"`
	Status          domain.EntryStatus    `json:"status"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	PostedBy        *string               `json:"postedBy,omitempty"`
	ReversedAt      *time.Time            `json:"reversedAt,omitempty"`
	ReversedBy      *string               `json:"reversedBy,omitempty"`
	ReversalEntryID *string               `json:"reversalEntryID,omitempty"`
	Lines           []LineResponse        `json:"lines,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
}

// ListEntriesResponse is one page of journal entries with the cursor for the
// next page.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToLineResponse converts a domain.JournalLine to LineResponse DTO.
func ToLineResponse(line *domain.JournalLine) LineResponse {
	return LineResponse{
		LineID:       line.LineID,
		EntryID:      line.EntryID,
		AccountID:    line.AccountID,
		DebitAmount:  line.DebitAmount,
		CreditAmount: line.CreditAmount,
		Notes:        line.Notes,
	}
}

// ToLineResponses converts a slice of domain.JournalLine to []LineResponse.
func ToLineResponses(lines []domain.JournalLine) []LineResponse {
	responses := make([]LineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToLineResponse(&line)
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(entry *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:         entry.EntryID,
		EntryNumber:     entry.EntryNumber,
		EntryDate:       entry.EntryDate,
		Description:     entry.Description,
		Reference:       entry.Reference,
		Status:          entry.Status,
		PostedAt:        entry.PostedAt,
		PostedBy:        entry.PostedBy,
		ReversedAt:      entry.ReversedAt,
		ReversedBy:      entry.ReversedBy,
		ReversalEntryID: entry.ReversalEntryID,
		Lines:           ToLineResponses(entry.Lines),
		CreatedAt:       entry.CreatedAt,
		CreatedBy:       entry.CreatedBy,
	}
}

// ToEntryResponses converts a slice of domain.JournalEntry to []EntryResponse.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = ToEntryResponse(&entry)
	}
	return responses
}
