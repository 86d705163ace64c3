package mapping

import (
	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its model form.
// Lines travel separately.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		EntryNumber:     d.EntryNumber,
		EntryDate:       d.EntryDate,
		Description:     d.Description,
		ReferenceType:   string(d.Reference.Type),
		ReferenceID:     d.Reference.ID,
		Status:          models.EntryStatus(d.Status),
		PostedAt:        d.PostedAt,
		PostedBy:        d.PostedBy,
		ReversedAt:      d.ReversedAt,
		ReversedBy:      d.ReversedBy,
		ReversalEntryID: d.ReversalEntryID,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to its domain form.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:     m.EntryID,
		EntryNumber: m.EntryNumber,
		EntryDate:   m.EntryDate,
		Description: m.Description,
		Reference: domain.EntryReference{
			Type: domain.ReferenceType(m.ReferenceType),
			ID:   m.ReferenceID,
		},
		Status:          domain.EntryStatus(m.Status),
		PostedAt:        m.PostedAt,
		PostedBy:        m.PostedBy,
		ReversedAt:      m.ReversedAt,
		ReversedBy:      m.ReversedBy,
		ReversalEntryID: m.ReversalEntryID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to its model form.
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:       d.LineID,
		EntryID:      d.EntryID,
		AccountID:    d.AccountID,
		DebitAmount:  d.DebitAmount,
		CreditAmount: d.CreditAmount,
		Notes:        d.Notes,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to its domain form.
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		AccountID:    m.AccountID,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Notes:        m.Notes,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of model lines to domain lines.
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
