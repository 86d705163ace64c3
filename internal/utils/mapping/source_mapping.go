package mapping

import (
	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/models"
)

// ToDomainRevenueEntry converts a model RevenueEntry to its domain form.
func ToDomainRevenueEntry(m models.RevenueEntry) domain.RevenueEntry {
	return domain.RevenueEntry{
		RevenueID:  m.RevenueID,
		Amount:     m.Amount,
		Category:   m.Category,
		EntryDate:  m.EntryDate,
		CreatedBy:  m.CreatedBy,
		IsApproved: m.IsApproved,
		ApprovedBy: m.ApprovedBy,
		ApprovedAt: m.ApprovedAt,
	}
}

// ToDomainExpenseEntry converts a model ExpenseEntry to its domain form.
func ToDomainExpenseEntry(m models.ExpenseEntry) domain.ExpenseEntry {
	return domain.ExpenseEntry{
		ExpenseID:  m.ExpenseID,
		Amount:     m.Amount,
		Category:   m.Category,
		EntryDate:  m.EntryDate,
		CreatedBy:  m.CreatedBy,
		IsApproved: m.IsApproved,
		ApprovedBy: m.ApprovedBy,
		ApprovedAt: m.ApprovedAt,
	}
}
