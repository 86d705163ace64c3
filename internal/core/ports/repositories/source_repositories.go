package repositories

import (
	"context"
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// RevenueRepository exposes the approval-relevant slice of revenue documents.
// Their CRUD lifecycle lives outside the ledger core.
type RevenueRepository interface {
	// FindRevenueByID retrieves a revenue entry.
	FindRevenueByID(ctx context.Context, revenueID string) (*domain.RevenueEntry, error)

	// MarkRevenueApprovedInTx flips is_approved within tx, conditional on the
	// document not being approved yet. Returns false when it already was.
	MarkRevenueApprovedInTx(ctx context.Context, tx pgx.Tx, revenueID string, approvedBy string, now time.Time) (bool, error)
}

// ExpenseRepository exposes the approval-relevant slice of expense documents.
type ExpenseRepository interface {
	// FindExpenseByID retrieves an expense entry.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseEntry, error)

	// MarkExpenseApprovedInTx flips is_approved within tx, conditional on the
	// document not being approved yet. Returns false when it already was.
	MarkExpenseApprovedInTx(ctx context.Context, tx pgx.Tx, expenseID string, approvedBy string, now time.Time) (bool, error)
}

// SourceRepositoryFacade bundles the source-document repositories.
type SourceRepositoryFacade interface {
	RevenueRepository
	ExpenseRepository
}
