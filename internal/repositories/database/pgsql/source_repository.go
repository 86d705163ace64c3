package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	"github.com/fintrak/fintrak/internal/models"
	"github.com/fintrak/fintrak/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSourceRepository reads and flips the approval state of revenue and
// expense documents. Their wider lifecycle is owned elsewhere.
type PgxSourceRepository struct {
	BaseRepository
}

func newPgxSourceRepository(pool *pgxpool.Pool) *PgxSourceRepository {
	return &PgxSourceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SourceRepositoryFacade = (*PgxSourceRepository)(nil)

// FindRevenueByID retrieves a revenue entry.
func (r *PgxSourceRepository) FindRevenueByID(ctx context.Context, revenueID string) (*domain.RevenueEntry, error) {
	query := `
		SELECT revenue_id, amount, category, entry_date, created_by, is_approved, approved_by, approved_at
		FROM revenue_entries
		WHERE revenue_id = $1`

	var modelDoc models.RevenueEntry
	err := r.Pool.QueryRow(ctx, query, revenueID).Scan(
		&modelDoc.RevenueID,
		&modelDoc.Amount,
		&modelDoc.Category,
		&modelDoc.EntryDate,
		&modelDoc.CreatedBy,
		&modelDoc.IsApproved,
		&modelDoc.ApprovedBy,
		&modelDoc.ApprovedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find revenue entry %s: %w", revenueID, err)
	}
	doc := mapping.ToDomainRevenueEntry(modelDoc)
	return &doc, nil
}

// MarkRevenueApprovedInTx flips is_approved within tx, conditional on the
// document not being approved yet.
func (r *PgxSourceRepository) MarkRevenueApprovedInTx(ctx context.Context, tx pgx.Tx, revenueID string, approvedBy string, now time.Time) (bool, error) {
	query := `
		UPDATE revenue_entries
		SET is_approved = TRUE, approved_by = $2, approved_at = $3
		WHERE revenue_id = $1 AND is_approved = FALSE`

	cmdTag, err := tx.Exec(ctx, query, revenueID, approvedBy, now)
	if err != nil {
		return false, fmt.Errorf("failed to approve revenue entry %s: %w", revenueID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// FindExpenseByID retrieves an expense entry.
func (r *PgxSourceRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseEntry, error) {
	query := `
		SELECT expense_id, amount, category, entry_date, created_by, is_approved, approved_by, approved_at
		FROM expense_entries
		WHERE expense_id = $1`

	var modelDoc models.ExpenseEntry
	err := r.Pool.QueryRow(ctx, query, expenseID).Scan(
		&modelDoc.ExpenseID,
		&modelDoc.Amount,
		&modelDoc.Category,
		&modelDoc.EntryDate,
		&modelDoc.CreatedBy,
		&modelDoc.IsApproved,
		&modelDoc.ApprovedBy,
		&modelDoc.ApprovedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense entry %s: %w", expenseID, err)
	}
	doc := mapping.ToDomainExpenseEntry(modelDoc)
	return &doc, nil
}

// MarkExpenseApprovedInTx flips is_approved within tx, conditional on the
// document not being approved yet.
func (r *PgxSourceRepository) MarkExpenseApprovedInTx(ctx context.Context, tx pgx.Tx, expenseID string, approvedBy string, now time.Time) (bool, error) {
	query := `
		UPDATE expense_entries
		SET is_approved = TRUE, approved_by = $2, approved_at = $3
		WHERE expense_id = $1 AND is_approved = FALSE`

	cmdTag, err := tx.Exec(ctx, query, expenseID, approvedBy, now)
	if err != nil {
		return false, fmt.Errorf("failed to approve expense entry %s: %w", expenseID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
