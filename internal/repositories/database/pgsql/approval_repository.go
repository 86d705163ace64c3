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

// PgxApprovalRepository persists approval workflows.
type PgxApprovalRepository struct {
	BaseRepository
}

func newPgxApprovalRepository(pool *pgxpool.Pool) *PgxApprovalRepository {
	return &PgxApprovalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ApprovalRepositoryWithTx = (*PgxApprovalRepository)(nil)

const workflowColumns = `workflow_id, source_type, source_id, status, requester_id, approver_id, priority, rejection_reason, decided_at, created_at, created_by, last_updated_at, last_updated_by`

func scanWorkflow(row rowScanner) (domain.ApprovalWorkflow, error) {
	var modelWf models.ApprovalWorkflow
	err := row.Scan(
		&modelWf.WorkflowID,
		&modelWf.SourceType,
		&modelWf.SourceID,
		&modelWf.Status,
		&modelWf.RequesterID,
		&modelWf.ApproverID,
		&modelWf.Priority,
		&modelWf.RejectionReason,
		&modelWf.DecidedAt,
		&modelWf.CreatedAt,
		&modelWf.CreatedBy,
		&modelWf.LastUpdatedAt,
		&modelWf.LastUpdatedBy,
	)
	if err != nil {
		return domain.ApprovalWorkflow{}, err
	}
	return mapping.ToDomainApprovalWorkflow(modelWf), nil
}

// FindWorkflowByID retrieves a workflow by its identifier.
func (r *PgxApprovalRepository) FindWorkflowByID(ctx context.Context, workflowID string) (*domain.ApprovalWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM approval_workflows WHERE workflow_id = $1`

	workflow, err := scanWorkflow(r.Pool.QueryRow(ctx, query, workflowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find workflow by ID %s: %w", workflowID, err)
	}
	return &workflow, nil
}

// FindPendingBySource retrieves the PENDING workflow for a source document.
// The partial unique index guarantees at most one exists.
func (r *PgxApprovalRepository) FindPendingBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.ApprovalWorkflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM approval_workflows
		WHERE source_type = $1 AND source_id = $2 AND status = 'PENDING'`

	workflow, err := scanWorkflow(r.Pool.QueryRow(ctx, query, string(sourceType), sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pending workflow for %s/%s: %w", sourceType, sourceID, err)
	}
	return &workflow, nil
}

// ListPendingByApprover retrieves pending workflows assigned to an approver,
// most urgent first, oldest first within a priority.
func (r *PgxApprovalRepository) ListPendingByApprover(ctx context.Context, approverID string, limit int) ([]domain.ApprovalWorkflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM approval_workflows
		WHERE approver_id = $1 AND status = 'PENDING'
		ORDER BY CASE priority
			WHEN 'URGENT' THEN 0
			WHEN 'HIGH' THEN 1
			WHEN 'NORMAL' THEN 2
			ELSE 3
		END, created_at
		LIMIT $2`

	rows, err := r.Pool.Query(ctx, query, approverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending workflows for %s: %w", approverID, err)
	}
	defer rows.Close()

	workflows := []domain.ApprovalWorkflow{}
	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		workflows = append(workflows, workflow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow rows: %w", err)
	}
	return workflows, nil
}

// SaveWorkflow persists a new workflow. The partial unique index on
// (source_type, source_id) WHERE status = 'PENDING' turns a double request
// into apperrors.ErrDuplicate.
func (r *PgxApprovalRepository) SaveWorkflow(ctx context.Context, workflow domain.ApprovalWorkflow) error {
	modelWf := mapping.ToModelApprovalWorkflow(workflow)

	query := `
		INSERT INTO approval_workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.Pool.Exec(ctx, query,
		modelWf.WorkflowID,
		modelWf.SourceType,
		modelWf.SourceID,
		modelWf.Status,
		modelWf.RequesterID,
		modelWf.ApproverID,
		modelWf.Priority,
		modelWf.RejectionReason,
		modelWf.DecidedAt,
		modelWf.CreatedAt,
		modelWf.CreatedBy,
		modelWf.LastUpdatedAt,
		modelWf.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: pending workflow for %s/%s", apperrors.ErrDuplicate, modelWf.SourceType, modelWf.SourceID)
		}
		return fmt.Errorf("failed to save workflow %s: %w", modelWf.WorkflowID, err)
	}
	return nil
}

// FinishWorkflowInTx transitions PENDING -> terminal within tx. The status
// condition makes the transition exactly-once under concurrent deciders.
// A cancellation keeps the assigned approver; decisions record the user who
// actually decided, who may differ from the assignee.
func (r *PgxApprovalRepository) FinishWorkflowInTx(ctx context.Context, tx pgx.Tx, workflowID string, status domain.WorkflowStatus, deciderID string, reason string, now time.Time) (bool, error) {
	query := `
		UPDATE approval_workflows
		SET status = $2,
			approver_id = CASE WHEN $2 = 'CANCELLED' THEN approver_id ELSE $3 END,
			rejection_reason = $4, decided_at = $5, last_updated_at = $5, last_updated_by = $3
		WHERE workflow_id = $1 AND status = 'PENDING'`

	cmdTag, err := tx.Exec(ctx, query, workflowID, string(status), deciderID, reason, now)
	if err != nil {
		return false, fmt.Errorf("failed to finish workflow %s: %w", workflowID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
