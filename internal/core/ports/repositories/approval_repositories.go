package repositories

import (
	"context"
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ApprovalReader defines read operations for approval workflows.
type ApprovalReader interface {
	// FindWorkflowByID retrieves a workflow by its identifier.
	FindWorkflowByID(ctx context.Context, workflowID string) (*domain.ApprovalWorkflow, error)

	// FindPendingBySource retrieves the PENDING workflow for a source
	// document, or apperrors.ErrNotFound.
	FindPendingBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.ApprovalWorkflow, error)

	// ListPendingByApprover retrieves pending workflows assigned to an
	// approver, most urgent first.
	ListPendingByApprover(ctx context.Context, approverID string, limit int) ([]domain.ApprovalWorkflow, error)
}

// ApprovalWriter defines write operations for approval workflows.
type ApprovalWriter interface {
	// SaveWorkflow persists a new workflow. Returns apperrors.ErrDuplicate
	// when a PENDING workflow already exists for the same source document
	// (backed by a partial unique index).
	SaveWorkflow(ctx context.Context, workflow domain.ApprovalWorkflow) error

	// FinishWorkflowInTx transitions PENDING -> terminal within tx using a
	// conditional update on status. Returns false when the workflow was not
	// PENDING: of two concurrent deciders exactly one sees true.
	FinishWorkflowInTx(ctx context.Context, tx pgx.Tx, workflowID string, status domain.WorkflowStatus, deciderID string, reason string, now time.Time) (bool, error)
}

// ApprovalRepositoryFacade combines all approval-related repository interfaces.
type ApprovalRepositoryFacade interface {
	ApprovalReader
	ApprovalWriter
}

// ApprovalRepositoryWithTx extends ApprovalRepositoryFacade with transaction
// capabilities.
type ApprovalRepositoryWithTx interface {
	ApprovalRepositoryFacade
	TransactionManager
}
