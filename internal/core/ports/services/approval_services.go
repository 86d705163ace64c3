package services

import (
	"context"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/dto"
)

// ApprovalSvcFacade drives the approval workflow lifecycle for revenue,
// expense and sale documents.
type ApprovalSvcFacade interface {
	// Request opens a pending workflow for a source document. At most one
	// pending workflow may exist per document.
	Request(ctx context.Context, req dto.RequestApprovalRequest, requesterID string) (*domain.ApprovalWorkflow, error)

	// Decide approves or rejects a pending workflow. Approval flips the
	// source document and posts its journal entry in the same transaction.
	Decide(ctx context.Context, workflowID string, req dto.DecideApprovalRequest, deciderID string) (*domain.ApprovalWorkflow, error)

	// Cancel withdraws a pending workflow. Only the requester may cancel.
	Cancel(ctx context.Context, workflowID string, requesterID string) (*domain.ApprovalWorkflow, error)

	// GetWorkflowByID retrieves a workflow by its identifier.
	GetWorkflowByID(ctx context.Context, workflowID string) (*domain.ApprovalWorkflow, error)

	// ListPendingForApprover retrieves pending workflows assigned to the
	// given user, ordered by priority then age.
	ListPendingForApprover(ctx context.Context, approverID string, limit int) ([]domain.ApprovalWorkflow, error)
}
