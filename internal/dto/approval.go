package dto

import (
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
)

// RequestApprovalRequest opens a workflow for a source document.
type RequestApprovalRequest struct {
	SourceType domain.SourceType       `json:"sourceType" binding:"required,oneof=REVENUE EXPENSE SALE"`
	SourceID   string                  `json:"sourceID" binding:"required"`
	Priority   domain.WorkflowPriority `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
}

// DecideApprovalRequest carries an approver's verdict. A reason is required
// for rejections and ignored for approvals.
type DecideApprovalRequest struct {
	Decision domain.Decision `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Reason   string          `json:"reason"`
}

// WorkflowResponse defines the data returned for an approval workflow.
type WorkflowResponse struct {
	WorkflowID      string                  `json:"workflowID"`
	SourceType      domain.SourceType       `json:"sourceType"`
	SourceID        string                  `json:"sourceID"`
	Status          domain.WorkflowStatus   `json:"status"`
	RequesterID     string                  `json:"requesterID"`
	ApproverID      *string                 `json:"approverID,omitempty"`
	Priority        domain.WorkflowPriority `json:"priority"`
	RejectionReason string                  `json:"rejectionReason,omitempty"`
	DecidedAt       *time.Time              `json:"decidedAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// ToWorkflowResponse converts a domain.ApprovalWorkflow to WorkflowResponse DTO.
func ToWorkflowResponse(wf *domain.ApprovalWorkflow) WorkflowResponse {
	return WorkflowResponse{
		WorkflowID:      wf.WorkflowID,
		SourceType:      wf.SourceType,
		SourceID:        wf.SourceID,
		Status:          wf.Status,
		RequesterID:     wf.RequesterID,
		ApproverID:      wf.ApproverID,
		Priority:        wf.Priority,
		RejectionReason: wf.RejectionReason,
		DecidedAt:       wf.DecidedAt,
		CreatedAt:       wf.CreatedAt,
	}
}

// ToWorkflowResponses converts a slice of domain.ApprovalWorkflow to []WorkflowResponse.
func ToWorkflowResponses(wfs []domain.ApprovalWorkflow) []WorkflowResponse {
	responses := make([]WorkflowResponse, len(wfs))
	for i, wf := range wfs {
		responses[i] = ToWorkflowResponse(&wf)
	}
	return responses
}
