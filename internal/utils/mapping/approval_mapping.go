package mapping

import (
	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/models"
)

// ToModelApprovalWorkflow converts a domain ApprovalWorkflow to its model form.
func ToModelApprovalWorkflow(d domain.ApprovalWorkflow) models.ApprovalWorkflow {
	return models.ApprovalWorkflow{
		WorkflowID:      d.WorkflowID,
		SourceType:      string(d.SourceType),
		SourceID:        d.SourceID,
		Status:          string(d.Status),
		RequesterID:     d.RequesterID,
		ApproverID:      d.ApproverID,
		Priority:        string(d.Priority),
		RejectionReason: d.RejectionReason,
		DecidedAt:       d.DecidedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainApprovalWorkflow converts a model ApprovalWorkflow to its domain form.
func ToDomainApprovalWorkflow(m models.ApprovalWorkflow) domain.ApprovalWorkflow {
	return domain.ApprovalWorkflow{
		WorkflowID:      m.WorkflowID,
		SourceType:      domain.SourceType(m.SourceType),
		SourceID:        m.SourceID,
		Status:          domain.WorkflowStatus(m.Status),
		RequesterID:     m.RequesterID,
		ApproverID:      m.ApproverID,
		Priority:        domain.WorkflowPriority(m.Priority),
		RejectionReason: m.RejectionReason,
		DecidedAt:       m.DecidedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
