package models

import "time"

// ApprovalWorkflow is the persistence shape of an approval workflow.
type ApprovalWorkflow struct {
	WorkflowID      string     `json:"workflowID"`
	SourceType      string     `json:"sourceType"`
	SourceID        string     `json:"sourceID"`
	Status          string     `json:"status"`
	RequesterID     string     `json:"requesterID"`
	ApproverID      *string    `json:"approverID"`
	Priority        string     `json:"priority"`
	RejectionReason string     `json:"rejectionReason"`
	DecidedAt       *time.Time `json:"decidedAt"`
	AuditFields
}
