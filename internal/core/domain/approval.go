package domain

import "time"

// WorkflowStatus is the state of an approval workflow.
// PENDING is the only non-terminal state.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "PENDING"
	WorkflowApproved  WorkflowStatus = "APPROVED"
	WorkflowRejected  WorkflowStatus = "REJECTED"
	WorkflowCancelled WorkflowStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is legal from s.
func (s WorkflowStatus) IsTerminal() bool {
	return s != WorkflowPending
}

// SourceType identifies which kind of source document a workflow gates.
type SourceType string

const (
	SourceRevenue SourceType = "REVENUE"
	SourceExpense SourceType = "EXPENSE"
	SourceSale    SourceType = "SALE"
)

// IsValid reports whether t is a known source type.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceRevenue, SourceExpense, SourceSale:
		return true
	}
	return false
}

// Decision is the verdict passed to Decide.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// WorkflowPriority orders pending workflows for approvers.
type WorkflowPriority string

const (
	PriorityLow    WorkflowPriority = "LOW"
	PriorityNormal WorkflowPriority = "NORMAL"
	PriorityHigh   WorkflowPriority = "HIGH"
	PriorityUrgent WorkflowPriority = "URGENT"
)

// ApprovalWorkflow gates whether a source document may become financially
// effective. At most one PENDING workflow exists per source document.
type ApprovalWorkflow struct {
	WorkflowID      string           `json:"workflowID"` // Primary Key (UUID)
	SourceType      SourceType       `json:"sourceType"`
	SourceID        string           `json:"sourceID"` // Exactly one linked document
	Status          WorkflowStatus   `json:"status"`
	RequesterID     string           `json:"requesterID"`
	ApproverID      *string          `json:"approverID,omitempty"` // Assigned approver; decider on terminal states
	Priority        WorkflowPriority `json:"priority"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
	DecidedAt       *time.Time       `json:"decidedAt,omitempty"`
	AuditFields
}
