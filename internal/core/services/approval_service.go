package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/fintrak/fintrak/internal/middleware"
)

var (
	ErrWorkflowNotPending      = errors.New("approval workflow is not pending")
	ErrApprovalExists          = errors.New("a pending approval already exists for this document")
	ErrNotAuthorizedToDecide   = errors.New("user is not entitled to decide this approval")
	ErrSelfApproval            = errors.New("authors may not approve their own documents")
	ErrRejectionReasonRequired = errors.New("a rejection requires a reason")
	ErrOnlyRequesterMayCancel  = errors.New("only the requester may cancel a pending approval")
	ErrSourceAlreadyApproved   = errors.New("source document is already approved")
	ErrNoApproverAvailable     = errors.New("no eligible approver found for requester")
	ErrDeciderInactive         = errors.New("decider account is inactive")
)

// chainDepthLimit caps the management chain walk so a cyclic manager graph
// cannot spin forever.
const chainDepthLimit = 32

// DecidePolicy vets a decider for one source type after the generic chain
// and role-floor checks have passed.
type DecidePolicy func(decider domain.User, docAuthorID string) error

// DefaultDecidePolicies returns the per-source-type carve-outs. Expenses
// must be decided by someone other than the document author, whatever the
// decider's rank.
func DefaultDecidePolicies() map[domain.SourceType]DecidePolicy {
	return map[domain.SourceType]DecidePolicy{
		domain.SourceExpense: func(decider domain.User, docAuthorID string) error {
			if decider.UserID == docAuthorID {
				return ErrSelfApproval
			}
			return nil
		},
	}
}

// approvalService drives approval workflows and performs the financial
// effects of an approval atomically with the decision.
type approvalService struct {
	approvalRepo portsrepo.ApprovalRepositoryWithTx
	sourceRepo   portsrepo.SourceRepositoryFacade
	saleRepo     portsrepo.SaleRepositoryWithTx
	userRepo     portsrepo.UserRepositoryFacade
	chartSvc     portssvc.ChartSvcFacade
	journalSvc   portssvc.JournalSvcFacade
	saleSvc      portssvc.SaleTransactionSupport
	policies     map[domain.SourceType]DecidePolicy
	floorRole    domain.Role
	publisher    portssvc.EventPublisher
}

// NewApprovalService creates a new ApprovalService. floorRole is the rank at
// or above which a user may decide any workflow regardless of the
// requester's management chain.
func NewApprovalService(
	approvalRepo portsrepo.ApprovalRepositoryWithTx,
	sourceRepo portsrepo.SourceRepositoryFacade,
	saleRepo portsrepo.SaleRepositoryWithTx,
	userRepo portsrepo.UserRepositoryFacade,
	chartSvc portssvc.ChartSvcFacade,
	journalSvc portssvc.JournalSvcFacade,
	saleSvc portssvc.SaleTransactionSupport,
	policies map[domain.SourceType]DecidePolicy,
	floorRole domain.Role,
	publisher portssvc.EventPublisher,
) portssvc.ApprovalSvcFacade {
	if policies == nil {
		policies = DefaultDecidePolicies()
	}
	return &approvalService{
		approvalRepo: approvalRepo,
		sourceRepo:   sourceRepo,
		saleRepo:     saleRepo,
		userRepo:     userRepo,
		chartSvc:     chartSvc,
		journalSvc:   journalSvc,
		saleSvc:      saleSvc,
		policies:     policies,
		floorRole:    floorRole,
		publisher:    publisher,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// sourceDoc is what the workflow needs to know about the gated document.
type sourceDoc struct {
	authorID  string
	amountRef string // For logging only.
}

// inspectSource verifies the document exists and is still awaiting approval,
// and reports its author.
func (s *approvalService) inspectSource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*sourceDoc, error) {
	switch sourceType {
	case domain.SourceRevenue:
		doc, err := s.sourceRepo.FindRevenueByID(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to find revenue entry %s: %w", sourceID, err)
		}
		if doc.IsApproved {
			return nil, fmt.Errorf("%w: revenue %s", ErrSourceAlreadyApproved, sourceID)
		}
		return &sourceDoc{authorID: doc.CreatedBy, amountRef: doc.Amount.String()}, nil
	case domain.SourceExpense:
		doc, err := s.sourceRepo.FindExpenseByID(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to find expense entry %s: %w", sourceID, err)
		}
		if doc.IsApproved {
			return nil, fmt.Errorf("%w: expense %s", ErrSourceAlreadyApproved, sourceID)
		}
		return &sourceDoc{authorID: doc.CreatedBy, amountRef: doc.Amount.String()}, nil
	case domain.SourceSale:
		sale, err := s.saleRepo.FindSaleByID(ctx, sourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to find sale %s: %w", sourceID, err)
		}
		if sale.Status != domain.SalePending {
			return nil, fmt.Errorf("%w: sale %s is %s", ErrSourceAlreadyApproved, sourceID, sale.Status)
		}
		return &sourceDoc{authorID: sale.SellerID, amountRef: sale.Total.String()}, nil
	default:
		return nil, fmt.Errorf("%w: unknown source type %q", apperrors.ErrValidation, sourceType)
	}
}

// assignApprover walks the requester's management chain to the nearest
// active manager, falling back to any active user at or above the floor
// role when the chain runs out.
func (s *approvalService) assignApprover(ctx context.Context, requester *domain.User) (*domain.User, error) {
	next := requester.ManagerID
	for depth := 0; next != nil && depth < chainDepthLimit; depth++ {
		manager, err := s.userRepo.FindUserByID(ctx, *next)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("failed to walk management chain: %w", err)
		}
		if manager.IsActive {
			return manager, nil
		}
		next = manager.ManagerID
	}

	fallback, err := s.userRepo.FindFirstByMinimumRole(ctx, s.floorRole)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoApproverAvailable, requester.UserID)
		}
		return nil, fmt.Errorf("failed to find fallback approver: %w", err)
	}
	return fallback, nil
}

// isOnChain reports whether candidate sits above requester in the
// management chain.
func (s *approvalService) isOnChain(ctx context.Context, requester *domain.User, candidateID string) (bool, error) {
	next := requester.ManagerID
	for depth := 0; next != nil && depth < chainDepthLimit; depth++ {
		if *next == candidateID {
			return true, nil
		}
		manager, err := s.userRepo.FindUserByID(ctx, *next)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("failed to walk management chain: %w", err)
		}
		next = manager.ManagerID
	}
	return false, nil
}

// Request opens a pending workflow for a source document.
func (s *approvalService) Request(ctx context.Context, req dto.RequestApprovalRequest, requesterID string) (*domain.ApprovalWorkflow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.SourceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown source type %q", apperrors.ErrValidation, req.SourceType)
	}
	if _, err := s.inspectSource(ctx, req.SourceType, req.SourceID); err != nil {
		return nil, err
	}

	pending, err := s.approvalRepo.FindPendingBySource(ctx, req.SourceType, req.SourceID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for pending workflow: %w", err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: workflow %s", ErrApprovalExists, pending.WorkflowID)
	}

	requester, err := s.userRepo.FindUserByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to find requester %s: %w", requesterID, err)
	}

	approver, err := s.assignApprover(ctx, requester)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	now := time.Now().UTC()
	workflow := domain.ApprovalWorkflow{
		WorkflowID:  uuid.NewString(),
		SourceType:  req.SourceType,
		SourceID:    req.SourceID,
		Status:      domain.WorkflowPending,
		RequesterID: requesterID,
		ApproverID:  &approver.UserID,
		Priority:    priority,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requesterID,
			LastUpdatedAt: now,
			LastUpdatedBy: requesterID,
		},
	}

	if err := s.approvalRepo.SaveWorkflow(ctx, workflow); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s %s", ErrApprovalExists, req.SourceType, req.SourceID)
		}
		logger.Error("Failed to save approval workflow", slog.String("error", err.Error()), slog.String("source_id", req.SourceID))
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	logger.Info("Approval requested",
		slog.String("workflow_id", workflow.WorkflowID),
		slog.String("source_type", string(req.SourceType)),
		slog.String("source_id", req.SourceID),
		slog.String("approver_id", approver.UserID))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "approval_workflow", EntityID: workflow.WorkflowID, Action: "requested", ActorID: requesterID})
	}
	return &workflow, nil
}

// authorizeDecider enforces the hierarchy rule: the decider must sit on the
// requester's management chain or rank at or above the floor role, and must
// clear the per-source-type policy.
func (s *approvalService) authorizeDecider(ctx context.Context, workflow *domain.ApprovalWorkflow, decider *domain.User, doc *sourceDoc) error {
	if !decider.IsActive {
		return fmt.Errorf("%w: %s", ErrDeciderInactive, decider.UserID)
	}

	requester, err := s.userRepo.FindUserByID(ctx, workflow.RequesterID)
	if err != nil {
		return fmt.Errorf("failed to find requester %s: %w", workflow.RequesterID, err)
	}

	onChain, err := s.isOnChain(ctx, requester, decider.UserID)
	if err != nil {
		return err
	}
	if !onChain && !decider.Role.AtLeast(s.floorRole) {
		return fmt.Errorf("%w: %s", ErrNotAuthorizedToDecide, decider.UserID)
	}

	if policy, ok := s.policies[workflow.SourceType]; ok {
		if err := policy(*decider, doc.authorID); err != nil {
			return err
		}
	}
	return nil
}

// Decide approves or rejects a pending workflow. On approval the source
// document flips and its journal entry posts in the same transaction as the
// workflow transition, so a crash leaves either everything or nothing.
func (s *approvalService) Decide(ctx context.Context, workflowID string, req dto.DecideApprovalRequest, deciderID string) (*domain.ApprovalWorkflow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	workflow, err := s.approvalRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}
	if workflow.Status != domain.WorkflowPending {
		return nil, fmt.Errorf("%w: workflow %s is %s", ErrWorkflowNotPending, workflowID, workflow.Status)
	}

	if req.Decision == domain.DecisionReject && req.Reason == "" {
		return nil, ErrRejectionReasonRequired
	}

	decider, err := s.userRepo.FindUserByID(ctx, deciderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find decider %s: %w", deciderID, err)
	}
	doc, err := s.inspectSource(ctx, workflow.SourceType, workflow.SourceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDecider(ctx, workflow, decider, doc); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	terminal := domain.WorkflowApproved
	reason := ""
	if req.Decision == domain.DecisionReject {
		terminal = domain.WorkflowRejected
		reason = req.Reason
	}

	tx, err := s.approvalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.approvalRepo.Rollback(ctx, tx)

	// The conditional update is the serialization point: of two concurrent
	// deciders exactly one sees ok.
	ok, err := s.approvalRepo.FinishWorkflowInTx(ctx, tx, workflowID, terminal, deciderID, reason, now)
	if err != nil {
		return nil, fmt.Errorf("failed to finish workflow: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: workflow %s", ErrWorkflowNotPending, workflowID)
	}

	if req.Decision == domain.DecisionApprove {
		if err := s.applyApprovalEffectsInTx(ctx, tx, workflow, deciderID, now); err != nil {
			return nil, err
		}
	}

	if err := s.approvalRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit decision: %w", err)
	}

	workflow.Status = terminal
	workflow.ApproverID = &deciderID
	workflow.RejectionReason = reason
	workflow.DecidedAt = &now
	workflow.LastUpdatedAt = now
	workflow.LastUpdatedBy = deciderID

	logger.Info("Approval decided",
		slog.String("workflow_id", workflowID),
		slog.String("decision", string(req.Decision)),
		slog.String("source_type", string(workflow.SourceType)),
		slog.String("source_id", workflow.SourceID))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "approval_workflow", EntityID: workflowID, Action: string(terminal), ActorID: deciderID})
	}
	return workflow, nil
}

// applyApprovalEffectsInTx flips the source document and posts its journal
// entry within tx.
func (s *approvalService) applyApprovalEffectsInTx(ctx context.Context, tx pgx.Tx, workflow *domain.ApprovalWorkflow, deciderID string, now time.Time) error {
	switch workflow.SourceType {
	case domain.SourceRevenue:
		doc, err := s.sourceRepo.FindRevenueByID(ctx, workflow.SourceID)
		if err != nil {
			return fmt.Errorf("failed to find revenue entry %s: %w", workflow.SourceID, err)
		}
		ok, err := s.sourceRepo.MarkRevenueApprovedInTx(ctx, tx, doc.RevenueID, deciderID, now)
		if err != nil {
			return fmt.Errorf("failed to approve revenue entry: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: revenue %s", ErrSourceAlreadyApproved, doc.RevenueID)
		}

		cash, err := s.chartSvc.ResolveAccountInTx(ctx, tx, cashAccountSpec(), deciderID)
		if err != nil {
			return err
		}
		revenueAcc, err := s.chartSvc.ResolveAccountInTx(ctx, tx, revenueCategorySpec(doc.Category), deciderID)
		if err != nil {
			return err
		}
		_, err = s.journalSvc.CreatePostedEntryInTx(ctx, tx, dto.PostedEntrySpec{
			EntryDate:   doc.EntryDate,
			Description: fmt.Sprintf("Revenue: %s", doc.Category),
			Reference:   domain.RevenueRef(doc.RevenueID),
			Lines: []domain.JournalLine{
				{AccountID: cash.AccountID, DebitAmount: doc.Amount},
				{AccountID: revenueAcc.AccountID, CreditAmount: doc.Amount},
			},
		}, deciderID)
		return err

	case domain.SourceExpense:
		doc, err := s.sourceRepo.FindExpenseByID(ctx, workflow.SourceID)
		if err != nil {
			return fmt.Errorf("failed to find expense entry %s: %w", workflow.SourceID, err)
		}
		ok, err := s.sourceRepo.MarkExpenseApprovedInTx(ctx, tx, doc.ExpenseID, deciderID, now)
		if err != nil {
			return fmt.Errorf("failed to approve expense entry: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: expense %s", ErrSourceAlreadyApproved, doc.ExpenseID)
		}

		cash, err := s.chartSvc.ResolveAccountInTx(ctx, tx, cashAccountSpec(), deciderID)
		if err != nil {
			return err
		}
		expenseAcc, err := s.chartSvc.ResolveAccountInTx(ctx, tx, expenseCategorySpec(doc.Category), deciderID)
		if err != nil {
			return err
		}
		_, err = s.journalSvc.CreatePostedEntryInTx(ctx, tx, dto.PostedEntrySpec{
			EntryDate:   doc.EntryDate,
			Description: fmt.Sprintf("Expense: %s", doc.Category),
			Reference:   domain.ExpenseRef(doc.ExpenseID),
			Lines: []domain.JournalLine{
				{AccountID: expenseAcc.AccountID, DebitAmount: doc.Amount},
				{AccountID: cash.AccountID, CreditAmount: doc.Amount},
			},
		}, deciderID)
		return err

	case domain.SourceSale:
		_, err := s.saleSvc.PostSaleInTx(ctx, tx, workflow.SourceID, deciderID)
		return err

	default:
		return fmt.Errorf("%w: unknown source type %q", apperrors.ErrValidation, workflow.SourceType)
	}
}

// Cancel withdraws a pending workflow. Only the requester may cancel, and
// cancellation leaves the source document untouched.
func (s *approvalService) Cancel(ctx context.Context, workflowID string, requesterID string) (*domain.ApprovalWorkflow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	workflow, err := s.approvalRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}
	if workflow.Status != domain.WorkflowPending {
		return nil, fmt.Errorf("%w: workflow %s is %s", ErrWorkflowNotPending, workflowID, workflow.Status)
	}
	if workflow.RequesterID != requesterID {
		return nil, fmt.Errorf("%w: workflow %s", ErrOnlyRequesterMayCancel, workflowID)
	}

	now := time.Now().UTC()
	tx, err := s.approvalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.approvalRepo.Rollback(ctx, tx)

	ok, err := s.approvalRepo.FinishWorkflowInTx(ctx, tx, workflowID, domain.WorkflowCancelled, requesterID, "", now)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel workflow: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: workflow %s", ErrWorkflowNotPending, workflowID)
	}
	if err := s.approvalRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	workflow.Status = domain.WorkflowCancelled
	workflow.DecidedAt = &now
	workflow.LastUpdatedAt = now
	workflow.LastUpdatedBy = requesterID

	logger.Info("Approval cancelled", slog.String("workflow_id", workflowID))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "approval_workflow", EntityID: workflowID, Action: "cancelled", ActorID: requesterID})
	}
	return workflow, nil
}

// GetWorkflowByID retrieves a workflow by its identifier.
func (s *approvalService) GetWorkflowByID(ctx context.Context, workflowID string) (*domain.ApprovalWorkflow, error) {
	workflow, err := s.approvalRepo.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find workflow by ID", slog.String("error", err.Error()), slog.String("workflow_id", workflowID))
		}
		return nil, fmt.Errorf("failed to find workflow %s: %w", workflowID, err)
	}
	return workflow, nil
}

// ListPendingForApprover retrieves pending workflows assigned to the user.
func (s *approvalService) ListPendingForApprover(ctx context.Context, approverID string, limit int) ([]domain.ApprovalWorkflow, error) {
	if limit <= 0 {
		limit = 20
	}
	workflows, err := s.approvalRepo.ListPendingByApprover(ctx, approverID, limit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list pending workflows", slog.String("error", err.Error()), slog.String("approver_id", approverID))
		return nil, fmt.Errorf("failed to list pending workflows: %w", err)
	}
	return workflows, nil
}
