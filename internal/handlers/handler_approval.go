package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fintrak/fintrak/internal/apperrors"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/core/services"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/fintrak/fintrak/internal/middleware"
	"github.com/gin-gonic/gin"
)

// approvalHandler handles HTTP requests related to approval workflows.
type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func newApprovalHandler(as portssvc.ApprovalSvcFacade) *approvalHandler {
	return &approvalHandler{
		approvalService: as,
	}
}

// registerApprovalRoutes registers routes related to approvals.
func registerApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := newApprovalHandler(approvalService)

	approvals := rg.Group("/approvals")
	{
		approvals.POST("", h.requestApproval)
		approvals.GET("/pending", h.listPending)
		approvals.GET("/:id", h.getWorkflow)
		approvals.POST("/:id/decide", h.decideApproval)
		approvals.POST("/:id/cancel", h.cancelApproval)
	}
}

// requestApproval godoc
// @Summary Request approval for a source document
// @Description Opens a pending workflow for a revenue, expense or sale document
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   request body dto.RequestApprovalRequest true "Document to submit"
// @Success 201 {object} dto.WorkflowResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 404 {object} map[string]string "Source document not found"
// @Failure 409 {object} map[string]string "A pending approval already exists"
// @Security BearerAuth
// @Router /approvals [post]
func (h *approvalHandler) requestApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestApproval", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requesterID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Requester user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("requester_id", requesterID), slog.String("source_type", string(req.SourceType)), slog.String("source_id", req.SourceID))
	logger.Info("Received request to open approval workflow")

	workflow, err := h.approvalService.Request(c.Request.Context(), req, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Source document not found", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrApprovalExists), errors.Is(err, services.ErrSourceAlreadyApproved), errors.Is(err, services.ErrSaleNotPending):
			logger.Warn("Approval conflict", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoApproverAvailable):
			logger.Error("No eligible approver for requester", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error opening workflow", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to open workflow in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request approval"})
		}
		return
	}

	logger.Info("Approval workflow opened", slog.String("workflow_id", workflow.WorkflowID))
	c.JSON(http.StatusCreated, dto.ToWorkflowResponse(workflow))
}

// decideApproval godoc
// @Summary Decide a pending approval
// @Description Approves or rejects a workflow; approval posts the document's ledger entry atomically
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   id path string true "Workflow ID"
// @Param   decision body dto.DecideApprovalRequest true "APPROVE or REJECT with optional reason"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 400 {object} map[string]string "Invalid input or missing rejection reason"
// @Failure 403 {object} map[string]string "Decider is not entitled to this workflow"
// @Failure 404 {object} map[string]string "Workflow not found"
// @Failure 409 {object} map[string]string "Workflow already decided"
// @Security BearerAuth
// @Router /approvals/{id}/decide [post]
func (h *approvalHandler) decideApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	var req dto.DecideApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for DecideApproval", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	deciderID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Decider user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workflow_id", workflowID), slog.String("decider_id", deciderID), slog.String("decision", string(req.Decision)))
	logger.Info("Received approval decision")

	workflow, err := h.approvalService.Decide(c.Request.Context(), workflowID, req, deciderID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Workflow not found", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": "Approval workflow not found"})
		case errors.Is(err, services.ErrNotAuthorizedToDecide),
			errors.Is(err, services.ErrSelfApproval),
			errors.Is(err, services.ErrDeciderInactive),
			errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Decider not entitled", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrRejectionReasonRequired):
			logger.Warn("Rejection without reason", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrWorkflowNotPending),
			errors.Is(err, services.ErrSaleAlreadyPosted),
			errors.Is(err, services.ErrSaleCancelled),
			errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Workflow already decided", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to decide workflow in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decide approval"})
		}
		return
	}

	logger.Info("Approval decided", slog.String("status", string(workflow.Status)))
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// cancelApproval godoc
// @Summary Cancel a pending approval
// @Description Withdraws a pending workflow. Only the requester may cancel.
// @Tags approvals
// @Produce  json
// @Param   id path string true "Workflow ID"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 403 {object} map[string]string "Caller is not the requester"
// @Failure 404 {object} map[string]string "Workflow not found"
// @Failure 409 {object} map[string]string "Workflow already decided"
// @Security BearerAuth
// @Router /approvals/{id}/cancel [post]
func (h *approvalHandler) cancelApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	requesterID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Requester user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	workflow, err := h.approvalService.Cancel(c.Request.Context(), workflowID, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Workflow not found for cancel", slog.String("workflow_id", workflowID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Approval workflow not found"})
		case errors.Is(err, services.ErrOnlyRequesterMayCancel):
			logger.Warn("Cancel by non-requester", slog.String("workflow_id", workflowID))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrWorkflowNotPending), errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Workflow already decided", slog.String("workflow_id", workflowID))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to cancel workflow in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel approval"})
		}
		return
	}

	logger.Info("Approval workflow cancelled", slog.String("workflow_id", workflowID))
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// getWorkflow godoc
// @Summary Get an approval workflow by ID
// @Tags approvals
// @Produce  json
// @Param   id path string true "Workflow ID"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 404 {object} map[string]string "Workflow not found"
// @Security BearerAuth
// @Router /approvals/{id} [get]
func (h *approvalHandler) getWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	workflow, err := h.approvalService.GetWorkflowByID(c.Request.Context(), workflowID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Workflow not found", slog.String("workflow_id", workflowID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Approval workflow not found"})
		} else {
			logger.Error("Failed to get workflow from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve approval workflow"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// listPending godoc
// @Summary List pending approvals assigned to the caller
// @Description Retrieves the caller's approval queue, ordered by priority then age
// @Tags approvals
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Success 200 {array} dto.WorkflowResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /approvals/pending [get]
func (h *approvalHandler) listPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	approverID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Approver user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := parsePagination(c)

	workflows, err := h.approvalService.ListPendingForApprover(c.Request.Context(), approverID, limit)
	if err != nil {
		logger.Error("Failed to list pending approvals from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending approvals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workflows": dto.ToWorkflowResponses(workflows)})
}
