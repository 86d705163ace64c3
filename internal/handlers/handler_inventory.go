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

// inventoryHandler handles HTTP requests related to items, warehouses and
// stock movements.
type inventoryHandler struct {
	inventoryService portssvc.InventorySvcFacade
}

func newInventoryHandler(is portssvc.InventorySvcFacade) *inventoryHandler {
	return &inventoryHandler{
		inventoryService: is,
	}
}

// registerInventoryRoutes registers routes related to inventory.
func registerInventoryRoutes(rg *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade) {
	h := newInventoryHandler(inventoryService)

	items := rg.Group("/items")
	{
		items.POST("", h.createItem)
		items.GET("", h.listItems)
		items.GET("/:id", h.getItem)
		items.GET("/:id/movements", h.listMovements)
	}

	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", h.createWarehouse)
	}

	stock := rg.Group("/stock")
	{
		stock.POST("/shrinkage", h.recordShrinkage)
		stock.POST("/transfers", h.transferStock)
	}
}

// createItem godoc
// @Summary Register an inventory item
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   item body dto.CreateItemRequest true "Item details"
// @Success 201 {object} dto.ItemResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 409 {object} map[string]string "SKU already in use"
// @Security BearerAuth
// @Router /items [post]
func (h *inventoryHandler) createItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSKUTaken):
			logger.Warn("SKU conflict", slog.String("sku", req.SKU))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error creating item", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create item in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		}
		return
	}

	logger.Info("Item created successfully", slog.String("item_id", item.ItemID), slog.String("sku", item.SKU))
	c.JSON(http.StatusCreated, dto.ToItemResponse(item))
}

// listItems godoc
// @Summary List active inventory items
// @Tags inventory
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.ItemResponse
// @Security BearerAuth
// @Router /items [get]
func (h *inventoryHandler) listItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit, offset := parsePagination(c)

	items, err := h.inventoryService.ListItems(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list items from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.ToItemResponses(items)})
}

// getItem godoc
// @Summary Get an inventory item by ID
// @Tags inventory
// @Produce  json
// @Param   id path string true "Item ID"
// @Success 200 {object} dto.ItemResponse
// @Failure 404 {object} map[string]string "Item not found"
// @Security BearerAuth
// @Router /items/{id} [get]
func (h *inventoryHandler) getItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	itemID := c.Param("id")

	item, err := h.inventoryService.GetItemByID(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Item not found", slog.String("item_id", itemID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		} else {
			logger.Error("Failed to get item from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve item"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToItemResponse(item))
}

// listMovements godoc
// @Summary List the movement trail for an item
// @Description Retrieves stock movements for one item, newest first
// @Tags inventory
// @Produce  json
// @Param   id path string true "Item ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Success 200 {array} dto.MovementResponse
// @Failure 404 {object} map[string]string "Item not found"
// @Security BearerAuth
// @Router /items/{id}/movements [get]
func (h *inventoryHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	itemID := c.Param("id")

	limit, _ := parsePagination(c)

	movements, err := h.inventoryService.ListMovementsByItem(c.Request.Context(), itemID, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Item not found for movements", slog.String("item_id", itemID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		} else {
			logger.Error("Failed to list movements from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movements"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"movements": dto.ToMovementResponses(movements)})
}

// createWarehouse godoc
// @Summary Register a warehouse
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   warehouse body dto.CreateWarehouseRequest true "Warehouse details"
// @Success 201 {object} dto.WarehouseResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Security BearerAuth
// @Router /warehouses [post]
func (h *inventoryHandler) createWarehouse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateWarehouse", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	warehouse, err := h.inventoryService.CreateWarehouse(c.Request.Context(), req, userID)
	if err != nil {
		logger.Error("Failed to create warehouse in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create warehouse"})
		return
	}

	logger.Info("Warehouse created successfully", slog.String("warehouse_id", warehouse.WarehouseID))
	c.JSON(http.StatusCreated, dto.ToWarehouseResponse(warehouse))
}

// recordShrinkage godoc
// @Summary Write off lost, damaged or stolen stock
// @Description Deducts stock with an audited reason and posts the shrinkage expense
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   shrinkage body dto.RecordShrinkageRequest true "Write-off details"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid input or missing reason"
// @Failure 404 {object} map[string]string "Item or warehouse not found"
// @Failure 409 {object} map[string]string "Insufficient stock"
// @Security BearerAuth
// @Router /stock/shrinkage [post]
func (h *inventoryHandler) recordShrinkage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordShrinkageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordShrinkage", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("item_id", req.ItemID))
	logger.Info("Received request to record shrinkage", slog.Int64("quantity", req.Quantity), slog.String("reason", req.Reason))

	movement, err := h.inventoryService.RecordShrinkage(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Item or warehouse not found", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientStock), errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Shrinkage conflict", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrReasonRequired), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error recording shrinkage", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record shrinkage in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record shrinkage"})
		}
		return
	}

	logger.Info("Shrinkage recorded successfully", slog.String("movement_id", movement.MovementID))
	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

// transferStock godoc
// @Summary Transfer stock between warehouses
// @Description Moves stock atomically between two warehouses. No financial effect.
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferStockRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input or identical warehouses"
// @Failure 404 {object} map[string]string "Item or warehouse not found"
// @Failure 409 {object} map[string]string "Insufficient stock at source"
// @Security BearerAuth
// @Router /stock/transfers [post]
func (h *inventoryHandler) transferStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for TransferStock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("item_id", req.ItemID), slog.String("from", req.FromWarehouseID), slog.String("to", req.ToWarehouseID))
	logger.Info("Received request to transfer stock", slog.Int64("quantity", req.Quantity))

	transfer, err := h.inventoryService.TransferStock(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Item or warehouse not found", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientStock):
			logger.Warn("Insufficient stock at source", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrSameWarehouse), errors.Is(err, services.ErrWarehouseInactive), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error transferring stock", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to transfer stock in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer stock"})
		}
		return
	}

	logger.Info("Stock transferred successfully", slog.String("transfer_id", transfer.TransferID))
	c.JSON(http.StatusCreated, dto.ToTransferResponse(transfer))
}
