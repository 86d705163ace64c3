package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/fintrak/fintrak/internal/middleware"
)

var (
	ErrSKUTaken          = errors.New("SKU is already in use")
	ErrWarehouseInactive = errors.New("warehouse is inactive")
	ErrSameWarehouse     = errors.New("transfer source and destination must differ")
	ErrReasonRequired    = errors.New("shrinkage requires a reason")
)

// inventoryService handles stock-keeping outside the sale flow: item and
// warehouse registration, shrinkage write-offs and transfers.
type inventoryService struct {
	inventoryRepo portsrepo.InventoryRepositoryWithTx
	chartSvc      portssvc.ChartSvcFacade
	journalSvc    portssvc.JournalSvcFacade
	publisher     portssvc.EventPublisher
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(
	inventoryRepo portsrepo.InventoryRepositoryWithTx,
	chartSvc portssvc.ChartSvcFacade,
	journalSvc portssvc.JournalSvcFacade,
	publisher portssvc.EventPublisher,
) portssvc.InventorySvcFacade {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		chartSvc:      chartSvc,
		journalSvc:    journalSvc,
		publisher:     publisher,
	}
}

var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

// CreateItem registers a new inventory item.
func (s *inventoryService) CreateItem(ctx context.Context, req dto.CreateItemRequest, userID string) (*domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", apperrors.ErrValidation)
	}
	if req.UnitCost.IsNegative() || req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: amounts must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	item := domain.InventoryItem{
		ItemID:    uuid.NewString(),
		SKU:       req.SKU,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		UnitPrice: req.UnitPrice,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.inventoryRepo.SaveItem(ctx, item); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrSKUTaken, req.SKU)
		}
		logger.Error("Failed to save item", slog.String("error", err.Error()), slog.String("sku", req.SKU))
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	logger.Info("Inventory item created", slog.String("item_id", item.ItemID), slog.String("sku", item.SKU))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "inventory_item", EntityID: item.ItemID, Action: "created", ActorID: userID})
	}
	return &item, nil
}

// GetItemByID retrieves an item by its identifier.
func (s *inventoryService) GetItemByID(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find item by ID", slog.String("error", err.Error()), slog.String("item_id", itemID))
		}
		return nil, fmt.Errorf("failed to find item %s: %w", itemID, err)
	}
	return item, nil
}

// ListItems retrieves a page of active items.
func (s *inventoryService) ListItems(ctx context.Context, limit int, offset int) ([]domain.InventoryItem, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.inventoryRepo.ListItems(ctx, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list items", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// CreateWarehouse registers a new warehouse.
func (s *inventoryService) CreateWarehouse(ctx context.Context, req dto.CreateWarehouseRequest, userID string) (*domain.Warehouse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	warehouse := domain.Warehouse{
		WarehouseID: uuid.NewString(),
		Name:        req.Name,
		Location:    req.Location,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.inventoryRepo.SaveWarehouse(ctx, warehouse); err != nil {
		logger.Error("Failed to save warehouse", slog.String("error", err.Error()), slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save warehouse: %w", err)
	}

	logger.Info("Warehouse created", slog.String("warehouse_id", warehouse.WarehouseID), slog.String("name", warehouse.Name))
	return &warehouse, nil
}

// RecordShrinkage writes off stock with an audited reason and posts the
// corresponding expense entry in the same transaction.
func (s *inventoryService) RecordShrinkage(ctx context.Context, req dto.RecordShrinkageRequest, userID string) (*domain.StockMovement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrQuantityInvalid, req.Quantity)
	}
	if req.Reason == "" {
		return nil, ErrReasonRequired
	}

	item, err := s.inventoryRepo.FindItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to find item %s: %w", req.ItemID, err)
	}

	now := time.Now().UTC()
	tx, err := s.inventoryRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.inventoryRepo.Rollback(ctx, tx)

	if err := s.inventoryRepo.DeductItemStockInTx(ctx, tx, req.ItemID, req.Quantity, userID); err != nil {
		return nil, fmt.Errorf("failed to deduct stock: %w", err)
	}
	if req.WarehouseID != nil {
		if err := s.inventoryRepo.DeductWarehouseStockInTx(ctx, tx, *req.WarehouseID, req.ItemID, req.Quantity, userID); err != nil {
			return nil, fmt.Errorf("failed to deduct warehouse stock: %w", err)
		}
	}

	movement := domain.StockMovement{
		MovementID:  uuid.NewString(),
		ItemID:      req.ItemID,
		WarehouseID: req.WarehouseID,
		Type:        domain.MovementShrinkage,
		Quantity:    -req.Quantity,
		Reason:      req.Reason,
		ActorID:     userID,
		OccurredAt:  now,
	}
	if err := s.inventoryRepo.InsertMovementInTx(ctx, tx, movement); err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	// A write-off has a financial effect only when the item carries a cost.
	cost := item.UnitCost.Mul(decimal.NewFromInt(req.Quantity))
	if cost.IsPositive() {
		shrinkage, err := s.chartSvc.ResolveAccountInTx(ctx, tx, shrinkageSpec(), userID)
		if err != nil {
			return nil, err
		}
		stock, err := s.chartSvc.ResolveAccountInTx(ctx, tx, inventoryAssetSpec(), userID)
		if err != nil {
			return nil, err
		}
		if _, err := s.journalSvc.CreatePostedEntryInTx(ctx, tx, dto.PostedEntrySpec{
			EntryDate:   now,
			Description: fmt.Sprintf("Shrinkage: %s (%s)", item.Name, req.Reason),
			Reference:   domain.InventoryRef(req.ItemID),
			Lines: []domain.JournalLine{
				{AccountID: shrinkage.AccountID, DebitAmount: cost},
				{AccountID: stock.AccountID, CreditAmount: cost},
			},
		}, userID); err != nil {
			return nil, err
		}
	}

	if err := s.inventoryRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit shrinkage: %w", err)
	}

	logger.Info("Shrinkage recorded",
		slog.String("item_id", req.ItemID),
		slog.Int64("quantity", req.Quantity),
		slog.String("reason", req.Reason))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "inventory_item", EntityID: req.ItemID, Action: "shrinkage", ActorID: userID})
	}
	return &movement, nil
}

// TransferStock moves stock between warehouses atomically. Transfers do not
// touch the aggregate item quantity, so no journal entry is written.
func (s *inventoryService) TransferStock(ctx context.Context, req dto.TransferStockRequest, userID string) (*domain.StockTransfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrQuantityInvalid, req.Quantity)
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, ErrSameWarehouse
	}

	for _, warehouseID := range []string{req.FromWarehouseID, req.ToWarehouseID} {
		warehouse, err := s.inventoryRepo.FindWarehouseByID(ctx, warehouseID)
		if err != nil {
			return nil, fmt.Errorf("failed to find warehouse %s: %w", warehouseID, err)
		}
		if !warehouse.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrWarehouseInactive, warehouseID)
		}
	}
	if _, err := s.inventoryRepo.FindItemByID(ctx, req.ItemID); err != nil {
		return nil, fmt.Errorf("failed to find item %s: %w", req.ItemID, err)
	}

	now := time.Now().UTC()
	transferID := uuid.NewString()

	tx, err := s.inventoryRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.inventoryRepo.Rollback(ctx, tx)

	if err := s.inventoryRepo.DeductWarehouseStockInTx(ctx, tx, req.FromWarehouseID, req.ItemID, req.Quantity, userID); err != nil {
		return nil, fmt.Errorf("failed to deduct source stock: %w", err)
	}
	if err := s.inventoryRepo.AddWarehouseStockInTx(ctx, tx, req.ToWarehouseID, req.ItemID, req.Quantity, userID); err != nil {
		return nil, fmt.Errorf("failed to add destination stock: %w", err)
	}

	transfer := domain.StockTransfer{
		TransferID:      transferID,
		ItemID:          req.ItemID,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		Quantity:        req.Quantity,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.inventoryRepo.InsertTransferInTx(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	out := domain.StockMovement{
		MovementID:  uuid.NewString(),
		ItemID:      req.ItemID,
		WarehouseID: &req.FromWarehouseID,
		Type:        domain.MovementTransferOut,
		Quantity:    -req.Quantity,
		ReferenceID: &transferID,
		ActorID:     userID,
		OccurredAt:  now,
	}
	in := domain.StockMovement{
		MovementID:  uuid.NewString(),
		ItemID:      req.ItemID,
		WarehouseID: &req.ToWarehouseID,
		Type:        domain.MovementTransferIn,
		Quantity:    req.Quantity,
		ReferenceID: &transferID,
		ActorID:     userID,
		OccurredAt:  now,
	}
	for _, movement := range []domain.StockMovement{out, in} {
		if err := s.inventoryRepo.InsertMovementInTx(ctx, tx, movement); err != nil {
			return nil, fmt.Errorf("failed to record stock movement: %w", err)
		}
	}

	if err := s.inventoryRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	logger.Info("Stock transferred",
		slog.String("transfer_id", transferID),
		slog.String("item_id", req.ItemID),
		slog.String("from", req.FromWarehouseID),
		slog.String("to", req.ToWarehouseID),
		slog.Int64("quantity", req.Quantity))
	return &transfer, nil
}

// ListMovementsByItem retrieves the movement trail for one item.
func (s *inventoryService) ListMovementsByItem(ctx context.Context, itemID string, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	movements, err := s.inventoryRepo.ListMovementsByItem(ctx, itemID, limit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list movements", slog.String("error", err.Error()), slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}
