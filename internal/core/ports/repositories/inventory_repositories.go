package repositories

import (
	"context"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InventoryReader defines read operations for inventory data.
type InventoryReader interface {
	// FindItemByID retrieves an inventory item.
	FindItemByID(ctx context.Context, itemID string) (*domain.InventoryItem, error)

	// ListItems retrieves a page of active items.
	ListItems(ctx context.Context, limit int, offset int) ([]domain.InventoryItem, error)

	// FindWarehouseByID retrieves a warehouse.
	FindWarehouseByID(ctx context.Context, warehouseID string) (*domain.Warehouse, error)

	// ListMovementsByItem retrieves the movement trail for an item, newest
	// first.
	ListMovementsByItem(ctx context.Context, itemID string, limit int) ([]domain.StockMovement, error)
}

// InventoryWriter defines write operations for inventory data.
type InventoryWriter interface {
	// SaveItem persists a new inventory item. Returns apperrors.ErrDuplicate
	// when the SKU is taken.
	SaveItem(ctx context.Context, item domain.InventoryItem) error

	// SaveWarehouse persists a new warehouse.
	SaveWarehouse(ctx context.Context, warehouse domain.Warehouse) error

	// DeductItemStockInTx atomically decrements the aggregate quantity,
	// conditional on quantity >= qty and the item being active. Returns
	// apperrors.ErrInsufficientStock or apperrors.ErrConflict (inactive)
	// when the condition fails.
	DeductItemStockInTx(ctx context.Context, tx pgx.Tx, itemID string, qty int64, userID string) error

	// RestoreItemStockInTx adds qty back to the aggregate quantity.
	RestoreItemStockInTx(ctx context.Context, tx pgx.Tx, itemID string, qty int64, userID string) error

	// DeductWarehouseStockInTx atomically decrements a per-warehouse quantity,
	// conditional on availability.
	DeductWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, itemID string, qty int64, userID string) error

	// AddWarehouseStockInTx upserts qty into a per-warehouse quantity.
	AddWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, itemID string, qty int64, userID string) error

	// InsertMovementInTx appends one stock movement row within tx.
	InsertMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error

	// InsertTransferInTx persists a warehouse-to-warehouse transfer within tx.
	InsertTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.StockTransfer) error
}

// InventoryRepositoryFacade combines all inventory-related repository
// interfaces.
type InventoryRepositoryFacade interface {
	InventoryReader
	InventoryWriter
}

// InventoryRepositoryWithTx extends InventoryRepositoryFacade with
// transaction capabilities.
type InventoryRepositoryWithTx interface {
	InventoryRepositoryFacade
	TransactionManager
}
