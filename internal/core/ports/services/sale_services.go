package services

import (
	"context"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/jackc/pgx/v5"
)

// SaleTransactionSupport exposes sale posting inside a caller-owned
// transaction so the approval flow can flip a sale and finish its workflow
// atomically.
type SaleTransactionSupport interface {
	// PostSaleInTx flips a pending sale to posted and writes its ledger
	// entry within tx.
	PostSaleInTx(ctx context.Context, tx pgx.Tx, saleID string, userID string) (*domain.Sale, error)
}

// SaleSvcFacade covers the sale lifecycle and its inventory side effects.
type SaleSvcFacade interface {
	SaleTransactionSupport
	// CreateSale records a pending sale, decrementing item stock up front.
	CreateSale(ctx context.Context, req dto.CreateSaleRequest, sellerID string) (*domain.Sale, error)

	// PostSale moves a pending sale to posted and writes its ledger entry.
	PostSale(ctx context.Context, saleID string, userID string) (*domain.Sale, error)

	// CancelSale cancels a pending sale and restores the reserved stock.
	CancelSale(ctx context.Context, saleID string, userID string) (*domain.Sale, error)

	// GetSaleByID retrieves a sale by its identifier.
	GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)

	// ListSales retrieves a page of sales ordered by creation descending.
	ListSales(ctx context.Context, limit int, offset int) ([]domain.Sale, error)
}

// InventorySvcFacade covers stock-keeping operations outside the sale flow.
type InventorySvcFacade interface {
	// CreateItem registers a new inventory item.
	CreateItem(ctx context.Context, req dto.CreateItemRequest, userID string) (*domain.InventoryItem, error)

	// GetItemByID retrieves an item by its identifier.
	GetItemByID(ctx context.Context, itemID string) (*domain.InventoryItem, error)

	// ListItems retrieves a page of active items.
	ListItems(ctx context.Context, limit int, offset int) ([]domain.InventoryItem, error)

	// CreateWarehouse registers a new warehouse.
	CreateWarehouse(ctx context.Context, req dto.CreateWarehouseRequest, userID string) (*domain.Warehouse, error)

	// RecordShrinkage writes off stock with an audited reason and posts a
	// shrinkage expense entry.
	RecordShrinkage(ctx context.Context, req dto.RecordShrinkageRequest, userID string) (*domain.StockMovement, error)

	// TransferStock moves stock between warehouses atomically.
	TransferStock(ctx context.Context, req dto.TransferStockRequest, userID string) (*domain.StockTransfer, error)

	// ListMovementsByItem retrieves the movement trail for one item.
	ListMovementsByItem(ctx context.Context, itemID string, limit int) ([]domain.StockMovement, error)
}
