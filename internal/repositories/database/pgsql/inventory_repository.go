package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	"github.com/fintrak/fintrak/internal/models"
	"github.com/fintrak/fintrak/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxInventoryRepository persists items, warehouses, stock levels and the
// movement trail.
type PgxInventoryRepository struct {
	BaseRepository
}

func newPgxInventoryRepository(pool *pgxpool.Pool) *PgxInventoryRepository {
	return &PgxInventoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InventoryRepositoryWithTx = (*PgxInventoryRepository)(nil)

const itemColumns = `item_id, sku, name, quantity, unit_cost, unit_price, is_active, created_at, created_by, last_updated_at, last_updated_by`

const warehouseColumns = `warehouse_id, name, location, is_active, created_at, created_by, last_updated_at, last_updated_by`

const movementColumns = `movement_id, item_id, warehouse_id, movement_type, quantity, reference_id, reason, actor_id, occurred_at`

func scanItem(row rowScanner) (domain.InventoryItem, error) {
	var modelItem models.InventoryItem
	err := row.Scan(
		&modelItem.ItemID,
		&modelItem.SKU,
		&modelItem.Name,
		&modelItem.Quantity,
		&modelItem.UnitCost,
		&modelItem.UnitPrice,
		&modelItem.IsActive,
		&modelItem.CreatedAt,
		&modelItem.CreatedBy,
		&modelItem.LastUpdatedAt,
		&modelItem.LastUpdatedBy,
	)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return mapping.ToDomainInventoryItem(modelItem), nil
}

func scanWarehouse(row rowScanner) (domain.Warehouse, error) {
	var modelWarehouse models.Warehouse
	err := row.Scan(
		&modelWarehouse.WarehouseID,
		&modelWarehouse.Name,
		&modelWarehouse.Location,
		&modelWarehouse.IsActive,
		&modelWarehouse.CreatedAt,
		&modelWarehouse.CreatedBy,
		&modelWarehouse.LastUpdatedAt,
		&modelWarehouse.LastUpdatedBy,
	)
	if err != nil {
		return domain.Warehouse{}, err
	}
	return mapping.ToDomainWarehouse(modelWarehouse), nil
}

func scanMovement(row rowScanner) (domain.StockMovement, error) {
	var modelMovement models.StockMovement
	err := row.Scan(
		&modelMovement.MovementID,
		&modelMovement.ItemID,
		&modelMovement.WarehouseID,
		&modelMovement.Type,
		&modelMovement.Quantity,
		&modelMovement.ReferenceID,
		&modelMovement.Reason,
		&modelMovement.ActorID,
		&modelMovement.OccurredAt,
	)
	if err != nil {
		return domain.StockMovement{}, err
	}
	return mapping.ToDomainStockMovement(modelMovement), nil
}

// FindItemByID retrieves an inventory item.
func (r *PgxInventoryRepository) FindItemByID(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE item_id = $1`

	item, err := scanItem(r.Pool.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find item by ID %s: %w", itemID, err)
	}
	return &item, nil
}

// ListItems retrieves a page of active items.
func (r *PgxInventoryRepository) ListItems(ctx context.Context, limit int, offset int) ([]domain.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE is_active = TRUE
		ORDER BY name, item_id
		LIMIT $1 OFFSET $2`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}

// FindWarehouseByID retrieves a warehouse.
func (r *PgxInventoryRepository) FindWarehouseByID(ctx context.Context, warehouseID string) (*domain.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE warehouse_id = $1`

	warehouse, err := scanWarehouse(r.Pool.QueryRow(ctx, query, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find warehouse by ID %s: %w", warehouseID, err)
	}
	return &warehouse, nil
}

// ListMovementsByItem retrieves the movement trail for an item, newest first.
func (r *PgxInventoryRepository) ListMovementsByItem(ctx context.Context, itemID string, limit int) ([]domain.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE item_id = $1
		ORDER BY occurred_at DESC, movement_id DESC
		LIMIT $2`

	rows, err := r.Pool.Query(ctx, query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements for item %s: %w", itemID, err)
	}
	defer rows.Close()

	movements := []domain.StockMovement{}
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, movement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}
	return movements, nil
}

// SaveItem persists a new inventory item.
func (r *PgxInventoryRepository) SaveItem(ctx context.Context, item domain.InventoryItem) error {
	modelItem := mapping.ToModelInventoryItem(item)

	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.Pool.Exec(ctx, query,
		modelItem.ItemID,
		modelItem.SKU,
		modelItem.Name,
		modelItem.Quantity,
		modelItem.UnitCost,
		modelItem.UnitPrice,
		modelItem.IsActive,
		modelItem.CreatedAt,
		modelItem.CreatedBy,
		modelItem.LastUpdatedAt,
		modelItem.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: SKU %s", apperrors.ErrDuplicate, modelItem.SKU)
		}
		return fmt.Errorf("failed to insert item %s: %w", modelItem.ItemID, err)
	}
	return nil
}

// SaveWarehouse persists a new warehouse.
func (r *PgxInventoryRepository) SaveWarehouse(ctx context.Context, warehouse domain.Warehouse) error {
	modelWarehouse := mapping.ToModelWarehouse(warehouse)

	query := `
		INSERT INTO warehouses (` + warehouseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.Pool.Exec(ctx, query,
		modelWarehouse.WarehouseID,
		modelWarehouse.Name,
		modelWarehouse.Location,
		modelWarehouse.IsActive,
		modelWarehouse.CreatedAt,
		modelWarehouse.CreatedBy,
		modelWarehouse.LastUpdatedAt,
		modelWarehouse.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: warehouse %s", apperrors.ErrDuplicate, modelWarehouse.WarehouseID)
		}
		return fmt.Errorf("failed to insert warehouse %s: %w", modelWarehouse.WarehouseID, err)
	}
	return nil
}

// DeductItemStockInTx decrements the aggregate quantity with a conditional
// update. The guard in the WHERE clause is what prevents overselling under
// concurrency, so a zero row count needs a second read to tell the caller
// which precondition failed.
func (r *PgxInventoryRepository) DeductItemStockInTx(ctx context.Context, tx pgx.Tx, itemID string, qty int64, userID string) error {
	query := `
		UPDATE inventory_items
		SET quantity = quantity - $2, last_updated_at = $3, last_updated_by = $4
		WHERE item_id = $1 AND is_active = TRUE AND quantity >= $2`

	cmdTag, err := tx.Exec(ctx, query, itemID, qty, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to deduct stock for item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	var quantity int64
	var isActive bool
	err = tx.QueryRow(ctx, `SELECT quantity, is_active FROM inventory_items WHERE item_id = $1 FOR UPDATE`, itemID).Scan(&quantity, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: item %s", apperrors.ErrNotFound, itemID)
		}
		return fmt.Errorf("failed to inspect stock for item %s: %w", itemID, err)
	}
	if !isActive {
		return fmt.Errorf("%w: item %s is inactive", apperrors.ErrConflict, itemID)
	}
	return fmt.Errorf("%w: item %s has %d on hand, requested %d", apperrors.ErrInsufficientStock, itemID, quantity, qty)
}

// RestoreItemStockInTx adds qty back to the aggregate quantity.
func (r *PgxInventoryRepository) RestoreItemStockInTx(ctx context.Context, tx pgx.Tx, itemID string, qty int64, userID string) error {
	query := `
		UPDATE inventory_items
		SET quantity = quantity + $2, last_updated_at = $3, last_updated_by = $4
		WHERE item_id = $1`

	cmdTag, err := tx.Exec(ctx, query, itemID, qty, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to restore stock for item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("%w: item %s", apperrors.ErrNotFound, itemID)
	}
	return nil
}

// DeductWarehouseStockInTx decrements a per-warehouse quantity with the same
// conditional-update guard as the aggregate deduction.
func (r *PgxInventoryRepository) DeductWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, itemID string, qty int64, userID string) error {
	query := `
		UPDATE warehouse_item_stocks
		SET quantity = quantity - $3, last_updated_at = $4, last_updated_by = $5
		WHERE warehouse_id = $1 AND item_id = $2 AND quantity >= $3`

	cmdTag, err := tx.Exec(ctx, query, warehouseID, itemID, qty, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to deduct warehouse stock for item %s in %s: %w", itemID, warehouseID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	var quantity int64
	err = tx.QueryRow(ctx, `SELECT quantity FROM warehouse_item_stocks WHERE warehouse_id = $1 AND item_id = $2 FOR UPDATE`, warehouseID, itemID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: item %s has no stock in warehouse %s, requested %d", apperrors.ErrInsufficientStock, itemID, warehouseID, qty)
		}
		return fmt.Errorf("failed to inspect warehouse stock for item %s in %s: %w", itemID, warehouseID, err)
	}
	return fmt.Errorf("%w: item %s has %d in warehouse %s, requested %d", apperrors.ErrInsufficientStock, itemID, quantity, warehouseID, qty)
}

// AddWarehouseStockInTx upserts qty into a per-warehouse quantity.
func (r *PgxInventoryRepository) AddWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, itemID string, qty int64, userID string) error {
	now := time.Now()
	query := `
		INSERT INTO warehouse_item_stocks (warehouse_id, item_id, quantity, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $4, $5)
		ON CONFLICT (warehouse_id, item_id)
		DO UPDATE SET quantity = warehouse_item_stocks.quantity + EXCLUDED.quantity,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by`

	_, err := tx.Exec(ctx, query, warehouseID, itemID, qty, now, userID)
	if err != nil {
		return fmt.Errorf("failed to add warehouse stock for item %s in %s: %w", itemID, warehouseID, err)
	}
	return nil
}

// InsertMovementInTx appends one stock movement row within tx.
func (r *PgxInventoryRepository) InsertMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	modelMovement := mapping.ToModelStockMovement(movement)

	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		modelMovement.MovementID,
		modelMovement.ItemID,
		modelMovement.WarehouseID,
		modelMovement.Type,
		modelMovement.Quantity,
		modelMovement.ReferenceID,
		modelMovement.Reason,
		modelMovement.ActorID,
		modelMovement.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement %s: %w", modelMovement.MovementID, err)
	}
	return nil
}

// InsertTransferInTx persists a warehouse-to-warehouse transfer within tx.
func (r *PgxInventoryRepository) InsertTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.StockTransfer) error {
	modelTransfer := mapping.ToModelStockTransfer(transfer)

	query := `
		INSERT INTO stock_transfers (transfer_id, item_id, from_warehouse_id, to_warehouse_id, quantity, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		modelTransfer.TransferID,
		modelTransfer.ItemID,
		modelTransfer.FromWarehouseID,
		modelTransfer.ToWarehouseID,
		modelTransfer.Quantity,
		modelTransfer.CreatedAt,
		modelTransfer.CreatedBy,
		modelTransfer.LastUpdatedAt,
		modelTransfer.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer %s: %w", modelTransfer.TransferID, err)
	}
	return nil
}
