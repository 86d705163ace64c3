package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is the aggregate stock record for one sellable item.
// Quantity only moves through sale creation/cancellation, shrinkage and
// transfers; every change leaves a StockMovement behind.
type InventoryItem struct {
	ItemID    string          `json:"itemID"` // Primary Key (UUID)
	SKU       string          `json:"sku"`    // Unique stock-keeping unit
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"` // Aggregate on-hand quantity across warehouses
	UnitCost  decimal.Decimal `json:"unitCost"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	IsActive  bool            `json:"isActive"`
	AuditFields
}

// Warehouse is a physical stock location.
type Warehouse struct {
	WarehouseID string `json:"warehouseID"` // Primary Key (UUID)
	Name        string `json:"name"`
	Location    string `json:"location"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// WarehouseStock is the per-warehouse quantity of one item.
// Unique on (WarehouseID, ItemID).
type WarehouseStock struct {
	WarehouseID string `json:"warehouseID"`
	ItemID      string `json:"itemID"`
	Quantity    int64  `json:"quantity"`
	AuditFields
}

// StockTransfer moves quantity between two warehouses.
type StockTransfer struct {
	TransferID      string `json:"transferID"` // Primary Key (UUID)
	ItemID          string `json:"itemID"`
	FromWarehouseID string `json:"fromWarehouseID"`
	ToWarehouseID   string `json:"toWarehouseID"`
	Quantity        int64  `json:"quantity"`
	AuditFields
}

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementSale        MovementType = "SALE"
	MovementSaleCancel  MovementType = "SALE_CANCEL"
	MovementShrinkage   MovementType = "SHRINKAGE"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementAdjustment  MovementType = "ADJUSTMENT"
)

// StockMovement is one attributable change to an item's recorded quantity.
// The sum of all movement quantities for an item equals the net change of
// its Quantity since creation.
type StockMovement struct {
	MovementID  string       `json:"movementID"` // Primary Key (UUID)
	ItemID      string       `json:"itemID"`
	WarehouseID *string      `json:"warehouseID,omitempty"` // Nil for aggregate-only movements
	Type        MovementType `json:"type"`
	Quantity    int64        `json:"quantity"`    // Signed delta applied to the item quantity
	ReferenceID *string      `json:"referenceID"` // Sale, transfer or entry that caused the move
	Reason      string       `json:"reason,omitempty"`
	ActorID     string       `json:"actorID"`
	OccurredAt  time.Time    `json:"occurredAt"`
}
