package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is the persistence shape of an aggregate stock record.
type InventoryItem struct {
	ItemID    string          `json:"itemID"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	IsActive  bool            `json:"isActive"`
	AuditFields
}

// Warehouse is the persistence shape of a stock location.
type Warehouse struct {
	WarehouseID string `json:"warehouseID"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// WarehouseStock is the per-warehouse quantity row for one item.
type WarehouseStock struct {
	WarehouseID string `json:"warehouseID"`
	ItemID      string `json:"itemID"`
	Quantity    int64  `json:"quantity"`
	AuditFields
}

// StockTransfer is the persistence shape of a warehouse-to-warehouse move.
type StockTransfer struct {
	TransferID      string `json:"transferID"`
	ItemID          string `json:"itemID"`
	FromWarehouseID string `json:"fromWarehouseID"`
	ToWarehouseID   string `json:"toWarehouseID"`
	Quantity        int64  `json:"quantity"`
	AuditFields
}

// StockMovement is one attributable quantity change row.
type StockMovement struct {
	MovementID  string    `json:"movementID"`
	ItemID      string    `json:"itemID"`
	WarehouseID *string   `json:"warehouseID"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	ReferenceID *string   `json:"referenceID"`
	Reason      string    `json:"reason"`
	ActorID     string    `json:"actorID"`
	OccurredAt  time.Time `json:"occurredAt"`
}
