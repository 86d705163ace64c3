package dto

import (
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateItemRequest defines the data needed to register an inventory item.
type CreateItemRequest struct {
	SKU       string          `json:"sku" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"gte=0"`
	UnitCost  decimal.Decimal `json:"unitCost" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateWarehouseRequest defines the data needed to register a warehouse.
type CreateWarehouseRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// RecordShrinkageRequest writes off stock that was lost, damaged or stolen.
type RecordShrinkageRequest struct {
	ItemID      string  `json:"itemID" binding:"required"`
	WarehouseID *string `json:"warehouseID"`
	Quantity    int64   `json:"quantity" binding:"required,gt=0"`
	Reason      string  `json:"reason" binding:"required"`
}

// TransferStockRequest moves stock between warehouses.
type TransferStockRequest struct {
	ItemID          string `json:"itemID" binding:"required"`
	FromWarehouseID string `json:"fromWarehouseID" binding:"required"`
	ToWarehouseID   string `json:"toWarehouseID" binding:"required,nefield=FromWarehouseID"`
	Quantity        int64  `json:"quantity" binding:"required,gt=0"`
}

// ItemResponse defines the data returned for an inventory item.
type ItemResponse struct {
	ItemID    string          `json:"itemID"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

// WarehouseResponse defines the data returned for a warehouse.
type WarehouseResponse struct {
	WarehouseID string    `json:"warehouseID"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MovementResponse defines the data returned for a stock movement.
type MovementResponse struct {
	MovementID  string              `json:"movementID"`
	ItemID      string              `json:"itemID"`
	WarehouseID *string             `json:"warehouseID,omitempty"`
	Type        domain.MovementType `json:"type"`
	Quantity    int64               `json:"quantity"`
	ReferenceID *string             `json:"referenceID,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	ActorID     string              `json:"actorID"`
	OccurredAt  time.Time           `json:"occurredAt"`
}

// TransferResponse defines the data returned for a stock transfer.
type TransferResponse struct {
	TransferID      string    `json:"transferID"`
	ItemID          string    `json:"itemID"`
	FromWarehouseID string    `json:"fromWarehouseID"`
	ToWarehouseID   string    `json:"toWarehouseID"`
	Quantity        int64     `json:"quantity"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToItemResponse converts a domain.InventoryItem to ItemResponse DTO.
func ToItemResponse(item *domain.InventoryItem) ItemResponse {
	return ItemResponse{
		ItemID:    item.ItemID,
		SKU:       item.SKU,
		Name:      item.Name,
		Quantity:  item.Quantity,
		UnitCost:  item.UnitCost,
		UnitPrice: item.UnitPrice,
		IsActive:  item.IsActive,
		CreatedAt: item.CreatedAt,
	}
}

// ToItemResponses converts a slice of domain.InventoryItem to []ItemResponse.
func ToItemResponses(items []domain.InventoryItem) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToItemResponse(&item)
	}
	return responses
}

// ToWarehouseResponse converts a domain.Warehouse to WarehouseResponse DTO.
func ToWarehouseResponse(wh *domain.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		WarehouseID: wh.WarehouseID,
		Name:        wh.Name,
		Location:    wh.Location,
		IsActive:    wh.IsActive,
		CreatedAt:   wh.CreatedAt,
	}
}

// ToMovementResponse converts a domain.StockMovement to MovementResponse DTO.
func ToMovementResponse(m *domain.StockMovement) MovementResponse {
	return MovementResponse{
		MovementID:  m.MovementID,
		ItemID:      m.ItemID,
		WarehouseID: m.WarehouseID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		ReferenceID: m.ReferenceID,
		Reason:      m.Reason,
		ActorID:     m.ActorID,
		OccurredAt:  m.OccurredAt,
	}
}

// ToMovementResponses converts a slice of domain.StockMovement to []MovementResponse.
func ToMovementResponses(ms []domain.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(ms))
	for i, m := range ms {
		responses[i] = ToMovementResponse(&m)
	}
	return responses
}

// ToTransferResponse converts a domain.StockTransfer to TransferResponse DTO.
func ToTransferResponse(t *domain.StockTransfer) TransferResponse {
	return TransferResponse{
		TransferID:      t.TransferID,
		ItemID:          t.ItemID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Quantity:        t.Quantity,
		CreatedAt:       t.CreatedAt,
	}
}
