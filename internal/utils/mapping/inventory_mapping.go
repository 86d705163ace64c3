package mapping

import (
	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/models"
)

// ToModelInventoryItem converts a domain InventoryItem to its model form.
func ToModelInventoryItem(d domain.InventoryItem) models.InventoryItem {
	return models.InventoryItem{
		ItemID:      d.ItemID,
		SKU:         d.SKU,
		Name:        d.Name,
		Quantity:    d.Quantity,
		UnitCost:    d.UnitCost,
		UnitPrice:   d.UnitPrice,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInventoryItem converts a model InventoryItem to its domain form.
func ToDomainInventoryItem(m models.InventoryItem) domain.InventoryItem {
	return domain.InventoryItem{
		ItemID:      m.ItemID,
		SKU:         m.SKU,
		Name:        m.Name,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		UnitPrice:   m.UnitPrice,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelWarehouse converts a domain Warehouse to its model form.
func ToModelWarehouse(d domain.Warehouse) models.Warehouse {
	return models.Warehouse{
		WarehouseID: d.WarehouseID,
		Name:        d.Name,
		Location:    d.Location,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWarehouse converts a model Warehouse to its domain form.
func ToDomainWarehouse(m models.Warehouse) domain.Warehouse {
	return domain.Warehouse{
		WarehouseID: m.WarehouseID,
		Name:        m.Name,
		Location:    m.Location,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStockMovement converts a domain StockMovement to its model form.
func ToModelStockMovement(d domain.StockMovement) models.StockMovement {
	return models.StockMovement{
		MovementID:  d.MovementID,
		ItemID:      d.ItemID,
		WarehouseID: d.WarehouseID,
		Type:        string(d.Type),
		Quantity:    d.Quantity,
		ReferenceID: d.ReferenceID,
		Reason:      d.Reason,
		ActorID:     d.ActorID,
		OccurredAt:  d.OccurredAt,
	}
}

// ToDomainStockMovement converts a model StockMovement to its domain form.
func ToDomainStockMovement(m models.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		MovementID:  m.MovementID,
		ItemID:      m.ItemID,
		WarehouseID: m.WarehouseID,
		Type:        domain.MovementType(m.Type),
		Quantity:    m.Quantity,
		ReferenceID: m.ReferenceID,
		Reason:      m.Reason,
		ActorID:     m.ActorID,
		OccurredAt:  m.OccurredAt,
	}
}

// ToModelStockTransfer converts a domain StockTransfer to its model form.
func ToModelStockTransfer(d domain.StockTransfer) models.StockTransfer {
	return models.StockTransfer{
		TransferID:      d.TransferID,
		ItemID:          d.ItemID,
		FromWarehouseID: d.FromWarehouseID,
		ToWarehouseID:   d.ToWarehouseID,
		Quantity:        d.Quantity,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStockTransfer converts a model StockTransfer to its domain form.
func ToDomainStockTransfer(m models.StockTransfer) domain.StockTransfer {
	return domain.StockTransfer{
		TransferID:      m.TransferID,
		ItemID:          m.ItemID,
		FromWarehouseID: m.FromWarehouseID,
		ToWarehouseID:   m.ToWarehouseID,
		Quantity:        m.Quantity,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
