package mapping

import (
	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/models"
)

// ToModelSale converts a domain Sale to its model form.
func ToModelSale(d domain.Sale) models.Sale {
	return models.Sale{
		SaleID:        d.SaleID,
		ReceiptNumber: d.ReceiptNumber,
		ItemID:        d.ItemID,
		Quantity:      d.Quantity,
		UnitPrice:     d.UnitPrice,
		Total:         d.Total,
		Status:        string(d.Status),
		SellerID:      d.SellerID,
		PostedAt:      d.PostedAt,
		PostedBy:      d.PostedBy,
		CancelledAt:   d.CancelledAt,
		CancelledBy:   d.CancelledBy,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSale converts a model Sale to its domain form.
func ToDomainSale(m models.Sale) domain.Sale {
	return domain.Sale{
		SaleID:        m.SaleID,
		ReceiptNumber: m.ReceiptNumber,
		ItemID:        m.ItemID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Total:         m.Total,
		Status:        domain.SaleStatus(m.Status),
		SellerID:      m.SellerID,
		PostedAt:      m.PostedAt,
		PostedBy:      m.PostedBy,
		CancelledAt:   m.CancelledAt,
		CancelledBy:   m.CancelledBy,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
