package dto

import (
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest defines the data needed to record a sale.
type CreateSaleRequest struct {
	ItemID   string `json:"itemID" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// SaleResponse defines the data returned for a sale.
type SaleResponse struct {
	SaleID        string            `json:"saleID"`
	ReceiptNumber string            `json:"receiptNumber"`
	ItemID        string            `json:"itemID"`
	Quantity      int64             `json:"quantity"`
	UnitPrice     decimal.Decimal   `json:"unitPrice"`
	Total         decimal.Decimal   `json:"total"`
	Status        domain.SaleStatus `json:"status"`
	SellerID      string            `json:"sellerID"`
	PostedAt      *time.Time        `json:"postedAt,omitempty"`
	PostedBy      *string           `json:"postedBy,omitempty"`
	CancelledAt   *time.Time        `json:"cancelledAt,omitempty"`
	CancelledBy   *string           `json:"cancelledBy,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// ToSaleResponse converts a domain.Sale to SaleResponse DTO.
func ToSaleResponse(sale *domain.Sale) SaleResponse {
	return SaleResponse{
		SaleID:        sale.SaleID,
		ReceiptNumber: sale.ReceiptNumber,
		ItemID:        sale.ItemID,
		Quantity:      sale.Quantity,
		UnitPrice:     sale.UnitPrice,
		Total:         sale.Total,
		Status:        sale.Status,
		SellerID:      sale.SellerID,
		PostedAt:      sale.PostedAt,
		PostedBy:      sale.PostedBy,
		CancelledAt:   sale.CancelledAt,
		CancelledBy:   sale.CancelledBy,
		CreatedAt:     sale.CreatedAt,
	}
}

// ToSaleResponses converts a slice of domain.Sale to []SaleResponse.
func ToSaleResponses(sales []domain.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i, sale := range sales {
		responses[i] = ToSaleResponse(&sale)
	}
	return responses
}
