package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of a sale.
// PENDING -> POSTED or PENDING -> CANCELLED; both terminal. A posted sale is
// corrected via journal reversal plus an explicit stock adjustment, never by
// cancellation.
type SaleStatus string

const (
	SalePending   SaleStatus = "PENDING"
	SalePosted    SaleStatus = "POSTED"
	SaleCancelled SaleStatus = "CANCELLED"
)

// Sale records a quantity of an inventory item leaving stock. Stock is
// deducted at creation time, before any financial posting, because the goods
// are physically gone once sold.
type Sale struct {
	SaleID        string          `json:"saleID"`        // Primary Key (UUID)
	ReceiptNumber string          `json:"receiptNumber"` // Unique human-readable number, e.g. "RCP-000017"
	ItemID        string          `json:"itemID"`        // FK -> inventory_items.item_id
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"` // Captured from the item at sale time
	Total         decimal.Decimal `json:"total"`     // Quantity x UnitPrice
	Status        SaleStatus      `json:"status"`
	SellerID      string          `json:"sellerID"`
	PostedAt      *time.Time      `json:"postedAt,omitempty"`
	PostedBy      *string         `json:"postedBy,omitempty"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy   *string         `json:"cancelledBy,omitempty"`
	AuditFields
}
