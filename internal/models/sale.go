package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the persistence shape of a sale.
type Sale struct {
	SaleID        string          `json:"saleID"`
	ReceiptNumber string          `json:"receiptNumber"`
	ItemID        string          `json:"itemID"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	SellerID      string          `json:"sellerID"`
	PostedAt      *time.Time      `json:"postedAt"`
	PostedBy      *string         `json:"postedBy"`
	CancelledAt   *time.Time      `json:"cancelledAt"`
	CancelledBy   *string         `json:"cancelledBy"`
	AuditFields
}
