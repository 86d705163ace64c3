package repositories

import (
	"context"
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// SaleReader defines read operations for sales.
type SaleReader interface {
	// FindSaleByID retrieves a sale by its identifier.
	FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)

	// ListSales retrieves a page of sales, newest first.
	ListSales(ctx context.Context, limit int, offset int) ([]domain.Sale, error)
}

// SaleWriter defines write operations for sales.
type SaleWriter interface {
	// InsertSaleInTx persists a new PENDING sale within tx.
	InsertSaleInTx(ctx context.Context, tx pgx.Tx, sale domain.Sale) error

	// FindSaleByIDForUpdate retrieves a sale and locks its row within tx.
	FindSaleByIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error)

	// FinishSaleInTx transitions PENDING -> terminal with a conditional
	// update on status. Returns false when the sale was not PENDING.
	FinishSaleInTx(ctx context.Context, tx pgx.Tx, saleID string, status domain.SaleStatus, actorID string, now time.Time) (bool, error)

	// NextReceiptNumberInTx reserves the next receipt number from the DB
	// sequence.
	NextReceiptNumberInTx(ctx context.Context, tx pgx.Tx) (string, error)
}

// SaleRepositoryFacade combines all sale-related repository interfaces.
type SaleRepositoryFacade interface {
	SaleReader
	SaleWriter
}

// SaleRepositoryWithTx extends SaleRepositoryFacade with transaction
// capabilities.
type SaleRepositoryWithTx interface {
	SaleRepositoryFacade
	TransactionManager
}
