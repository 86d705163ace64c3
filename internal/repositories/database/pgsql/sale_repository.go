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

// PgxSaleRepository persists sales.
type PgxSaleRepository struct {
	BaseRepository
}

func newPgxSaleRepository(pool *pgxpool.Pool) *PgxSaleRepository {
	return &PgxSaleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SaleRepositoryWithTx = (*PgxSaleRepository)(nil)

const saleColumns = `sale_id, receipt_number, item_id, quantity, unit_price, total, status, seller_id, posted_at, posted_by, cancelled_at, cancelled_by, created_at, created_by, last_updated_at, last_updated_by`

func scanSale(row rowScanner) (domain.Sale, error) {
	var modelSale models.Sale
	err := row.Scan(
		&modelSale.SaleID,
		&modelSale.ReceiptNumber,
		&modelSale.ItemID,
		&modelSale.Quantity,
		&modelSale.UnitPrice,
		&modelSale.Total,
		&modelSale.Status,
		&modelSale.SellerID,
		&modelSale.PostedAt,
		&modelSale.PostedBy,
		&modelSale.CancelledAt,
		&modelSale.CancelledBy,
		&modelSale.CreatedAt,
		&modelSale.CreatedBy,
		&modelSale.LastUpdatedAt,
		&modelSale.LastUpdatedBy,
	)
	if err != nil {
		return domain.Sale{}, err
	}
	return mapping.ToDomainSale(modelSale), nil
}

// FindSaleByID retrieves a sale by its identifier.
func (r *PgxSaleRepository) FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE sale_id = $1`

	sale, err := scanSale(r.Pool.QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID %s: %w", saleID, err)
	}
	return &sale, nil
}

// ListSales retrieves a page of sales, newest first.
func (r *PgxSaleRepository) ListSales(ctx context.Context, limit int, offset int) ([]domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	return sales, nil
}

// InsertSaleInTx persists a new sale within tx.
func (r *PgxSaleRepository) InsertSaleInTx(ctx context.Context, tx pgx.Tx, sale domain.Sale) error {
	modelSale := mapping.ToModelSale(sale)

	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := tx.Exec(ctx, query,
		modelSale.SaleID,
		modelSale.ReceiptNumber,
		modelSale.ItemID,
		modelSale.Quantity,
		modelSale.UnitPrice,
		modelSale.Total,
		modelSale.Status,
		modelSale.SellerID,
		modelSale.PostedAt,
		modelSale.PostedBy,
		modelSale.CancelledAt,
		modelSale.CancelledBy,
		modelSale.CreatedAt,
		modelSale.CreatedBy,
		modelSale.LastUpdatedAt,
		modelSale.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sale %s", apperrors.ErrDuplicate, modelSale.SaleID)
		}
		return fmt.Errorf("failed to insert sale %s: %w", modelSale.SaleID, err)
	}
	return nil
}

// FindSaleByIDForUpdate retrieves a sale and locks its row within tx.
func (r *PgxSaleRepository) FindSaleByIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE sale_id = $1 FOR UPDATE`

	sale, err := scanSale(tx.QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock sale %s: %w", saleID, err)
	}
	return &sale, nil
}

// FinishSaleInTx transitions PENDING -> terminal with a conditional update.
func (r *PgxSaleRepository) FinishSaleInTx(ctx context.Context, tx pgx.Tx, saleID string, status domain.SaleStatus, actorID string, now time.Time) (bool, error) {
	var query string
	switch status {
	case domain.SalePosted:
		query = `
			UPDATE sales
			SET status = 'POSTED', posted_at = $2, posted_by = $3, last_updated_at = $2, last_updated_by = $3
			WHERE sale_id = $1 AND status = 'PENDING'`
	case domain.SaleCancelled:
		query = `
			UPDATE sales
			SET status = 'CANCELLED', cancelled_at = $2, cancelled_by = $3, last_updated_at = $2, last_updated_by = $3
			WHERE sale_id = $1 AND status = 'PENDING'`
	default:
		return false, fmt.Errorf("%w: cannot finish sale into status %s", apperrors.ErrValidation, status)
	}

	cmdTag, err := tx.Exec(ctx, query, saleID, now, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to finish sale %s: %w", saleID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// NextReceiptNumberInTx reserves the next receipt number from the DB
// sequence.
func (r *PgxSaleRepository) NextReceiptNumberInTx(ctx context.Context, tx pgx.Tx) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('sale_receipt_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to reserve receipt number: %w", err)
	}
	return fmt.Sprintf("RCP-%06d", seq), nil
}
