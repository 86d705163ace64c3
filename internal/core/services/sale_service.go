package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/fintrak/fintrak/internal/middleware"
)

var (
	ErrSaleNotPending    = errors.New("sale is not pending")
	ErrSaleAlreadyPosted = errors.New("sale has already been posted")
	ErrSaleCancelled     = errors.New("sale has been cancelled")
	ErrItemInactive      = errors.New("inventory item is inactive")
	ErrQuantityInvalid   = errors.New("quantity must be positive")
)

// saleStateError picks the sentinel matching the sale's actual state so
// callers can tell an already-finished sale from one in flight.
func saleStateError(sale *domain.Sale) error {
	switch sale.Status {
	case domain.SalePosted:
		return fmt.Errorf("%w: sale %s", ErrSaleAlreadyPosted, sale.SaleID)
	case domain.SaleCancelled:
		return fmt.Errorf("%w: sale %s", ErrSaleCancelled, sale.SaleID)
	default:
		return fmt.Errorf("%w: sale %s is %s", ErrSaleNotPending, sale.SaleID, sale.Status)
	}
}

// saleService handles the sale lifecycle. Stock is reserved when the sale is
// created and either consumed by posting or returned by cancellation.
type saleService struct {
	saleRepo      portsrepo.SaleRepositoryWithTx
	inventoryRepo portsrepo.InventoryRepositoryWithTx
	chartSvc      portssvc.ChartSvcFacade
	journalSvc    portssvc.JournalSvcFacade
	publisher     portssvc.EventPublisher
}

// NewSaleService creates a new SaleService.
func NewSaleService(
	saleRepo portsrepo.SaleRepositoryWithTx,
	inventoryRepo portsrepo.InventoryRepositoryWithTx,
	chartSvc portssvc.ChartSvcFacade,
	journalSvc portssvc.JournalSvcFacade,
	publisher portssvc.EventPublisher,
) portssvc.SaleSvcFacade {
	return &saleService{
		saleRepo:      saleRepo,
		inventoryRepo: inventoryRepo,
		chartSvc:      chartSvc,
		journalSvc:    journalSvc,
		publisher:     publisher,
	}
}

var _ portssvc.SaleSvcFacade = (*saleService)(nil)

// CreateSale records a pending sale, deducting item stock up front. The
// conditional decrement is the oversell guard: two concurrent sales of the
// last unit cannot both succeed.
func (s *saleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest, sellerID string) (*domain.Sale, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrQuantityInvalid, req.Quantity)
	}

	item, err := s.inventoryRepo.FindItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to find item %s: %w", req.ItemID, err)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrItemInactive, req.ItemID)
	}

	now := time.Now().UTC()
	saleID := uuid.NewString()

	tx, err := s.saleRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.saleRepo.Rollback(ctx, tx)

	if err := s.inventoryRepo.DeductItemStockInTx(ctx, tx, req.ItemID, req.Quantity, sellerID); err != nil {
		if errors.Is(err, apperrors.ErrInsufficientStock) {
			logger.Warn("Sale rejected for insufficient stock", slog.String("item_id", req.ItemID), slog.Int64("quantity", req.Quantity))
		}
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	receiptNumber, err := s.saleRepo.NextReceiptNumberInTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve receipt number: %w", err)
	}

	sale := domain.Sale{
		SaleID:        saleID,
		ReceiptNumber: receiptNumber,
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		UnitPrice:     item.UnitPrice,
		Total:         item.UnitPrice.Mul(decimal.NewFromInt(req.Quantity)),
		Status:        domain.SalePending,
		SellerID:      sellerID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     sellerID,
			LastUpdatedAt: now,
			LastUpdatedBy: sellerID,
		},
	}
	if err := s.saleRepo.InsertSaleInTx(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	if err := s.inventoryRepo.InsertMovementInTx(ctx, tx, domain.StockMovement{
		MovementID:  uuid.NewString(),
		ItemID:      req.ItemID,
		Type:        domain.MovementSale,
		Quantity:    -req.Quantity,
		ReferenceID: &saleID,
		ActorID:     sellerID,
		OccurredAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	if err := s.saleRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	logger.Info("Sale created",
		slog.String("sale_id", saleID),
		slog.String("receipt_number", receiptNumber),
		slog.String("item_id", req.ItemID),
		slog.Int64("quantity", req.Quantity))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "sale", EntityID: saleID, Action: "created", ActorID: sellerID})
	}
	return &sale, nil
}

// PostSale moves a pending sale to posted inside its own transaction.
func (s *saleService) PostSale(ctx context.Context, saleID string, userID string) (*domain.Sale, error) {
	tx, err := s.saleRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.saleRepo.Rollback(ctx, tx)

	sale, err := s.PostSaleInTx(ctx, tx, saleID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.saleRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit sale posting: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Sale posted", slog.String("sale_id", saleID))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "sale", EntityID: saleID, Action: "posted", ActorID: userID})
	}
	return sale, nil
}

// PostSaleInTx flips a pending sale to posted and writes its ledger entry
// within tx: revenue at sale price plus cost relief at item cost.
func (s *saleService) PostSaleInTx(ctx context.Context, tx pgx.Tx, saleID string, userID string) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindSaleByIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale %s: %w", saleID, err)
	}
	if sale.Status != domain.SalePending {
		return nil, saleStateError(sale)
	}

	now := time.Now().UTC()
	ok, err := s.saleRepo.FinishSaleInTx(ctx, tx, saleID, domain.SalePosted, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to post sale: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", ErrSaleNotPending, saleID)
	}

	item, err := s.inventoryRepo.FindItemByID(ctx, sale.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to find item %s: %w", sale.ItemID, err)
	}

	cash, err := s.chartSvc.ResolveAccountInTx(ctx, tx, cashAccountSpec(), userID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.chartSvc.ResolveAccountInTx(ctx, tx, salesRevenueSpec(), userID)
	if err != nil {
		return nil, err
	}

	lines := []domain.JournalLine{
		{AccountID: cash.AccountID, DebitAmount: sale.Total},
		{AccountID: revenue.AccountID, CreditAmount: sale.Total},
	}

	// Cost relief only when the item carries a cost.
	cost := item.UnitCost.Mul(decimal.NewFromInt(sale.Quantity))
	if cost.IsPositive() {
		cogs, err := s.chartSvc.ResolveAccountInTx(ctx, tx, cogsSpec(), userID)
		if err != nil {
			return nil, err
		}
		stock, err := s.chartSvc.ResolveAccountInTx(ctx, tx, inventoryAssetSpec(), userID)
		if err != nil {
			return nil, err
		}
		lines = append(lines,
			domain.JournalLine{AccountID: cogs.AccountID, DebitAmount: cost},
			domain.JournalLine{AccountID: stock.AccountID, CreditAmount: cost},
		)
	}

	if _, err := s.journalSvc.CreatePostedEntryInTx(ctx, tx, dto.PostedEntrySpec{
		EntryDate:   now,
		Description: fmt.Sprintf("Sale %s", sale.ReceiptNumber),
		Reference:   domain.SaleRef(saleID),
		Lines:       lines,
	}, userID); err != nil {
		return nil, err
	}

	sale.Status = domain.SalePosted
	sale.PostedAt = &now
	sale.PostedBy = &userID
	sale.LastUpdatedAt = now
	sale.LastUpdatedBy = userID
	return sale, nil
}

// CancelSale cancels a pending sale and returns the reserved stock.
func (s *saleService) CancelSale(ctx context.Context, saleID string, userID string) (*domain.Sale, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	tx, err := s.saleRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.saleRepo.Rollback(ctx, tx)

	sale, err := s.saleRepo.FindSaleByIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale %s: %w", saleID, err)
	}
	if sale.Status != domain.SalePending {
		return nil, saleStateError(sale)
	}

	ok, err := s.saleRepo.FinishSaleInTx(ctx, tx, saleID, domain.SaleCancelled, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel sale: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: sale %s", ErrSaleNotPending, saleID)
	}

	if err := s.inventoryRepo.RestoreItemStockInTx(ctx, tx, sale.ItemID, sale.Quantity, userID); err != nil {
		return nil, fmt.Errorf("failed to restore stock: %w", err)
	}
	if err := s.inventoryRepo.InsertMovementInTx(ctx, tx, domain.StockMovement{
		MovementID:  uuid.NewString(),
		ItemID:      sale.ItemID,
		Type:        domain.MovementSaleCancel,
		Quantity:    sale.Quantity,
		ReferenceID: &saleID,
		ActorID:     userID,
		OccurredAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	if err := s.saleRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	sale.Status = domain.SaleCancelled
	sale.CancelledAt = &now
	sale.CancelledBy = &userID
	sale.LastUpdatedAt = now
	sale.LastUpdatedBy = userID

	logger.Info("Sale cancelled", slog.String("sale_id", saleID), slog.String("item_id", sale.ItemID))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "sale", EntityID: saleID, Action: "cancelled", ActorID: userID})
	}
	return sale, nil
}

// GetSaleByID retrieves a sale by its identifier.
func (s *saleService) GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find sale by ID", slog.String("error", err.Error()), slog.String("sale_id", saleID))
		}
		return nil, fmt.Errorf("failed to find sale %s: %w", saleID, err)
	}
	return sale, nil
}

// ListSales retrieves a page of sales, newest first.
func (s *saleService) ListSales(ctx context.Context, limit int, offset int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	sales, err := s.saleRepo.ListSales(ctx, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list sales", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}
