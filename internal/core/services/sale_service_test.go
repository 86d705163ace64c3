package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/core/services"
	"github.com/fintrak/fintrak/internal/dto"
)

// MockInventoryRepository is a mock type for the InventoryRepositoryWithTx interface
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) FindItemByID(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) ListItems(ctx context.Context, limit int, offset int) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) FindWarehouseByID(ctx context.Context, warehouseID string) (*domain.Warehouse, error) {
	args := m.Called(ctx, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Warehouse), args.Error(1)
}

func (m *MockInventoryRepository) ListMovementsByItem(ctx context.Context, itemID string, limit int) ([]domain.StockMovement, error) {
	args := m.Called(ctx, itemID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockInventoryRepository) SaveItem(ctx context.Context, item domain.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) SaveWarehouse(ctx context.Context, warehouse domain.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeductItemStockInTx(ctx context.Context, tx pgx.Tx, itemID string, qty int64, userID string) error {
	args := m.Called(ctx, tx, itemID, qty, userID)
	return args.Error(0)
}

func (m *MockInventoryRepository) RestoreItemStockInTx(ctx context.Context, tx pgx.Tx, itemID string, qty int64, userID string) error {
	args := m.Called(ctx, tx, itemID, qty, userID)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeductWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, itemID string, qty int64, userID string) error {
	args := m.Called(ctx, tx, warehouseID, itemID, qty, userID)
	return args.Error(0)
}

func (m *MockInventoryRepository) AddWarehouseStockInTx(ctx context.Context, tx pgx.Tx, warehouseID, itemID string, qty int64, userID string) error {
	args := m.Called(ctx, tx, warehouseID, itemID, qty, userID)
	return args.Error(0)
}

func (m *MockInventoryRepository) InsertMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	args := m.Called(ctx, tx, movement)
	return args.Error(0)
}

func (m *MockInventoryRepository) InsertTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.StockTransfer) error {
	args := m.Called(ctx, tx, transfer)
	return args.Error(0)
}

func (m *MockInventoryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockInventoryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInventoryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---

type SaleServiceTestSuite struct {
	suite.Suite
	mockSaleRepo   *MockSaleRepository
	mockInvRepo    *MockInventoryRepository
	mockChartSvc   *MockChartService
	mockJournalSvc *MockJournalService
	service        portssvc.SaleSvcFacade

	item *domain.InventoryItem
}

func (suite *SaleServiceTestSuite) SetupTest() {
	suite.mockSaleRepo = new(MockSaleRepository)
	suite.mockInvRepo = new(MockInventoryRepository)
	suite.mockChartSvc = new(MockChartService)
	suite.mockJournalSvc = new(MockJournalService)
	suite.service = services.NewSaleService(suite.mockSaleRepo, suite.mockInvRepo, suite.mockChartSvc, suite.mockJournalSvc, nil)

	suite.item = &domain.InventoryItem{
		ItemID:    uuid.NewString(),
		SKU:       "WID-001",
		Name:      "Widget",
		Quantity:  10,
		UnitCost:  decimal.NewFromInt(25),
		UnitPrice: decimal.NewFromInt(40),
		IsActive:  true,
	}
}

func (suite *SaleServiceTestSuite) pendingSale(sellerID string) *domain.Sale {
	return &domain.Sale{
		SaleID:        uuid.NewString(),
		ReceiptNumber: "RCP-000017",
		ItemID:        suite.item.ItemID,
		Quantity:      2,
		UnitPrice:     suite.item.UnitPrice,
		Total:         suite.item.UnitPrice.Mul(decimal.NewFromInt(2)),
		Status:        domain.SalePending,
		SellerID:      sellerID,
	}
}

// --- Test Cases ---

func (suite *SaleServiceTestSuite) TestCreateSale_Success() {
	ctx := context.Background()
	sellerID := uuid.NewString()
	req := dto.CreateSaleRequest{ItemID: suite.item.ItemID, Quantity: 2}

	suite.mockInvRepo.On("FindItemByID", ctx, suite.item.ItemID).Return(suite.item, nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockInvRepo.On("DeductItemStockInTx", ctx, nil, suite.item.ItemID, int64(2), sellerID).Return(nil).Once()
	suite.mockSaleRepo.On("NextReceiptNumberInTx", ctx, nil).Return("RCP-000018", nil).Once()
	suite.mockSaleRepo.On("InsertSaleInTx", ctx, nil, mock.MatchedBy(func(sale domain.Sale) bool {
		return sale.Status == domain.SalePending &&
			sale.Quantity == 2 &&
			sale.Total.Equal(decimal.NewFromInt(80)) &&
			sale.ReceiptNumber == "RCP-000018"
	})).Return(nil).Once()
	suite.mockInvRepo.On("InsertMovementInTx", ctx, nil, mock.MatchedBy(func(mv domain.StockMovement) bool {
		return mv.Type == domain.MovementSale && mv.Quantity == -2 && mv.ItemID == suite.item.ItemID
	})).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	sale, err := suite.service.CreateSale(ctx, req, sellerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(sale)
	suite.Equal(domain.SalePending, sale.Status)
	suite.Equal("RCP-000018", sale.ReceiptNumber)
	suite.True(sale.UnitPrice.Equal(decimal.NewFromInt(40)))
	suite.True(sale.Total.Equal(decimal.NewFromInt(80)))
	suite.Equal(sellerID, sale.SellerID)
	suite.mockSaleRepo.AssertExpectations(suite.T())
	suite.mockInvRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCreateSale_InsufficientStock() {
	ctx := context.Background()
	sellerID := uuid.NewString()
	req := dto.CreateSaleRequest{ItemID: suite.item.ItemID, Quantity: 99}

	suite.mockInvRepo.On("FindItemByID", ctx, suite.item.ItemID).Return(suite.item, nil).Once()
	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockInvRepo.On("DeductItemStockInTx", ctx, nil, suite.item.ItemID, int64(99), sellerID).
		Return(fmt.Errorf("item %s: %w", suite.item.ItemID, apperrors.ErrInsufficientStock)).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Once()

	sale, err := suite.service.CreateSale(ctx, req, sellerID)

	suite.Require().Error(err)
	suite.Nil(sale)
	suite.ErrorIs(err, apperrors.ErrInsufficientStock)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "InsertSaleInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCreateSale_InactiveItem() {
	ctx := context.Background()
	suite.item.IsActive = false
	req := dto.CreateSaleRequest{ItemID: suite.item.ItemID, Quantity: 1}

	suite.mockInvRepo.On("FindItemByID", ctx, suite.item.ItemID).Return(suite.item, nil).Once()

	sale, err := suite.service.CreateSale(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(sale)
	suite.ErrorIs(err, services.ErrItemInactive)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCreateSale_NonPositiveQuantity() {
	ctx := context.Background()
	req := dto.CreateSaleRequest{ItemID: suite.item.ItemID, Quantity: 0}

	sale, err := suite.service.CreateSale(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(sale)
	suite.ErrorIs(err, services.ErrQuantityInvalid)
	suite.mockInvRepo.AssertNotCalled(suite.T(), "FindItemByID", mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestPostSale_WritesRevenueAndCostRelief() {
	ctx := context.Background()
	userID := uuid.NewString()
	sale := suite.pendingSale(uuid.NewString())

	cashAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset}
	revenueAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Revenue}
	cogsAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Expense}
	stockAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset}

	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, nil, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FinishSaleInTx", ctx, nil, sale.SaleID, domain.SalePosted, userID, mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockInvRepo.On("FindItemByID", ctx, suite.item.ItemID).Return(suite.item, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "cash"
	}), userID).Return(cashAcc, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "sales_revenue"
	}), userID).Return(revenueAcc, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "cogs"
	}), userID).Return(cogsAcc, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "stock"
	}), userID).Return(stockAcc, nil).Once()
	// Revenue at 80 plus cost relief at 50 (2 x 25).
	suite.mockJournalSvc.On("CreatePostedEntryInTx", ctx, nil, mock.MatchedBy(func(spec dto.PostedEntrySpec) bool {
		return len(spec.Lines) == 4 &&
			spec.Lines[0].AccountID == cashAcc.AccountID &&
			spec.Lines[0].DebitAmount.Equal(decimal.NewFromInt(80)) &&
			spec.Lines[1].AccountID == revenueAcc.AccountID &&
			spec.Lines[1].CreditAmount.Equal(decimal.NewFromInt(80)) &&
			spec.Lines[2].AccountID == cogsAcc.AccountID &&
			spec.Lines[2].DebitAmount.Equal(decimal.NewFromInt(50)) &&
			spec.Lines[3].AccountID == stockAcc.AccountID &&
			spec.Lines[3].CreditAmount.Equal(decimal.NewFromInt(50)) &&
			spec.Reference.Type == domain.RefSale
	}), userID).Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	posted, err := suite.service.PostSale(ctx, sale.SaleID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	suite.Equal(domain.SalePosted, posted.Status)
	suite.Require().NotNil(posted.PostedBy)
	suite.Equal(userID, *posted.PostedBy)
	suite.mockChartSvc.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestPostSale_ZeroCostItemSkipsCostRelief() {
	ctx := context.Background()
	userID := uuid.NewString()
	sale := suite.pendingSale(uuid.NewString())
	suite.item.UnitCost = decimal.Zero

	cashAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset}
	revenueAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Revenue}

	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, nil, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FinishSaleInTx", ctx, nil, sale.SaleID, domain.SalePosted, userID, mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockInvRepo.On("FindItemByID", ctx, suite.item.ItemID).Return(suite.item, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "cash"
	}), userID).Return(cashAcc, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "sales_revenue"
	}), userID).Return(revenueAcc, nil).Once()
	suite.mockJournalSvc.On("CreatePostedEntryInTx", ctx, nil, mock.MatchedBy(func(spec dto.PostedEntrySpec) bool {
		return len(spec.Lines) == 2
	}), userID).Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	posted, err := suite.service.PostSale(ctx, sale.SaleID, userID)

	suite.Require().NoError(err)
	suite.Equal(domain.SalePosted, posted.Status)
	suite.mockChartSvc.AssertNumberOfCalls(suite.T(), "ResolveAccountInTx", 2)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestPostSale_CancelledSale() {
	ctx := context.Background()
	sale := suite.pendingSale(uuid.NewString())
	sale.Status = domain.SaleCancelled

	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, nil, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Once()

	posted, err := suite.service.PostSale(ctx, sale.SaleID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(posted)
	suite.ErrorIs(err, services.ErrSaleCancelled)
	suite.NotErrorIs(err, services.ErrSaleAlreadyPosted)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "FinishSaleInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestPostSale_AlreadyPosted() {
	ctx := context.Background()
	sale := suite.pendingSale(uuid.NewString())
	sale.Status = domain.SalePosted

	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, nil, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Once()

	posted, err := suite.service.PostSale(ctx, sale.SaleID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(posted)
	suite.ErrorIs(err, services.ErrSaleAlreadyPosted)
	suite.NotErrorIs(err, services.ErrSaleCancelled)
}

func (suite *SaleServiceTestSuite) TestCancelSale_RestoresStock() {
	ctx := context.Background()
	userID := uuid.NewString()
	sale := suite.pendingSale(uuid.NewString())

	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, nil, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("FinishSaleInTx", ctx, nil, sale.SaleID, domain.SaleCancelled, userID, mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockInvRepo.On("RestoreItemStockInTx", ctx, nil, sale.ItemID, int64(2), userID).Return(nil).Once()
	suite.mockInvRepo.On("InsertMovementInTx", ctx, nil, mock.MatchedBy(func(mv domain.StockMovement) bool {
		return mv.Type == domain.MovementSaleCancel && mv.Quantity == 2 && mv.ItemID == sale.ItemID
	})).Return(nil).Once()
	suite.mockSaleRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	cancelled, err := suite.service.CancelSale(ctx, sale.SaleID, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(cancelled)
	suite.Equal(domain.SaleCancelled, cancelled.Status)
	suite.Require().NotNil(cancelled.CancelledBy)
	suite.Equal(userID, *cancelled.CancelledBy)
	suite.mockInvRepo.AssertExpectations(suite.T())
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCancelSale_AlreadyPosted() {
	ctx := context.Background()
	sale := suite.pendingSale(uuid.NewString())
	sale.Status = domain.SalePosted

	suite.mockSaleRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSaleRepo.On("FindSaleByIDForUpdate", ctx, nil, sale.SaleID).Return(sale, nil).Once()
	suite.mockSaleRepo.On("Rollback", ctx, nil).Return(nil).Once()

	cancelled, err := suite.service.CancelSale(ctx, sale.SaleID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(cancelled)
	suite.ErrorIs(err, services.ErrSaleAlreadyPosted)
	suite.mockInvRepo.AssertNotCalled(suite.T(), "RestoreItemStockInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestListSales_DefaultsLimit() {
	ctx := context.Background()
	suite.mockSaleRepo.On("ListSales", ctx, 20, 0).Return([]domain.Sale{}, nil).Once()

	sales, err := suite.service.ListSales(ctx, 0, -1)

	suite.Require().NoError(err)
	suite.Empty(sales)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func TestSaleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SaleServiceTestSuite))
}
