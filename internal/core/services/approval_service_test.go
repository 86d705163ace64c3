package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

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

// MockApprovalRepository is a mock type for the ApprovalRepositoryWithTx interface
type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) FindWorkflowByID(ctx context.Context, workflowID string) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *MockApprovalRepository) FindPendingBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalWorkflow), args.Error(1)
}

func (m *MockApprovalRepository) ListPendingByApprover(ctx context.Context, approverID string, limit int) ([]domain.ApprovalWorkflow, error) {
	args := m.Called(ctx, approverID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalWorkflow), args.Error(1)
}

func (m *MockApprovalRepository) SaveWorkflow(ctx context.Context, workflow domain.ApprovalWorkflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *MockApprovalRepository) FinishWorkflowInTx(ctx context.Context, tx pgx.Tx, workflowID string, status domain.WorkflowStatus, deciderID string, reason string, now time.Time) (bool, error) {
	args := m.Called(ctx, tx, workflowID, status, deciderID, reason, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockApprovalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockApprovalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockApprovalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockSourceRepository is a mock type for the SourceRepositoryFacade interface
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) FindRevenueByID(ctx context.Context, revenueID string) (*domain.RevenueEntry, error) {
	args := m.Called(ctx, revenueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueEntry), args.Error(1)
}

func (m *MockSourceRepository) MarkRevenueApprovedInTx(ctx context.Context, tx pgx.Tx, revenueID string, approvedBy string, now time.Time) (bool, error) {
	args := m.Called(ctx, tx, revenueID, approvedBy, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockSourceRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseEntry, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseEntry), args.Error(1)
}

func (m *MockSourceRepository) MarkExpenseApprovedInTx(ctx context.Context, tx pgx.Tx, expenseID string, approvedBy string, now time.Time) (bool, error) {
	args := m.Called(ctx, tx, expenseID, approvedBy, now)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindFirstByMinimumRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockSaleRepository is a mock type for the SaleRepositoryWithTx interface
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) ListSales(ctx context.Context, limit int, offset int) ([]domain.Sale, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) InsertSaleInTx(ctx context.Context, tx pgx.Tx, sale domain.Sale) error {
	args := m.Called(ctx, tx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) FindSaleByIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, tx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) FinishSaleInTx(ctx context.Context, tx pgx.Tx, saleID string, status domain.SaleStatus, actorID string, now time.Time) (bool, error) {
	args := m.Called(ctx, tx, saleID, status, actorID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockSaleRepository) NextReceiptNumberInTx(ctx context.Context, tx pgx.Tx) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *MockSaleRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockSaleRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockSaleRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockChartService is a mock type for the ChartSvcFacade interface
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockChartService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockChartService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

func (m *MockChartService) ResolveAccount(ctx context.Context, spec dto.ResolveAccountSpec, userID string) (*domain.Account, error) {
	args := m.Called(ctx, spec, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) ResolveAccountInTx(ctx context.Context, tx pgx.Tx, spec dto.ResolveAccountSpec, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, spec, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockJournalService is a mock type for the JournalSvcFacade interface
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockJournalService) ListLinesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var lines []domain.JournalLine
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.JournalLine)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return lines, token, args.Error(2)
}

func (m *MockJournalService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) CreatePostedEntryInTx(ctx context.Context, tx pgx.Tx, spec dto.PostedEntrySpec, creatorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, spec, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// MockSaleTxService is a mock type for the SaleTransactionSupport interface
type MockSaleTxService struct {
	mock.Mock
}

func (m *MockSaleTxService) PostSaleInTx(ctx context.Context, tx pgx.Tx, saleID string, userID string) (*domain.Sale, error) {
	args := m.Called(ctx, tx, saleID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

// --- Test Suite Setup ---

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockApprovalRepo *MockApprovalRepository
	mockSourceRepo   *MockSourceRepository
	mockSaleRepo     *MockSaleRepository
	mockUserRepo     *MockUserRepository
	mockChartSvc     *MockChartService
	mockJournalSvc   *MockJournalService
	mockSaleSvc      *MockSaleTxService
	service          portssvc.ApprovalSvcFacade

	requester *domain.User
	manager   *domain.User
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockApprovalRepo = new(MockApprovalRepository)
	suite.mockSourceRepo = new(MockSourceRepository)
	suite.mockSaleRepo = new(MockSaleRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockChartSvc = new(MockChartService)
	suite.mockJournalSvc = new(MockJournalService)
	suite.mockSaleSvc = new(MockSaleTxService)
	suite.service = services.NewApprovalService(
		suite.mockApprovalRepo,
		suite.mockSourceRepo,
		suite.mockSaleRepo,
		suite.mockUserRepo,
		suite.mockChartSvc,
		suite.mockJournalSvc,
		suite.mockSaleSvc,
		nil, // default policies
		domain.RoleManager,
		nil,
	)

	managerID := uuid.NewString()
	suite.manager = &domain.User{
		UserID:   managerID,
		Name:     "Morgan",
		Role:     domain.RoleManager,
		IsActive: true,
	}
	suite.requester = &domain.User{
		UserID:    uuid.NewString(),
		Name:      "Riley",
		Role:      domain.RoleStaff,
		ManagerID: &managerID,
		IsActive:  true,
	}
}

func (suite *ApprovalServiceTestSuite) pendingRevenue() *domain.RevenueEntry {
	return &domain.RevenueEntry{
		RevenueID: uuid.NewString(),
		Amount:    decimal.NewFromInt(500),
		Category:  "consulting",
		EntryDate: time.Now().UTC(),
		CreatedBy: suite.requester.UserID,
	}
}

func (suite *ApprovalServiceTestSuite) pendingWorkflow(sourceType domain.SourceType, sourceID string) *domain.ApprovalWorkflow {
	return &domain.ApprovalWorkflow{
		WorkflowID:  uuid.NewString(),
		SourceType:  sourceType,
		SourceID:    sourceID,
		Status:      domain.WorkflowPending,
		RequesterID: suite.requester.UserID,
		ApproverID:  &suite.manager.UserID,
		Priority:    domain.PriorityNormal,
	}
}

// --- Test Cases ---

func (suite *ApprovalServiceTestSuite) TestRequest_AssignsNearestManager() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	req := dto.RequestApprovalRequest{SourceType: domain.SourceRevenue, SourceID: doc.RevenueID}

	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockApprovalRepo.On("FindPendingBySource", ctx, domain.SourceRevenue, doc.RevenueID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockApprovalRepo.On("SaveWorkflow", ctx, mock.AnythingOfType("domain.ApprovalWorkflow")).Return(nil).Once()

	workflow, err := suite.service.Request(ctx, req, suite.requester.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workflow)
	suite.Equal(domain.WorkflowPending, workflow.Status)
	suite.Equal(domain.PriorityNormal, workflow.Priority) // defaulted
	suite.Require().NotNil(workflow.ApproverID)
	suite.Equal(suite.manager.UserID, *workflow.ApproverID)
	suite.Equal(suite.requester.UserID, workflow.RequesterID)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindFirstByMinimumRole", mock.Anything, mock.Anything)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequest_SkipsInactiveManager() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	req := dto.RequestApprovalRequest{SourceType: domain.SourceRevenue, SourceID: doc.RevenueID}

	directorID := uuid.NewString()
	director := &domain.User{UserID: directorID, Role: domain.RoleDirector, IsActive: true}
	suite.manager.IsActive = false
	suite.manager.ManagerID = &directorID

	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockApprovalRepo.On("FindPendingBySource", ctx, domain.SourceRevenue, doc.RevenueID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, directorID).Return(director, nil).Once()
	suite.mockApprovalRepo.On("SaveWorkflow", ctx, mock.AnythingOfType("domain.ApprovalWorkflow")).Return(nil).Once()

	workflow, err := suite.service.Request(ctx, req, suite.requester.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workflow.ApproverID)
	suite.Equal(directorID, *workflow.ApproverID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequest_FallsBackToFloorRole() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	req := dto.RequestApprovalRequest{SourceType: domain.SourceRevenue, SourceID: doc.RevenueID}

	suite.requester.ManagerID = nil
	admin := &domain.User{UserID: uuid.NewString(), Role: domain.RoleAdmin, IsActive: true}

	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockApprovalRepo.On("FindPendingBySource", ctx, domain.SourceRevenue, doc.RevenueID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockUserRepo.On("FindFirstByMinimumRole", ctx, domain.RoleManager).Return(admin, nil).Once()
	suite.mockApprovalRepo.On("SaveWorkflow", ctx, mock.AnythingOfType("domain.ApprovalWorkflow")).Return(nil).Once()

	workflow, err := suite.service.Request(ctx, req, suite.requester.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workflow.ApproverID)
	suite.Equal(admin.UserID, *workflow.ApproverID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequest_NoApproverAvailable() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	req := dto.RequestApprovalRequest{SourceType: domain.SourceRevenue, SourceID: doc.RevenueID}

	suite.requester.ManagerID = nil

	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockApprovalRepo.On("FindPendingBySource", ctx, domain.SourceRevenue, doc.RevenueID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockUserRepo.On("FindFirstByMinimumRole", ctx, domain.RoleManager).Return(nil, apperrors.ErrNotFound).Once()

	workflow, err := suite.service.Request(ctx, req, suite.requester.UserID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, services.ErrNoApproverAvailable)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "SaveWorkflow", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestRequest_SourceAlreadyApproved() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	doc.IsApproved = true
	req := dto.RequestApprovalRequest{SourceType: domain.SourceRevenue, SourceID: doc.RevenueID}

	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()

	workflow, err := suite.service.Request(ctx, req, suite.requester.UserID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, services.ErrSourceAlreadyApproved)
}

func (suite *ApprovalServiceTestSuite) TestRequest_DuplicatePendingWorkflow() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	existing := suite.pendingWorkflow(domain.SourceRevenue, doc.RevenueID)
	req := dto.RequestApprovalRequest{SourceType: domain.SourceRevenue, SourceID: doc.RevenueID}

	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockApprovalRepo.On("FindPendingBySource", ctx, domain.SourceRevenue, doc.RevenueID).Return(existing, nil).Once()

	workflow, err := suite.service.Request(ctx, req, suite.requester.UserID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, services.ErrApprovalExists)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "SaveWorkflow", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestRequest_LosesDuplicateRace() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	req := dto.RequestApprovalRequest{SourceType: domain.SourceRevenue, SourceID: doc.RevenueID}

	// Pre-check misses but a concurrent request wins the partial unique index.
	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockApprovalRepo.On("FindPendingBySource", ctx, domain.SourceRevenue, doc.RevenueID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockApprovalRepo.On("SaveWorkflow", ctx, mock.AnythingOfType("domain.ApprovalWorkflow")).
		Return(fmt.Errorf("pending workflow exists: %w", apperrors.ErrDuplicate)).Once()

	workflow, err := suite.service.Request(ctx, req, suite.requester.UserID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, services.ErrApprovalExists)
}

func (suite *ApprovalServiceTestSuite) TestDecide_ApproveRevenue_FlipsDocAndPostsEntry() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, doc.RevenueID)

	cashAcc := &domain.Account{AccountID: uuid.NewString(), Code: "1000", AccountType: domain.Asset, IsActive: true}
	revenueAcc := &domain.Account{AccountID: uuid.NewString(), Code: "4100", AccountType: domain.Revenue, IsActive: true}

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Twice()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockApprovalRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockApprovalRepo.On("FinishWorkflowInTx", ctx, nil, workflow.WorkflowID, domain.WorkflowApproved, suite.manager.UserID, "", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockSourceRepo.On("MarkRevenueApprovedInTx", ctx, nil, doc.RevenueID, suite.manager.UserID, mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "cash"
	}), suite.manager.UserID).Return(cashAcc, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Module == "revenue" && spec.Category == "consulting"
	}), suite.manager.UserID).Return(revenueAcc, nil).Once()
	suite.mockJournalSvc.On("CreatePostedEntryInTx", ctx, nil, mock.MatchedBy(func(spec dto.PostedEntrySpec) bool {
		return len(spec.Lines) == 2 &&
			spec.Lines[0].AccountID == cashAcc.AccountID &&
			spec.Lines[0].DebitAmount.Equal(doc.Amount) &&
			spec.Lines[1].AccountID == revenueAcc.AccountID &&
			spec.Lines[1].CreditAmount.Equal(doc.Amount) &&
			spec.Reference.Type == domain.RefRevenue
	}), suite.manager.UserID).Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockApprovalRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockApprovalRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionApprove}, suite.manager.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(decided)
	suite.Equal(domain.WorkflowApproved, decided.Status)
	suite.Require().NotNil(decided.DecidedAt)
	suite.Equal(suite.manager.UserID, *decided.ApproverID)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
	suite.mockSourceRepo.AssertExpectations(suite.T())
	suite.mockChartSvc.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestDecide_ApproveExpense_DebitsExpenseCreditsCash() {
	ctx := context.Background()
	doc := &domain.ExpenseEntry{
		ExpenseID: uuid.NewString(),
		Amount:    decimal.NewFromInt(120),
		Category:  "travel",
		EntryDate: time.Now().UTC(),
		CreatedBy: suite.requester.UserID,
	}
	workflow := suite.pendingWorkflow(domain.SourceExpense, doc.ExpenseID)

	cashAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, IsActive: true}
	expenseAcc := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Expense, IsActive: true}

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockSourceRepo.On("FindExpenseByID", ctx, doc.ExpenseID).Return(doc, nil).Twice()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockApprovalRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockApprovalRepo.On("FinishWorkflowInTx", ctx, nil, workflow.WorkflowID, domain.WorkflowApproved, suite.manager.UserID, "", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockSourceRepo.On("MarkExpenseApprovedInTx", ctx, nil, doc.ExpenseID, suite.manager.UserID, mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Category == "cash"
	}), suite.manager.UserID).Return(cashAcc, nil).Once()
	suite.mockChartSvc.On("ResolveAccountInTx", ctx, nil, mock.MatchedBy(func(spec dto.ResolveAccountSpec) bool {
		return spec.Module == "expense" && spec.Category == "travel"
	}), suite.manager.UserID).Return(expenseAcc, nil).Once()
	suite.mockJournalSvc.On("CreatePostedEntryInTx", ctx, nil, mock.MatchedBy(func(spec dto.PostedEntrySpec) bool {
		return len(spec.Lines) == 2 &&
			spec.Lines[0].AccountID == expenseAcc.AccountID &&
			spec.Lines[0].DebitAmount.Equal(doc.Amount) &&
			spec.Lines[1].AccountID == cashAcc.AccountID &&
			spec.Lines[1].CreditAmount.Equal(doc.Amount)
	}), suite.manager.UserID).Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockApprovalRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockApprovalRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionApprove}, suite.manager.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.WorkflowApproved, decided.Status)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestDecide_ApproveSale_DelegatesToSaleService() {
	ctx := context.Background()
	saleID := uuid.NewString()
	sale := &domain.Sale{
		SaleID:   saleID,
		ItemID:   uuid.NewString(),
		Quantity: 2,
		Total:    decimal.NewFromInt(80),
		Status:   domain.SalePending,
		SellerID: suite.requester.UserID,
	}
	workflow := suite.pendingWorkflow(domain.SourceSale, saleID)

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, saleID).Return(sale, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockApprovalRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockApprovalRepo.On("FinishWorkflowInTx", ctx, nil, workflow.WorkflowID, domain.WorkflowApproved, suite.manager.UserID, "", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockSaleSvc.On("PostSaleInTx", ctx, nil, saleID, suite.manager.UserID).
		Return(&domain.Sale{SaleID: saleID, Status: domain.SalePosted}, nil).Once()
	suite.mockApprovalRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockApprovalRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionApprove}, suite.manager.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.WorkflowApproved, decided.Status)
	suite.mockSaleSvc.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestDecide_RejectionRequiresReason() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, doc.RevenueID)

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionReject}, suite.manager.UserID)

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, services.ErrRejectionReasonRequired)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecide_RejectLeavesSourceUntouched() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, doc.RevenueID)

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockApprovalRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockApprovalRepo.On("FinishWorkflowInTx", ctx, nil, workflow.WorkflowID, domain.WorkflowRejected, suite.manager.UserID, "amount disputed", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockApprovalRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockApprovalRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionReject, Reason: "amount disputed"}, suite.manager.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.WorkflowRejected, decided.Status)
	suite.Equal("amount disputed", decided.RejectionReason)
	suite.mockSourceRepo.AssertNotCalled(suite.T(), "MarkRevenueApprovedInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreatePostedEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestDecide_StaffOffChainNotAuthorized() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, doc.RevenueID)
	outsider := &domain.User{UserID: uuid.NewString(), Role: domain.RoleStaff, IsActive: true}

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, outsider.UserID).Return(outsider, nil).Once()
	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionApprove}, outsider.UserID)

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, services.ErrNotAuthorizedToDecide)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecide_ExpenseSelfApprovalBlocked() {
	ctx := context.Background()
	// The manager authored the expense themselves; rank does not exempt
	// them from the four-eyes rule on expenses.
	doc := &domain.ExpenseEntry{
		ExpenseID: uuid.NewString(),
		Amount:    decimal.NewFromInt(75),
		Category:  "meals",
		EntryDate: time.Now().UTC(),
		CreatedBy: suite.manager.UserID,
	}
	workflow := suite.pendingWorkflow(domain.SourceExpense, doc.ExpenseID)

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockSourceRepo.On("FindExpenseByID", ctx, doc.ExpenseID).Return(doc, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionApprove}, suite.manager.UserID)

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, services.ErrSelfApproval)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecide_LosesConcurrentRace() {
	ctx := context.Background()
	doc := suite.pendingRevenue()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, doc.RevenueID)

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.manager.UserID).Return(suite.manager, nil).Once()
	suite.mockSourceRepo.On("FindRevenueByID", ctx, doc.RevenueID).Return(doc, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requester.UserID).Return(suite.requester, nil).Once()
	suite.mockApprovalRepo.On("Begin", ctx).Return(nil, nil).Once()
	// Another decider finished the workflow between our read and the update.
	suite.mockApprovalRepo.On("FinishWorkflowInTx", ctx, nil, workflow.WorkflowID, domain.WorkflowApproved, suite.manager.UserID, "", mock.AnythingOfType("time.Time")).
		Return(false, nil).Once()
	suite.mockApprovalRepo.On("Rollback", ctx, nil).Return(nil).Once()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionApprove}, suite.manager.UserID)

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, services.ErrWorkflowNotPending)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockSourceRepo.AssertNotCalled(suite.T(), "MarkRevenueApprovedInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecide_NotPendingWorkflow() {
	ctx := context.Background()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, uuid.NewString())
	workflow.Status = domain.WorkflowApproved

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()

	decided, err := suite.service.Decide(ctx, workflow.WorkflowID, dto.DecideApprovalRequest{Decision: domain.DecisionApprove}, suite.manager.UserID)

	suite.Require().Error(err)
	suite.Nil(decided)
	suite.ErrorIs(err, services.ErrWorkflowNotPending)
}

func (suite *ApprovalServiceTestSuite) TestCancel_OnlyRequesterMayCancel() {
	ctx := context.Background()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, uuid.NewString())

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()

	cancelled, err := suite.service.Cancel(ctx, workflow.WorkflowID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(cancelled)
	suite.ErrorIs(err, services.ErrOnlyRequesterMayCancel)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestCancel_Success() {
	ctx := context.Background()
	workflow := suite.pendingWorkflow(domain.SourceRevenue, uuid.NewString())

	suite.mockApprovalRepo.On("FindWorkflowByID", ctx, workflow.WorkflowID).Return(workflow, nil).Once()
	suite.mockApprovalRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockApprovalRepo.On("FinishWorkflowInTx", ctx, nil, workflow.WorkflowID, domain.WorkflowCancelled, suite.requester.UserID, "", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockApprovalRepo.On("Commit", ctx, nil).Return(nil).Once()
	suite.mockApprovalRepo.On("Rollback", ctx, nil).Return(nil).Maybe()

	cancelled, err := suite.service.Cancel(ctx, workflow.WorkflowID, suite.requester.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(cancelled)
	suite.Equal(domain.WorkflowCancelled, cancelled.Status)
	// Cancelling keeps the assigned approver on record.
	suite.Require().NotNil(cancelled.ApproverID)
	suite.Equal(suite.manager.UserID, *cancelled.ApproverID)
	suite.Equal(suite.requester.UserID, cancelled.LastUpdatedBy)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
