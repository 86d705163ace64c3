package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/core/services"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/fintrak/fintrak/internal/handlers"
	"github.com/fintrak/fintrak/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ChartService ---
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

// Ensure mock implements the interface
var _ portssvc.ChartSvcFacade = (*MockChartService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockChartService *MockChartService
	jwtSecret        string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *AccountHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "fintrak-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockChartService = new(MockChartService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret}
	// Only the chart service is exercised here; the remaining facades stay
	// nil because their routes are never hit.
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		ChartSvc: suite.mockChartService,
	})
}

func (suite *AccountHandlerTestSuite) newAuthedRequest(method, url string, body any, userID string) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	userID := uuid.NewString()
	reqBody := dto.CreateAccountRequest{
		Code:         "1010",
		Name:         "Operating Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}
	created := &domain.Account{
		AccountID:    uuid.NewString(),
		Code:         "1010",
		Name:         "Operating Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
		Balance:      decimal.Zero,
	}

	suite.mockChartService.On("CreateAccount",
		mock.AnythingOfType("*context.valueCtx"),
		mock.MatchedBy(func(r dto.CreateAccountRequest) bool {
			return r.Code == "1010" && r.AccountType == domain.Asset
		}),
		userID,
	).Return(created, nil).Once()

	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/accounts", reqBody, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.AccountID, resp.AccountID)
	suite.Equal("1010", resp.Code)
	suite.Equal(domain.Asset, resp.AccountType)
	suite.True(resp.IsActive)

	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateCodeConflicts() {
	userID := uuid.NewString()
	reqBody := dto.CreateAccountRequest{
		Code:         "1010",
		Name:         "Operating Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}

	suite.mockChartService.On("CreateAccount",
		mock.AnythingOfType("*context.valueCtx"),
		mock.Anything,
		userID,
	).Return(nil, services.ErrAccountCodeTaken).Once()

	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/accounts", reqBody, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_MissingTokenUnauthorized() {
	reqBody := dto.CreateAccountRequest{
		Code:         "1010",
		Name:         "Operating Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}
	raw, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockChartService.AssertNotCalled(suite.T(), "CreateAccount")
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidTypeRejected() {
	userID := uuid.NewString()
	reqBody := map[string]any{
		"code":         "1010",
		"name":         "Operating Cash",
		"accountType":  "GOODWILL",
		"currencyCode": "USD",
	}

	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/accounts", reqBody, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	// Binding rejects the unknown account type before the service is reached.
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockChartService.AssertNotCalled(suite.T(), "CreateAccount")
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockChartService.On("GetAccountByID",
		mock.AnythingOfType("*context.valueCtx"),
		accountID,
	).Return(nil, apperrors.ErrNotFound).Once()

	url := fmt.Sprintf("/api/v1/accounts/%s", accountID)
	req := suite.newAuthedRequest(http.MethodGet, url, nil, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListAccounts_Success() {
	userID := uuid.NewString()
	accounts := []domain.Account{
		{AccountID: uuid.NewString(), Code: "1010", Name: "Operating Cash", AccountType: domain.Asset, CurrencyCode: "USD", IsActive: true},
		{AccountID: uuid.NewString(), Code: "4000", Name: "Sales Revenue", AccountType: domain.Revenue, CurrencyCode: "USD", IsActive: true},
	}

	suite.mockChartService.On("ListAccounts",
		mock.AnythingOfType("*context.valueCtx"),
		10, 0,
	).Return(accounts, nil).Once()

	req := suite.newAuthedRequest(http.MethodGet, "/api/v1/accounts?limit=10", nil, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp struct {
		Accounts []dto.AccountResponse `json:"accounts"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Accounts, 2)
	suite.Equal("1010", resp.Accounts[0].Code)
	suite.Equal("4000", resp.Accounts[1].Code)

	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeactivateAccount_SystemAccountConflicts() {
	userID := uuid.NewString()
	accountID := uuid.NewString()

	suite.mockChartService.On("DeactivateAccount",
		mock.AnythingOfType("*context.valueCtx"),
		accountID,
		userID,
	).Return(services.ErrSystemAccount).Once()

	url := fmt.Sprintf("/api/v1/accounts/%s", accountID)
	req := suite.newAuthedRequest(http.MethodDelete, url, nil, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestResolveAccount_Success() {
	userID := uuid.NewString()
	spec := dto.ResolveAccountSpec{
		Module:      "revenue",
		Category:    "consulting",
		AccountType: domain.Revenue,
		DefaultCode: "4000",
		DefaultName: "Consulting Revenue",
	}
	resolved := &domain.Account{
		AccountID:    uuid.NewString(),
		Code:         "4000",
		Name:         "Consulting Revenue",
		AccountType:  domain.Revenue,
		CurrencyCode: "USD",
		IsActive:     true,
		IsSystem:     true,
	}

	suite.mockChartService.On("ResolveAccount",
		mock.AnythingOfType("*context.valueCtx"),
		spec,
		userID,
	).Return(resolved, nil).Once()

	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/accounts/resolve", spec, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(resolved.AccountID, resp.AccountID)
	suite.True(resp.IsSystem)

	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestResolveAccount_MappingMissing() {
	userID := uuid.NewString()
	spec := dto.ResolveAccountSpec{
		Module:      "expense",
		Category:    "travel",
		AccountType: domain.Expense,
		DefaultCode: "5100",
		DefaultName: "Travel Expense",
	}

	suite.mockChartService.On("ResolveAccount",
		mock.AnythingOfType("*context.valueCtx"),
		spec,
		userID,
	).Return(nil, services.ErrMappingMissing).Once()

	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/accounts/resolve", spec, userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockChartService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
