package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/fintrak/fintrak/internal/middleware"
)

var (
	ErrAccountCodeTaken   = errors.New("account code is already in use")
	ErrParentNotFound     = errors.New("parent account not found")
	ErrParentTypeMismatch = errors.New("parent account type does not match")
	ErrSystemAccount      = errors.New("system accounts cannot be deactivated")
	ErrAccountHasBalance  = errors.New("account with a non-zero balance cannot be deactivated")
	ErrMappingMissing     = errors.New("no account is mapped for this category")
)

// chartService manages the chart of accounts and the category resolver.
type chartService struct {
	accountRepo   portsrepo.AccountRepositoryWithTx
	autoProvision bool
	publisher     portssvc.EventPublisher
}

// NewChartService creates a new chart-of-accounts service. When
// autoProvision is false the resolver refuses to create accounts for
// unmapped categories.
func NewChartService(accountRepo portsrepo.AccountRepositoryWithTx, autoProvision bool, publisher portssvc.EventPublisher) portssvc.ChartSvcFacade {
	return &chartService{
		accountRepo:   accountRepo,
		autoProvision: autoProvision,
		publisher:     publisher,
	}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

// CreateAccount validates and persists a new account.
func (s *chartService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	code := strings.TrimSpace(req.Code)
	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check account code", slog.String("error", err.Error()), slog.String("code", code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountCodeTaken, code)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: ID %s", ErrParentNotFound, *req.ParentAccountID)
			}
			logger.Error("Failed to fetch parent account", slog.String("error", err.Error()), slog.String("parent_account_id", *req.ParentAccountID))
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if parent.AccountType != req.AccountType {
			return nil, fmt.Errorf("%w: parent is %s, child is %s", ErrParentTypeMismatch, parent.AccountType, req.AccountType)
		}
		parentID = parent.AccountID
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		CurrencyCode:    strings.ToUpper(req.CurrencyCode),
		ParentAccountID: parentID,
		Description:     req.Description,
		IsActive:        true,
		IsSystem:        req.IsSystem,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrAccountCodeTaken, account.Code)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("code", account.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "account", EntityID: account.AccountID, Action: "created", ActorID: userID})
	}
	return &account, nil
}

// GetAccountByID retrieves a single account.
func (s *chartService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find account by ID", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *chartService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to find accounts by IDs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a page of active accounts.
func (s *chartService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount applies the provided fields to an existing account.
func (s *chartService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

// DeactivateAccount marks an account inactive. System accounts and accounts
// still carrying a balance refuse.
func (s *chartService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.IsSystem {
		return fmt.Errorf("%w: %s", ErrSystemAccount, accountID)
	}
	if !account.Balance.IsZero() {
		return fmt.Errorf("%w: balance is %s", ErrAccountHasBalance, account.Balance.String())
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "account", EntityID: accountID, Action: "deactivated", ActorID: userID})
	}
	return nil
}

// ResolveAccount returns the account behind (module, category), creating the
// mapping and the account on first use when auto-provisioning is enabled.
func (s *chartService) ResolveAccount(ctx context.Context, spec dto.ResolveAccountSpec, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Fast path: the mapping usually exists already.
	mapping, err := s.accountRepo.FindMapping(ctx, spec.Module, spec.Category)
	if err == nil {
		return s.GetAccountByID(ctx, mapping.AccountID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to look up account mapping", slog.String("error", err.Error()), slog.String("module", spec.Module), slog.String("category", spec.Category))
		return nil, fmt.Errorf("failed to look up mapping: %w", err)
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.ResolveAccountInTx(ctx, tx, spec, userID)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit resolution: %w", err)
	}
	return account, nil
}

// ResolveAccountInTx resolves (module, category) within a caller-owned
// transaction. Concurrent first-time resolutions converge on one account:
// both insert-if-absent calls return the surviving row regardless of which
// writer won.
func (s *chartService) ResolveAccountInTx(ctx context.Context, tx pgx.Tx, spec dto.ResolveAccountSpec, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	mapping, err := s.accountRepo.FindMappingInTx(ctx, tx, spec.Module, spec.Category)
	if err == nil {
		return s.findAccountInTx(ctx, tx, mapping.AccountID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up mapping: %w", err)
	}

	if !s.autoProvision {
		return nil, fmt.Errorf("%w: %s/%s", ErrMappingMissing, spec.Module, spec.Category)
	}
	if !spec.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, spec.AccountType)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	candidate := domain.Account{
		AccountID:    uuid.NewString(),
		Code:         spec.DefaultCode,
		Name:         spec.DefaultName,
		AccountType:  spec.AccountType,
		CurrencyCode: defaultCurrencyCode,
		IsActive:     true,
		IsSystem:     true, // Provisioned accounts are referenced by mappings and must not disappear.
		AuditFields:  audit,
	}
	account, err := s.accountRepo.InsertAccountIfAbsentInTx(ctx, tx, candidate)
	if err != nil {
		logger.Error("Failed to provision account", slog.String("error", err.Error()), slog.String("code", spec.DefaultCode))
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	surviving, err := s.accountRepo.InsertMappingIfAbsentInTx(ctx, tx, domain.AccountMapping{
		MappingID:   uuid.NewString(),
		Module:      spec.Module,
		Category:    spec.Category,
		AccountID:   account.AccountID,
		AuditFields: audit,
	})
	if err != nil {
		logger.Error("Failed to persist account mapping", slog.String("error", err.Error()), slog.String("module", spec.Module), slog.String("category", spec.Category))
		return nil, fmt.Errorf("failed to persist mapping: %w", err)
	}
	if surviving.AccountID != account.AccountID {
		// Lost the race: another writer mapped the category first.
		return s.findAccountInTx(ctx, tx, surviving.AccountID)
	}

	logger.Info("Account provisioned for category",
		slog.String("account_id", account.AccountID),
		slog.String("module", spec.Module),
		slog.String("category", spec.Category))
	return account, nil
}

func (s *chartService) findAccountInTx(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	account, ok := accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("mapped account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return &account, nil
}
