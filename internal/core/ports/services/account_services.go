package services

import (
	"context"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/jackc/pgx/v5"
)

// ChartReaderSvc defines read operations over the chart of accounts.
type ChartReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of active accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// ChartWriterSvc defines write operations over the chart of accounts.
type ChartWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's metadata.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. System-protected
	// accounts refuse.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountResolverSvc maps business categories to ledger accounts,
// provisioning accounts lazily when the policy allows.
type AccountResolverSvc interface {
	// ResolveAccount returns the account for (module, category), creating
	// the account and the mapping on first use.
	ResolveAccount(ctx context.Context, spec dto.ResolveAccountSpec, userID string) (*domain.Account, error)

	// ResolveAccountInTx is ResolveAccount inside a caller-owned transaction,
	// for callers that must resolve and post atomically.
	ResolveAccountInTx(ctx context.Context, tx pgx.Tx, spec dto.ResolveAccountSpec, userID string) (*domain.Account, error)
}

// ChartSvcFacade combines all chart-of-accounts service interfaces.
type ChartSvcFacade interface {
	ChartReaderSvc
	ChartWriterSvc
	AccountResolverSvc
}
