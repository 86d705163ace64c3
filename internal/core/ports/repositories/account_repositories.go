package repositories

import (
	"context"
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of active accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when
	// the code is already taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's metadata.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountTransactionSupport defines account operations that participate in a
// caller-owned transaction.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks their rows within tx.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas within tx.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// InsertAccountIfAbsentInTx inserts the account unless its code already
	// exists, then returns the row holding the code either way. Concurrent
	// first-time inserts converge on one winner.
	InsertAccountIfAbsentInTx(ctx context.Context, tx pgx.Tx, account domain.Account) (*domain.Account, error)
}

// AccountMappingSupport defines category-to-account mapping operations.
type AccountMappingSupport interface {
	// FindMapping retrieves the mapping for (module, category), or
	// apperrors.ErrNotFound.
	FindMapping(ctx context.Context, module, category string) (*domain.AccountMapping, error)

	// FindMappingInTx is FindMapping within a caller-owned transaction.
	FindMappingInTx(ctx context.Context, tx pgx.Tx, module, category string) (*domain.AccountMapping, error)

	// InsertMappingIfAbsentInTx inserts the mapping unless (module, category)
	// is already mapped, then returns the surviving row. The losing writer of
	// a race reads the winner's mapping instead of erroring.
	InsertMappingIfAbsentInTx(ctx context.Context, tx pgx.Tx, mapping domain.AccountMapping) (*domain.AccountMapping, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
	AccountMappingSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction
// capabilities.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
