package pgsql

import (
	"context"
	"database/sql"
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
	"github.com/shopspring/decimal"
)

// PgxAccountRepository persists the chart of accounts and its category
// mappings.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, account_type, currency_code, parent_account_id, description, is_active, is_system, balance, created_at, created_by, last_updated_at, last_updated_by`

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var modelAcc models.Account
	var parentID sql.NullString

	err := row.Scan(
		&modelAcc.AccountID,
		&modelAcc.Code,
		&modelAcc.Name,
		&modelAcc.AccountType,
		&modelAcc.CurrencyCode,
		&parentID,
		&modelAcc.Description,
		&modelAcc.IsActive,
		&modelAcc.IsSystem,
		&modelAcc.Balance,
		&modelAcc.CreatedAt,
		&modelAcc.CreatedBy,
		&modelAcc.LastUpdatedAt,
		&modelAcc.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if parentID.Valid {
		modelAcc.ParentAccountID = parentID.String
	}
	return mapping.ToDomainAccount(modelAcc), nil
}

func accountInsertArgs(modelAcc models.Account) []any {
	var parentID sql.NullString
	if modelAcc.ParentAccountID != "" {
		parentID = sql.NullString{String: modelAcc.ParentAccountID, Valid: true}
	}
	return []any{
		modelAcc.AccountID,
		modelAcc.Code,
		modelAcc.Name,
		modelAcc.AccountType,
		modelAcc.CurrencyCode,
		parentID,
		modelAcc.Description,
		modelAcc.IsActive,
		modelAcc.IsSystem,
		modelAcc.Balance,
		modelAcc.CreatedAt,
		modelAcc.CreatedBy,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	}
}

const accountInsertQuery = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	_, err := r.Pool.Exec(ctx, accountInsertQuery, accountInsertArgs(modelAcc)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, modelAcc.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &account, nil
}

// FindAccountByCode retrieves an account by its unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs are
// simply absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1)`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) (map[string]domain.Account, error) {
	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accountsMap[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of active accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_active = TRUE
		ORDER BY code
		LIMIT $1 OFFSET $2`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates the mutable metadata of an existing account.
// Account type, currency and code are immutable after creation.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1`

	cmdTag, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.Name,
		modelAcc.Description,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", modelAcc.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1`

	cmdTag, err := r.Pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsForUpdate selects accounts and locks their rows within tx.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	// Deterministic lock order avoids deadlocks between concurrent postings.
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// UpdateAccountBalancesInTx applies signed balance deltas within tx.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1`

	batch := &pgx.Batch{}
	for accountID, change := range balanceChanges {
		batch.Queue(query, accountID, change, now, userID)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}

// InsertAccountIfAbsentInTx inserts the account unless its code already
// exists, then returns the row holding the code either way.
func (r *PgxAccountRepository) InsertAccountIfAbsentInTx(ctx context.Context, tx pgx.Tx, account domain.Account) (*domain.Account, error) {
	modelAcc := mapping.ToModelAccount(account)

	insert := accountInsertQuery + ` ON CONFLICT (code) DO NOTHING`
	if _, err := tx.Exec(ctx, insert, accountInsertArgs(modelAcc)...); err != nil {
		return nil, fmt.Errorf("failed to insert account %s: %w", modelAcc.AccountID, err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1`
	surviving, err := scanAccount(tx.QueryRow(ctx, query, modelAcc.Code))
	if err != nil {
		return nil, fmt.Errorf("failed to read back account with code %s: %w", modelAcc.Code, err)
	}
	return &surviving, nil
}

// FindMapping retrieves the mapping for (module, category).
func (r *PgxAccountRepository) FindMapping(ctx context.Context, module, category string) (*domain.AccountMapping, error) {
	return r.findMapping(ctx, r.Pool, module, category)
}

// FindMappingInTx is FindMapping within a caller-owned transaction.
func (r *PgxAccountRepository) FindMappingInTx(ctx context.Context, tx pgx.Tx, module, category string) (*domain.AccountMapping, error) {
	return r.findMapping(ctx, tx, module, category)
}

// queryRower is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PgxAccountRepository) findMapping(ctx context.Context, q queryRower, module, category string) (*domain.AccountMapping, error) {
	query := `
		SELECT mapping_id, module, category, account_id, created_at, created_by, last_updated_at, last_updated_by
		FROM account_mappings
		WHERE module = $1 AND category = $2`

	var modelMapping models.AccountMapping
	err := q.QueryRow(ctx, query, module, category).Scan(
		&modelMapping.MappingID,
		&modelMapping.Module,
		&modelMapping.Category,
		&modelMapping.AccountID,
		&modelMapping.CreatedAt,
		&modelMapping.CreatedBy,
		&modelMapping.LastUpdatedAt,
		&modelMapping.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find mapping %s/%s: %w", module, category, err)
	}
	domainMapping := mapping.ToDomainAccountMapping(modelMapping)
	return &domainMapping, nil
}

// InsertMappingIfAbsentInTx inserts the mapping unless (module, category) is
// already mapped, then returns the surviving row.
func (r *PgxAccountRepository) InsertMappingIfAbsentInTx(ctx context.Context, tx pgx.Tx, accountMapping domain.AccountMapping) (*domain.AccountMapping, error) {
	modelMapping := mapping.ToModelAccountMapping(accountMapping)

	insert := `
		INSERT INTO account_mappings (mapping_id, module, category, account_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (module, category) DO NOTHING`

	_, err := tx.Exec(ctx, insert,
		modelMapping.MappingID,
		modelMapping.Module,
		modelMapping.Category,
		modelMapping.AccountID,
		modelMapping.CreatedAt,
		modelMapping.CreatedBy,
		modelMapping.LastUpdatedAt,
		modelMapping.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert mapping %s/%s: %w", modelMapping.Module, modelMapping.Category, err)
	}

	return r.findMapping(ctx, tx, modelMapping.Module, modelMapping.Category)
}
