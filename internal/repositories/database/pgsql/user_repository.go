package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	"github.com/fintrak/fintrak/internal/models"
	"github.com/fintrak/fintrak/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUserRepository reads the identity rows synced from the external
// identity service. This repository never writes.
type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `user_id, name, role, manager_id, is_active, created_at, created_by, last_updated_at, last_updated_by`

// roleRankCase orders stored role names by seniority so role comparisons can
// happen in SQL. Unknown names rank below STAFF and never qualify.
const roleRankCase = `CASE role
	WHEN 'STAFF' THEN 1
	WHEN 'ACCOUNTANT' THEN 2
	WHEN 'MANAGER' THEN 3
	WHEN 'DIRECTOR' THEN 4
	WHEN 'ADMIN' THEN 5
	ELSE 0
END`

func scanUser(row rowScanner) (domain.User, error) {
	var modelUser models.User
	err := row.Scan(
		&modelUser.UserID,
		&modelUser.Name,
		&modelUser.Role,
		&modelUser.ManagerID,
		&modelUser.IsActive,
		&modelUser.CreatedAt,
		&modelUser.CreatedBy,
		&modelUser.LastUpdatedAt,
		&modelUser.LastUpdatedBy,
	)
	if err != nil {
		return domain.User{}, err
	}
	return mapping.ToDomainUser(modelUser), nil
}

// FindUserByID retrieves a user by its identifier.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return &user, nil
}

// FindFirstByMinimumRole retrieves an active user at or above role. The least
// senior qualifying user wins, with creation time as a deterministic
// tie-break.
func (r *PgxUserRepository) FindFirstByMinimumRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_active = TRUE AND ` + roleRankCase + ` >= $1
		ORDER BY ` + roleRankCase + `, created_at, user_id
		LIMIT 1`

	user, err := scanUser(r.Pool.QueryRow(ctx, query, int(role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user with minimum role %s: %w", role, err)
	}
	return &user, nil
}
