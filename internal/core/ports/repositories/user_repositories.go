package repositories

import (
	"context"

	"github.com/fintrak/fintrak/internal/core/domain"
)

// UserRepositoryFacade exposes the identity data the core authorizes
// against. The rows are written by the external identity service.
type UserRepositoryFacade interface {
	// FindUserByID retrieves a user by its identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindFirstByMinimumRole retrieves an active user whose role is at or
	// above the given role, used as the fallback approver for requesters
	// with no management chain.
	FindFirstByMinimumRole(ctx context.Context, role domain.Role) (*domain.User, error)
}
