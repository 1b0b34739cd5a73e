package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// ListUsersFilter carries the admin user listing query.
type ListUsersFilter struct {
	Search string // optional: partial match on name or email
	Role   string // optional
	Page   int    // 1-based
	Limit  int
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts the user. Returns domain.ErrEmailInUse on a unique index violation.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update persists the mutable profile fields (name, phone, address, role, password hash).
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// SetRefreshToken replaces the stored refresh token. An empty token revokes the session.
	SetRefreshToken(ctx context.Context, id, token string) error
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
