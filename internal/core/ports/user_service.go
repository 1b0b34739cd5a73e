package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// UpdateProfileInput carries self-service profile changes. Nil fields are left untouched.
// Changing the password requires CurrentPassword.
type UpdateProfileInput struct {
	Name            *string
	Phone           *string
	Address         *domain.Address
	CurrentPassword string
	NewPassword     string
}

// AdminUpdateUserInput carries admin-side account changes.
type AdminUpdateUserInput struct {
	Name    *string
	Phone   *string
	Address *domain.Address
	Role    *string
}

// UserPage is a page of users.
type UserPage struct {
	Items      []*domain.User `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type UserService interface {
	GetProfile(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*domain.User, error)
	DeleteAccount(ctx context.Context, id string) error

	List(ctx context.Context, filter ListUsersFilter) (*UserPage, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, input AdminUpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
}
