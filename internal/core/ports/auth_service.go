package ports

import (
	"context"
	"time"

	"github.com/printcraft/storefront/internal/core/domain"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// TokenClaims is the verified content of a storefront JWT.
type TokenClaims struct {
	UserID    string
	Role      string
	Type      string
	ID        string
	ExpiresAt time.Time
}

// TokenVerifier validates signed tokens of the expected type.
type TokenVerifier interface {
	Verify(token, tokenType string) (*TokenClaims, error)
}

// RegisterInput carries the self-service sign up fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is the result of a successful register, login or refresh.
type Session struct {
	User             *domain.User
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Refresh validates the refresh token against the one stored on the user
	// and rotates both tokens.
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, refreshToken string) error
}
