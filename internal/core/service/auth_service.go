package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/printcraft/storefront/internal/api/metrics"
	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// bcryptCost matches the cost used by existing password hashes.
const bcryptCost = 10

const minPasswordLength = 6

// AuthService implements registration, login and refresh token rotation.
type AuthService struct {
	repo   ports.UserRepository
	tokens *TokenIssuer
	logger zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens *TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || !validEmail(email) || len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: name, valid email and a password of at least %d characters are required", domain.ErrInvalidInput, minPasswordLength)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		metrics.AuthEventsTotal.WithLabelValues("register", "failure").Inc()
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("register", "failure").Inc()
		return nil, err
	}

	session, err := s.startSession(ctx, created)
	if err != nil {
		return nil, err
	}
	metrics.AuthEventsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return session, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthEventsTotal.WithLabelValues("login", "failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthEventsTotal.WithLabelValues("login", "failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.AuthEventsTotal.WithLabelValues("login", "success").Inc()
	return session, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrMissingRefreshToken
	}

	claims, err := s.tokens.Verify(refreshToken, ports.TokenRefresh)
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("refresh", "failure").Inc()
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthEventsTotal.WithLabelValues("refresh", "failure").Inc()
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	// Only the most recently issued token is accepted.
	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		metrics.AuthEventsTotal.WithLabelValues("refresh", "failure").Inc()
		s.logger.Warn().Str("user_id", user.ID).Msg("refresh token mismatch")
		return nil, domain.ErrInvalidRefreshToken
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.AuthEventsTotal.WithLabelValues("refresh", "success").Inc()
	return session, nil
}

// Logout revokes the session identified by refreshToken. Unknown or expired
// tokens are ignored so that logout always succeeds for the caller.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	metrics.AuthEventsTotal.WithLabelValues("logout", "success").Inc()
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Verify(refreshToken, ports.TokenRefresh)
	if err != nil {
		return nil
	}
	if err := s.repo.SetRefreshToken(ctx, claims.UserID, ""); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("failed to clear refresh token")
	}
	return nil
}

// startSession issues a token pair and stores the refresh token on the user,
// replacing any previous one.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*ports.Session, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, exp, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	user.RefreshToken = refresh

	return &ports.Session{
		User:             user,
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: exp,
	}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailRule is the request validator's "email" tag, applied again for callers
// that do not come through HTTP, such as storefrontctl.
var emailRule = validator.New()

func validEmail(email string) bool {
	return emailRule.Var(email, "required,email") == nil
}
