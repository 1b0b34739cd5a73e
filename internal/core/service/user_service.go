package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// UserService implements profile self-service and admin account management.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(user, in.Name, in.Phone, in.Address); err != nil {
		return nil, err
	}

	if in.NewPassword != "" {
		if len(in.NewPassword) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
		if user.PasswordHash, err = hashPassword(in.NewPassword); err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *UserService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("account deleted by owner")
	return nil
}

func (s *UserService) List(ctx context.Context, f ports.ListUsersFilter) (*ports.UserPage, error) {
	if f.Role != "" && !domain.ValidRole(f.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, f.Role)
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ports.UserPage{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id string, in ports.AdminUpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(user, in.Name, in.Phone, in.Address); err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !domain.ValidRole(*in.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		user.Role = *in.Role
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Str("role", updated.Role).Msg("user updated by admin")
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted by admin")
	return nil
}

func (s *UserService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids are required", domain.ErrInvalidInput)
	}
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("deleted", n).Msg("users bulk deleted by admin")
	return n, nil
}

// CreateAdmin creates an administrator account, or promotes an existing
// account with the same email when the password matches.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if strings.TrimSpace(name) == "" || !validEmail(email) || len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: name, valid email and a password of at least %d characters are required", domain.ErrInvalidInput, minPasswordLength)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
			return nil, domain.ErrEmailInUse
		}
		existing.Role = domain.RoleAdmin
		existing.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, existing)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func applyProfile(user *domain.User, name, phone *string, address *domain.Address) error {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		user.Name = trimmed
	}
	if phone != nil {
		user.Phone = strings.TrimSpace(*phone)
	}
	if address != nil {
		user.Address = *address
	}
	return nil
}
