package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/rs/zerolog"
)

// UserService handles account management after registration.
type UserService struct {
	users      *repository.UserRepository
	bcryptCost int
	log        zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository, bcryptCost int, log zerolog.Logger) *UserService {
	return &UserService{
		users:      users,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "user_service").Logger(),
	}
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Update applies the present fields of req. Users may edit themselves;
// admins may edit anyone.
func (s *UserService) Update(ctx context.Context, actor *model.User, id int, req model.UpdateUserRequest) (*model.User, error) {
	if !actor.CanModify(id) {
		return nil, ErrForbidden
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if !validator.IsUOHEmail(email) {
			return nil, fmt.Errorf("%w: email must be a @uoh.edu.sa address", ErrInvalidInput)
		}
		if email != u.Email {
			exists, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if exists {
				return nil, ErrEmailAlreadyExists
			}
			u.Email = email
		}
	}
	if req.Password != nil {
		if !validator.IsStrongPassword(*req.Password) {
			return nil, fmt.Errorf("%w: password does not meet the complexity rules", ErrInvalidInput)
		}
		hash, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if req.StudentID != nil {
		u.StudentID = *req.StudentID
	}
	if req.Department != nil {
		u.Department = *req.Department
	}

	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes an account and everything it owns.
func (s *UserService) Delete(ctx context.Context, actor *model.User, id int) error {
	if !actor.CanModify(id) {
		return ErrForbidden
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info().Int("user_id", id).Int("actor_id", actor.ID).Msg("User deleted")
	return nil
}

// CreateAdmin provisions an ADMIN account. Used by the create-admin CLI.
func (s *UserService) CreateAdmin(ctx context.Context, p model.CreateAdminParams) (*model.User, error) {
	email := normalizeEmail(p.Email)
	if !validator.IsUOHEmail(email) {
		return nil, fmt.Errorf("%w: email must be a @uoh.edu.sa address", ErrInvalidInput)
	}
	if !validator.IsStrongPassword(p.Password) {
		return nil, fmt.Errorf("%w: password does not meet the complexity rules", ErrInvalidInput)
	}

	hash, err := hashPassword(p.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(p.Name),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return u, nil
}
