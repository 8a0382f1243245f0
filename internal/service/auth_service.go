package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/token"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AuthService handles registration, login and resolving bearer tokens to users.
type AuthService struct {
	authority  *token.Authority
	users      *repository.UserRepository
	bcryptCost int
	log        zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(authority *token.Authority, users *repository.UserRepository, bcryptCost int, log zerolog.Logger) *AuthService {
	return &AuthService{
		authority:  authority,
		users:      users,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "auth_service").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a STUDENT account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if !validator.IsUOHEmail(email) {
		return nil, fmt.Errorf("%w: email must be a @uoh.edu.sa address", ErrInvalidInput)
	}
	if !validator.IsStrongPassword(req.Password) {
		return nil, fmt.Errorf("%w: password does not meet the complexity rules", ErrInvalidInput)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		StudentID:    req.StudentID,
		Department:   req.Department,
		Role:         model.RoleStudent,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int("user_id", u.ID).Msg("User registered")
	return s.issue(u)
}

// Login verifies credentials and signs a fresh token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := checkPassword(u.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, ErrAccountDisabled
	}

	return s.issue(u)
}

// Authenticate resolves a raw Authorization header to an active user.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*model.User, error) {
	subject, err := s.authority.ValidateHeader(header)
	if err != nil {
		return nil, err
	}
	return s.principal(ctx, subject)
}

// AuthenticateToken is Authenticate for a bare token, as sent by
// WebSocket clients in the query string.
func (s *AuthService) AuthenticateToken(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		return nil, token.ErrTokenMissing
	}
	claims, err := s.authority.Parse(raw)
	if err != nil {
		return nil, err
	}
	return s.principal(ctx, claims.Subject)
}

// principal loads the user named by a verified token subject. A subject that
// no longer maps to a user makes the token itself invalid.
func (s *AuthService) principal(ctx context.Context, subject string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", token.ErrTokenMalformed)
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	if !u.Active {
		return nil, ErrAccountDisabled
	}
	return u, nil
}

func (s *AuthService) issue(u *model.User) (*model.AuthResponse, error) {
	signed, err := s.authority.Issue(u.Email)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		Token:      signed,
		TokenType:  strings.TrimSpace(token.BearerPrefix),
		ExpiresIn:  int64(s.authority.Lifetime().Seconds()),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		StudentID:  u.StudentID,
		Department: u.Department,
	}, nil
}
