package service

import (
	"context"
	"testing"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/token"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, pgxmock.PgxPoolIface, *token.Authority) {
	mock := newMock(t)
	authority := newAuthority(t)
	return NewAuthService(authority, repository.NewUserRepository(mock), bcrypt.MinCost, zerolog.Nop()), mock, authority
}

func TestAuthService_Register(t *testing.T) {
	svc, mock, authority := newAuthService(t)

	req := model.RegisterRequest{
		Name:       "Sara",
		Email:      "Sara@UOH.edu.sa",
		Password:   "Secur3#Pass",
		StudentID:  "202012345",
		Department: "Computer Science",
	}

	mock.ExpectQuery("SELECT EXISTS").WithArgs("sara@uoh.edu.sa").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("sara@uoh.edu.sa", "Sara", pgxmock.AnyArg(), "202012345", "Computer Science", model.RoleStudent, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now(), now()))

	resp, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "sara@uoh.edu.sa", resp.Email)
	assert.Equal(t, model.RoleStudent, resp.Role)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	subject, err := authority.ValidateHeader("Bearer " + resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "sara@uoh.edu.sa", subject)
}

func TestAuthService_Register_Rejections(t *testing.T) {
	t.Run("existing email", func(t *testing.T) {
		svc, mock, _ := newAuthService(t)
		mock.ExpectQuery("SELECT EXISTS").WithArgs("sara@uoh.edu.sa").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := svc.Register(context.Background(), model.RegisterRequest{Name: "Sara", Email: "sara@uoh.edu.sa", Password: "Secur3#Pass"})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("race on insert", func(t *testing.T) {
		svc, mock, _ := newAuthService(t)
		mock.ExpectQuery("SELECT EXISTS").WithArgs("sara@uoh.edu.sa").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("sara@uoh.edu.sa", "Sara", pgxmock.AnyArg(), "", "", model.RoleStudent, true).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := svc.Register(context.Background(), model.RegisterRequest{Name: "Sara", Email: "sara@uoh.edu.sa", Password: "Secur3#Pass"})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("foreign domain", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(context.Background(), model.RegisterRequest{Name: "Sara", Email: "sara@gmail.com", Password: "Secur3#Pass"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("weak password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(context.Background(), model.RegisterRequest{Name: "Sara", Email: "sara@uoh.edu.sa", Password: "password"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Secur3#Pass"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		svc, mock, _ := newAuthService(t)
		mock.ExpectQuery("FROM users WHERE lower").WithArgs("sara@uoh.edu.sa").WillReturnRows(userRow(*student, string(hash)))

		resp, err := svc.Login(context.Background(), model.LoginRequest{Email: " sara@uoh.edu.sa ", Password: "Secur3#Pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Sara", resp.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, mock, _ := newAuthService(t)
		mock.ExpectQuery("FROM users WHERE lower").WithArgs("sara@uoh.edu.sa").WillReturnRows(userRow(*student, string(hash)))

		_, err := svc.Login(context.Background(), model.LoginRequest{Email: "sara@uoh.edu.sa", Password: "Wrong#Pass1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, mock, _ := newAuthService(t)
		mock.ExpectQuery("FROM users WHERE lower").WithArgs("ghost@uoh.edu.sa").WillReturnError(pgx.ErrNoRows)

		_, err := svc.Login(context.Background(), model.LoginRequest{Email: "ghost@uoh.edu.sa", Password: "Secur3#Pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		svc, mock, _ := newAuthService(t)
		disabled := *student
		disabled.Active = false
		mock.ExpectQuery("FROM users WHERE lower").WithArgs("sara@uoh.edu.sa").WillReturnRows(userRow(disabled, string(hash)))

		_, err := svc.Login(context.Background(), model.LoginRequest{Email: "sara@uoh.edu.sa", Password: "Secur3#Pass"})
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, mock, authority := newAuthService(t)
	ctx := context.Background()

	tok, err := authority.Issue(student.Email)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users WHERE lower").WithArgs(student.Email).WillReturnRows(userRow(*student, "hash"))
	u, err := svc.Authenticate(ctx, "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, student.ID, u.ID)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, token.ErrTokenMissing)

	_, err = svc.Authenticate(ctx, "Token "+tok)
	assert.ErrorIs(t, err, token.ErrTokenMalformed)

	mock.ExpectQuery("FROM users WHERE lower").WithArgs(student.Email).WillReturnError(pgx.ErrNoRows)
	_, err = svc.AuthenticateToken(ctx, tok)
	assert.ErrorIs(t, err, token.ErrTokenMalformed, "deleted users invalidate their tokens")

	_, err = svc.AuthenticateToken(ctx, "")
	assert.ErrorIs(t, err, token.ErrTokenMissing)
}
