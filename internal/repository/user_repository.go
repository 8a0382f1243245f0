package repository

import (
	"context"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, password_hash, COALESCE(student_id, ''), COALESCE(department, ''), role, active, created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.StudentID, &u.Department, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by their login email. Matching is case-insensitive.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

// ExistsByEmail reports whether an account already uses email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	return exists, err
}

// Create inserts a new user and fills in the generated fields.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, student_id, department, role, active)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.Name, u.PasswordHash, u.StudentID, u.Department, u.Role, u.Active,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return translate(err)
}

// Update writes every mutable column of u.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	err := r.db.QueryRow(ctx,
		`UPDATE users SET email = $1, name = $2, password_hash = $3, student_id = NULLIF($4, ''),
		        department = NULLIF($5, ''), role = $6, active = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8
		 RETURNING updated_at`,
		u.Email, u.Name, u.PasswordHash, u.StudentID, u.Department, u.Role, u.Active, u.ID,
	).Scan(&u.UpdatedAt)
	return translate(err)
}

// Delete removes a user. Owned materials and reviews cascade.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id))
}
