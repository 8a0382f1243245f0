package model

import "time"

// Departments accepted at registration.
var RegistrationDepartments = []string{
	"Computer Science",
	"Information Technology",
	"Engineering",
	"Medicine",
	"Business",
	"Science",
}

// User represents a platform account. Email is the login identity and the
// subject carried in access tokens.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	StudentID    string    `json:"student_id,omitempty"`
	Department   string    `json:"department,omitempty"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanModify reports whether the user may change a resource owned by ownerID.
func (u *User) CanModify(ownerID int) bool {
	return u != nil && (u.ID == ownerID || u.IsAdmin())
}

// RegisterRequest is the payload for creating a student account.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100,personname"`
	Email      string `json:"email" binding:"required,email,uohemail"`
	Password   string `json:"password" binding:"required,strongpassword"`
	StudentID  string `json:"student_id" binding:"omitempty,len=9,numeric"`
	Department string `json:"department" binding:"omitempty,oneof='Computer Science' 'Information Technology' Engineering Medicine Business Science"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after registration and login.
type AuthResponse struct {
	Token      string `json:"token"`
	TokenType  string `json:"token_type"`
	ExpiresIn  int64  `json:"expires_in"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	StudentID  string `json:"student_id,omitempty"`
	Department string `json:"department,omitempty"`
}

// UpdateUserRequest changes only the fields that are present.
type UpdateUserRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=2,max=100,personname"`
	Email      *string `json:"email" binding:"omitempty,email,uohemail"`
	Password   *string `json:"password" binding:"omitempty,strongpassword"`
	StudentID  *string `json:"student_id" binding:"omitempty,len=9,numeric"`
	Department *string `json:"department" binding:"omitempty,oneof='Computer Science' 'Information Technology' Engineering Medicine Business Science"`
}

// CreateAdminParams is used by the create-admin CLI.
type CreateAdminParams struct {
	Name     string
	Email    string
	Password string
}
