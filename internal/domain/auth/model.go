// Package auth provides user management and token-based authentication.
package auth

import (
	"context"
	"time"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/entity"
	"smartshop/internal/core/validation"
)

// Seeded role names.
const (
	RoleSysAdmin   = "SysAdmin"
	RoleStoreAdmin = "StoreAdmin"
)

// MinPasswordLength is enforced on create and on password change.
const MinPasswordLength = 8

// User represents a back-office user.
type User struct {
	entity.BaseEntity

	UserName     string     `db:"user_name" json:"userName" validate:"required,max=100"`
	Email        string     `db:"email" json:"email" validate:"required,email,max=256"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name,omitempty" validate:"max=200"`
	RoleID       *int       `db:"role_id" json:"roleId,omitempty"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
}

// NewUser creates an active user with an already hashed password.
func NewUser(userName, email, passwordHash string) *User {
	return &User{
		BaseEntity:   entity.NewBaseEntity(),
		UserName:     userName,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
}

// Validate implements entity.Validatable interface.
func (u *User) Validate(_ context.Context) error {
	return validation.Struct(u)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// Role is a named permission set. Roles are seeded, not managed through the API.
type Role struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Credentials for login.
type Credentials struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// CreateUserInput carries the fields of a new user, with the plain password.
type CreateUserInput struct {
	UserName string `json:"userName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=200"`
	RoleID   *int   `json:"roleId"`
	IsActive *bool  `json:"isActive"`
}

// UpdateUserInput carries the mutable profile fields. Passwords change
// through ChangePassword only.
type UpdateUserInput struct {
	Email    string `json:"email" validate:"required,email,max=256"`
	Name     string `json:"name" validate:"max=200"`
	RoleID   *int   `json:"roleId"`
	IsActive bool   `json:"isActive"`
	Version  int    `json:"version"`
}
