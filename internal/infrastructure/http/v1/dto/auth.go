package dto

import (
	"time"

	"smartshop/internal/domain/auth"
)

// LoginRequest for user login.
type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{UserName: r.UserName, Password: r.Password}
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"tokenType"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

// FromToken builds the login response.
func FromToken(t *auth.Token, u *auth.User) *LoginResponse {
	return &LoginResponse{
		Token:     t.AccessToken,
		TokenType: t.TokenType,
		ExpiresAt: t.ExpiresAt,
		User:      FromUser(u),
	}
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	UserName string `json:"userName" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"max=200"`
	RoleID   *int   `json:"roleId"`
	IsActive *bool  `json:"isActive"`
}

// ToInput converts to the domain input.
func (r *CreateUserRequest) ToInput() auth.CreateUserInput {
	return auth.CreateUserInput{
		UserName: r.UserName,
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		RoleID:   r.RoleID,
		IsActive: r.IsActive,
	}
}

// UpdateUserRequest is the request body for updating a user profile.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"max=200"`
	RoleID   *int   `json:"roleId"`
	IsActive bool   `json:"isActive"`
	Version  int    `json:"version"`
}

// ToInput converts to the domain input.
func (r *UpdateUserRequest) ToInput() auth.UpdateUserInput {
	return auth.UpdateUserInput{
		Email:    r.Email,
		Name:     r.Name,
		RoleID:   r.RoleID,
		IsActive: r.IsActive,
		Version:  r.Version,
	}
}

// ChangePasswordRequest is the body of PUT /users/:id/password.
type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// UserResponse represents user in API response. The hash is never exposed.
type UserResponse struct {
	BaseResponse
	UserName    string     `json:"userName"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	RoleID      *int       `json:"roleId,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// FromUser creates response from domain user.
func FromUser(u *auth.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		BaseResponse: FromBase(u.BaseEntity),
		UserName:     u.UserName,
		Email:        u.Email,
		Name:         u.Name,
		RoleID:       u.RoleID,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
}
