package auth

import (
	"context"
	"time"

	"smartshop/internal/core/id"
	"smartshop/internal/domain"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	domain.CatalogRepository[*User]

	// GetByUserName retrieves user by login name.
	GetByUserName(ctx context.Context, userName string) (*User, error)

	// TouchLastLogin stamps last_login_at without bumping the version.
	TouchLastLogin(ctx context.Context, userID id.ID, at time.Time) error
}

// RoleRepository defines role lookups.
type RoleRepository interface {
	GetByID(ctx context.Context, roleID int) (*Role, error)
	List(ctx context.Context) ([]Role, error)
}
