package auth_repo

import (
	"context"
	"fmt"

	"smartshop/internal/core/apperror"
	"smartshop/internal/domain/auth"
	"smartshop/internal/infrastructure/storage/postgres"
)

var _ auth.RoleRepository = (*RoleRepo)(nil)

// RoleRepo implements auth.RoleRepository over the seeded user_roles table.
type RoleRepo struct {
	txManager *postgres.TxManager
}

// NewRoleRepo creates a new role repository.
func NewRoleRepo(txManager *postgres.TxManager) *RoleRepo {
	return &RoleRepo{txManager: txManager}
}

// GetByID retrieves role by ID.
func (r *RoleRepo) GetByID(ctx context.Context, roleID int) (*auth.Role, error) {
	var role auth.Role
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM user_roles
		WHERE id = $1
	`, roleID).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if postgres.IsNoRows(err) {
		return nil, apperror.NewNotFound("role", roleID)
	}
	if err != nil {
		return nil, fmt.Errorf("query role: %w", err)
	}
	return &role, nil
}

// List returns all roles ordered by id.
func (r *RoleRepo) List(ctx context.Context) ([]auth.Role, error) {
	q := postgres.Builder.
		Select("id", "name", "created_at", "updated_at").
		From("user_roles").
		OrderBy("id")

	var roles []auth.Role
	if err := postgres.Select(ctx, r.txManager.GetQuerier(ctx), &roles, q); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}
