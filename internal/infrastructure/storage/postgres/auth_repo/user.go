// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/domain/auth"
	"smartshop/internal/infrastructure/storage/postgres"
	"smartshop/internal/infrastructure/storage/postgres/catalog_repo"
)

const userTable = "users"

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	*catalog_repo.BaseCatalogRepo[*auth.User]
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		BaseCatalogRepo: catalog_repo.NewBaseCatalogRepo(
			txManager, userTable, "user",
			postgres.ExtractDBColumns[auth.User](),
			[]string{"user_name", "email", "name"},
			func() *auth.User { return &auth.User{} },
		),
		txManager: txManager,
	}
}

// GetByUserName retrieves user by login name.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (*auth.User, error) {
	q := postgres.Builder.
		Select(postgres.ExtractDBColumns[auth.User]()...).
		From(userTable).
		Where(squirrel.Eq{"user_name": userName}).
		Limit(1)
	return r.FindOne(ctx, q, userName)
}

// TouchLastLogin stamps last_login_at.
func (r *UserRepo) TouchLastLogin(ctx context.Context, userID id.ID, at time.Time) error {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}
	return nil
}
