package auth

import (
	"context"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/clock"
	appctx "smartshop/internal/core/context"
	"smartshop/internal/core/id"
	"smartshop/internal/core/tx"
	"smartshop/internal/core/validation"
	"smartshop/internal/domain"
	"smartshop/pkg/logger"
)

const invalidCredentials = "Invalid username or password"

// Service handles login and user management.
type Service struct {
	users     *domain.CatalogService[*User]
	userRepo  UserRepository
	roleRepo  RoleRepository
	jwt       *JWTService
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, roleRepo RoleRepository, jwtService *JWTService, txm tx.Manager, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	users := domain.NewCatalogService(domain.CatalogServiceConfig[*User]{
		Repo:       userRepo,
		TxManager:  txm,
		EntityName: "user",
	})

	s := &Service{
		users:     users,
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		jwt:       jwtService,
		txManager: txm,
		clock:     clk,
	}
	users.Hooks().OnBeforeCreate(s.ensureUniqueUserName)
	users.Hooks().OnBeforeCreate(s.ensureRoleExists)
	users.Hooks().OnBeforeUpdate(s.ensureRoleExists)
	return s
}

// Login authenticates credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	if err := validation.Struct(creds); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByUserName(ctx, creds.UserName)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, rejectLogin()
		}
		return nil, nil, apperror.Normalize(err, "Failed to authenticate.")
	}

	if !user.IsActive {
		logger.Warn(ctx, "login for inactive user", "user_name", user.UserName)
		return nil, nil, rejectLogin()
	}

	ok, err := CheckPassword(user.PasswordHash, creds.Password)
	if err != nil {
		return nil, nil, apperror.NewInternal(err)
	}
	if !ok {
		return nil, nil, rejectLogin()
	}

	roles, err := s.rolesFor(ctx, user)
	if err != nil {
		return nil, nil, apperror.Normalize(err, "Failed to authenticate.")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, nil, apperror.NewInternal(err)
	}

	now := s.clock.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "user_name", user.UserName)

	return &Token{AccessToken: token, ExpiresAt: expiresAt, TokenType: "Bearer"}, user, nil
}

// ValidateToken validates an access token.
func (s *Service) ValidateToken(token string) (*appctx.UserContext, error) {
	uc, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token").WithCause(err)
	}
	return uc, nil
}

// CreateUser hashes the password and stores a new user.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Normalize(err, "Failed to create user.")
	}

	user := NewUser(in.UserName, in.Email, hash)
	user.Name = in.Name
	user.RoleID = in.RoleID
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user created", "user_id", user.ID, "user_name", user.UserName)
	return user, nil
}

// UpdateUser changes profile fields under optimistic locking.
func (s *Service) UpdateUser(ctx context.Context, userID id.ID, in UpdateUserInput) (*User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.users.Modify(ctx, userID, in.Version, func(u *User) error {
		u.Email = in.Email
		u.Name = in.Name
		u.RoleID = in.RoleID
		u.IsActive = in.IsActive
		return nil
	})
}

// ChangePassword replaces the user's password hash.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return apperror.Normalize(err, "Failed to change password.")
	}
	_, err = s.users.Modify(ctx, userID, 0, func(u *User) error {
		u.PasswordHash = hash
		return nil
	})
	return err
}

// GetUser retrieves user by ID.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// ListUsers lists users.
func (s *Service) ListUsers(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*User], error) {
	return s.users.List(ctx, filter)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, userID id.ID) error {
	return s.users.Delete(ctx, userID)
}

// ListRoles returns the seeded roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, apperror.Normalize(err, "Failed to retrieve roles.")
	}
	return roles, nil
}

func (s *Service) rolesFor(ctx context.Context, user *User) ([]string, error) {
	if user.RoleID == nil {
		return nil, nil
	}
	role, err := s.roleRepo.GetByID(ctx, *user.RoleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return []string{role.Name}, nil
}

func (s *Service) ensureUniqueUserName(ctx context.Context, u *User) error {
	existing, err := s.userRepo.GetByUserName(ctx, u.UserName)
	if err == nil && existing != nil {
		return apperror.NewDuplicate("user", "userName", u.UserName)
	}
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	return nil
}

func (s *Service) ensureRoleExists(ctx context.Context, u *User) error {
	if u.RoleID == nil {
		return nil
	}
	if _, err := s.roleRepo.GetByID(ctx, *u.RoleID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("role does not exist").WithDetail("field", "roleId")
		}
		return err
	}
	return nil
}

func rejectLogin() error {
	return apperror.NewUnauthorized(invalidCredentials).
		WithDetail("fields", map[string]string{"userName": "Invalid credentials"})
}
