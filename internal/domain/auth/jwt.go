package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smartshop/internal/core/clock"
	appctx "smartshop/internal/core/context"
	"smartshop/internal/core/id"
)

// MinSecretLength is the HS256 key size in bytes.
const MinSecretLength = 32

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "smartshop",
		Audience:       "smartshop",
		AccessTokenTTL: 30 * time.Minute,
	}
}

// Claims represents JWT claims. Subject carries the user name.
type Claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"uid"`
	Roles  []string `json:"roles,omitempty"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
	clock  clock.Clock
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig, clk clock.Clock) (*JWTService, error) {
	if len(config.Secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if config.Issuer == "" || config.Audience == "" {
		return nil, errors.New("jwt issuer and audience are required")
	}
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = 30 * time.Minute
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &JWTService{config: config, clock: clk}, nil
}

// GenerateAccessToken signs an access token for the user.
func (s *JWTService) GenerateAccessToken(user *User, roles []string) (string, time.Time, error) {
	if user == nil || user.UserName == "" {
		return "", time.Time{}, errors.New("user name is required")
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New().String(),
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings{s.config.Audience},
			Subject:   user.UserName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: user.ID.String(),
		Roles:  roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns user context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithAudience(s.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return &appctx.UserContext{
		UserID:   claims.UserID,
		UserName: claims.Subject,
		Roles:    claims.Roles,
		TokenID:  claims.ID,
	}, nil
}
