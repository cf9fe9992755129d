package sequence

import (
	"context"
)

// Repository persists counters. Every method must use the transaction
// carried by ctx when there is one.
type Repository interface {
	// LockKey serialises callers on key until the surrounding transaction ends.
	LockKey(ctx context.Context, key string) error

	// GetByKey returns apperror NotFound when no counter exists for key.
	GetByKey(ctx context.Context, key string) (*Config, error)

	Create(ctx context.Context, cfg *Config) error
	// UpdateValue stores cfg.Value and cfg.UpdatedAt.
	UpdateValue(ctx context.Context, cfg *Config) error
	UpdateSettings(ctx context.Context, cfg *Config) error
	List(ctx context.Context) ([]*Config, error)
}
