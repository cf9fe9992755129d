package sequence

import (
	"context"
	"time"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/clock"
	"smartshop/internal/core/lock"
	"smartshop/internal/core/tx"
	"smartshop/pkg/logger"
)

// Service issues formatted counter values.
type Service struct {
	repo   Repository
	txm    tx.Manager
	locker lock.Locker
	clock  clock.Clock
}

// NewService creates a sequence service. A nil locker falls back to an
// in-process keyed locker; a nil clock to the system clock.
func NewService(repo Repository, txm tx.Manager, locker lock.Locker, clk clock.Clock) *Service {
	if locker == nil {
		locker = lock.NewKeyed()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{repo: repo, txm: txm, locker: locker, clock: clk}
}

func lockKey(key string) string { return "sequence:" + key }

// Next returns the next formatted value for key.
//
// An unseen key is created with value 1 whatever increment says. For an
// existing key, increment advances the stored value by one; otherwise the
// current value is returned unchanged. The read-modify-write runs in one
// transaction under a lock scoped to key, so concurrent callers observe a
// strictly increasing sequence without gaps.
//
// When ctx already carries a transaction the counter update joins it, and a
// rollback of the caller's work also returns the number.
func (s *Service) Next(ctx context.Context, key string, increment bool) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	unlock, err := s.locker.Lock(ctx, lockKey(key))
	if err != nil {
		return "", apperror.NewPersistence("Failed to generate sequence value.", err)
	}
	defer unlock()

	var out string
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockKey(ctx, key); err != nil {
			return err
		}

		cfg, err := s.repo.GetByKey(ctx, key)
		switch {
		case apperror.IsNotFound(err):
			cfg = NewConfig(key, s.clock.Now())
			if err := s.repo.Create(ctx, cfg); err != nil {
				return err
			}
			logger.Info(ctx, "sequence initialised", "key", key)
		case err != nil:
			return err
		case increment:
			cfg.Value++
			cfg.UpdatedAt = s.clock.Now()
			if err := s.repo.UpdateValue(ctx, cfg); err != nil {
				return err
			}
		}

		out = cfg.Format(cfg.Value)
		return nil
	})
	if err != nil {
		logger.Error(ctx, "sequence generation failed", "key", key, "error", err)
		return "", apperror.Normalize(err, "Failed to generate sequence value.")
	}
	return out, nil
}

// List returns every counter ordered by key.
func (s *Service) List(ctx context.Context) ([]*Config, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Normalize(err, "Failed to list sequences.")
	}
	return configs, nil
}

// Configure creates or updates the prefix, length and description of key.
// The stored value is left untouched; a new counter starts at 0 so the first
// incrementing Next returns 1.
func (s *Service) Configure(ctx context.Context, key string, settings Settings) (*Config, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lockKey(key))
	if err != nil {
		return nil, apperror.NewPersistence("Failed to configure sequence.", err)
	}
	defer unlock()

	var result *Config
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockKey(ctx, key); err != nil {
			return err
		}

		now := s.clock.Now()
		cfg, err := s.repo.GetByKey(ctx, key)
		switch {
		case apperror.IsNotFound(err):
			cfg = NewConfig(key, now)
			cfg.Value = 0
			applySettings(cfg, settings, now)
			if err := s.repo.Create(ctx, cfg); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			applySettings(cfg, settings, now)
			if err := s.repo.UpdateSettings(ctx, cfg); err != nil {
				return err
			}
		}
		result = cfg
		return nil
	})
	if err != nil {
		return nil, apperror.Normalize(err, "Failed to configure sequence.")
	}
	return result, nil
}

func applySettings(cfg *Config, s Settings, now time.Time) {
	cfg.Prefix = s.Prefix
	cfg.Length = s.Length
	if s.Description != "" {
		cfg.Description = s.Description
	}
	cfg.UpdatedAt = now
}
