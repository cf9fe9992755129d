// Package sequence_repo provides the PostgreSQL implementation of sequence.Repository.
package sequence_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/domain/sequence"
	"smartshop/internal/infrastructure/storage/postgres"
)

const table = "sequence_configs"

var columns = postgres.ExtractDBColumns[sequence.Config]()

var _ sequence.Repository = (*Repo)(nil)

// Repo implements sequence.Repository.
type Repo struct {
	txManager *postgres.TxManager
}

// NewRepo creates a new sequence repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

// LockKey takes a transaction-scoped advisory lock on the key, which also
// covers the first insert of a counter that does not exist yet.
func (r *Repo) LockKey(ctx context.Context, key string) error {
	return r.txManager.AdvisoryXactLock(ctx, lockKey(key))
}

func lockKey(key string) string { return "sequence:" + key }

// GetByKey loads a counter by key.
func (r *Repo) GetByKey(ctx context.Context, key string) (*sequence.Config, error) {
	q := postgres.Builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"key": key})

	var cfg sequence.Config
	if err := postgres.Get(ctx, r.txManager.GetQuerier(ctx), &cfg, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("sequence", key)
		}
		return nil, fmt.Errorf("get sequence %q: %w", key, err)
	}
	return &cfg, nil
}

// Create inserts a counter.
func (r *Repo) Create(ctx context.Context, cfg *sequence.Config) error {
	q := postgres.Builder.Insert(table).SetMap(postgres.StructToMap(cfg))
	if _, err := postgres.Exec(ctx, r.txManager.GetQuerier(ctx), q); err != nil {
		return fmt.Errorf("insert sequence %q: %w", cfg.Key, postgres.MapError(err, "sequence"))
	}
	return nil
}

// UpdateValue stores the last issued number and its timestamp.
func (r *Repo) UpdateValue(ctx context.Context, cfg *sequence.Config) error {
	q := postgres.Builder.
		Update(table).
		Set("value", cfg.Value).
		Set("updated_at", cfg.UpdatedAt).
		Where(squirrel.Eq{"id": cfg.ID})
	return r.exec(ctx, q, cfg.ID)
}

// UpdateSettings stores prefix, length and description without touching value.
func (r *Repo) UpdateSettings(ctx context.Context, cfg *sequence.Config) error {
	q := postgres.Builder.
		Update(table).
		Set("prefix", cfg.Prefix).
		Set("length", cfg.Length).
		Set("description", cfg.Description).
		Set("updated_at", cfg.UpdatedAt).
		Where(squirrel.Eq{"id": cfg.ID})
	return r.exec(ctx, q, cfg.ID)
}

// List returns every counter ordered by key.
func (r *Repo) List(ctx context.Context) ([]*sequence.Config, error) {
	q := postgres.Builder.Select(columns...).From(table).OrderBy("key")

	var out []*sequence.Config
	if err := postgres.Select(ctx, r.txManager.GetQuerier(ctx), &out, q); err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	return out, nil
}

func (r *Repo) exec(ctx context.Context, q squirrel.UpdateBuilder, cfgID id.ID) error {
	n, err := postgres.Exec(ctx, r.txManager.GetQuerier(ctx), q)
	if err != nil {
		return fmt.Errorf("update sequence: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("sequence", cfgID.String())
	}
	return nil
}
