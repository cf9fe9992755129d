package sequence

import (
	"context"
	"sort"
	"sync"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/core/lock"
	"smartshop/internal/core/tx/txtest"
)

// memoryRepo is an in-memory Repository that can take part in txtest transactions.
type memoryRepo struct {
	mu      sync.Mutex
	byKey   map[string]Config
	locked  []string
	failOn  string // "create", "update" or "get"
	failErr error

	// rows, when set, makes LockKey hold a per-key lock until the
	// transaction ends, like pg_advisory_xact_lock.
	rows *lock.Keyed
	// afterGet runs after GetByKey has read the row, between the read and
	// the write of Next.
	afterGet func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byKey: make(map[string]Config)}
}

func (r *memoryRepo) Snapshot() func() {
	r.mu.Lock()
	saved := make(map[string]Config, len(r.byKey))
	for k, v := range r.byKey {
		saved[k] = v
	}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.byKey = saved
		r.mu.Unlock()
	}
}

func (r *memoryRepo) seed(cfg Config) {
	if id.IsNil(cfg.ID) {
		cfg.ID = id.New()
	}
	r.byKey[cfg.Key] = cfg
}

func (r *memoryRepo) value(key string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.byKey[key]
	return cfg.Value, ok
}

func (r *memoryRepo) LockKey(ctx context.Context, key string) error {
	r.mu.Lock()
	r.locked = append(r.locked, key)
	r.mu.Unlock()

	if r.rows == nil {
		return nil
	}
	unlock, err := r.rows.Lock(ctx, key)
	if err != nil {
		return err
	}
	txtest.OnFinish(ctx, unlock)
	return nil
}

func (r *memoryRepo) GetByKey(_ context.Context, key string) (*Config, error) {
	r.mu.Lock()
	if r.failOn == "get" {
		r.mu.Unlock()
		return nil, r.failErr
	}
	cfg, ok := r.byKey[key]
	r.mu.Unlock()

	if r.afterGet != nil {
		r.afterGet()
	}
	if !ok {
		return nil, apperror.NewNotFound("sequence", key)
	}
	return &cfg, nil
}

func (r *memoryRepo) Create(_ context.Context, cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "create" {
		return r.failErr
	}
	if _, ok := r.byKey[cfg.Key]; ok {
		return apperror.NewDuplicate("sequence", "key", cfg.Key)
	}
	r.byKey[cfg.Key] = *cfg
	return nil
}

func (r *memoryRepo) UpdateValue(_ context.Context, cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "update" {
		return r.failErr
	}
	for k, stored := range r.byKey {
		if stored.ID == cfg.ID {
			stored.Value = cfg.Value
			stored.UpdatedAt = cfg.UpdatedAt
			r.byKey[k] = stored
			return nil
		}
	}
	return apperror.NewNotFound("sequence", cfg.ID.String())
}

func (r *memoryRepo) UpdateSettings(_ context.Context, cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byKey[cfg.Key]
	if !ok {
		return apperror.NewNotFound("sequence", cfg.Key)
	}
	stored.Prefix, stored.Length, stored.Description = cfg.Prefix, cfg.Length, cfg.Description
	r.byKey[cfg.Key] = stored
	return nil
}

func (r *memoryRepo) List(context.Context) ([]*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Config, 0, len(r.byKey))
	for _, cfg := range r.byKey {
		c := cfg
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
