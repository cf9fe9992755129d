// Package domaintest provides in-memory fakes of the generic catalog contracts.
package domaintest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/domain"
)

// MemoryRepo is an in-memory domain.CatalogRepository. Values are copied in
// and out through clone so callers never share state with the store.
type MemoryRepo[T domain.CatalogEntity] struct {
	mu     sync.Mutex
	rows   map[id.ID]T
	clone  func(T) T
	search func(T) string

	// FailWith, when set, is returned by every write.
	FailWith error
}

// NewMemoryRepo creates an empty store. search returns the text matched by
// ListFilter.Search and may be nil.
func NewMemoryRepo[T domain.CatalogEntity](clone func(T) T, search func(T) string) *MemoryRepo[T] {
	return &MemoryRepo[T]{rows: make(map[id.ID]T), clone: clone, search: search}
}

// Snapshot implements txtest.Snapshotter.
func (r *MemoryRepo[T]) Snapshot() func() {
	r.mu.Lock()
	saved := make(map[id.ID]T, len(r.rows))
	for k, v := range r.rows {
		saved[k] = r.clone(v)
	}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.rows = saved
		r.mu.Unlock()
	}
}

// Len returns the number of stored rows.
func (r *MemoryRepo[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// All returns copies of every stored row.
func (r *MemoryRepo[T]) All() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.rows))
	for _, v := range r.rows {
		out = append(out, r.clone(v))
	}
	return out
}

// Put stores entity as-is, bypassing version checks.
func (r *MemoryRepo[T]) Put(entity T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[entity.GetID()] = r.clone(entity)
}

func (r *MemoryRepo[T]) Create(_ context.Context, entity T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.rows[entity.GetID()] = r.clone(entity)
	return nil
}

func (r *MemoryRepo[T]) GetByID(_ context.Context, entityID id.ID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[entityID]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound("entity", entityID.String())
	}
	return r.clone(v), nil
}

// Update bumps the version through the versioned interface when the
// stored version matches.
func (r *MemoryRepo[T]) Update(_ context.Context, entity T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	stored, ok := r.rows[entity.GetID()]
	if !ok {
		return apperror.NewNotFound("entity", entity.GetID().String())
	}
	if stored.GetVersion() != entity.GetVersion() {
		return apperror.NewConcurrentModification("entity", entity.GetID().String())
	}
	if v, ok := any(entity).(interface{ Touch() }); ok {
		v.Touch()
	}
	r.rows[entity.GetID()] = r.clone(entity)
	return nil
}

func (r *MemoryRepo[T]) Delete(_ context.Context, entityID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.rows[entityID]; !ok {
		return apperror.NewNotFound("entity", entityID.String())
	}
	delete(r.rows, entityID)
	return nil
}

func (r *MemoryRepo[T]) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []T
	for _, v := range r.rows {
		if filter.Search != "" && r.search != nil &&
			!strings.Contains(strings.ToLower(r.search(v)), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, r.clone(v))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].GetID().String() < items[j].GetID().String() })

	total := int64(len(items))
	if filter.Offset < len(items) {
		items = items[filter.Offset:]
	} else {
		items = nil
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return domain.ListResult[T]{Items: items, TotalCount: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// StaticNumberer returns key-prefixed counters without persistence.
type StaticNumberer struct {
	mu     sync.Mutex
	counts map[string]int
}

// Next implements domain.Numberer.
func (n *StaticNumberer) Next(_ context.Context, key string, increment bool) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.counts == nil {
		n.counts = make(map[string]int)
	}
	if increment || n.counts[key] == 0 {
		n.counts[key]++
	}
	return fmt.Sprintf("%s-%06d", key, n.counts[key]), nil
}
