// Package lock provides keyed mutual exclusion.
//
// Callers serialise work on one logical resource (a sequence key, an invoice id)
// without blocking unrelated resources. The in-process Keyed locker is enough for a
// single API instance; infrastructure/lock offers a Redis-backed implementation for
// several instances sharing one database.
package lock

import (
	"context"
	"sync"
)

// Unlock releases a previously obtained lock. It is safe to call once.
type Unlock func()

// Locker obtains an exclusive lock for key, blocking until it is available
// or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// Keyed is an in-process Locker. Entries are reference counted and removed
// when the last holder or waiter leaves, so the map does not grow with the
// number of keys ever seen.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewKeyed creates an empty in-process locker.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock implements Locker.
func (k *Keyed) Lock(ctx context.Context, key string) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

func (k *Keyed) release(key string, e *entry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

// Len returns the number of keys currently held or awaited.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
