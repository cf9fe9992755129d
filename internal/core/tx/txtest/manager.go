// Package txtest provides an in-memory tx.Manager for service tests.
package txtest

import (
	"context"
	"fmt"
	"sync"

	"smartshop/internal/core/tx"
)

// Snapshotter is implemented by in-memory stores that take part in transactions.
// Snapshot captures the current state and returns a function restoring it.
type Snapshotter interface {
	Snapshot() (restore func())
}

// Manager restores every participant's state on rollback, mimicking a
// database closely enough for unit tests.
//
// A Manager built with New serialises transactions. One built with
// NewConcurrent lets them overlap, leaving isolation to the locks taken by
// the code under test; rollbacks there restore whole-store snapshots and
// should not race other writers.
type Manager struct {
	mu         sync.Mutex
	parts      []Snapshotter
	concurrent bool

	statsMu   sync.Mutex
	commits   int
	rollbacks int
}

var _ tx.ReadOnlyManager = (*Manager)(nil)

// New creates a serialising manager over the given participants.
func New(parts ...Snapshotter) *Manager {
	return &Manager{parts: parts}
}

// NewConcurrent creates a manager whose transactions run in parallel.
func NewConcurrent(parts ...Snapshotter) *Manager {
	return &Manager{parts: parts, concurrent: true}
}

type txKey struct{}

// txState is owned by the goroutine running the transaction.
type txState struct {
	onFinish []func()
}

func (s *txState) finish() {
	for i := len(s.onFinish) - 1; i >= 0; i-- {
		s.onFinish[i]()
	}
}

// InTx reports whether ctx carries a transaction started by a Manager.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

// OnFinish registers fn to run when the transaction carried by ctx commits
// or rolls back, the way a database releases row and advisory locks.
// Outside a transaction fn runs immediately.
func OnFinish(ctx context.Context, fn func()) {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		fn()
		return
	}
	st.onFinish = append(st.onFinish, fn)
}

// RunInTransaction implements tx.Manager.
func (m *Manager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	if !m.concurrent {
		m.mu.Lock()
		defer m.mu.Unlock()
	}

	st := &txState{}
	defer st.finish()

	restores := make([]func(), 0, len(m.parts))
	for _, p := range m.parts {
		restores = append(restores, p.Snapshot())
	}
	rollback := func() {
		for _, r := range restores {
			r()
		}
		m.statsMu.Lock()
		m.rollbacks++
		m.statsMu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, st)); err == nil {
		err = ctx.Err()
	}
	if err != nil {
		rollback()
		return err
	}

	m.statsMu.Lock()
	m.commits++
	m.statsMu.Unlock()
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (m *Manager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}

// Commits returns the number of committed transactions.
func (m *Manager) Commits() int {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.commits
}

// Rollbacks returns the number of rolled back transactions.
func (m *Manager) Rollbacks() int {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.rollbacks
}
