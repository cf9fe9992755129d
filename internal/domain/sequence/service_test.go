package sequence

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/clock"
	"smartshop/internal/core/lock"
	"smartshop/internal/core/tx/txtest"
)

func newTestService() (*Service, *memoryRepo, *txtest.Manager) {
	repo := newMemoryRepo()
	txm := txtest.New(repo)
	clk := clock.NewFixed(time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC))
	return NewService(repo, txm, lock.NewKeyed(), clk), repo, txm
}

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix string
		length int
		n      int64
		want   string
	}{
		{"", 6, 1, "000001"},
		{"PRD", 4, 100, "PRD-0100"},
		{"INV", 3, 12345, "INV-12345"},
		{"", 1, 0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.prefix, tt.length, tt.n))
	}
}

func TestNext_InitialisesUnknownKey(t *testing.T) {
	for _, increment := range []bool{true, false} {
		svc, repo, _ := newTestService()

		got, err := svc.Next(context.Background(), "Invoice", increment)
		require.NoError(t, err)
		assert.Equal(t, "000001", got)

		cfg, err := repo.GetByKey(context.Background(), "Invoice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), cfg.Value)
		assert.Equal(t, "Sequence for Invoice", cfg.Description)
		assert.Equal(t, DefaultLength, cfg.Length)
		assert.Empty(t, cfg.Prefix)
	}
}

func TestNext_IncrementsGapFree(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.seed(Config{Key: "Invoice", Length: 6, Value: 5})

	for want := 6; want <= 9; want++ {
		got, err := svc.Next(context.Background(), "Invoice", true)
		require.NoError(t, err)
		assert.Equal(t, Format("", 6, int64(want)), got)
	}
	v, _ := repo.value("Invoice")
	assert.Equal(t, int64(9), v)
	assert.Contains(t, repo.locked, "Invoice")
}

func TestNext_ReadOnlyIsStable(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.seed(Config{Key: "Customer", Length: 6, Value: 10})

	for i := 0; i < 3; i++ {
		got, err := svc.Next(context.Background(), "Customer", false)
		require.NoError(t, err)
		assert.Equal(t, "000010", got)
	}
	v, _ := repo.value("Customer")
	assert.Equal(t, int64(10), v)
}

func TestNext_FormatsWithPrefix(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.seed(Config{Key: "Product", Prefix: "PRD", Length: 4, Value: 99})

	got, err := svc.Next(context.Background(), "Product", true)
	require.NoError(t, err)
	assert.Equal(t, "PRD-0100", got)
}

// nopLocker grants every lock immediately.
type nopLocker struct{}

func (nopLocker) Lock(context.Context, string) (lock.Unlock, error) { return func() {}, nil }

// newConcurrentService runs transactions in parallel so that only the
// service's own locks keep callers of one key apart.
func newConcurrentService(locker lock.Locker, rowLocks bool) (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	if rowLocks {
		repo.rows = lock.NewKeyed()
	}
	clk := clock.NewFixed(time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC))
	return NewService(repo, txtest.NewConcurrent(repo), locker, clk), repo
}

// rendezvous returns a hook that holds each caller until n callers have
// arrived or wait has passed, and a channel closed once all n met.
func rendezvous(n int, wait time.Duration) (func(), <-chan struct{}) {
	var mu sync.Mutex
	arrived := 0
	met := make(chan struct{})
	return func() {
		mu.Lock()
		arrived++
		if arrived == n {
			close(met)
		}
		mu.Unlock()

		select {
		case <-met:
		case <-time.After(wait):
		}
	}, met
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func nextConcurrently(t *testing.T, svc *Service, keys ...string) []string {
	t.Helper()
	results := make([]string, len(keys))
	var wg conc.WaitGroup
	for i, key := range keys {
		wg.Go(func() {
			v, err := svc.Next(context.Background(), key, true)
			assert.NoError(t, err)
			results[i] = v
		})
	}
	wg.Wait()
	sort.Strings(results)
	return results
}

func TestNext_ConcurrentIncrementsAreDistinct(t *testing.T) {
	tests := []struct {
		name     string
		locker   lock.Locker
		rowLocks bool
	}{
		{"keyed lock and row lock", lock.NewKeyed(), true},
		{"keyed lock only", lock.NewKeyed(), false},
		{"row lock only", nopLocker{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newConcurrentService(tt.locker, tt.rowLocks)
			hook, met := rendezvous(2, 100*time.Millisecond)
			repo.afterGet = hook

			got := nextConcurrently(t, svc, "K", "K")

			assert.Equal(t, []string{"000001", "000002"}, got)
			assert.False(t, closed(met), "two callers of one key read the counter at the same time")
			v, _ := repo.value("K")
			assert.Equal(t, int64(2), v)
		})
	}
}

func TestNext_UnlockedCallersCollide(t *testing.T) {
	svc, repo := newConcurrentService(nopLocker{}, false)
	repo.seed(Config{Key: "K", Length: 6, Value: 0})
	hook, met := rendezvous(2, 5*time.Second)
	repo.afterGet = hook

	got := nextConcurrently(t, svc, "K", "K")

	require.True(t, closed(met))
	assert.Equal(t, []string{"000001", "000001"}, got)
}

func TestNext_DifferentKeysDoNotBlock(t *testing.T) {
	svc, repo := newConcurrentService(lock.NewKeyed(), true)
	hook, met := rendezvous(2, 5*time.Second)
	repo.afterGet = hook

	got := nextConcurrently(t, svc, "A", "B")

	assert.True(t, closed(met), "callers of different keys were serialised")
	assert.Equal(t, []string{"000001", "000001"}, got)
}

func TestNext_ManyConcurrentCallersNoGaps(t *testing.T) {
	svc, repo := newConcurrentService(lock.NewKeyed(), true)
	repo.seed(Config{Key: "K", Length: 6, Value: 0})
	repo.afterGet = runtime.Gosched

	keys := make([]string, 50)
	for i := range keys {
		keys[i] = "K"
	}
	got := nextConcurrently(t, svc, keys...)

	for i, v := range got {
		assert.Equal(t, Format("", 6, int64(i+1)), v)
	}
	v, _ := repo.value("K")
	assert.Equal(t, int64(50), v)
}

func TestNext_StampsUpdatedAtFromClock(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.seed(Config{Key: "Invoice", Length: 6, Value: 1})

	_, err := svc.Next(context.Background(), "Invoice", true)
	require.NoError(t, err)

	cfg, err := repo.GetByKey(context.Background(), "Invoice")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC), cfg.UpdatedAt)
}

func TestNext_PersistenceFailure(t *testing.T) {
	svc, repo, txm := newTestService()
	repo.seed(Config{Key: "Invoice", Length: 6, Value: 5})
	repo.failOn = "update"
	repo.failErr = errors.New("disk full")

	got, err := svc.Next(context.Background(), "Invoice", true)
	assert.Empty(t, got)
	assert.True(t, apperror.IsPersistence(err))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, txm.Rollbacks())

	v, _ := repo.value("Invoice")
	assert.Equal(t, int64(5), v)
}

func TestNext_CancelledContextLeavesNoRow(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Next(ctx, "Invoice", true)
	assert.Error(t, err)
	_, ok := repo.value("Invoice")
	assert.False(t, ok)
}

func TestNext_RejectsEmptyKey(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Next(context.Background(), "  ", true)
	assert.True(t, apperror.IsValidation(err))
}

func TestNext_JoinsCallerTransaction(t *testing.T) {
	svc, repo, txm := newTestService()
	repo.seed(Config{Key: "Invoice", Length: 6, Value: 3})

	err := txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		got, err := svc.Next(ctx, "Invoice", true)
		require.NoError(t, err)
		assert.Equal(t, "000004", got)
		return errors.New("invoice insert failed")
	})
	require.Error(t, err)

	v, _ := repo.value("Invoice")
	assert.Equal(t, int64(3), v, "rolled back caller must not burn a number")
}

func TestConfigure(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	cfg, err := svc.Configure(ctx, "Product", Settings{Prefix: "PRD", Length: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Value)
	assert.Equal(t, "Sequence for Product", cfg.Description)

	got, err := svc.Next(ctx, "Product", true)
	require.NoError(t, err)
	assert.Equal(t, "PRD-0001", got)

	_, err = svc.Configure(ctx, "Product", Settings{Prefix: "P", Length: 2, Description: "Product codes"})
	require.NoError(t, err)
	stored, _ := repo.GetByKey(ctx, "Product")
	assert.Equal(t, int64(1), stored.Value)
	assert.Equal(t, "P", stored.Prefix)
	assert.Equal(t, "Product codes", stored.Description)

	_, err = svc.Configure(ctx, "Product", Settings{Length: 0})
	assert.True(t, apperror.IsValidation(err))
}

func TestList(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.seed(Config{Key: "b", Length: 6})
	repo.seed(Config{Key: "a", Length: 6})

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Key)
}
