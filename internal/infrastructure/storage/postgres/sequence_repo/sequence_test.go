package sequence_repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/domain/sequence"
	"smartshop/internal/infrastructure/storage/postgres"
)

// recordingTx captures statements sent through Exec. Every other pgx.Tx
// method panics through the nil embedded interface.
type recordingTx struct {
	pgx.Tx
	sql      []string
	args     [][]any
	affected int64
}

func (t *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.sql = append(t.sql, sql)
	t.args = append(t.args, args)
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", t.affected)), nil
}

func newRecordingRepo(affected int64) (*Repo, *recordingTx, context.Context) {
	rec := &recordingTx{affected: affected}
	ctx := postgres.WithTx(context.Background(), rec)
	return NewRepo(postgres.NewTxManagerFromRawPool(nil)), rec, ctx
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{
		"id", "key", "description", "prefix", "length", "value", "created_at", "updated_at",
	}, columns)
}

func TestLockKey(t *testing.T) {
	repo, rec, ctx := newRecordingRepo(0)

	require.NoError(t, repo.LockKey(ctx, "Invoice"))

	require.Len(t, rec.sql, 1)
	assert.Equal(t, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", rec.sql[0])
	assert.Equal(t, []any{"sequence:Invoice"}, rec.args[0])
}

func TestLockKey_RequiresTransaction(t *testing.T) {
	repo := NewRepo(postgres.NewTxManagerFromRawPool(nil))

	err := repo.LockKey(context.Background(), "Invoice")
	assert.ErrorContains(t, err, "requires transaction context")
	assert.ErrorContains(t, err, "sequence:Invoice")
}

func TestUpdateValue_TouchesOnlyValueAndTimestamp(t *testing.T) {
	repo, rec, ctx := newRecordingRepo(1)
	at := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)
	cfg := &sequence.Config{ID: id.New(), Key: "Product", Prefix: "PRD", Length: 4, Value: 7, UpdatedAt: at}

	require.NoError(t, repo.UpdateValue(ctx, cfg))

	require.Len(t, rec.sql, 1)
	assert.Equal(t, "UPDATE sequence_configs SET value = $1, updated_at = $2 WHERE id = $3", rec.sql[0])
	require.Len(t, rec.args[0], 3)
	assert.Equal(t, int64(7), rec.args[0][0])
	assert.Equal(t, at, rec.args[0][1])
}

func TestUpdateSettings_LeavesValueAlone(t *testing.T) {
	repo, rec, ctx := newRecordingRepo(1)
	at := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)
	cfg := &sequence.Config{ID: id.New(), Key: "Product", Description: "Products", Prefix: "PRD", Length: 4, Value: 99, UpdatedAt: at}

	require.NoError(t, repo.UpdateSettings(ctx, cfg))

	require.Len(t, rec.sql, 1)
	assert.Equal(t,
		"UPDATE sequence_configs SET prefix = $1, length = $2, description = $3, updated_at = $4 WHERE id = $5",
		rec.sql[0])
	assert.Equal(t, []any{"PRD", 4, "Products", at}, rec.args[0][:4])
	assert.NotContains(t, rec.args[0], int64(99))
}

func TestUpdate_MissingRowIsNotFound(t *testing.T) {
	repo, _, ctx := newRecordingRepo(0)

	err := repo.UpdateValue(ctx, &sequence.Config{ID: id.New(), Value: 2})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_InsertsEveryColumn(t *testing.T) {
	repo, rec, ctx := newRecordingRepo(1)
	cfg := sequence.NewConfig("Customer", time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC))

	require.NoError(t, repo.Create(ctx, cfg))

	require.Len(t, rec.sql, 1)
	assert.Contains(t, rec.sql[0], "INSERT INTO sequence_configs")
	for _, c := range columns {
		assert.Contains(t, rec.sql[0], c)
	}
	assert.Contains(t, rec.args[0], "Customer")
	assert.Contains(t, rec.args[0], int64(1))
}
