package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"smartshop/internal/core/apperror"
)

// Builder is the squirrel statement builder configured for PostgreSQL.
var Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select runs q and scans every row into dst (a pointer to a slice).
func Select(ctx context.Context, q Querier, dst any, b squirrel.Sqlizer) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}
	return pgxscan.Select(ctx, q, dst, sql, args...)
}

// Get runs q and scans exactly one row into dst.
// It returns pgx.ErrNoRows (checkable with IsNoRows) when nothing matched.
func Get(ctx context.Context, q Querier, dst any, b squirrel.Sqlizer) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}
	return pgxscan.Get(ctx, q, dst, sql, args...)
}

// Exec runs a statement and returns the number of affected rows.
func Exec(ctx context.Context, q Querier, b squirrel.Sqlizer) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsNoRows reports whether err means the query matched no rows.
func IsNoRows(err error) bool {
	return pgxscan.NotFound(err)
}

// PostgreSQL error codes mapped onto application errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
)

// MapError converts constraint violations into AppErrors and leaves
// everything else untouched for the caller to wrap.
//
// A foreign key pointing at a missing row is the caller's input error (400).
// Deleting a row that others still reference is a conflict (409).
func MapError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
	case pgForeignKeyViolation:
		if strings.Contains(pgErr.Detail, "is still referenced") {
			return apperror.NewConflict(fmt.Sprintf("%s is still referenced by other records", entity)).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
		return apperror.NewValidation(fmt.Sprintf("%s references a record that does not exist", entity)).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgSerializationFail:
		return apperror.NewConcurrentModification(entity, nil).WithCause(err)
	}
	return err
}
