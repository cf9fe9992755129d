// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/domain"
	"smartshop/internal/infrastructure/storage/postgres"
)

// versioned is satisfied by entities embedding entity.BaseEntity.
type versioned interface {
	Touch()
	SetVersion(v int)
}

// BaseCatalogRepo provides common CRUD operations for catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T domain.CatalogEntity] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	searchCols []string
	newFn      func() T
}

// NewBaseCatalogRepo creates a new base catalog repository.
// searchCols are matched by ListFilter.Search with ILIKE.
func NewBaseCatalogRepo[T domain.CatalogEntity](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols, searchCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		searchCols: searchCols,
		newFn:      newFn,
	}
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// baseSelect creates a SELECT builder.
func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder.
		Select(r.selectCols...).
		From(r.tableName)
}

// columnsOf projects entity onto the table columns.
func (r *BaseCatalogRepo[T]) columnsOf(entity T, skip ...string) map[string]any {
	data := postgres.StructToMap(entity)
	out := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if containsCol(skip, col) {
			continue
		}
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	q := postgres.Builder.
		Insert(r.tableName).
		SetMap(r.columnsOf(entity))

	if _, err := postgres.Exec(ctx, r.querier(ctx), q); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, postgres.MapError(err, r.entityName))
	}
	return nil
}

// Update modifies an existing entity with optimistic locking. On success the
// entity carries the bumped version.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	expected := entity.GetVersion()
	v, ok := any(entity).(versioned)
	if !ok {
		return fmt.Errorf("%s entity is not versioned", r.tableName)
	}
	v.Touch()

	q := postgres.Builder.
		Update(r.tableName).
		SetMap(r.columnsOf(entity, "id", "created_at")).
		Where(squirrel.Eq{"id": entity.GetID()}).
		Where(squirrel.Eq{"version": expected})

	n, err := postgres.Exec(ctx, r.querier(ctx), q)
	if err != nil {
		v.SetVersion(expected)
		return fmt.Errorf("update %s: %w", r.tableName, postgres.MapError(err, r.entityName))
	}
	if n == 0 {
		v.SetVersion(expected)
		return r.missOrStale(ctx, entity.GetID())
	}
	return nil
}

// missOrStale tells a deleted row apart from a stale version.
func (r *BaseCatalogRepo[T]) missOrStale(ctx context.Context, entityID id.ID) error {
	exists, err := r.Exists(ctx, entityID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return apperror.NewConcurrentModification(r.entityName, entityID.String())
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1), entityID.String())
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()
	if err := postgres.Get(ctx, r.querier(ctx), entity, q); err != nil {
		var zero T
		if postgres.IsNoRows(err) {
			return zero, apperror.NewNotFound(r.entityName, key)
		}
		return zero, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// List retrieves entities with filtering and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q, err := r.listQuery(filter)
	if err != nil {
		return result, err
	}

	countQ := postgres.Builder.
		Select("COUNT(*)").
		FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "id ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	if err := postgres.Select(ctx, r.querier(ctx), &result.Items, q); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}

func (r *BaseCatalogRepo[T]) listQuery(filter domain.ListFilter) (squirrel.SelectBuilder, error) {
	q := r.baseSelect()
	if filter.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + filter.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	return q, nil
}

// Exists checks if entity exists.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	q := postgres.Builder.
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	var one int
	if err := postgres.Get(ctx, r.querier(ctx), &one, q); err != nil {
		if postgres.IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return true, nil
}

// Delete performs physical removal from the database.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	q := postgres.Builder.
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID})

	n, err := postgres.Exec(ctx, r.querier(ctx), q)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, postgres.MapError(err, r.entityName))
	}
	if n == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		orderBy = "created_at"
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" || !containsCol(r.selectCols, field) {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("field", "orderBy")
	}
	return field + " " + direction, nil
}

func containsCol(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}
