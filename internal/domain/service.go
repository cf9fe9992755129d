package domain

import (
	"context"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/core/tx"
	"smartshop/pkg/logger"
)

// CatalogService provides the validate / load / mutate / persist cycle for
// single-entity catalogs.
type CatalogService[T CatalogEntity] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T CatalogEntity] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T CatalogEntity](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// EntityName returns the name used in errors.
func (s *CatalogService[T]) EntityName() string {
	return s.entityName
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	return apperror.Normalize(err, "Failed to retrieve "+s.entityName+".")
}

// Create validates and inserts a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
			return err
		}
		return s.repo.Create(ctx, entity)
	})
	if err != nil {
		return apperror.Normalize(err, "Failed to create "+s.entityName+".")
	}

	if err := s.hooks.Run(ctx, AfterCreate, entity); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		var zero T
		return zero, s.normalizeGetErr(err, entityID)
	}
	return entity, nil
}

// Update validates and persists an entity loaded and mutated by the caller.
// The caller's version is the optimistic lock.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
			return err
		}
		return s.repo.Update(ctx, entity)
	})
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound(s.entityName, entity.GetID().String())
		}
		return apperror.Normalize(err, "Failed to update "+s.entityName+".")
	}
	return nil
}

// Modify loads the entity, applies mutate, and persists it in one transaction.
// A non-zero expectedVersion must match the stored version.
func (s *CatalogService[T]) Modify(ctx context.Context, entityID id.ID, expectedVersion int, mutate func(T) error) (T, error) {
	var zero T
	entity, err := s.GetByID(ctx, entityID)
	if err != nil {
		return zero, err
	}
	if expectedVersion != 0 && expectedVersion != entity.GetVersion() {
		return zero, apperror.NewConcurrentModification(s.entityName, entityID.String())
	}
	if err := mutate(entity); err != nil {
		return zero, s.normalizeValidationErr(err)
	}
	if err := s.Update(ctx, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// Delete physically removes the entity.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entity, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
			return err
		}
		return s.repo.Delete(ctx, entityID)
	})
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound(s.entityName, entityID.String())
		}
		return apperror.Normalize(err, "Failed to delete "+s.entityName+".")
	}
	return nil
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	res, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListResult[T]{}, apperror.Normalize(err, "Failed to retrieve "+s.entityName+" list.")
	}
	return res, nil
}
