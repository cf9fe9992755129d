package settings

import (
	"context"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/tx"
	"smartshop/internal/domain"
)

// Repository defines the interface for Setting persistence.
type Repository interface {
	domain.CatalogRepository[*Setting]

	// GetByKey returns apperror NotFound on a miss.
	GetByKey(ctx context.Context, key string) (*Setting, error)
}

// Service provides business logic for settings.
type Service struct {
	*domain.CatalogService[*Setting]
	repo Repository
}

// NewService creates a new settings service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Setting]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: "setting",
		}),
		repo: repo,
	}
}

// GetByKey retrieves a setting by its unique key.
func (s *Service) GetByKey(ctx context.Context, key string) (*Setting, error) {
	setting, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("setting", key)
		}
		return nil, apperror.Normalize(err, "Failed to retrieve setting.")
	}
	return setting, nil
}
