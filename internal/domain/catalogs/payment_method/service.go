package payment_method

import (
	"smartshop/internal/core/tx"
	"smartshop/internal/domain"
)

// Repository defines the interface for PaymentMethod persistence.
type Repository interface {
	domain.CatalogRepository[*PaymentMethod]
}

// Service provides business logic for the PaymentMethod catalog.
type Service struct {
	*domain.CatalogService[*PaymentMethod]
}

// NewService creates a new PaymentMethod service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*PaymentMethod]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: "payment method",
		}),
	}
}
