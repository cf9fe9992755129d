package customer

import (
	"smartshop/internal/core/tx"
	"smartshop/internal/domain"
	"smartshop/internal/domain/sequence"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]
}

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.CatalogService[*Customer]
}

// NewService creates a new Customer service.
func NewService(repo Repository, txm tx.Manager, numberer domain.Numberer) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "customer",
	})

	base.Hooks().OnBeforeCreate(domain.AssignCode(numberer, sequence.KeyCustomer, func(c *Customer) *string {
		return &c.Code
	}))

	return &Service{CatalogService: base}
}
