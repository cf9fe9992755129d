package product

import (
	"context"

	"smartshop/internal/core/id"
	"smartshop/internal/core/tx"
	"smartshop/internal/core/types"
	"smartshop/internal/domain"
	"smartshop/internal/domain/sequence"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service. Codes are drawn from numberer
// inside the create transaction.
func NewService(repo Repository, txm tx.Manager, numberer domain.Numberer) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "product",
	})

	base.Hooks().OnBeforeCreate(domain.AssignCode(numberer, sequence.KeyProduct, func(p *Product) *string {
		return &p.Code
	}))

	return &Service{CatalogService: base, repo: repo}
}

// PricesByIDs exposes current prices to the invoice service.
func (s *Service) PricesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]types.Money, error) {
	return s.repo.PricesByIDs(ctx, ids)
}
