package product

import (
	"context"

	"smartshop/internal/core/id"
	"smartshop/internal/core/types"
	"smartshop/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// PricesByIDs returns current prices for the given ids; unknown ids are absent.
	PricesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]types.Money, error)
}
