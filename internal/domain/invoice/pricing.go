package invoice

import (
	"context"

	"github.com/samber/lo"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/core/types"
	"smartshop/pkg/logger"
)

// computeTotal returns sum(quantity * current price) over items, loading the
// prices of the distinct product ids in one batch.
//
// An item whose product does not exist contributes zero and is logged, unless
// rejectUnknown is set, in which case the whole operation fails validation.
func computeTotal(ctx context.Context, prices PriceLookup, items []ItemInput, rejectUnknown bool) (types.Money, error) {
	if len(items) == 0 {
		return types.Zero(), nil
	}

	productIDs := lo.Uniq(lo.Map(items, func(it ItemInput, _ int) id.ID { return it.ProductID }))
	priceByID, err := prices.PricesByIDs(ctx, productIDs)
	if err != nil {
		return types.Zero(), err
	}

	missing := lo.Filter(productIDs, func(pid id.ID, _ int) bool {
		_, ok := priceByID[pid]
		return !ok
	})
	if len(missing) > 0 {
		if rejectUnknown {
			return types.Zero(), apperror.NewValidation("invoice references unknown products").
				WithDetail("field", "items").
				WithDetail("productIds", lo.Map(missing, func(pid id.ID, _ int) string { return pid.String() }))
		}
		for _, pid := range missing {
			logger.Warn(ctx, "unknown product priced at zero", "product_id", pid)
		}
	}

	amounts := lo.Map(items, func(it ItemInput, _ int) types.Money {
		return types.LineAmount(priceByID[it.ProductID], it.Quantity)
	})
	return types.Sum(amounts...), nil
}

func itemsToInput(items []Item) []ItemInput {
	return lo.Map(items, func(it Item, _ int) ItemInput {
		return ItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	})
}
