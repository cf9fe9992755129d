package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"smartshop/internal/core/id"
	"smartshop/internal/core/types"
	"smartshop/internal/domain/catalogs/customer"
	"smartshop/internal/domain/catalogs/payment_method"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/settings"
	"smartshop/internal/infrastructure/storage/postgres"
)

const (
	productTable       = "products"
	customerTable      = "customers"
	paymentMethodTable = "payment_methods"
	settingTable       = "settings"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager, productTable, "product",
			postgres.ExtractDBColumns[product.Product](),
			[]string{"name", "code"},
			func() *product.Product { return &product.Product{} },
		),
	}
}

// PricesByIDs loads the current price of every known id in one query.
func (r *ProductRepo) PricesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]types.Money, error) {
	out := make(map[id.ID]types.Money, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q := postgres.Builder.
		Select("id", "price").
		From(productTable).
		Where(squirrel.Eq{"id": ids})

	var rows []struct {
		ID    id.ID       `db:"id"`
		Price types.Money `db:"price"`
	}
	if err := postgres.Select(ctx, r.querier(ctx), &rows, q); err != nil {
		return nil, fmt.Errorf("load product prices: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Price
	}
	return out, nil
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager, customerTable, "customer",
			postgres.ExtractDBColumns[customer.Customer](),
			[]string{"name", "code", "email"},
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// PaymentMethodRepo implements payment_method.Repository.
type PaymentMethodRepo struct {
	*BaseCatalogRepo[*payment_method.PaymentMethod]
}

// NewPaymentMethodRepo creates a new payment method repository.
func NewPaymentMethodRepo(txManager *postgres.TxManager) *PaymentMethodRepo {
	return &PaymentMethodRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager, paymentMethodTable, "payment method",
			postgres.ExtractDBColumns[payment_method.PaymentMethod](),
			[]string{"name", "type"},
			func() *payment_method.PaymentMethod { return &payment_method.PaymentMethod{} },
		),
	}
}

// SettingRepo implements settings.Repository.
type SettingRepo struct {
	*BaseCatalogRepo[*settings.Setting]
}

// NewSettingRepo creates a new settings repository.
func NewSettingRepo(txManager *postgres.TxManager) *SettingRepo {
	return &SettingRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager, settingTable, "setting",
			postgres.ExtractDBColumns[settings.Setting](),
			[]string{"key", "description"},
			func() *settings.Setting { return &settings.Setting{} },
		),
	}
}

// GetByKey retrieves a setting by its unique key.
func (r *SettingRepo) GetByKey(ctx context.Context, key string) (*settings.Setting, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"key": key}).Limit(1), key)
}

var (
	_ product.Repository        = (*ProductRepo)(nil)
	_ customer.Repository       = (*CustomerRepo)(nil)
	_ payment_method.Repository = (*PaymentMethodRepo)(nil)
	_ settings.Repository       = (*SettingRepo)(nil)
)
