// Package product provides the Product catalog: priced, stocked goods sold on invoices.
package product

import (
	"context"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/entity"
	"smartshop/internal/core/types"
	"smartshop/internal/core/validation"
)

// Product is a sellable item. Code is issued by the "Product" sequence when
// left empty on create.
type Product struct {
	entity.BaseEntity

	Code  string      `db:"code" json:"code" validate:"max=50"`
	Name  string      `db:"name" json:"name" validate:"required,max=200"`
	Price types.Money `db:"price" json:"price"`
	Stock int         `db:"stock" json:"stock" validate:"gte=0"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(name string, price types.Money, stock int) *Product {
	return &Product{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Price:      price,
		Stock:      stock,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(_ context.Context) error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("field", "price")
	}
	return nil
}
