// Package customer provides the Customer catalog.
package customer

import (
	"context"

	"smartshop/internal/core/entity"
	"smartshop/internal/core/validation"
)

// Customer is a buyer referenced by invoices.
type Customer struct {
	entity.BaseEntity

	Code  string `db:"code" json:"code" validate:"max=50"`
	Name  string `db:"name" json:"name" validate:"required,max=200"`
	Email string `db:"email" json:"email" validate:"omitempty,email,max=200"`
	Phone string `db:"phone" json:"phone" validate:"max=50"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(name, email, phone string) *Customer {
	return &Customer{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Phone:      phone,
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(_ context.Context) error {
	return validation.Struct(c)
}
