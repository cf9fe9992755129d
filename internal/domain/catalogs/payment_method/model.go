// Package payment_method provides the PaymentMethod catalog referenced by payments.
package payment_method

import (
	"context"

	"smartshop/internal/core/entity"
	"smartshop/internal/core/validation"
)

// PaymentMethod describes how a payment is settled (cash, card, transfer...).
type PaymentMethod struct {
	entity.BaseEntity

	Name        string `db:"name" json:"name" validate:"required,max=100"`
	Description string `db:"description" json:"description" validate:"max=500"`
	Type        string `db:"type" json:"type" validate:"required,max=50"`
}

// NewPaymentMethod creates a new PaymentMethod with required fields.
func NewPaymentMethod(name, methodType, description string) *PaymentMethod {
	return &PaymentMethod{
		BaseEntity:  entity.NewBaseEntity(),
		Name:        name,
		Type:        methodType,
		Description: description,
	}
}

// Validate implements entity.Validatable interface.
func (m *PaymentMethod) Validate(_ context.Context) error {
	return validation.Struct(m)
}
