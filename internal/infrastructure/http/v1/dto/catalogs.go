package dto

import (
	"smartshop/internal/core/types"
	"smartshop/internal/domain/catalogs/customer"
	"smartshop/internal/domain/catalogs/payment_method"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/settings"
)

// --- Product ---

// CreateProductRequest is the request body for creating a product.
// An empty code is issued from the "Product" sequence.
type CreateProductRequest struct {
	Code  string      `json:"code" binding:"max=50"`
	Name  string      `json:"name" binding:"required,max=200"`
	Price types.Money `json:"price"`
	Stock int         `json:"stock" binding:"gte=0"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Name, r.Price, r.Stock)
	p.Code = r.Code
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code    string      `json:"code" binding:"max=50"`
	Name    string      `json:"name" binding:"required,max=200"`
	Price   types.Money `json:"price"`
	Stock   int         `json:"stock" binding:"gte=0"`
	Version int         `json:"version"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Code != "" {
		p.Code = r.Code
	}
	p.Name = r.Name
	p.Price = r.Price
	p.Stock = r.Stock
}

// ExpectedVersion returns the optimistic lock sent by the client.
func (r *UpdateProductRequest) ExpectedVersion() int { return r.Version }

// ProductResponse is the response body for a product.
type ProductResponse struct {
	BaseResponse
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		BaseResponse: FromBase(p.BaseEntity),
		Code:         p.Code,
		Name:         p.Name,
		Price:        MoneyString(p.Price),
		Stock:        p.Stock,
	}
}

// --- Customer ---

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Code  string `json:"code" binding:"max=50"`
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"max=50"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Name, r.Email, r.Phone)
	c.Code = r.Code
	return c
}

// UpdateCustomerRequest is the request body for updating a customer.
type UpdateCustomerRequest struct {
	Code    string `json:"code" binding:"max=50"`
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Version int    `json:"version"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Code != "" {
		c.Code = r.Code
	}
	c.Name = r.Name
	c.Email = r.Email
	c.Phone = r.Phone
}

// ExpectedVersion returns the optimistic lock sent by the client.
func (r *UpdateCustomerRequest) ExpectedVersion() int { return r.Version }

// CustomerResponse is the response body for a customer.
type CustomerResponse struct {
	BaseResponse
	Code  string `json:"code"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// FromCustomer creates response DTO from domain entity.
func FromCustomer(c *customer.Customer) *CustomerResponse {
	return &CustomerResponse{
		BaseResponse: FromBase(c.BaseEntity),
		Code:         c.Code,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}

// --- Payment method ---

// CreatePaymentMethodRequest is the request body for creating a payment method.
type CreatePaymentMethodRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Type        string `json:"type" binding:"required,max=50"`
	Description string `json:"description" binding:"max=500"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePaymentMethodRequest) ToEntity() *payment_method.PaymentMethod {
	return payment_method.NewPaymentMethod(r.Name, r.Type, r.Description)
}

// UpdatePaymentMethodRequest is the request body for updating a payment method.
type UpdatePaymentMethodRequest struct {
	CreatePaymentMethodRequest
	Version int `json:"version"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePaymentMethodRequest) ApplyTo(m *payment_method.PaymentMethod) {
	m.Name = r.Name
	m.Type = r.Type
	m.Description = r.Description
}

// ExpectedVersion returns the optimistic lock sent by the client.
func (r *UpdatePaymentMethodRequest) ExpectedVersion() int { return r.Version }

// PaymentMethodResponse is the response body for a payment method.
type PaymentMethodResponse struct {
	BaseResponse
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// FromPaymentMethod creates response DTO from domain entity.
func FromPaymentMethod(m *payment_method.PaymentMethod) *PaymentMethodResponse {
	return &PaymentMethodResponse{
		BaseResponse: FromBase(m.BaseEntity),
		Name:         m.Name,
		Type:         m.Type,
		Description:  m.Description,
	}
}

// --- Setting ---

// CreateSettingRequest is the request body for creating a setting.
type CreateSettingRequest struct {
	Key         string            `json:"key" binding:"required,max=100"`
	Value       string            `json:"value"`
	DataType    settings.DataType `json:"dataType" binding:"required"`
	Description string            `json:"description" binding:"max=500"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSettingRequest) ToEntity() *settings.Setting {
	return settings.NewSetting(r.Key, r.Value, r.DataType, r.Description)
}

// UpdateSettingRequest is the request body for updating a setting. The key is immutable.
type UpdateSettingRequest struct {
	Value       string            `json:"value"`
	DataType    settings.DataType `json:"dataType" binding:"required"`
	Description string            `json:"description" binding:"max=500"`
	Version     int               `json:"version"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSettingRequest) ApplyTo(s *settings.Setting) {
	s.Value = r.Value
	s.DataType = r.DataType
	s.Description = r.Description
}

// ExpectedVersion returns the optimistic lock sent by the client.
func (r *UpdateSettingRequest) ExpectedVersion() int { return r.Version }

// SettingResponse is the response body for a setting.
type SettingResponse struct {
	BaseResponse
	Key         string            `json:"key"`
	Value       string            `json:"value"`
	DataType    settings.DataType `json:"dataType"`
	Description string            `json:"description,omitempty"`
}

// FromSetting creates response DTO from domain entity.
func FromSetting(s *settings.Setting) *SettingResponse {
	return &SettingResponse{
		BaseResponse: FromBase(s.BaseEntity),
		Key:          s.Key,
		Value:        s.Value,
		DataType:     s.DataType,
		Description:  s.Description,
	}
}
