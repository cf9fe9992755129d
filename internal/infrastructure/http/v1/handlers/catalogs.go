package handlers

import (
	"github.com/gin-gonic/gin"

	"smartshop/internal/domain/catalogs/customer"
	"smartshop/internal/domain/catalogs/payment_method"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/settings"
	"smartshop/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves /products.
type ProductHandler = CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]

// NewProductHandler wires the generic handler to the product service.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service: service.CatalogService,
		Label:   "Product",
		Plural:  "Products",
		MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) {
			req.ApplyTo(existing)
		},
		VersionOf: func(req dto.UpdateProductRequest) int { return req.ExpectedVersion() },
		MapToDTO: func(p *product.Product) any {
			return dto.FromProduct(p)
		},
	})
}

// CustomerHandler serves /customers.
type CustomerHandler = CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]

// NewCustomerHandler wires the generic handler to the customer service.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
		Service: service.CatalogService,
		Label:   "Customer",
		Plural:  "Customers",
		MapCreateDTO: func(req dto.CreateCustomerRequest) *customer.Customer {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCustomerRequest, existing *customer.Customer) {
			req.ApplyTo(existing)
		},
		VersionOf: func(req dto.UpdateCustomerRequest) int { return req.ExpectedVersion() },
		MapToDTO: func(c *customer.Customer) any {
			return dto.FromCustomer(c)
		},
	})
}

// PaymentMethodHandler serves /paymentmethods.
type PaymentMethodHandler = CatalogHandler[*payment_method.PaymentMethod, dto.CreatePaymentMethodRequest, dto.UpdatePaymentMethodRequest]

// NewPaymentMethodHandler wires the generic handler to the payment method service.
func NewPaymentMethodHandler(base *BaseHandler, service *payment_method.Service) *PaymentMethodHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*payment_method.PaymentMethod, dto.CreatePaymentMethodRequest, dto.UpdatePaymentMethodRequest]{
		Service: service.CatalogService,
		Label:   "Payment method",
		Plural:  "Payment methods",
		MapCreateDTO: func(req dto.CreatePaymentMethodRequest) *payment_method.PaymentMethod {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdatePaymentMethodRequest, existing *payment_method.PaymentMethod) {
			req.ApplyTo(existing)
		},
		VersionOf: func(req dto.UpdatePaymentMethodRequest) int { return req.ExpectedVersion() },
		MapToDTO: func(m *payment_method.PaymentMethod) any {
			return dto.FromPaymentMethod(m)
		},
	})
}

// SettingHandler serves /settings, adding lookup by key.
type SettingHandler struct {
	*CatalogHandler[*settings.Setting, dto.CreateSettingRequest, dto.UpdateSettingRequest]
	service *settings.Service
}

// NewSettingHandler wires the generic handler to the settings service.
func NewSettingHandler(base *BaseHandler, service *settings.Service) *SettingHandler {
	generic := NewCatalogHandler(base, CatalogHandlerConfig[*settings.Setting, dto.CreateSettingRequest, dto.UpdateSettingRequest]{
		Service: service.CatalogService,
		Label:   "Setting",
		Plural:  "Settings",
		MapCreateDTO: func(req dto.CreateSettingRequest) *settings.Setting {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateSettingRequest, existing *settings.Setting) {
			req.ApplyTo(existing)
		},
		VersionOf: func(req dto.UpdateSettingRequest) int { return req.ExpectedVersion() },
		MapToDTO: func(s *settings.Setting) any {
			return dto.FromSetting(s)
		},
	})
	return &SettingHandler{CatalogHandler: generic, service: service}
}

// GetByKey handles GET /settings/key/:key.
func (h *SettingHandler) GetByKey(c *gin.Context) {
	setting, err := h.service.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSetting(setting), "Setting retrieved successfully.")
}
