// Package v1 provides the HTTP API.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartshop/internal/core/clock"
	"smartshop/internal/core/response"
	"smartshop/internal/domain/auth"
	"smartshop/internal/domain/catalogs/customer"
	"smartshop/internal/domain/catalogs/payment_method"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/invoice"
	"smartshop/internal/domain/sequence"
	"smartshop/internal/domain/settings"
	"smartshop/internal/infrastructure/http/v1/handlers"
	"smartshop/internal/infrastructure/http/v1/middleware"
	"smartshop/pkg/logger"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Auth           *auth.Service
	Products       *product.Service
	Customers      *customer.Service
	PaymentMethods *payment_method.Service
	Settings       *settings.Service
	Invoices       *invoice.Service
	Sequences      *sequence.Service
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Database backs the status and readiness checks
	Database handlers.Database

	// JWTValidator for token validation; defaults to Services.Auth
	JWTValidator middleware.JWTValidator

	Services Services
	Clock    clock.Clock
	Version  string

	// ReleaseMode switches gin out of debug mode
	ReleaseMode bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.JWTValidator == nil {
		cfg.JWTValidator = cfg.Services.Auth
	}

	router := gin.New()

	// Global middleware (order matters: Recovery sits inside ErrorHandler so
	// a recovered panic is rendered as an envelope).
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Fail(http.StatusNotFound, "Resource not found"))
	})

	healthHandler := handlers.NewHealthHandler(cfg.Database, cfg.Clock, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api")
	{
		api.GET("/status", healthHandler.Status)

		registerAuthRoutes(api, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg)
		registerInvoiceRoutes(protected, cfg)
		registerSequenceRoutes(protected, cfg)
		registerUserRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	authHandler := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.Services.Auth)

	group := rg.Group("/auth")
	group.POST("/login", authHandler.Login)
	group.GET("/me", middleware.Auth(cfg.JWTValidator), authHandler.Me)
}

// registerCatalogRoutes registers the single-entity CRUD endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()

	RegisterCatalogRoutes(rg.Group("/products"), handlers.NewProductHandler(base, cfg.Services.Products))
	RegisterCatalogRoutes(rg.Group("/customers"), handlers.NewCustomerHandler(base, cfg.Services.Customers))
	RegisterCatalogRoutes(rg.Group("/paymentmethods"), handlers.NewPaymentMethodHandler(base, cfg.Services.PaymentMethods))

	settingHandler := handlers.NewSettingHandler(base, cfg.Services.Settings)
	settingsGroup := rg.Group("/settings")
	RegisterCatalogRoutes(settingsGroup, settingHandler)
	settingsGroup.GET("/key/:key", settingHandler.GetByKey)
}

// registerInvoiceRoutes registers the invoice transaction endpoints.
func registerInvoiceRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewInvoiceHandler(handlers.NewBaseHandler(), cfg.Services.Invoices)

	group := rg.Group("/invoices")
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.GET("/:id/history", h.History)
}

// registerSequenceRoutes registers sequence administration. Reconfiguring a
// counter is reserved to system administrators.
func registerSequenceRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewSequenceHandler(handlers.NewBaseHandler(), cfg.Services.Sequences)

	group := rg.Group("/sequences")
	group.GET("", h.List)
	group.GET("/:key/next", h.Next)
	group.PUT("/:key", middleware.RequireRole(auth.RoleSysAdmin), h.Configure)
}

// registerUserRoutes registers user management, reserved to system administrators.
func registerUserRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewUserHandler(handlers.NewBaseHandler(), cfg.Services.Auth)

	rg.GET("/roles", h.Roles)

	group := rg.Group("/users")
	group.Use(middleware.RequireRole(auth.RoleSysAdmin))
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.PUT("/:id/password", h.ChangePassword)
	group.DELETE("/:id", h.Delete)
}
