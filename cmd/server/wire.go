package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"smartshop/internal/config"
	"smartshop/internal/core/clock"
	corelock "smartshop/internal/core/lock"
	"smartshop/internal/domain/auth"
	"smartshop/internal/domain/catalogs/customer"
	"smartshop/internal/domain/catalogs/payment_method"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/invoice"
	"smartshop/internal/domain/sequence"
	"smartshop/internal/domain/settings"
	v1 "smartshop/internal/infrastructure/http/v1"
	"smartshop/internal/infrastructure/lock"
	"smartshop/internal/infrastructure/storage/postgres"
	"smartshop/internal/infrastructure/storage/postgres/auth_repo"
	"smartshop/internal/infrastructure/storage/postgres/catalog_repo"
	"smartshop/internal/infrastructure/storage/postgres/invoice_repo"
	"smartshop/internal/infrastructure/storage/postgres/sequence_repo"
	"smartshop/pkg/logger"
)

// app holds the wired services and the resources they own.
type app struct {
	services v1.Services
	clock    clock.Clock
	redis    *redis.Client
}

// Close releases resources opened by buildApp.
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, pool *postgres.Pool) (*app, error) {
	a := &app{clock: clock.System{}}

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.Database.StatementTimeout)

	locker, err := a.newLocker(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	auditor, err := postgres.NewAuditService(txm, a.clock)
	if err != nil {
		return nil, err
	}

	jwtCfg := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtCfg.Issuer = cfg.JWT.Issuer
	jwtCfg.Audience = cfg.JWT.Audience
	jwtCfg.AccessTokenTTL = cfg.JWT.TTL
	jwtService, err := auth.NewJWTService(jwtCfg, a.clock)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	sequences := sequence.NewService(sequence_repo.NewRepo(txm), txm, locker, a.clock)
	products := product.NewService(catalog_repo.NewProductRepo(txm), txm, sequences)

	invoices, err := invoice.NewService(invoice.Deps{
		Repo:     invoice_repo.NewRepo(txm),
		Prices:   products,
		TxMgr:    txm,
		Locker:   locker,
		Clock:    a.clock,
		Auditor:  auditor,
		Numberer: sequences,
	}, invoice.Options{
		Numbering:             invoice.NumberingScheme(cfg.Invoice.Numbering),
		RejectUnknownProducts: cfg.Invoice.RejectUnknownProducts,
		HistoryLimit:          cfg.Invoice.HistoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("invoice: %w", err)
	}

	a.services = v1.Services{
		Auth:           auth.NewService(auth_repo.NewUserRepo(txm), auth_repo.NewRoleRepo(txm), jwtService, txm, a.clock),
		Products:       products,
		Customers:      customer.NewService(catalog_repo.NewCustomerRepo(txm), txm, sequences),
		PaymentMethods: payment_method.NewService(catalog_repo.NewPaymentMethodRepo(txm), txm),
		Settings:       settings.NewService(catalog_repo.NewSettingRepo(txm), txm),
		Sequences:      sequences,
		Invoices:       invoices,
	}
	return a, nil
}

// newLocker returns the Redis locker when an address is configured, so that
// several API instances serialise on the same keys; otherwise an in-process one.
func (a *app) newLocker(ctx context.Context, cfg config.RedisConfig) (corelock.Locker, error) {
	if cfg.Addr == "" {
		logger.Info(ctx, "using in-process keyed locker")
		return corelock.NewKeyed(), nil
	}

	redisCfg := lock.DefaultRedisConfig(cfg.Addr)
	redisCfg.Password = cfg.Password
	redisCfg.DB = cfg.DB
	if cfg.LockTTL > 0 {
		redisCfg.TTL = cfg.LockTTL
	}

	client, err := lock.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.redis = client
	logger.Info(ctx, "using redis keyed locker", "addr", cfg.Addr)
	return lock.NewRedisLocker(client, redisCfg), nil
}
