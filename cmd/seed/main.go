// Package main provides a CLI tool for seeding the database with demo catalog data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"smartshop/internal/config"
	"smartshop/internal/core/clock"
	corelock "smartshop/internal/core/lock"
	"smartshop/internal/core/types"
	"smartshop/internal/domain"
	"smartshop/internal/domain/catalogs/customer"
	"smartshop/internal/domain/catalogs/payment_method"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/sequence"
	"smartshop/internal/infrastructure/storage/postgres"
	"smartshop/internal/infrastructure/storage/postgres/catalog_repo"
	"smartshop/internal/infrastructure/storage/postgres/sequence_repo"
	"smartshop/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	sequences := sequence.NewService(sequence_repo.NewRepo(txm), txm, corelock.NewKeyed(), clock.System{})

	s := seeder{
		log:       log,
		products:  product.NewService(catalog_repo.NewProductRepo(txm), txm, sequences),
		customers: customer.NewService(catalog_repo.NewCustomerRepo(txm), txm, sequences),
		methods:   payment_method.NewService(catalog_repo.NewPaymentMethodRepo(txm), txm),
	}
	if err := s.run(ctx); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

type seeder struct {
	log       *logger.Logger
	products  *product.Service
	customers *customer.Service
	methods   *payment_method.Service
}

func (s seeder) run(ctx context.Context) error {
	if err := s.seedPaymentMethods(ctx); err != nil {
		return err
	}
	if err := s.seedCustomers(ctx); err != nil {
		return err
	}
	return s.seedProducts(ctx)
}

// empty reports whether a catalog has no rows yet. Catalogs that already
// hold data are left alone so the seeder can be rerun.
func empty[T domain.CatalogEntity](ctx context.Context, svc *domain.CatalogService[T]) (bool, error) {
	res, err := svc.List(ctx, domain.ListFilter{Limit: 1})
	if err != nil {
		return false, err
	}
	return res.TotalCount == 0, nil
}

func (s seeder) seedPaymentMethods(ctx context.Context) error {
	ok, err := empty(ctx, s.methods.CatalogService)
	if err != nil || !ok {
		return err
	}
	methods := []struct{ name, kind, desc string }{
		{"Cash", "cash", "Paid at the counter"},
		{"Card", "card", "Debit or credit card"},
		{"Bank transfer", "transfer", "Wire transfer against the invoice number"},
	}
	for _, m := range methods {
		if err := s.methods.Create(ctx, payment_method.NewPaymentMethod(m.name, m.kind, m.desc)); err != nil {
			return fmt.Errorf("seed payment method %q: %w", m.name, err)
		}
	}
	s.log.Infow("payment methods seeded", "count", len(methods))
	return nil
}

func (s seeder) seedCustomers(ctx context.Context) error {
	ok, err := empty(ctx, s.customers.CatalogService)
	if err != nil || !ok {
		return err
	}
	customers := []struct{ name, email, phone string }{
		{"Walk-in customer", "", ""},
		{"Acme Retail", "orders@acme.example", "+1-555-0100"},
		{"Jane Smith", "jane.smith@example.com", "+1-555-0142"},
	}
	for _, c := range customers {
		if err := s.customers.Create(ctx, customer.NewCustomer(c.name, c.email, c.phone)); err != nil {
			return fmt.Errorf("seed customer %q: %w", c.name, err)
		}
	}
	s.log.Infow("customers seeded", "count", len(customers))
	return nil
}

func (s seeder) seedProducts(ctx context.Context) error {
	ok, err := empty(ctx, s.products.CatalogService)
	if err != nil || !ok {
		return err
	}
	products := []struct {
		name  string
		price string
		stock int
	}{
		{"Office paper A4 (500 sheets)", "6.90", 120},
		{"Ballpoint pen, blue", "0.80", 500},
		{"Desk stapler", "12.50", 35},
		{"Paper clips 28mm (100 pcs)", "1.20", 240},
		{"Lever arch file", "3.75", 80},
	}
	for _, p := range products {
		price, err := types.NewMoneyFromString(p.price)
		if err != nil {
			return err
		}
		if err := s.products.Create(ctx, product.NewProduct(p.name, price, p.stock)); err != nil {
			return fmt.Errorf("seed product %q: %w", p.name, err)
		}
	}
	s.log.Infow("products seeded", "count", len(products))
	return nil
}
