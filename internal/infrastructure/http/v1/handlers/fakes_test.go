package handlers

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/core/types"
	"smartshop/internal/domain/catalogs/product"
	"smartshop/internal/domain/domaintest"
	"smartshop/internal/domain/invoice"
	"smartshop/internal/domain/sequence"
)

type productRepo struct {
	*domaintest.MemoryRepo[*product.Product]
}

func newProductRepo() productRepo {
	return productRepo{domaintest.NewMemoryRepo(func(p *product.Product) *product.Product { c := *p; return &c }, nil)}
}

func (r productRepo) PricesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]types.Money, error) {
	out := make(map[id.ID]types.Money)
	for _, pid := range ids {
		if p, err := r.GetByID(ctx, pid); err == nil {
			out[pid] = p.Price
		}
	}
	return out, nil
}

// invoiceStore keeps headers and children in memory.
type invoiceStore struct {
	mu       sync.Mutex
	invoices map[id.ID]invoice.Invoice
	items    []invoice.Item
	payments []invoice.Payment
}

func newInvoiceStore() *invoiceStore {
	return &invoiceStore{invoices: make(map[id.ID]invoice.Invoice)}
}

func (s *invoiceStore) Snapshot() func() {
	s.mu.Lock()
	saved := make(map[id.ID]invoice.Invoice, len(s.invoices))
	for k, v := range s.invoices {
		saved[k] = v
	}
	items := append([]invoice.Item(nil), s.items...)
	payments := append([]invoice.Payment(nil), s.payments...)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.invoices, s.items, s.payments = saved, items, payments
		s.mu.Unlock()
	}
}

func (s *invoiceStore) GetByID(_ context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound(invoice.EntityName, invoiceID.String())
	}
	return &inv, nil
}

func (s *invoiceStore) GetForUpdate(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	return s.GetByID(ctx, invoiceID)
}

func (s *invoiceStore) Create(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := *inv
	h.Items, h.Payments = nil, nil
	s.invoices[inv.ID] = h
	return nil
}

func (s *invoiceStore) UpdateHeader(ctx context.Context, inv *invoice.Invoice) error {
	return s.Create(ctx, inv)
}

func (s *invoiceStore) DeleteHeader(_ context.Context, invoiceID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.invoices, invoiceID)
	return nil
}

func (s *invoiceStore) List(_ context.Context, f invoice.ListFilter) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*invoice.Invoice
	for _, inv := range s.invoices {
		if f.CustomerID != nil && inv.CustomerID != *f.CustomerID {
			continue
		}
		c := inv
		out = append(out, &c)
	}
	return out, nil
}

func (s *invoiceStore) Count(ctx context.Context, f invoice.ListFilter) (int64, error) {
	all, _ := s.List(ctx, f)
	return int64(len(all)), nil
}

func (s *invoiceStore) InsertItems(_ context.Context, items []invoice.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	return nil
}

func (s *invoiceStore) DeleteItems(_ context.Context, invoiceID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = lo.Reject(s.items, func(it invoice.Item, _ int) bool { return it.InvoiceID == invoiceID })
	return nil
}

func (s *invoiceStore) ItemsFor(_ context.Context, invoiceIDs []id.ID) ([]invoice.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.items, func(it invoice.Item, _ int) bool { return lo.Contains(invoiceIDs, it.InvoiceID) }), nil
}

func (s *invoiceStore) InsertPayments(_ context.Context, payments []invoice.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, payments...)
	return nil
}

func (s *invoiceStore) DeletePayments(_ context.Context, invoiceID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = lo.Reject(s.payments, func(p invoice.Payment, _ int) bool { return p.InvoiceID == invoiceID })
	return nil
}

func (s *invoiceStore) PaymentsFor(_ context.Context, invoiceIDs []id.ID) ([]invoice.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.payments, func(p invoice.Payment, _ int) bool { return lo.Contains(invoiceIDs, p.InvoiceID) }), nil
}

// sequenceStore keeps counters in memory.
type sequenceStore struct {
	mu   sync.Mutex
	rows map[string]sequence.Config
}

func newSequenceStore() *sequenceStore {
	return &sequenceStore{rows: make(map[string]sequence.Config)}
}

func (s *sequenceStore) Snapshot() func() {
	s.mu.Lock()
	saved := make(map[string]sequence.Config, len(s.rows))
	for k, v := range s.rows {
		saved[k] = v
	}
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.rows = saved
		s.mu.Unlock()
	}
}

func (s *sequenceStore) LockKey(context.Context, string) error { return nil }

func (s *sequenceStore) GetByKey(_ context.Context, key string) (*sequence.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.rows[key]
	if !ok {
		return nil, apperror.NewNotFound("sequence", key)
	}
	return &cfg, nil
}

func (s *sequenceStore) Create(_ context.Context, cfg *sequence.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[cfg.Key] = *cfg
	return nil
}

func (s *sequenceStore) UpdateValue(_ context.Context, cfg *sequence.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.rows {
		if v.ID == cfg.ID {
			v.Value = cfg.Value
			v.UpdatedAt = cfg.UpdatedAt
			s.rows[k] = v
		}
	}
	return nil
}

func (s *sequenceStore) UpdateSettings(ctx context.Context, cfg *sequence.Config) error {
	return s.Create(ctx, cfg)
}

func (s *sequenceStore) List(context.Context) ([]*sequence.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*sequence.Config, 0, len(s.rows))
	for _, v := range s.rows {
		c := v
		out = append(out, &c)
	}
	return out, nil
}
