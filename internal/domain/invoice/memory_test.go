package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/core/lock"
	"smartshop/internal/core/tx/txtest"
	"smartshop/internal/core/types"
	"smartshop/internal/domain/audit"
)

// memoryStore is an in-memory Repository and PriceLookup.
type memoryStore struct {
	mu       sync.Mutex
	invoices map[id.ID]Invoice
	items    []Item
	payments []Payment
	prices   map[id.ID]types.Money

	failInsertPayments error
	failInsertItems    error
	lockedForUpdate    []id.ID

	// rows, when set, makes GetForUpdate hold a per-invoice lock until the
	// transaction ends, like SELECT ... FOR UPDATE.
	rows *lock.Keyed
	// afterDeleteItems runs between removing and inserting an invoice's items.
	afterDeleteItems func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		invoices: make(map[id.ID]Invoice),
		prices:   make(map[id.ID]types.Money),
	}
}

func (m *memoryStore) Snapshot() func() {
	m.mu.Lock()
	invoices := make(map[id.ID]Invoice, len(m.invoices))
	for k, v := range m.invoices {
		invoices[k] = v
	}
	items := append([]Item(nil), m.items...)
	payments := append([]Payment(nil), m.payments...)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.invoices, m.items, m.payments = invoices, items, payments
		m.mu.Unlock()
	}
}

func (m *memoryStore) setPrice(productID id.ID, price string) {
	m.prices[productID] = types.MustMoney(price)
}

func (m *memoryStore) counts() (invoices, items, payments int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invoices), len(m.items), len(m.payments)
}

func (m *memoryStore) itemsOf(invoiceID id.ID) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Filter(m.items, func(it Item, _ int) bool { return it.InvoiceID == invoiceID })
}

func (m *memoryStore) PricesByIDs(_ context.Context, productIDs []id.ID) (map[id.ID]types.Money, error) {
	out := make(map[id.ID]types.Money)
	for _, pid := range productIDs {
		if p, ok := m.prices[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}

func (m *memoryStore) GetByID(_ context.Context, invoiceID id.ID) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound(EntityName, invoiceID.String())
	}
	return &inv, nil
}

func (m *memoryStore) GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	m.mu.Lock()
	m.lockedForUpdate = append(m.lockedForUpdate, invoiceID)
	m.mu.Unlock()

	if m.rows != nil {
		unlock, err := m.rows.Lock(ctx, invoiceID.String())
		if err != nil {
			return nil, err
		}
		txtest.OnFinish(ctx, unlock)
	}
	return m.GetByID(ctx, invoiceID)
}

func (m *memoryStore) Create(_ context.Context, inv *Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := *inv
	h.Items, h.Payments = nil, nil
	m.invoices[inv.ID] = h
	return nil
}

func (m *memoryStore) UpdateHeader(_ context.Context, inv *Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[inv.ID]; !ok {
		return apperror.NewNotFound(EntityName, inv.ID.String())
	}
	h := *inv
	h.Items, h.Payments = nil, nil
	m.invoices[inv.ID] = h
	return nil
}

func (m *memoryStore) DeleteHeader(_ context.Context, invoiceID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoices, invoiceID)
	return nil
}

func (m *memoryStore) filtered(f ListFilter) []*Invoice {
	var out []*Invoice
	for _, inv := range m.invoices {
		if f.CustomerID != nil && inv.CustomerID != *f.CustomerID {
			continue
		}
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		if f.DateFrom != nil && inv.InvoiceDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && inv.InvoiceDate.After(*f.DateTo) {
			continue
		}
		c := inv
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InvoiceDate.Equal(out[j].InvoiceDate) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].InvoiceDate.After(out[j].InvoiceDate)
	})
	return out
}

func (m *memoryStore) List(_ context.Context, f ListFilter) ([]*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filtered(f)
	if f.Offset >= len(all) {
		return nil, nil
	}
	end := min(f.Offset+f.Limit, len(all))
	return all[f.Offset:end], nil
}

func (m *memoryStore) Count(_ context.Context, f ListFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filtered(f))), nil
}

func (m *memoryStore) InsertItems(_ context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertItems != nil {
		return m.failInsertItems
	}
	m.items = append(m.items, items...)
	return nil
}

func (m *memoryStore) DeleteItems(_ context.Context, invoiceID id.ID) error {
	m.mu.Lock()
	m.items = lo.Reject(m.items, func(it Item, _ int) bool { return it.InvoiceID == invoiceID })
	m.mu.Unlock()

	if m.afterDeleteItems != nil {
		m.afterDeleteItems()
	}
	return nil
}

func (m *memoryStore) ItemsFor(_ context.Context, invoiceIDs []id.ID) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := lo.Filter(m.items, func(it Item, _ int) bool { return lo.Contains(invoiceIDs, it.InvoiceID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

func (m *memoryStore) InsertPayments(_ context.Context, payments []Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertPayments != nil {
		return m.failInsertPayments
	}
	m.payments = append(m.payments, payments...)
	return nil
}

func (m *memoryStore) DeletePayments(_ context.Context, invoiceID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = lo.Reject(m.payments, func(p Payment, _ int) bool { return p.InvoiceID == invoiceID })
	return nil
}

func (m *memoryStore) PaymentsFor(_ context.Context, invoiceIDs []id.ID) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := lo.Filter(m.payments, func(p Payment, _ int) bool { return lo.Contains(invoiceIDs, p.InvoiceID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

// memoryAuditor records change sets and rolls back with the transaction.
type memoryAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *memoryAuditor) Snapshot() func() {
	a.mu.Lock()
	saved := append([]audit.Entry(nil), a.entries...)
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		a.entries = saved
		a.mu.Unlock()
	}
}

func (a *memoryAuditor) Record(_ context.Context, entityType string, entityID id.ID, action audit.Action, changes any) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append([]audit.Entry{{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    raw,
	}}, a.entries...)
	return nil
}

func (a *memoryAuditor) History(_ context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := lo.Filter(a.entries, func(e audit.Entry, _ int) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeNumberer hands out "<key>-0001", "<key>-0002", ...
type fakeNumberer struct {
	mu sync.Mutex
	n  int
}

func (f *fakeNumberer) Next(_ context.Context, key string, increment bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if increment {
		f.n++
	}
	return fmt.Sprintf("%s-%04d", key, f.n), nil
}
