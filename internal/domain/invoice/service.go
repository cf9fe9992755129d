package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/clock"
	"smartshop/internal/core/id"
	"smartshop/internal/core/lock"
	"smartshop/internal/core/tx"
	"smartshop/internal/domain/audit"
	"smartshop/pkg/logger"
)

// NumberingScheme selects how invoice numbers are issued.
type NumberingScheme string

const (
	// NumberingTimestamp renders "INV-<yyyyMMddHHmmss>-<id prefix>".
	NumberingTimestamp NumberingScheme = "timestamp"

	// NumberingSequence takes the next value of the "Invoice" counter inside
	// the create transaction.
	NumberingSequence NumberingScheme = "sequence"
)

// Options tunes service behaviour.
type Options struct {
	Numbering             NumberingScheme
	RejectUnknownProducts bool
	HistoryLimit          int
}

// Service is the invoice transaction manager.
type Service struct {
	repo     Repository
	prices   PriceLookup
	txm      tx.Manager
	locker   lock.Locker
	clock    clock.Clock
	auditor  audit.Recorder
	numberer Numberer
	opts     Options
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo     Repository
	Prices   PriceLookup
	TxMgr    tx.Manager
	Locker   lock.Locker
	Clock    clock.Clock
	Auditor  audit.Recorder
	Numberer Numberer
}

// NewService wires the invoice service. Locker, Clock and Auditor fall back to
// in-process, system and no-op implementations. NumberingSequence requires a
// Numberer.
func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Locker == nil {
		deps.Locker = lock.NewKeyed()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Auditor == nil {
		deps.Auditor = audit.Nop{}
	}
	if opts.Numbering == "" {
		opts.Numbering = NumberingTimestamp
	}
	switch opts.Numbering {
	case NumberingTimestamp:
	case NumberingSequence:
		if deps.Numberer == nil {
			return nil, fmt.Errorf("invoice numbering %q requires a numberer", opts.Numbering)
		}
	default:
		return nil, fmt.Errorf("unknown invoice numbering scheme %q", opts.Numbering)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 100
	}
	return &Service{
		repo:     deps.Repo,
		prices:   deps.Prices,
		txm:      deps.TxMgr,
		locker:   deps.Locker,
		clock:    deps.Clock,
		auditor:  deps.Auditor,
		numberer: deps.Numberer,
		opts:     opts,
	}, nil
}

// invoiceSequenceKey is the counter used by NumberingSequence.
const invoiceSequenceKey = "Invoice"

func lockKey(invoiceID id.ID) string { return "invoice:" + invoiceID.String() }

// Create persists a new invoice with its items and payments atomically.
func (s *Service) Create(ctx context.Context, in *Input) (*Invoice, error) {
	if in == nil || len(in.Items) == 0 {
		return nil, apperror.NewValidation("Invoice or items missing.").WithDetail("field", "items")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var created *Invoice
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		inv := &Invoice{
			ID:          id.New(),
			CustomerID:  in.CustomerID,
			Status:      in.Status,
			InvoiceDate: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		number, err := s.nextNumber(ctx, inv.ID, now)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number

		if inv.Total, err = computeTotal(ctx, s.prices, in.Items, s.opts.RejectUnknownProducts); err != nil {
			return err
		}

		inv.Items = newItems(inv.ID, in.Items)
		inv.Payments = newPayments(inv.ID, in.Payments, now)

		if err := s.repo.Create(ctx, inv); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, inv.Items); err != nil {
			return err
		}
		if len(inv.Payments) > 0 {
			if err := s.repo.InsertPayments(ctx, inv.Payments); err != nil {
				return err
			}
		}

		if err := s.auditor.Record(ctx, EntityName, inv.ID, audit.ActionCreate, audit.Change{After: inv}); err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		logger.Error(ctx, "create invoice failed", "error", err)
		return nil, apperror.Normalize(err, "Failed to create invoice.")
	}

	logger.Info(ctx, "invoice created",
		"invoice_id", created.ID,
		"invoice_number", created.InvoiceNumber,
		"total", created.Total.String(),
	)
	return created, nil
}

// Update overwrites the caller-controlled header fields, recomputes the total
// and replaces the items and/or payments collections that the input carries.
// The invoice number never changes.
func (s *Service) Update(ctx context.Context, invoiceID id.ID, in *Input) (*Invoice, error) {
	if in == nil {
		return nil, apperror.NewValidation("Invoice data is required.")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lockKey(invoiceID))
	if err != nil {
		return nil, apperror.NewPersistence("Failed to update invoice.", err)
	}
	defer unlock()

	var updated *Invoice
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.loadForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		before := existing.Clone()
		now := s.clock.Now()

		existing.CustomerID = in.CustomerID
		existing.Status = in.Status
		if !in.InvoiceDate.IsZero() {
			existing.InvoiceDate = in.InvoiceDate.UTC()
		}
		existing.UpdatedAt = now

		priced := in.Items
		if priced == nil {
			priced = itemsToInput(existing.Items)
		}
		if existing.Total, err = computeTotal(ctx, s.prices, priced, s.opts.RejectUnknownProducts); err != nil {
			return err
		}

		if in.Items != nil {
			if err := s.repo.DeleteItems(ctx, existing.ID); err != nil {
				return err
			}
			existing.Items = newItems(existing.ID, in.Items)
			if err := s.repo.InsertItems(ctx, existing.Items); err != nil {
				return err
			}
		}

		if in.Payments != nil {
			if err := s.repo.DeletePayments(ctx, existing.ID); err != nil {
				return err
			}
			existing.Payments = newPayments(existing.ID, in.Payments, now)
			if err := s.repo.InsertPayments(ctx, existing.Payments); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateHeader(ctx, existing); err != nil {
			return err
		}

		change := audit.Change{Before: before, After: existing}
		if err := s.auditor.Record(ctx, EntityName, existing.ID, audit.ActionUpdate, change); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		if !apperror.IsNotFound(err) {
			logger.Error(ctx, "update invoice failed", "invoice_id", invoiceID, "error", err)
		}
		return nil, apperror.Normalize(err, "Failed to update invoice.")
	}

	logger.Info(ctx, "invoice updated", "invoice_id", updated.ID, "total", updated.Total.String())
	return updated, nil
}

// Delete removes the invoice's items, payments and header in one transaction
// and returns what was deleted.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	unlock, err := s.locker.Lock(ctx, lockKey(invoiceID))
	if err != nil {
		return nil, apperror.NewPersistence("Failed to delete invoice.", err)
	}
	defer unlock()

	var deleted *Invoice
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.loadForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteItems(ctx, inv.ID); err != nil {
			return err
		}
		if err := s.repo.DeletePayments(ctx, inv.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteHeader(ctx, inv.ID); err != nil {
			return err
		}

		if err := s.auditor.Record(ctx, EntityName, inv.ID, audit.ActionDelete, audit.Change{Before: inv}); err != nil {
			return err
		}
		deleted = inv
		return nil
	})
	if err != nil {
		if !apperror.IsNotFound(err) {
			logger.Error(ctx, "delete invoice failed", "invoice_id", invoiceID, "error", err)
		}
		return nil, apperror.Normalize(err, "Failed to delete invoice.")
	}

	logger.Info(ctx, "invoice deleted", "invoice_id", deleted.ID)
	return deleted, nil
}

// Get returns one invoice with items and payments.
func (s *Service) Get(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperror.Normalize(err, "Failed to retrieve invoice.")
	}
	if err := s.attachChildren(ctx, []*Invoice{inv}); err != nil {
		return nil, apperror.Normalize(err, "Failed to retrieve invoice.")
	}
	return inv, nil
}

// List returns one page of invoices, newest first, with children eager-loaded
// in two batched queries.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	filter = normalizeFilter(filter)

	invoices, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListResult{}, apperror.Normalize(err, "Failed to retrieve invoices.")
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return ListResult{}, apperror.Normalize(err, "Failed to retrieve invoices.")
	}
	if err := s.attachChildren(ctx, invoices); err != nil {
		return ListResult{}, apperror.Normalize(err, "Failed to retrieve invoices.")
	}

	return ListResult{
		Items:      invoices,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// History returns the audit trail of an invoice, newest first. Deleted
// invoices keep their history.
func (s *Service) History(ctx context.Context, invoiceID id.ID) ([]audit.Entry, error) {
	entries, err := s.auditor.History(ctx, EntityName, invoiceID, s.opts.HistoryLimit)
	if err != nil {
		return nil, apperror.Normalize(err, "Failed to retrieve invoice history.")
	}
	if len(entries) == 0 {
		if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
			return nil, apperror.Normalize(err, "Failed to retrieve invoice history.")
		}
	}
	return entries, nil
}

func (s *Service) nextNumber(ctx context.Context, invoiceID id.ID, now time.Time) (string, error) {
	if s.opts.Numbering == NumberingSequence {
		return s.numberer.Next(ctx, invoiceSequenceKey, true)
	}
	return TimestampNumber(now, invoiceID), nil
}

func (s *Service) loadForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetForUpdate(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, []*Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) attachChildren(ctx context.Context, invoices []*Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := lo.Map(invoices, func(inv *Invoice, _ int) id.ID { return inv.ID })

	items, err := s.repo.ItemsFor(ctx, ids)
	if err != nil {
		return err
	}
	payments, err := s.repo.PaymentsFor(ctx, ids)
	if err != nil {
		return err
	}

	itemsBy := lo.GroupBy(items, func(it Item) id.ID { return it.InvoiceID })
	paymentsBy := lo.GroupBy(payments, func(p Payment) id.ID { return p.InvoiceID })
	for _, inv := range invoices {
		inv.Items = append([]Item{}, itemsBy[inv.ID]...)
		inv.Payments = append([]Payment{}, paymentsBy[inv.ID]...)
	}
	return nil
}

func newItems(invoiceID id.ID, in []ItemInput) []Item {
	return lo.Map(in, func(it ItemInput, i int) Item {
		return Item{
			ID:        id.New(),
			InvoiceID: invoiceID,
			LineNo:    i + 1,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
	})
}

func newPayments(invoiceID id.ID, in []PaymentInput, now time.Time) []Payment {
	return lo.Map(in, func(p PaymentInput, i int) Payment {
		return Payment{
			ID:              id.New(),
			InvoiceID:       invoiceID,
			LineNo:          i + 1,
			Amount:          p.Amount,
			PaymentMethodID: p.PaymentMethodID,
			Status:          p.Status,
			Date:            now,
		}
	})
}

func normalizeFilter(f ListFilter) ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
