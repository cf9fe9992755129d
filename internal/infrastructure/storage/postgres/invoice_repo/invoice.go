// Package invoice_repo provides the PostgreSQL implementation of invoice.Repository.
package invoice_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/domain/invoice"
	"smartshop/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable = "invoices"
	itemsTable    = "invoice_items"
	paymentsTable = "payments"
)

var (
	headerCols  = postgres.ExtractDBColumns[invoice.Invoice]()
	itemCols    = postgres.ExtractDBColumns[invoice.Item]()
	paymentCols = postgres.ExtractDBColumns[invoice.Payment]()
)

var _ invoice.Repository = (*Repo)(nil)

// Repo implements invoice.Repository.
type Repo struct {
	txManager *postgres.TxManager
}

// NewRepo creates a new invoice repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

func (r *Repo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder.Select(headerCols...).From(invoicesTable)
}

// GetByID loads the invoice header.
func (r *Repo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": invoiceID}), invoiceID)
}

// GetForUpdate loads the header with a row lock held until the transaction ends.
func (r *Repo) GetForUpdate(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("get invoice for update requires transaction context")
	}
	q := r.baseSelect().
		Where(squirrel.Eq{"id": invoiceID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, invoiceID)
}

func (r *Repo) getOne(ctx context.Context, q squirrel.SelectBuilder, invoiceID id.ID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := postgres.Get(ctx, r.querier(ctx), &inv, q); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound(invoice.EntityName, invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// Create inserts the header.
func (r *Repo) Create(ctx context.Context, inv *invoice.Invoice) error {
	q := postgres.Builder.
		Insert(invoicesTable).
		SetMap(postgres.StructToMap(inv))

	if _, err := postgres.Exec(ctx, r.querier(ctx), q); err != nil {
		return fmt.Errorf("insert invoice: %w", postgres.MapError(err, invoice.EntityName))
	}
	return nil
}

// UpdateHeader rewrites the mutable header columns. invoice_number and
// created_at are never touched.
func (r *Repo) UpdateHeader(ctx context.Context, inv *invoice.Invoice) error {
	q := postgres.Builder.
		Update(invoicesTable).
		Set("customer_id", inv.CustomerID).
		Set("status", inv.Status).
		Set("invoice_date", inv.InvoiceDate).
		Set("total", inv.Total).
		Set("updated_at", inv.UpdatedAt).
		Where(squirrel.Eq{"id": inv.ID})

	n, err := postgres.Exec(ctx, r.querier(ctx), q)
	if err != nil {
		return fmt.Errorf("update invoice: %w", postgres.MapError(err, invoice.EntityName))
	}
	if n == 0 {
		return apperror.NewNotFound(invoice.EntityName, inv.ID.String())
	}
	return nil
}

// DeleteHeader removes the header row. Children must be deleted first.
func (r *Repo) DeleteHeader(ctx context.Context, invoiceID id.ID) error {
	n, err := postgres.Exec(ctx, r.querier(ctx),
		postgres.Builder.Delete(invoicesTable).Where(squirrel.Eq{"id": invoiceID}))
	if err != nil {
		return fmt.Errorf("delete invoice: %w", postgres.MapError(err, invoice.EntityName))
	}
	if n == 0 {
		return apperror.NewNotFound(invoice.EntityName, invoiceID.String())
	}
	return nil
}

// applyFilter adds the WHERE clauses shared by List and Count.
func applyFilter(q squirrel.SelectBuilder, filter invoice.ListFilter) squirrel.SelectBuilder {
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"invoice_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"invoice_date": *filter.DateTo})
	}
	return q
}

// List returns a page of headers, newest first.
func (r *Repo) List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	q := applyFilter(r.baseSelect(), filter).
		OrderBy("invoice_date DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	var items []*invoice.Invoice
	if err := postgres.Select(ctx, r.querier(ctx), &items, q); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return items, nil
}

// Count returns the number of headers matching filter, ignoring paging.
func (r *Repo) Count(ctx context.Context, filter invoice.ListFilter) (int64, error) {
	q := applyFilter(postgres.Builder.Select("COUNT(*)").From(invoicesTable), filter)

	var total int64
	if err := postgres.Get(ctx, r.querier(ctx), &total, q); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return total, nil
}

// InsertItems bulk inserts items with COPY.
func (r *Repo) InsertItems(ctx context.Context, items []invoice.Item) error {
	if _, err := r.txManager.CopyFromSlice(ctx, itemsTable, itemCols, postgres.RowsFor(items, itemCols)); err != nil {
		return postgres.MapError(err, "invoice item")
	}
	return nil
}

// DeleteItems removes every item of the invoice.
func (r *Repo) DeleteItems(ctx context.Context, invoiceID id.ID) error {
	return r.deleteChildren(ctx, itemsTable, invoiceID)
}

// ItemsFor loads the items of several invoices in one query, in line order.
func (r *Repo) ItemsFor(ctx context.Context, invoiceIDs []id.ID) ([]invoice.Item, error) {
	var items []invoice.Item
	if len(invoiceIDs) == 0 {
		return items, nil
	}
	q := postgres.Builder.
		Select(itemCols...).
		From(itemsTable).
		Where(squirrel.Eq{"invoice_id": invoiceIDs}).
		OrderBy("invoice_id", "line_no")
	if err := postgres.Select(ctx, r.querier(ctx), &items, q); err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	return items, nil
}

// InsertPayments bulk inserts payments with COPY.
func (r *Repo) InsertPayments(ctx context.Context, payments []invoice.Payment) error {
	if _, err := r.txManager.CopyFromSlice(ctx, paymentsTable, paymentCols, postgres.RowsFor(payments, paymentCols)); err != nil {
		return postgres.MapError(err, "payment")
	}
	return nil
}

// DeletePayments removes every payment of the invoice.
func (r *Repo) DeletePayments(ctx context.Context, invoiceID id.ID) error {
	return r.deleteChildren(ctx, paymentsTable, invoiceID)
}

// PaymentsFor loads the payments of several invoices in one query, in line order.
func (r *Repo) PaymentsFor(ctx context.Context, invoiceIDs []id.ID) ([]invoice.Payment, error) {
	var payments []invoice.Payment
	if len(invoiceIDs) == 0 {
		return payments, nil
	}
	q := postgres.Builder.
		Select(paymentCols...).
		From(paymentsTable).
		Where(squirrel.Eq{"invoice_id": invoiceIDs}).
		OrderBy("invoice_id", "line_no")
	if err := postgres.Select(ctx, r.querier(ctx), &payments, q); err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	return payments, nil
}

func (r *Repo) deleteChildren(ctx context.Context, table string, invoiceID id.ID) error {
	q := postgres.Builder.Delete(table).Where(squirrel.Eq{"invoice_id": invoiceID})
	if _, err := postgres.Exec(ctx, r.querier(ctx), q); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}
