package invoice

import (
	"context"
	"time"

	"smartshop/internal/core/id"
	"smartshop/internal/core/types"
)

// ListFilter narrows List. Zero values mean "no constraint".
type ListFilter struct {
	CustomerID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// DefaultListLimit applies when ListFilter.Limit is zero.
const DefaultListLimit = 50

// MaxListLimit caps ListFilter.Limit.
const MaxListLimit = 500

// ListResult is one page of invoices.
type ListResult struct {
	Items      []*Invoice `json:"items"`
	TotalCount int64      `json:"totalCount"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}

// Repository persists invoice headers and their child rows. All methods use
// the transaction carried by ctx when there is one.
type Repository interface {
	// GetByID loads the header only. Returns apperror NotFound on a miss.
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// GetForUpdate loads the header and row-locks it until the transaction ends.
	GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	Create(ctx context.Context, inv *Invoice) error
	UpdateHeader(ctx context.Context, inv *Invoice) error
	DeleteHeader(ctx context.Context, invoiceID id.ID) error

	List(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)

	InsertItems(ctx context.Context, items []Item) error
	DeleteItems(ctx context.Context, invoiceID id.ID) error
	ItemsFor(ctx context.Context, invoiceIDs []id.ID) ([]Item, error)

	InsertPayments(ctx context.Context, payments []Payment) error
	DeletePayments(ctx context.Context, invoiceID id.ID) error
	PaymentsFor(ctx context.Context, invoiceIDs []id.ID) ([]Payment, error)
}

// PriceLookup batch-loads current product prices. Unknown ids are simply
// absent from the result.
type PriceLookup interface {
	PricesByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Money, error)
}

// Numberer issues values from the sequence generator.
type Numberer interface {
	Next(ctx context.Context, key string, increment bool) (string, error)
}
