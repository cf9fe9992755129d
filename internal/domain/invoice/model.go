// Package invoice implements the invoice transaction manager: atomic
// create/replace/delete of an invoice header together with its line items and
// payments, with totals derived from live catalog prices.
package invoice

import (
	"fmt"
	"time"

	"smartshop/internal/core/apperror"
	"smartshop/internal/core/id"
	"smartshop/internal/core/types"
)

// EntityName is used in errors and audit records.
const EntityName = "invoice"

// Status is the invoice lifecycle state.
type Status int16

const (
	StatusDraft Status = iota
	StatusIssued
	StatusPaid
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusDraft:     "draft",
	StatusIssued:    "issued",
	StatusPaid:      "paid",
	StatusCancelled: "cancelled",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int16(s))
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus int16

const (
	PaymentPending PaymentStatus = iota
	PaymentCompleted
	PaymentFailed
	PaymentRefunded
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s >= PaymentPending && s <= PaymentRefunded
}

// Invoice is the sale header plus its owned collections.
type Invoice struct {
	ID            id.ID       `db:"id" json:"id"`
	InvoiceNumber string      `db:"invoice_number" json:"invoiceNumber"`
	CustomerID    id.ID       `db:"customer_id" json:"customerId"`
	Status        Status      `db:"status" json:"status"`
	InvoiceDate   time.Time   `db:"invoice_date" json:"invoiceDate"`
	Total         types.Money `db:"total" json:"total"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`

	Items    []Item    `db:"-" json:"items"`
	Payments []Payment `db:"-" json:"payments"`
}

// Item is one invoice line. LineNo preserves input order.
type Item struct {
	ID        id.ID `db:"id" json:"id"`
	InvoiceID id.ID `db:"invoice_id" json:"invoiceId"`
	LineNo    int   `db:"line_no" json:"lineNo"`
	ProductID id.ID `db:"product_id" json:"productId"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// Payment is one payment against an invoice. Date is always stamped by the
// service clock.
type Payment struct {
	ID              id.ID         `db:"id" json:"id"`
	InvoiceID       id.ID         `db:"invoice_id" json:"invoiceId"`
	LineNo          int           `db:"line_no" json:"lineNo"`
	Amount          types.Money   `db:"amount" json:"amount"`
	PaymentMethodID id.ID         `db:"payment_method_id" json:"paymentMethodId"`
	Status          PaymentStatus `db:"status" json:"status"`
	Date            time.Time     `db:"payment_date" json:"date"`
}

// Clone returns a deep copy, used for before/after audit snapshots.
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	c.Items = append([]Item(nil), inv.Items...)
	c.Payments = append([]Payment(nil), inv.Payments...)
	return &c
}

// Input carries the caller-controlled fields of an invoice.
//
// On update a nil Items (or Payments) leaves the stored collection untouched,
// while a non-nil slice, even an empty one, replaces it wholesale.
type Input struct {
	CustomerID  id.ID
	Status      Status
	InvoiceDate time.Time
	Items       []ItemInput
	Payments    []PaymentInput
}

// ItemInput is a requested invoice line.
type ItemInput struct {
	ProductID id.ID
	Quantity  int
}

// PaymentInput is a requested payment.
type PaymentInput struct {
	Amount          types.Money
	PaymentMethodID id.ID
	Status          PaymentStatus
}

func validateInput(in *Input) error {
	if !in.Status.Valid() {
		return apperror.NewValidation("unknown invoice status").
			WithDetail("field", "status").
			WithDetail("value", int16(in.Status))
	}
	for i, it := range in.Items {
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product id is required").
				WithDetail("field", fmt.Sprintf("items[%d].productId", i))
		}
		if it.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", fmt.Sprintf("items[%d].quantity", i))
		}
	}
	for i, p := range in.Payments {
		if p.Amount.IsNegative() {
			return apperror.NewValidation("payment amount must not be negative").
				WithDetail("field", fmt.Sprintf("payments[%d].amount", i))
		}
		if !p.Status.Valid() {
			return apperror.NewValidation("unknown payment status").
				WithDetail("field", fmt.Sprintf("payments[%d].status", i))
		}
	}
	return nil
}

// TimestampNumber renders the default invoice number:
// "INV-" + yyyyMMddHHmmss + "-" + first eight characters of the id.
func TimestampNumber(now time.Time, invoiceID id.ID) string {
	return "INV-" + now.UTC().Format("20060102150405") + "-" + id.Short(invoiceID)
}
