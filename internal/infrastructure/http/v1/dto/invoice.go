package dto

import (
	"time"

	"github.com/samber/lo"

	"smartshop/internal/core/id"
	"smartshop/internal/core/types"
	"smartshop/internal/domain/audit"
	"smartshop/internal/domain/invoice"
)

// --- Request DTOs ---

// InvoiceRequest is the body of both create and update. An absent items or
// payments array keeps the stored collection on update; a present one, even
// empty, replaces it.
type InvoiceRequest struct {
	CustomerID  id.ID                   `json:"customerId"`
	Status      invoice.Status          `json:"status"`
	InvoiceDate *time.Time              `json:"invoiceDate"`
	Items       []InvoiceItemRequest    `json:"items" binding:"omitempty,dive"`
	Payments    []InvoicePaymentRequest `json:"payments" binding:"omitempty,dive"`
}

// InvoiceItemRequest is one requested line.
type InvoiceItemRequest struct {
	ProductID id.ID `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// InvoicePaymentRequest is one requested payment. The payment date is
// always stamped by the server.
type InvoicePaymentRequest struct {
	Amount          types.Money           `json:"amount"`
	PaymentMethodID id.ID                 `json:"paymentMethodId"`
	Status          invoice.PaymentStatus `json:"status"`
}

// ToInput converts DTO to the service input, preserving nil collections.
func (r *InvoiceRequest) ToInput() *invoice.Input {
	in := &invoice.Input{
		CustomerID: r.CustomerID,
		Status:     r.Status,
	}
	if r.InvoiceDate != nil {
		in.InvoiceDate = r.InvoiceDate.UTC()
	}
	if r.Items != nil {
		in.Items = lo.Map(r.Items, func(it InvoiceItemRequest, _ int) invoice.ItemInput {
			return invoice.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
		})
	}
	if r.Payments != nil {
		in.Payments = lo.Map(r.Payments, func(p InvoicePaymentRequest, _ int) invoice.PaymentInput {
			return invoice.PaymentInput{Amount: p.Amount, PaymentMethodID: p.PaymentMethodID, Status: p.Status}
		})
	}
	return in
}

// InvoiceListQuery holds the GET /invoices query string.
type InvoiceListQuery struct {
	CustomerID string     `form:"customerId"`
	Status     *int16     `form:"status"`
	DateFrom   *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit      int        `form:"limit" binding:"gte=0"`
	Offset     int        `form:"offset" binding:"gte=0"`
}

// ToFilter converts the query to a service filter. DateTo is inclusive of the whole day.
func (q *InvoiceListQuery) ToFilter() (invoice.ListFilter, error) {
	f := invoice.ListFilter{Limit: q.Limit, Offset: q.Offset}
	if q.CustomerID != "" {
		customerID, err := id.Parse(q.CustomerID)
		if err != nil {
			return f, err
		}
		f.CustomerID = &customerID
	}
	if q.Status != nil {
		f.Status = lo.ToPtr(invoice.Status(*q.Status))
	}
	if q.DateFrom != nil {
		f.DateFrom = lo.ToPtr(q.DateFrom.UTC())
	}
	if q.DateTo != nil {
		f.DateTo = lo.ToPtr(q.DateTo.UTC().AddDate(0, 0, 1).Add(-time.Nanosecond))
	}
	return f, nil
}

// --- Response DTOs ---

// InvoiceResponse is the response body for an invoice.
type InvoiceResponse struct {
	ID            string                   `json:"id"`
	InvoiceNumber string                   `json:"invoiceNumber"`
	CustomerID    string                   `json:"customerId"`
	Status        invoice.Status           `json:"status"`
	StatusName    string                   `json:"statusName"`
	InvoiceDate   time.Time                `json:"invoiceDate"`
	Total         string                   `json:"total"`
	Items         []InvoiceItemResponse    `json:"items"`
	Payments      []InvoicePaymentResponse `json:"payments"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// InvoiceItemResponse is one invoice line.
type InvoiceItemResponse struct {
	ID        string `json:"id"`
	InvoiceID string `json:"invoiceId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// InvoicePaymentResponse is one payment.
type InvoicePaymentResponse struct {
	ID              string                `json:"id"`
	InvoiceID       string                `json:"invoiceId"`
	Amount          string                `json:"amount"`
	PaymentMethodID string                `json:"paymentMethodId"`
	Status          invoice.PaymentStatus `json:"status"`
	Date            time.Time             `json:"date"`
}

// FromInvoice creates response DTO from domain aggregate.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID.String(),
		Status:        inv.Status,
		StatusName:    inv.Status.String(),
		InvoiceDate:   inv.InvoiceDate,
		Total:         MoneyString(inv.Total),
		Items: lo.Map(inv.Items, func(it invoice.Item, _ int) InvoiceItemResponse {
			return InvoiceItemResponse{
				ID:        it.ID.String(),
				InvoiceID: it.InvoiceID.String(),
				ProductID: it.ProductID.String(),
				Quantity:  it.Quantity,
			}
		}),
		Payments: lo.Map(inv.Payments, func(p invoice.Payment, _ int) InvoicePaymentResponse {
			return InvoicePaymentResponse{
				ID:              p.ID.String(),
				InvoiceID:       p.InvoiceID.String(),
				Amount:          MoneyString(p.Amount),
				PaymentMethodID: p.PaymentMethodID.String(),
				Status:          p.Status,
				Date:            p.Date,
			}
		}),
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

// FromInvoices maps a page of invoices.
func FromInvoices(invoices []*invoice.Invoice) []*InvoiceResponse {
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *InvoiceResponse {
		return FromInvoice(inv)
	})
}

// HistoryEntryResponse is one audit record of an invoice.
type HistoryEntryResponse struct {
	ID        string       `json:"id"`
	Action    audit.Action `json:"action"`
	UserID    string       `json:"userId,omitempty"`
	UserName  string       `json:"userName,omitempty"`
	Changes   any          `json:"changes"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FromHistory maps audit entries, embedding the change set as raw JSON.
func FromHistory(entries []audit.Entry) []HistoryEntryResponse {
	return lo.Map(entries, func(e audit.Entry, _ int) HistoryEntryResponse {
		return HistoryEntryResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			UserID:    e.UserID,
			UserName:  e.UserName,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		}
	})
}
