package resources

import (
	"context"
	"time"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

const invoicesPath = "/invoices"

type Invoice struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	NetCents    int64     `json:"net_cents"`
	TaxCents    int64     `json:"tax_cents"`
	GrossCents  int64     `json:"gross_cents"`
	Currency    string    `json:"currency"`
	IssuedAt    time.Time `json:"issued_at"`
	DueAt       time.Time `json:"due_at"`
	PaidAt      time.Time `json:"paid_at"`
	PaymentNote string    `json:"payment_note,omitempty"`
}

// Invoices exposes the invoice resource.
type Invoices struct {
	api *apiclient.Client
}

func NewInvoices(api *apiclient.Client) *Invoices {
	return &Invoices{api: api}
}

// InvoiceListOptions filters the invoice list. Empty fields are omitted.
type InvoiceListOptions struct {
	Status  string
	OrderID string
	PageOptions
}

func (c *Invoices) List(ctx context.Context, opts InvoiceListOptions) ([]Invoice, error) {
	var result page[Invoice]
	err := c.api.Get(ctx, invoicesPath, &apiclient.Options{
		Query: []apiclient.Param{
			{Key: "status", Value: opts.Status},
			{Key: "order_id", Value: opts.OrderID},
			{Key: "page", Value: itoaOrEmpty(opts.Page)},
			{Key: "per_page", Value: itoaOrEmpty(opts.PerPage)},
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Invoices) Get(ctx context.Context, id string) (*Invoice, error) {
	var invoice Invoice
	if err := c.api.Get(ctx, invoicesPath+"/"+id, nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MarkPaid records an external payment against the invoice.
func (c *Invoices) MarkPaid(ctx context.Context, id, note string) (*Invoice, error) {
	var invoice Invoice
	err := c.api.Post(ctx, invoicesPath+"/"+id+"/payments", &apiclient.Options{
		Body: map[string]string{"note": note},
	}, &invoice)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
