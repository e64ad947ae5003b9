package resources

import (
	"context"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

const suppliersPath = "/suppliers"

type Supplier struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone,omitempty"`
	Country      string `json:"country"`
	LeadTimeDays int    `json:"lead_time_days"`
}

// Suppliers exposes the supplier resource.
type Suppliers struct {
	api *apiclient.Client
}

func NewSuppliers(api *apiclient.Client) *Suppliers {
	return &Suppliers{api: api}
}

func (c *Suppliers) List(ctx context.Context, opts PageOptions) ([]Supplier, error) {
	var result page[Supplier]
	err := c.api.Get(ctx, suppliersPath, &apiclient.Options{
		Query: []apiclient.Param{
			{Key: "page", Value: itoaOrEmpty(opts.Page)},
			{Key: "per_page", Value: itoaOrEmpty(opts.PerPage)},
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Suppliers) Create(ctx context.Context, supplier Supplier) (*Supplier, error) {
	var created Supplier
	if err := c.api.Post(ctx, suppliersPath, &apiclient.Options{Body: supplier}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Suppliers) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, suppliersPath+"/"+id, nil, nil)
}
