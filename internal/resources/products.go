package resources

import (
	"context"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

const productsPath = "/products"

type Product struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	Manufacturer  string `json:"manufacturer"`
	OENumber      string `json:"oe_number,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	StockQuantity int    `json:"stock_quantity"`
	SupplierID    string `json:"supplier_id,omitempty"`
}

// Products exposes the product (inventory) resource.
type Products struct {
	api *apiclient.Client
}

func NewProducts(api *apiclient.Client) *Products {
	return &Products{api: api}
}

// ProductListOptions filters the product list. Empty fields are omitted.
type ProductListOptions struct {
	Search       string
	Manufacturer string
	PageOptions
}

func (c *Products) List(ctx context.Context, opts ProductListOptions) ([]Product, error) {
	var result page[Product]
	err := c.api.Get(ctx, productsPath, &apiclient.Options{
		Query: []apiclient.Param{
			{Key: "search", Value: opts.Search},
			{Key: "manufacturer", Value: opts.Manufacturer},
			{Key: "page", Value: itoaOrEmpty(opts.Page)},
			{Key: "per_page", Value: itoaOrEmpty(opts.PerPage)},
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Products) Get(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.api.Get(ctx, productsPath+"/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Products) Create(ctx context.Context, product Product) (*Product, error) {
	var created Product
	if err := c.api.Post(ctx, productsPath, &apiclient.Options{Body: product}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Products) Update(ctx context.Context, id string, product Product) (*Product, error) {
	var updated Product
	if err := c.api.Put(ctx, productsPath+"/"+id, &apiclient.Options{Body: product}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Products) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, productsPath+"/"+id, nil, nil)
}
