package resources

import (
	"context"
	"time"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

const ordersPath = "/orders"

type OrderItem struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Order struct {
	ID           string      `json:"id"`
	Number       string      `json:"number"`
	Status       string      `json:"status"`
	CustomerName string      `json:"customer_name"`
	Currency     string      `json:"currency"`
	TotalCents   int64       `json:"total_cents"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Orders exposes the order resource.
type Orders struct {
	api *apiclient.Client
}

func NewOrders(api *apiclient.Client) *Orders {
	return &Orders{api: api}
}

// OrderListOptions filters the order list. Empty fields are omitted.
type OrderListOptions struct {
	Status string
	PageOptions
}

func (c *Orders) List(ctx context.Context, opts OrderListOptions) ([]Order, error) {
	var result page[Order]
	err := c.api.Get(ctx, ordersPath, &apiclient.Options{
		Query: []apiclient.Param{
			{Key: "status", Value: opts.Status},
			{Key: "page", Value: itoaOrEmpty(opts.Page)},
			{Key: "per_page", Value: itoaOrEmpty(opts.PerPage)},
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Orders) Get(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.api.Get(ctx, ordersPath+"/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Orders) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	var order Order
	err := c.api.Patch(ctx, ordersPath+"/"+id, &apiclient.Options{
		Body: map[string]string{"status": status},
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
