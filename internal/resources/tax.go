package resources

import (
	"context"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

const taxProfilePath = "/tax/profile"

type TaxProfile struct {
	VATID         string  `json:"vat_id"`
	TaxNumber     string  `json:"tax_number"`
	Country       string  `json:"country"`
	DefaultRate   float64 `json:"default_rate"`
	SmallBusiness bool    `json:"small_business"`
}

// Tax exposes the merchant's tax profile.
type Tax struct {
	api *apiclient.Client
}

func NewTax(api *apiclient.Client) *Tax {
	return &Tax{api: api}
}

// Profile returns the configured tax profile. A merchant that has not set one
// up yet is not an error: a backend 404 translates to (nil, nil). Every other
// failure propagates.
func (c *Tax) Profile(ctx context.Context) (*TaxProfile, error) {
	var profile TaxProfile
	err := c.api.Get(ctx, taxProfilePath, nil, &profile)
	if apiclient.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Save creates or replaces the tax profile.
func (c *Tax) Save(ctx context.Context, profile TaxProfile) (*TaxProfile, error) {
	var saved TaxProfile
	if err := c.api.Put(ctx, taxProfilePath, &apiclient.Options{Body: profile}, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
