package dto

import "github.com/amirphl/dynamic-pricing/pricing"

// PricingModelDTO is a registered pricing model with its tables
type PricingModelDTO = pricing.ModelSpec

// ListPricingModelsResponse lists every registered model
type ListPricingModelsResponse struct {
	Models []PricingModelDTO `json:"models"`
}
