package dto

// CreateQuoteRequest is the body of POST /quotes
type CreateQuoteRequest struct {
	ClientID       string          `json:"client_id" validate:"required,uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	ProductService string          `json:"product_service" validate:"required,max=255" example:"support platform"`
	PricingModel   string          `json:"pricing_model" validate:"required,max=100" example:"value_based"`
	PremiumFlags   map[string]bool `json:"premium_flags,omitempty"`
}

// PreviewQuoteRequest prices an inline profile without storing anything
type PreviewQuoteRequest struct {
	Client       CreateClientRequest `json:"client" validate:"required"`
	PricingModel string              `json:"pricing_model" validate:"required,max=100" example:"value_based"`
	PremiumFlags map[string]bool     `json:"premium_flags,omitempty"`
}

// FactorDTO is one applied pricing stage
type FactorDTO struct {
	Stage string  `json:"stage" example:"industry_multiplier"`
	Value float64 `json:"value" example:"1.3"`
}

// QuoteDTO is the wire form of a price quote
type QuoteDTO struct {
	ID                 string      `json:"id" example:"0b0e5c1e-8a3e-4f43-9d0a-1f2a3b4c5d6e"`
	ClientID           string      `json:"client_id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	ProductService     string      `json:"product_service" example:"support platform"`
	PricingModel       string      `json:"pricing_model" example:"value_based"`
	Segment            string      `json:"segment" example:"smb"`
	BasePrice          float64     `json:"base_price" example:"10000"`
	CalculatedPrice    float64     `json:"calculated_price" example:"12999"`
	DiscountPercentage float64     `json:"discount_percentage" example:"0"`
	PremiumMultiplier  float64     `json:"premium_multiplier" example:"1.25"`
	FactorsApplied     []FactorDTO `json:"factors_applied"`
	MarketSnapshotID   string      `json:"market_snapshot_id" example:"3f2a9c..."`
	ValidUntil         string      `json:"valid_until" example:"2024-02-14T10:30:00Z"`
	Status             string      `json:"status" example:"draft"`
	CreatedDate        string      `json:"created_date" example:"2024-01-15T10:30:00Z"`
	Verified           *bool       `json:"verified,omitempty" example:"true"`
}

// QuotePreviewDTO is the result of pricing without persisting
type QuotePreviewDTO struct {
	PricingModel       string      `json:"pricing_model" example:"value_based"`
	Segment            string      `json:"segment" example:"smb"`
	BasePrice          float64     `json:"base_price" example:"10000"`
	PreRoundingPrice   float64     `json:"pre_rounding_price" example:"12912.4"`
	CalculatedPrice    float64     `json:"calculated_price" example:"12999"`
	DiscountPercentage float64     `json:"discount_percentage" example:"0"`
	PremiumMultiplier  float64     `json:"premium_multiplier" example:"1"`
	FactorsApplied     []FactorDTO `json:"factors_applied"`
	MarketSnapshotID   string      `json:"market_snapshot_id"`
}

// ListQuotesRequest filters GET /quotes
type ListQuotesRequest struct {
	ClientID string `query:"client_id" validate:"omitempty,uuid"`
	Status   string `query:"status" validate:"omitempty,oneof=draft sent accepted declined expired"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ListQuotesResponse is one page of quotes
type ListQuotesResponse struct {
	Quotes     []QuoteDTO     `json:"quotes"`
	Pagination PaginationInfo `json:"pagination"`
}

// UpdateQuoteStatusRequest is the body of PATCH /quotes/:uuid/status
type UpdateQuoteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=sent accepted declined expired" example:"sent"`
	Note   string `json:"note,omitempty" validate:"max=1000"`
}

// QuoteStatusEventDTO is one entry of a quote's status history
type QuoteStatusEventDTO struct {
	FromStatus string  `json:"from_status" example:"draft"`
	ToStatus   string  `json:"to_status" example:"sent"`
	Actor      string  `json:"actor" example:"api"`
	RequestID  *string `json:"request_id,omitempty"`
	Note       *string `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ExpireQuotesResponse reports a manual expiry sweep
type ExpireQuotesResponse struct {
	Expired int `json:"expired" example:"3"`
}
