// Package dto contains the request and response bodies of the HTTP API
package dto

// CreateClientRequest is the body of POST /clients
type CreateClientRequest struct {
	CompanyName          string  `json:"company_name" validate:"required,max=255" example:"Acme Corp"`
	Industry             string  `json:"industry" validate:"required,max=100" example:"SaaS"`
	CompanySize          int     `json:"company_size" validate:"gte=0" example:"250"`
	AnnualRevenue        float64 `json:"annual_revenue" validate:"gte=0" example:"2000000"`
	FundingStage         string  `json:"funding_stage,omitempty" validate:"max=50" example:"series_b"`
	GeographicLocation   string  `json:"geographic_location,omitempty" validate:"max=100" example:"north_america"`
	UrgencyScore         int     `json:"urgency_score" validate:"required,min=1,max=10" example:"7"`
	CompetitionLevel     int     `json:"competition_level" validate:"required,min=1,max=10" example:"5"`
	StrategicValue       int     `json:"strategic_value" validate:"required,min=1,max=10" example:"6"`
	PaymentHistoryScore  int     `json:"payment_history_score" validate:"required,min=1,max=10" example:"8"`
	RelationshipStrength int     `json:"relationship_strength" validate:"required,min=1,max=10" example:"6"`
}

// ClientDTO is a stored client profile
type ClientDTO struct {
	ID                   string  `json:"id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	CompanyName          string  `json:"company_name" example:"Acme Corp"`
	Industry             string  `json:"industry" example:"SaaS"`
	CompanySize          int     `json:"company_size" example:"250"`
	AnnualRevenue        float64 `json:"annual_revenue" example:"2000000"`
	FundingStage         string  `json:"funding_stage,omitempty" example:"series_b"`
	GeographicLocation   string  `json:"geographic_location,omitempty" example:"north_america"`
	UrgencyScore         int     `json:"urgency_score" example:"7"`
	CompetitionLevel     int     `json:"competition_level" example:"5"`
	StrategicValue       int     `json:"strategic_value" example:"6"`
	PaymentHistoryScore  int     `json:"payment_history_score" example:"8"`
	RelationshipStrength int     `json:"relationship_strength" example:"6"`
	Segment              string  `json:"segment" example:"smb"`
	CreatedAt            string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}
