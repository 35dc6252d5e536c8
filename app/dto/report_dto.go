package dto

import "github.com/amirphl/dynamic-pricing/pricing"

// ReportRangeRequest selects quotes created in [start, end). Dates are YYYY-MM-DD.
type ReportRangeRequest struct {
	Start string `query:"start" validate:"required,datetime=2006-01-02" example:"2024-01-01"`
	End   string `query:"end" validate:"required,datetime=2006-01-02" example:"2024-02-01"`
}

// OptimizationReportRequest selects one model's quotes in a date range
type OptimizationReportRequest struct {
	Model string `query:"model" validate:"required" example:"value_based"`
	Start string `query:"start" validate:"required,datetime=2006-01-02" example:"2024-01-01"`
	End   string `query:"end" validate:"required,datetime=2006-01-02" example:"2024-02-01"`
}

// SegmentBreakdownDTO aggregates quotes of one segment
type SegmentBreakdownDTO struct {
	Segment        string  `json:"segment" example:"smb"`
	TotalQuotes    int64   `json:"total_quotes" example:"12"`
	AcceptedQuotes int64   `json:"accepted_quotes" example:"4"`
	AveragePrice   float64 `json:"average_price" example:"12999"`
	ConversionRate float64 `json:"conversion_rate" example:"0.3333"`
}

// PricingReportDTO summarises quotes created in a date range
type PricingReportDTO struct {
	Start           string                `json:"start" example:"2024-01-01"`
	End             string                `json:"end" example:"2024-02-01"`
	TotalQuotes     int64                 `json:"total_quotes" example:"40"`
	AcceptedQuotes  int64                 `json:"accepted_quotes" example:"9"`
	AveragePrice    float64               `json:"average_price" example:"11873.5"`
	AverageDiscount float64               `json:"average_discount" example:"4.2"`
	ConversionRate  float64               `json:"conversion_rate" example:"0.225"`
	Segments        []SegmentBreakdownDTO `json:"segments"`
}

// OptimizationReportDTO is the price-range performance report of one model
type OptimizationReportDTO = pricing.PerformanceReport
