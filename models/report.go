package models

import "github.com/amirphl/dynamic-pricing/pricing"

// QuoteSummary aggregates quotes created in a date range.
type QuoteSummary struct {
	TotalQuotes     int64   `json:"total_quotes"`
	AcceptedQuotes  int64   `json:"accepted_quotes"`
	AveragePrice    float64 `json:"average_price"`
	AverageDiscount float64 `json:"average_discount"`
}

// SegmentBreakdown aggregates quotes of one client segment.
type SegmentBreakdown struct {
	Segment        pricing.Segment `json:"segment"`
	TotalQuotes    int64           `json:"total_quotes"`
	AcceptedQuotes int64           `json:"accepted_quotes"`
	AveragePrice   float64         `json:"average_price"`
}
