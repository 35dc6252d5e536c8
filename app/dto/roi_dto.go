package dto

import "github.com/amirphl/dynamic-pricing/pricing"

// ROIRequest describes a prospect's current support operation
type ROIRequest struct {
	TicketsPerMonth    int     `json:"tickets_per_month" validate:"gte=0" example:"5000"`
	CurrentMonthlyCost float64 `json:"current_monthly_cost" validate:"gte=0" example:"15000"`
	ResponseTimeHours  float64 `json:"response_time_hours" validate:"gte=0" example:"4"`
	SatisfactionScore  int     `json:"satisfaction_score" validate:"required,min=1,max=10" example:"6"`
}

// ROIResponse is the projected return of switching over
type ROIResponse = pricing.ROIProjection
