package businessflow

import (
	"context"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/pricing"
)

// ROIFlow projects the return of switching a prospect over
type ROIFlow interface {
	Project(ctx context.Context, req *dto.ROIRequest) (*dto.ROIResponse, error)
}

// ROIFlowImpl implements ROIFlow
type ROIFlowImpl struct{}

func NewROIFlow() ROIFlow {
	return &ROIFlowImpl{}
}

func (f *ROIFlowImpl) Project(ctx context.Context, req *dto.ROIRequest) (*dto.ROIResponse, error) {
	if req == nil {
		return nil, NewBusinessError("PRICING_VALIDATION_FAILED", "ROI request is required", ErrPricingValidation)
	}
	p, err := pricing.ProjectROI(pricing.ROIInput{
		CurrentMonthlyCost: req.CurrentMonthlyCost,
		TicketsPerMonth:    req.TicketsPerMonth,
		ResponseTimeHours:  req.ResponseTimeHours,
		SatisfactionScore:  req.SatisfactionScore,
	})
	if err != nil {
		return nil, fromPricingError(err)
	}
	return &p, nil
}
