package pricing

import "math"

const (
	solutionBaseMonthlyCost = 2500.0
	solutionCostPerTicket   = 0.50
	solutionResponseSeconds = 30.0

	// paybackNever is reported when the prospect would not save money.
	paybackNever = 999.0
)

// ROIInput describes a prospect's current support operation.
type ROIInput struct {
	CurrentMonthlyCost float64
	TicketsPerMonth    int
	ResponseTimeHours  float64
	SatisfactionScore  int
}

// ROIProjection compares the prospect's current cost with the projected solution cost.
type ROIProjection struct {
	CurrentMonthlyCost      float64 `json:"current_monthly_cost"`
	CurrentAnnualCost       float64 `json:"current_annual_cost"`
	SolutionMonthlyCost     float64 `json:"solution_monthly_cost"`
	SolutionAnnualCost      float64 `json:"solution_annual_cost"`
	MonthlySavings          float64 `json:"monthly_savings"`
	AnnualSavings           float64 `json:"annual_savings"`
	ROIPercentage           float64 `json:"roi_percentage"`
	PaybackPeriodMonths     float64 `json:"payback_period_months"`
	ResponseTimeImprovement float64 `json:"response_time_improvement"`
	ProjectedSatisfaction   int     `json:"projected_satisfaction"`
	SatisfactionImprovement int     `json:"satisfaction_improvement"`
}

// ProjectROI computes the savings and payback of switching a prospect over.
func ProjectROI(in ROIInput) (ROIProjection, error) {
	if in.CurrentMonthlyCost < 0 {
		return ROIProjection{}, newValidationError("current_monthly_cost", "must not be negative")
	}
	if in.TicketsPerMonth < 0 {
		return ROIProjection{}, newValidationError("tickets_per_month", "must not be negative")
	}
	if in.ResponseTimeHours < 0 {
		return ROIProjection{}, newValidationError("response_time_hours", "must not be negative")
	}
	if !ValidScore(in.SatisfactionScore) {
		return ROIProjection{}, newValidationError("satisfaction_score", "must be between %d and %d", MinScore, MaxScore)
	}

	monthly := solutionBaseMonthlyCost + float64(in.TicketsPerMonth)*solutionCostPerTicket
	annual := monthly * 12
	savings := in.CurrentMonthlyCost - monthly

	p := ROIProjection{
		CurrentMonthlyCost:      in.CurrentMonthlyCost,
		CurrentAnnualCost:       in.CurrentMonthlyCost * 12,
		SolutionMonthlyCost:     monthly,
		SolutionAnnualCost:      annual,
		MonthlySavings:          savings,
		AnnualSavings:           savings * 12,
		PaybackPeriodMonths:     paybackNever,
		ResponseTimeImprovement: in.ResponseTimeHours * 3600 / solutionResponseSeconds,
	}
	p.ROIPercentage = p.AnnualSavings / annual * 100
	if savings > 0 {
		p.PaybackPeriodMonths = annual / savings
	}
	p.ProjectedSatisfaction = int(math.Min(MaxScore, float64(in.SatisfactionScore+2)))
	p.SatisfactionImprovement = p.ProjectedSatisfaction - in.SatisfactionScore
	return p, nil
}
