package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeOf(t *testing.T) {
	assert.Equal(t, RangeUnder5K, RangeOf(4999))
	assert.Equal(t, Range5KTo15K, RangeOf(5000))
	assert.Equal(t, Range15KTo50K, RangeOf(15000))
	assert.Equal(t, RangeOver50K, RangeOf(50000))
}

func TestAnalyzePricePerformance(t *testing.T) {
	var points []PerformancePoint
	// under_5k: 4 of 10 converted
	for i := 0; i < 10; i++ {
		points = append(points, PerformancePoint{FinalPrice: 999, Converted: i < 4})
	}
	// 15k_to_50k: 0 of 6 converted
	for i := 0; i < 6; i++ {
		points = append(points, PerformancePoint{FinalPrice: 16899, Converted: false})
	}
	// 5k_to_15k: 1 of 5 converted
	for i := 0; i < 5; i++ {
		points = append(points, PerformancePoint{FinalPrice: 9999, Converted: i == 0})
	}

	report := AnalyzePricePerformance("value_based", points)
	assert.Equal(t, "value_based", report.ModelName)
	require.Len(t, report.Ranges, 3)

	assert.Equal(t, RangeUnder5K, report.Ranges[0].Range)
	assert.Equal(t, 10, report.Ranges[0].TotalQuotes)
	assert.InDelta(t, 0.4, report.Ranges[0].ConversionRate, 1e-12)
	assert.Equal(t, IncreasePrice, report.Ranges[0].Recommendation)

	assert.Equal(t, Range5KTo15K, report.Ranges[1].Range)
	assert.Equal(t, MaintainPrice, report.Ranges[1].Recommendation)

	assert.Equal(t, Range15KTo50K, report.Ranges[2].Range)
	assert.Equal(t, DecreasePrice, report.Ranges[2].Recommendation)

	assert.Equal(t, []string{
		"Best conversion rate in under_5k range: 40.00%",
		"Consider reducing prices in 15k_to_50k range (conversion rate: 0.00%)",
	}, report.Recommendations)
}

func TestAnalyzePricePerformance_Empty(t *testing.T) {
	report := AnalyzePricePerformance("competitive", nil)
	assert.Empty(t, report.Ranges)
	assert.Empty(t, report.Recommendations)
}

func TestProjectROI(t *testing.T) {
	p, err := ProjectROI(ROIInput{
		CurrentMonthlyCost: 15000,
		TicketsPerMonth:    5000,
		ResponseTimeHours:  4,
		SatisfactionScore:  6,
	})
	require.NoError(t, err)

	assert.Equal(t, 5000.0, p.SolutionMonthlyCost)
	assert.Equal(t, 60000.0, p.SolutionAnnualCost)
	assert.Equal(t, 10000.0, p.MonthlySavings)
	assert.Equal(t, 120000.0, p.AnnualSavings)
	assert.InDelta(t, 200.0, p.ROIPercentage, 1e-9)
	assert.InDelta(t, 6.0, p.PaybackPeriodMonths, 1e-9)
	assert.Equal(t, 480.0, p.ResponseTimeImprovement)
	assert.Equal(t, 8, p.ProjectedSatisfaction)
	assert.Equal(t, 2, p.SatisfactionImprovement)
}

func TestProjectROI_NoSavings(t *testing.T) {
	p, err := ProjectROI(ROIInput{CurrentMonthlyCost: 1000, TicketsPerMonth: 100, ResponseTimeHours: 1, SatisfactionScore: 10})
	require.NoError(t, err)
	assert.Less(t, p.MonthlySavings, 0.0)
	assert.Equal(t, paybackNever, p.PaybackPeriodMonths)
	assert.Equal(t, 10, p.ProjectedSatisfaction)
	assert.Zero(t, p.SatisfactionImprovement)

	_, err = ProjectROI(ROIInput{SatisfactionScore: 0})
	assert.ErrorIs(t, err, ErrValidation)
}
