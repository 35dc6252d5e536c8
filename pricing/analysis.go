package pricing

import "fmt"

// PriceRange buckets a final quote price for conversion analysis.
type PriceRange string

const (
	RangeUnder5K  PriceRange = "under_5k"
	Range5KTo15K  PriceRange = "5k_to_15k"
	Range15KTo50K PriceRange = "15k_to_50k"
	RangeOver50K  PriceRange = "over_50k"
)

// PriceRanges lists ranges from cheapest to most expensive.
var PriceRanges = []PriceRange{RangeUnder5K, Range5KTo15K, Range15KTo50K, RangeOver50K}

// Recommendation is the per-range pricing suggestion.
type Recommendation string

const (
	IncreasePrice Recommendation = "increase_price"
	DecreasePrice Recommendation = "decrease_price"
	MaintainPrice Recommendation = "maintain_price"
)

// RangeOf returns the price range of price.
func RangeOf(price float64) PriceRange {
	switch {
	case price < 5000:
		return RangeUnder5K
	case price < 15000:
		return Range5KTo15K
	case price < 50000:
		return Range15KTo50K
	default:
		return RangeOver50K
	}
}

// PerformancePoint is one historical quote outcome.
type PerformancePoint struct {
	FinalPrice float64
	Converted  bool
}

// RangePerformance summarises the quotes that fell into one range.
type RangePerformance struct {
	Range          PriceRange     `json:"range"`
	TotalQuotes    int            `json:"total_quotes"`
	Conversions    int            `json:"conversions"`
	ConversionRate float64        `json:"conversion_rate"`
	Recommendation Recommendation `json:"recommendation"`
}

// PerformanceReport is the bucketed conversion report for one model.
type PerformanceReport struct {
	ModelName       string             `json:"model_analyzed"`
	Ranges          []RangePerformance `json:"price_performance"`
	Recommendations []string           `json:"overall_recommendations"`
}

// AnalyzePricePerformance groups outcomes by price range and derives conversion
// rates and recommendations. Ranges without quotes are omitted.
func AnalyzePricePerformance(modelName string, points []PerformancePoint) PerformanceReport {
	counts := make(map[PriceRange]*RangePerformance, len(PriceRanges))
	for _, p := range points {
		r := RangeOf(p.FinalPrice)
		rp, ok := counts[r]
		if !ok {
			rp = &RangePerformance{Range: r}
			counts[r] = rp
		}
		rp.TotalQuotes++
		if p.Converted {
			rp.Conversions++
		}
	}

	report := PerformanceReport{ModelName: modelName, Ranges: []RangePerformance{}, Recommendations: []string{}}
	for _, r := range PriceRanges {
		rp, ok := counts[r]
		if !ok {
			continue
		}
		rp.ConversionRate = float64(rp.Conversions) / float64(rp.TotalQuotes)
		switch {
		case rp.ConversionRate > 0.3:
			rp.Recommendation = IncreasePrice
		case rp.ConversionRate < 0.1:
			rp.Recommendation = DecreasePrice
		default:
			rp.Recommendation = MaintainPrice
		}
		report.Ranges = append(report.Ranges, *rp)
	}
	report.Recommendations = overallRecommendations(report.Ranges)
	return report
}

func overallRecommendations(ranges []RangePerformance) []string {
	out := []string{}
	if len(ranges) == 0 {
		return out
	}

	best := ranges[0]
	for _, r := range ranges[1:] {
		if r.ConversionRate > best.ConversionRate {
			best = r
		}
	}
	out = append(out, fmt.Sprintf("Best conversion rate in %s range: %.2f%%", best.Range, best.ConversionRate*100))

	for _, r := range ranges {
		if r.ConversionRate < 0.1 && r.TotalQuotes > 5 {
			out = append(out, fmt.Sprintf("Consider reducing prices in %s range (conversion rate: %.2f%%)", r.Range, r.ConversionRate*100))
		}
	}
	for _, r := range ranges {
		if r.ConversionRate > 0.4 {
			out = append(out, fmt.Sprintf("Consider increasing prices in %s range (high conversion rate: %.2f%%)", r.Range, r.ConversionRate*100))
		}
	}
	return out
}
