package pricing

// Segment classifies a client by size and revenue.
type Segment string

const (
	SegmentStartup    Segment = "startup"
	SegmentSMB        Segment = "smb"
	SegmentMidMarket  Segment = "mid_market"
	SegmentEnterprise Segment = "enterprise"
	SegmentFortune500 Segment = "fortune_500"
)

// Segments lists every segment from smallest to largest.
var Segments = []Segment{SegmentStartup, SegmentSMB, SegmentMidMarket, SegmentEnterprise, SegmentFortune500}

func (s Segment) String() string {
	return string(s)
}

// Valid checks if the segment is one of the known segments
func (s Segment) Valid() bool {
	switch s {
	case SegmentStartup, SegmentSMB, SegmentMidMarket, SegmentEnterprise, SegmentFortune500:
		return true
	default:
		return false
	}
}

// LargeAccount reports whether quotes for the segment use round-to-thousand pricing.
func (s Segment) LargeAccount() bool {
	return s == SegmentEnterprise || s == SegmentFortune500
}

type segmentThreshold struct {
	segment    Segment
	minRevenue float64
	minSize    int // 0 means revenue only
}

// evaluated top-down, first match wins
var segmentThresholds = []segmentThreshold{
	{segment: SegmentFortune500, minRevenue: 10_000_000_000},
	{segment: SegmentEnterprise, minRevenue: 1_000_000_000, minSize: 10_000},
	{segment: SegmentMidMarket, minRevenue: 100_000_000, minSize: 1_000},
	{segment: SegmentSMB, minRevenue: 10_000_000, minSize: 100},
}

// ClassifySegment maps company size and annual revenue to a segment. The funding
// stage is accepted for completeness but does not influence the result.
func ClassifySegment(companySize int, annualRevenue float64, _ string) (Segment, error) {
	if annualRevenue < 0 {
		return "", newValidationError("annual_revenue", "must not be negative, got %v", annualRevenue)
	}
	if companySize < 0 {
		return "", newValidationError("company_size", "must not be negative, got %d", companySize)
	}

	for _, t := range segmentThresholds {
		if annualRevenue >= t.minRevenue {
			return t.segment, nil
		}
		if t.minSize > 0 && companySize >= t.minSize {
			return t.segment, nil
		}
	}
	return SegmentStartup, nil
}
