package pricing

// ClientProfile is the pricing view of a client. Segment is derived once by
// NewClientProfile and never recomputed by the calculator.
type ClientProfile struct {
	ID                   string
	CompanyName          string
	Industry             string
	CompanySize          int
	AnnualRevenue        float64
	FundingStage         string
	GeographicLocation   string
	UrgencyScore         int
	CompetitionLevel     int
	StrategicValue       int
	PaymentHistoryScore  int
	RelationshipStrength int
	Segment              Segment
}

// NewClientProfile validates p and fixes its segment.
func NewClientProfile(p ClientProfile) (ClientProfile, error) {
	segment, err := ClassifySegment(p.CompanySize, p.AnnualRevenue, p.FundingStage)
	if err != nil {
		return ClientProfile{}, err
	}
	p.Segment = segment
	if err := p.Validate(); err != nil {
		return ClientProfile{}, err
	}
	return p, nil
}

// Validate checks numeric ranges and that a segment has been assigned.
func (p ClientProfile) Validate() error {
	if p.AnnualRevenue < 0 {
		return newValidationError("annual_revenue", "must not be negative, got %v", p.AnnualRevenue)
	}
	if p.CompanySize < 0 {
		return newValidationError("company_size", "must not be negative, got %d", p.CompanySize)
	}
	scores := []struct {
		field string
		value int
	}{
		{"urgency_score", p.UrgencyScore},
		{"competition_level", p.CompetitionLevel},
		{"strategic_value", p.StrategicValue},
		{"payment_history_score", p.PaymentHistoryScore},
		{"relationship_strength", p.RelationshipStrength},
	}
	for _, s := range scores {
		if !ValidScore(s.value) {
			return newValidationError(s.field, "must be between %d and %d, got %d", MinScore, MaxScore, s.value)
		}
	}
	if !p.Segment.Valid() {
		return newValidationError("segment", "unknown segment %q", p.Segment)
	}
	return nil
}
