package dto

// MarketFactorDTO is one named market multiplier
type MarketFactorDTO struct {
	Name       string  `json:"name" validate:"required,max=100" example:"demand_index"`
	Multiplier float64 `json:"multiplier" validate:"gt=0" example:"1.15"`
}

// MarketConditionsDTO is the current market snapshot
type MarketConditionsDTO struct {
	SnapshotID string            `json:"snapshot_id"`
	TakenAt    string            `json:"taken_at,omitempty" example:"2024-01-15T10:30:00Z"`
	Factors    []MarketFactorDTO `json:"factors"`
}

// PublishMarketConditionsRequest replaces the market snapshot. Order is kept.
type PublishMarketConditionsRequest struct {
	Factors []MarketFactorDTO `json:"factors" validate:"required,min=1,dive"`
}
