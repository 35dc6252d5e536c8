package pricing

import "sort"

// ModelRegistry resolves pricing models by name.
type ModelRegistry interface {
	Get(name string) (*PricingModel, error)
	Names() []string
}

// Registry is an immutable set of validated pricing models keyed by name.
// Refreshing models means building a new Registry.
type Registry struct {
	models map[string]*PricingModel
	names  []string
}

// NewRegistry validates every spec and rejects duplicate model names.
func NewRegistry(specs ...ModelSpec) (*Registry, error) {
	r := &Registry{models: make(map[string]*PricingModel, len(specs))}
	for _, spec := range specs {
		if _, dup := r.models[spec.Name]; dup {
			return nil, newValidationError("name", "duplicate pricing model %q", spec.Name)
		}
		m, err := NewPricingModel(spec)
		if err != nil {
			return nil, err
		}
		r.models[spec.Name] = m
		r.names = append(r.names, spec.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Get returns the named model or a NotFoundError of kind model.
func (r *Registry) Get(name string) (*PricingModel, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, &NotFoundError{Kind: NotFoundModel, Key: name}
	}
	return m, nil
}

// Names lists registered model names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Models returns every model in name order.
func (r *Registry) Models() []*PricingModel {
	out := make([]*PricingModel, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.models[n])
	}
	return out
}

// DefaultRegistry returns a registry holding DefaultModelSpecs.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultModelSpecs()...)
	if err != nil {
		panic("pricing: built-in models are invalid: " + err.Error())
	}
	return r
}

// DefaultModelSpecs returns the built-in value_based, competitive and
// psychological models.
func DefaultModelSpecs() []ModelSpec {
	return []ModelSpec{
		{
			ID:          "value_based",
			Name:        "value_based",
			Description: "Value-based pricing on client segment, industry, urgency and strategic fit",
			BasePrice:   10000,
			PricingFactors: map[string]map[string]float64{
				CategorySegment: {
					string(SegmentStartup):    0.7,
					string(SegmentSMB):        0.85,
					string(SegmentMidMarket):  1.0,
					string(SegmentEnterprise): 1.5,
					string(SegmentFortune500): 2.5,
				},
				CategoryIndustry: {
					"technology":    1.2,
					"saas":          1.3,
					"fintech":       1.4,
					"healthcare":    1.1,
					"manufacturing": 0.9,
					"retail":        0.8,
					"non_profit":    0.6,
				},
				CategoryUrgency: {
					string(BandLow):  0.9,
					string(BandMid):  1.0,
					string(BandHigh): 1.15,
					string(BandTop):  1.3,
				},
				CategoryCompetition: {
					string(BandLow):      1.2,
					string(BandMid):      1.0,
					string(BandHighWide): 0.85,
				},
				CategoryStrategic: {
					string(BandLow):  0.9,
					string(BandMid):  1.0,
					string(BandHigh): 1.1,
					string(BandTop):  1.25,
				},
			},
			DiscountBands: map[string][]DiscountThreshold{
				VolumeDiscountTable: {
					{Name: "tier_1", MinRevenue: 100_000, Discount: 0.05},
					{Name: "tier_2", MinRevenue: 500_000, Discount: 0.10},
					{Name: "tier_3", MinRevenue: 1_000_000, Discount: 0.15},
				},
			},
			PremiumMultipliers: map[string]float64{
				"rush_delivery":       1.25,
				"custom_requirements": 1.15,
				"white_glove_service": 1.35,
				"exclusive_access":    1.5,
			},
		},
		{
			ID:          "competitive",
			Name:        "competitive",
			Description: "Competition-driven pricing anchored on market position",
			BasePrice:   8500,
			PricingFactors: map[string]map[string]float64{
				"market_position": {
					"price_leader":   1.3,
					"price_matcher":  1.0,
					"price_follower": 0.85,
				},
				"differentiation_premium": {
					"commodity":      0.9,
					"differentiated": 1.1,
					"unique_value":   1.25,
				},
				"competitive_match": {
					"beat_competitor":   0.95,
					"match_competitor":  1.0,
					"premium_justified": 1.15,
				},
			},
			PremiumMultipliers: map[string]float64{
				"superior_quality": 1.2,
				"faster_delivery":  1.15,
				"better_support":   1.1,
			},
		},
		{
			ID:          "psychological",
			Name:        "psychological",
			Description: "Perception-driven pricing around reference prices and bundles",
			BasePrice:   9999,
			PricingFactors: map[string]map[string]float64{
				"price_sensitivity": {
					"low":    1.2,
					"medium": 1.0,
					"high":   0.85,
				},
				"reference_price": {
					"above_market": 0.95,
					"at_market":    1.0,
					"below_market": 1.05,
				},
				"bundle_discount": {
					"single_service": 1.0,
					"package_deal":   0.90,
					"full_suite":     0.80,
				},
			},
			PremiumMultipliers: map[string]float64{
				"premium_positioning":  1.3,
				"exclusive_offering":   1.4,
				"limited_availability": 1.25,
			},
		},
	}
}
