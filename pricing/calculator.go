package pricing

// Result is the outcome of one price calculation.
type Result struct {
	ModelName          string
	Segment            Segment
	BasePrice          float64
	PreRoundingPrice   float64
	FinalPrice         float64
	Factors            []FactorEntry
	DiscountPercentage float64
	PremiumMultiplier  float64
	SnapshotID         string
}

// PriceFor computes a price without touching any store. A nil snapshot applies no
// market conditions.
func PriceFor(profile ClientProfile, model *PricingModel, snapshot *MarketSnapshot, flags map[string]bool) (Result, error) {
	if model == nil {
		return Result{}, newValidationError("model", "pricing model is required")
	}
	if err := profile.Validate(); err != nil {
		return Result{}, err
	}
	base := model.BasePrice()
	if !positive(base) {
		return Result{}, newValidationError("base_price", "model %q: must be greater than zero, got %v", model.Name(), base)
	}

	preRounding, factors := Fold(base, BuildStages(profile, model, snapshot, flags))
	final := PsychologicalRound(profile.Segment, preRounding)

	res := Result{
		ModelName:          model.Name(),
		Segment:            profile.Segment,
		BasePrice:          base,
		PreRoundingPrice:   preRounding,
		FinalPrice:         final,
		Factors:            factors,
		DiscountPercentage: DiscountPercentage(base, final),
		PremiumMultiplier:  model.Premium(flags),
	}
	if snapshot != nil {
		res.SnapshotID = snapshot.ID()
	}
	return res, nil
}

// Reconstruct re-folds a factor log over base and applies the rounding rule for
// segment. For any Result r, Reconstruct(r.BasePrice, r.Factors, r.Segment) equals
// r.FinalPrice.
func Reconstruct(base float64, factors []FactorEntry, segment Segment) float64 {
	price := base
	for _, f := range factors {
		if IsDiscountStage(f.Stage) {
			price *= 1 - f.Value
		} else {
			price *= f.Value
		}
	}
	return PsychologicalRound(segment, price)
}

// Calculator resolves models from a caller-supplied registry and prices profiles.
type Calculator struct {
	registry ModelRegistry
}

func NewCalculator(registry ModelRegistry) *Calculator {
	return &Calculator{registry: registry}
}

// Quote prices profile with the named model and snapshot.
func (c *Calculator) Quote(profile ClientProfile, modelName string, snapshot *MarketSnapshot, flags map[string]bool) (Result, error) {
	model, err := c.registry.Get(modelName)
	if err != nil {
		return Result{}, err
	}
	return PriceFor(profile, model, snapshot, flags)
}

// Registry returns the registry the calculator resolves models from.
func (c *Calculator) Registry() ModelRegistry {
	return c.registry
}
