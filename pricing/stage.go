package pricing

// Stage names written to the factor log.
const (
	StageSegment              = "segment_multiplier"
	StageIndustry             = "industry_multiplier"
	StageUrgency              = "urgency_multiplier"
	StageCompetition          = "competition_multiplier"
	StageStrategic            = "strategic_multiplier"
	StageVolumeDiscount       = "volume_discount"
	StageRelationshipDiscount = "relationship_discount"
	StagePremium              = "premium_multiplier"
)

// FactorEntry records one non-identity stage value.
type FactorEntry struct {
	Stage string  `json:"stage"`
	Value float64 `json:"value"`
}

// Stage is one step of the pipeline. It returns the new running price and the
// log entry to record, or nil when the stage left the price unchanged.
type Stage struct {
	Name  string
	Apply func(price float64) (float64, *FactorEntry)
}

// Fold runs stages left to right over base and collects their log entries.
func Fold(base float64, stages []Stage) (float64, []FactorEntry) {
	price := base
	log := make([]FactorEntry, 0, len(stages))
	for _, s := range stages {
		next, entry := s.Apply(price)
		price = next
		if entry != nil {
			log = append(log, *entry)
		}
	}
	return price, log
}

// IsDiscountStage reports whether a logged value is a discount rate applied as (1 - v).
func IsDiscountStage(stage string) bool {
	return stage == StageVolumeDiscount || stage == StageRelationshipDiscount
}

// MultiplierStage multiplies by factor when found and factor != 1.
func MultiplierStage(name string, factor float64, found bool) Stage {
	return Stage{Name: name, Apply: func(price float64) (float64, *FactorEntry) {
		if !found || factor == 1.0 {
			return price, nil
		}
		return price * factor, &FactorEntry{Stage: name, Value: factor}
	}}
}

// DiscountStage applies price * (1 - discount) when discount != 0.
func DiscountStage(name string, discount float64) Stage {
	return Stage{Name: name, Apply: func(price float64) (float64, *FactorEntry) {
		if discount == 0 {
			return price, nil
		}
		return price * (1 - discount), &FactorEntry{Stage: name, Value: discount}
	}}
}

// AuditedStage always multiplies and always logs, even at 1.0.
func AuditedStage(name string, factor float64) Stage {
	return Stage{Name: name, Apply: func(price float64) (float64, *FactorEntry) {
		return price * factor, &FactorEntry{Stage: name, Value: factor}
	}}
}

// RelationshipDiscount steps the discount by relationship strength, non-cumulatively.
func RelationshipDiscount(strength int) float64 {
	switch {
	case strength >= 9:
		return 0.15
	case strength >= 7:
		return 0.10
	case strength >= 5:
		return 0.05
	default:
		return 0
	}
}

// BuildStages lays out the pipeline for one calculation in its fixed order.
func BuildStages(profile ClientProfile, model *PricingModel, snapshot *MarketSnapshot, flags map[string]bool) []Stage {
	stages := make([]Stage, 0, 8+snapshotLen(snapshot))

	v, ok := model.Factor(CategorySegment, string(profile.Segment))
	stages = append(stages, MultiplierStage(StageSegment, v, ok))

	v, ok = model.Factor(CategoryIndustry, NormalizeIndustry(profile.Industry))
	stages = append(stages, MultiplierStage(StageIndustry, v, ok))

	v, ok = model.Factor(CategoryUrgency, string(UrgencyBand(profile.UrgencyScore)))
	stages = append(stages, MultiplierStage(StageUrgency, v, ok))

	v, ok = model.Factor(CategoryCompetition, string(CompetitionBand(profile.CompetitionLevel)))
	stages = append(stages, MultiplierStage(StageCompetition, v, ok))

	v, ok = model.Factor(CategoryStrategic, string(StrategicBand(profile.StrategicValue)))
	stages = append(stages, MultiplierStage(StageStrategic, v, ok))

	stages = append(stages,
		DiscountStage(StageVolumeDiscount, model.VolumeDiscount(profile.AnnualRevenue)),
		DiscountStage(StageRelationshipDiscount, RelationshipDiscount(profile.RelationshipStrength)),
	)

	if snapshot != nil {
		for _, f := range snapshot.factors {
			stages = append(stages, AuditedStage(MarketStagePrefix+f.Name, f.Multiplier))
		}
	}

	premium := model.Premium(flags)
	stages = append(stages, MultiplierStage(StagePremium, premium, true))
	return stages
}

func snapshotLen(s *MarketSnapshot) int {
	if s == nil {
		return 0
	}
	return s.Len()
}
