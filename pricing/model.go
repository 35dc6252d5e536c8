package pricing

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places a model base price may carry.
const PriceScale int32 = 2

// Factor table categories consulted by the calculator.
const (
	CategorySegment     = "company_size_multiplier"
	CategoryIndustry    = "industry_multiplier"
	CategoryUrgency     = "urgency_premium"
	CategoryCompetition = "competition_adjustment"
	CategoryStrategic   = "strategic_multiplier"

	// VolumeDiscountTable is the discount band table used for revenue thresholds.
	VolumeDiscountTable = "volume_discount"
)

// band-keyed categories and the scheme their keys must follow
var bandCategories = map[string]BandScheme{
	CategoryUrgency:     FourBands,
	CategoryCompetition: ThreeBands,
	CategoryStrategic:   FourBands,
}

// DiscountThreshold grants Discount to clients whose revenue is at least MinRevenue.
type DiscountThreshold struct {
	Name       string  `json:"name,omitempty" yaml:"name,omitempty"`
	MinRevenue float64 `json:"min_revenue" yaml:"min_revenue"`
	Discount   float64 `json:"discount" yaml:"discount"`
}

// ModelSpec is the serialisable form of a pricing model, as read from model files
// and returned by the API.
type ModelSpec struct {
	ID                 string                         `json:"id" yaml:"id"`
	Name               string                         `json:"name" yaml:"name"`
	Description        string                         `json:"description,omitempty" yaml:"description,omitempty"`
	BasePrice          float64                        `json:"base_price" yaml:"base_price"`
	PricingFactors     map[string]map[string]float64  `json:"pricing_factors" yaml:"pricing_factors"`
	DiscountBands      map[string][]DiscountThreshold `json:"discount_bands" yaml:"discount_bands"`
	PremiumMultipliers map[string]float64             `json:"premium_multipliers" yaml:"premium_multipliers"`
}

// PricingModel is a validated, immutable pricing model. Build one with NewPricingModel.
type PricingModel struct {
	spec ModelSpec
}

// NewPricingModel validates spec and returns an immutable model holding a private copy.
func NewPricingModel(spec ModelSpec) (*PricingModel, error) {
	if err := ValidateModelSpec(spec); err != nil {
		return nil, err
	}
	return &PricingModel{spec: cloneSpec(spec)}, nil
}

// ValidateModelSpec rejects non-positive or sub-cent base prices, non-positive
// multipliers, discounts outside (0,1), malformed band keys and unknown segment keys.
func ValidateModelSpec(spec ModelSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return newValidationError("name", "model name is required")
	}
	if !positive(spec.BasePrice) {
		return newValidationError("base_price", "model %q: must be greater than zero, got %v", spec.Name, spec.BasePrice)
	}
	if base := decimal.NewFromFloat(spec.BasePrice); !base.Equal(base.Round(PriceScale)) {
		return newValidationError("base_price", "model %q: at most %d decimal places allowed, got %v", spec.Name, PriceScale, spec.BasePrice)
	}

	for _, category := range sortedKeys(spec.PricingFactors) {
		table := spec.PricingFactors[category]
		scheme, banded := bandCategories[category]
		for _, key := range sortedKeys(table) {
			field := "pricing_factors." + category + "." + key
			if !positive(table[key]) {
				return newValidationError(field, "model %q: multiplier must be greater than zero, got %v", spec.Name, table[key])
			}
			switch {
			case banded && !scheme.accepts(key):
				return newValidationError(field, "model %q: %q is not a band of %v", spec.Name, key, scheme.Keys())
			case category == CategorySegment && !Segment(key).Valid():
				return newValidationError(field, "model %q: unknown segment %q", spec.Name, key)
			case category == CategoryIndustry && NormalizeIndustry(key) != key:
				return newValidationError(field, "model %q: industry key must be normalised as %q", spec.Name, NormalizeIndustry(key))
			}
		}
	}

	for _, name := range sortedKeys(spec.DiscountBands) {
		for i, t := range spec.DiscountBands[name] {
			field := "discount_bands." + name
			if t.MinRevenue < 0 || math.IsNaN(t.MinRevenue) {
				return newValidationError(field, "model %q: threshold %d has negative min_revenue", spec.Name, i)
			}
			if !positive(t.Discount) || t.Discount >= 1 {
				return newValidationError(field, "model %q: threshold %d discount must be in (0,1), got %v", spec.Name, i, t.Discount)
			}
		}
	}

	for _, flag := range sortedKeys(spec.PremiumMultipliers) {
		if strings.TrimSpace(flag) == "" {
			return newValidationError("premium_multipliers", "model %q: empty flag name", spec.Name)
		}
		if !positive(spec.PremiumMultipliers[flag]) {
			return newValidationError("premium_multipliers."+flag, "model %q: multiplier must be greater than zero, got %v", spec.Name, spec.PremiumMultipliers[flag])
		}
	}
	return nil
}

func (m *PricingModel) ID() string         { return m.spec.ID }
func (m *PricingModel) Name() string       { return m.spec.Name }
func (m *PricingModel) BasePrice() float64 { return m.spec.BasePrice }

// Spec returns a copy of the model's tables.
func (m *PricingModel) Spec() ModelSpec {
	return cloneSpec(m.spec)
}

// Factor looks up category[key]. A missing category or key is reported with ok=false.
func (m *PricingModel) Factor(category, key string) (float64, bool) {
	table, ok := m.spec.PricingFactors[category]
	if !ok {
		return 0, false
	}
	v, ok := table[key]
	return v, ok
}

// VolumeDiscount returns the single largest discount among thresholds the revenue
// reaches, or 0 when none qualifies.
func (m *PricingModel) VolumeDiscount(annualRevenue float64) float64 {
	best := 0.0
	for _, t := range m.spec.DiscountBands[VolumeDiscountTable] {
		if t.MinRevenue <= annualRevenue && t.Discount > best {
			best = t.Discount
		}
	}
	return best
}

// Premium multiplies the multipliers of every active flag the model knows.
// Flags are combined in name order so the result does not depend on map order.
func (m *PricingModel) Premium(flags map[string]bool) float64 {
	combined := 1.0
	for _, flag := range sortedKeys(flags) {
		if !flags[flag] {
			continue
		}
		if v, ok := m.spec.PremiumMultipliers[flag]; ok {
			combined *= v
		}
	}
	return combined
}

// NormalizeIndustry lower-cases an industry name and replaces spaces with underscores.
func NormalizeIndustry(industry string) string {
	return strings.ReplaceAll(strings.ToLower(industry), " ", "_")
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneSpec(spec ModelSpec) ModelSpec {
	out := spec
	if spec.PricingFactors != nil {
		out.PricingFactors = make(map[string]map[string]float64, len(spec.PricingFactors))
		for category, table := range spec.PricingFactors {
			t := make(map[string]float64, len(table))
			for k, v := range table {
				t[k] = v
			}
			out.PricingFactors[category] = t
		}
	}
	if spec.DiscountBands != nil {
		out.DiscountBands = make(map[string][]DiscountThreshold, len(spec.DiscountBands))
		for name, thresholds := range spec.DiscountBands {
			out.DiscountBands[name] = append([]DiscountThreshold(nil), thresholds...)
		}
	}
	if spec.PremiumMultipliers != nil {
		out.PremiumMultipliers = make(map[string]float64, len(spec.PremiumMultipliers))
		for k, v := range spec.PremiumMultipliers {
			out.PremiumMultipliers[k] = v
		}
	}
	return out
}
