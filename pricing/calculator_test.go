package pricing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioSnapshot(t *testing.T) *MarketSnapshot {
	t.Helper()
	s, err := NewMarketSnapshot(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MarketFactor{Name: "demand", Multiplier: 1.15},
		MarketFactor{Name: "supply", Multiplier: 1.08},
		MarketFactor{Name: "economic", Multiplier: 0.95},
		MarketFactor{Name: "seasonal", Multiplier: 1.05},
		MarketFactor{Name: "competitive", Multiplier: 0.92},
	)
	require.NoError(t, err)
	return s
}

func scenarioProfile(t *testing.T) ClientProfile {
	t.Helper()
	p, err := NewClientProfile(ClientProfile{
		ID:                   "client-1",
		CompanyName:          "Acme Analytics",
		Industry:             "Technology",
		CompanySize:          1500,
		AnnualRevenue:        600_000,
		FundingStage:         "series_b",
		UrgencyScore:         8,
		CompetitionLevel:     5,
		StrategicValue:       9,
		PaymentHistoryScore:  7,
		RelationshipStrength: 6,
	})
	require.NoError(t, err)
	require.Equal(t, SegmentMidMarket, p.Segment)
	return p
}

func valueBased(t *testing.T) *PricingModel {
	t.Helper()
	m, err := DefaultRegistry().Get("value_based")
	require.NoError(t, err)
	return m
}

func TestPriceFor_EndToEndScenario(t *testing.T) {
	res, err := PriceFor(scenarioProfile(t), valueBased(t), scenarioSnapshot(t), nil)
	require.NoError(t, err)

	oracle := 10000.0
	for _, f := range []float64{1.2, 1.15, 1.25, 0.90, 0.95, 1.15, 1.08, 0.95, 1.05, 0.92} {
		oracle *= f
	}

	assert.Equal(t, oracle, res.PreRoundingPrice)
	assert.Equal(t, 16899.0, res.FinalPrice)
	assert.Equal(t, 0.0, res.DiscountPercentage)
	assert.Equal(t, 1.0, res.PremiumMultiplier)
	assert.Equal(t, SegmentMidMarket, res.Segment)
	assert.Equal(t, "value_based", res.ModelName)
	assert.NotEmpty(t, res.SnapshotID)

	assert.Equal(t, []FactorEntry{
		{Stage: StageIndustry, Value: 1.2},
		{Stage: StageUrgency, Value: 1.15},
		{Stage: StageStrategic, Value: 1.25},
		{Stage: StageVolumeDiscount, Value: 0.10},
		{Stage: StageRelationshipDiscount, Value: 0.05},
		{Stage: "market_demand", Value: 1.15},
		{Stage: "market_supply", Value: 1.08},
		{Stage: "market_economic", Value: 0.95},
		{Stage: "market_seasonal", Value: 1.05},
		{Stage: "market_competitive", Value: 0.92},
	}, res.Factors)
}

func TestPriceFor_Idempotent(t *testing.T) {
	profile := scenarioProfile(t)
	model := valueBased(t)
	snapshot := scenarioSnapshot(t)
	flags := map[string]bool{"rush_delivery": true, "exclusive_access": true, "custom_requirements": false}

	first, err := PriceFor(profile, model, snapshot, flags)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := PriceFor(profile, model, snapshot, flags)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPriceFor_ReconstructsFromFactorLog(t *testing.T) {
	model := valueBased(t)
	snapshots := []*MarketSnapshot{nil, DefaultMarketSnapshot(), scenarioSnapshot(t)}
	flagSets := []map[string]bool{
		nil,
		{"rush_delivery": true},
		{"white_glove_service": true, "exclusive_access": true, "unknown_flag": true},
	}
	industries := []string{"technology", "Non Profit", "retail", "aerospace"}
	revenues := []float64{0, 50_000, 150_000, 750_000, 2_000_000, 150_000_000, 5_000_000_000, 20_000_000_000}
	sizes := []int{5, 150, 2500, 20000}

	checked := 0
	for _, industry := range industries {
		for _, revenue := range revenues {
			for _, size := range sizes {
				for score := MinScore; score <= MaxScore; score += 3 {
					profile, err := NewClientProfile(ClientProfile{
						Industry:             industry,
						CompanySize:          size,
						AnnualRevenue:        revenue,
						UrgencyScore:         score,
						CompetitionLevel:     MaxScore + 1 - score,
						StrategicValue:       score,
						PaymentHistoryScore:  5,
						RelationshipStrength: score,
					})
					require.NoError(t, err)

					for _, snapshot := range snapshots {
						for _, flags := range flagSets {
							res, err := PriceFor(profile, model, snapshot, flags)
							require.NoError(t, err)
							assert.Equal(t, res.FinalPrice, Reconstruct(res.BasePrice, res.Factors, res.Segment))
							checked++
						}
					}
				}
			}
		}
	}
	assert.Greater(t, checked, 1000)
}

func TestPriceFor_VolumeDiscountPicksLargestQualifyingThreshold(t *testing.T) {
	tests := []struct {
		name     string
		revenue  float64
		discount float64
	}{
		{"below every threshold", 99_999, 0},
		{"first threshold", 100_000, 0.05},
		{"between second and third", 750_000, 0.10},
		{"top threshold", 1_000_000, 0.15},
		{"far above", 9_000_000, 0.15},
	}

	model := valueBased(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.discount, model.VolumeDiscount(tt.revenue))

			profile, err := NewClientProfile(ClientProfile{
				Industry: "technology", CompanySize: 10, AnnualRevenue: tt.revenue,
				UrgencyScore: 5, CompetitionLevel: 5, StrategicValue: 5, PaymentHistoryScore: 5, RelationshipStrength: 1,
			})
			require.NoError(t, err)
			res, err := PriceFor(profile, model, nil, nil)
			require.NoError(t, err)

			var logged []FactorEntry
			for _, f := range res.Factors {
				if f.Stage == StageVolumeDiscount {
					logged = append(logged, f)
				}
			}
			if tt.discount == 0 {
				assert.Empty(t, logged)
			} else {
				assert.Equal(t, []FactorEntry{{Stage: StageVolumeDiscount, Value: tt.discount}}, logged)
			}
		})
	}
}

func TestPriceFor_UnknownIndustryDegradesToNeutral(t *testing.T) {
	profile := scenarioProfile(t)
	profile.Industry = "Deep Sea Mining"

	res, err := PriceFor(profile, valueBased(t), nil, nil)
	require.NoError(t, err)
	for _, f := range res.Factors {
		assert.NotEqual(t, StageIndustry, f.Stage)
	}

	known := scenarioProfile(t)
	withIndustry, err := PriceFor(known, valueBased(t), nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, withIndustry.PreRoundingPrice/1.2, res.PreRoundingPrice, 1e-9)
}

func TestPriceFor_ModelWithoutTablesOnlyAppliesMarketAndDiscounts(t *testing.T) {
	model, err := NewPricingModel(ModelSpec{Name: "bare", BasePrice: 500})
	require.NoError(t, err)

	profile := scenarioProfile(t)
	res, err := PriceFor(profile, model, DefaultMarketSnapshot(), map[string]bool{"rush_delivery": true})
	require.NoError(t, err)

	require.Len(t, res.Factors, 1+DefaultMarketSnapshot().Len())
	assert.Equal(t, StageRelationshipDiscount, res.Factors[0].Stage)
	assert.Equal(t, 1.0, res.PremiumMultiplier)
}

func TestPriceFor_MarketConditionsAlwaysLogged(t *testing.T) {
	snapshot, err := NewMarketSnapshot(time.Time{},
		MarketFactor{Name: "flat", Multiplier: 1.0},
		MarketFactor{Name: "hot", Multiplier: 1.1},
	)
	require.NoError(t, err)

	res, err := PriceFor(scenarioProfile(t), valueBased(t), snapshot, nil)
	require.NoError(t, err)

	var market []string
	for _, f := range res.Factors {
		if strings.HasPrefix(f.Stage, MarketStagePrefix) {
			market = append(market, f.Stage)
		}
	}
	assert.Equal(t, []string{"market_flat", "market_hot"}, market)
	assert.Equal(t, snapshot.ID(), res.SnapshotID)
}

func TestPriceFor_PremiumFlags(t *testing.T) {
	model := valueBased(t)
	profile := scenarioProfile(t)

	tests := []struct {
		name    string
		flags   map[string]bool
		premium float64
	}{
		{"no flags", nil, 1.0},
		{"inactive flag", map[string]bool{"rush_delivery": false}, 1.0},
		{"unknown flag", map[string]bool{"teleportation": true}, 1.0},
		{"single flag", map[string]bool{"rush_delivery": true}, 1.25},
		{"combined flags", map[string]bool{"rush_delivery": true, "custom_requirements": true}, 1.15 * 1.25},
	}

	base, err := PriceFor(profile, model, nil, nil)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := PriceFor(profile, model, nil, tt.flags)
			require.NoError(t, err)
			assert.InDelta(t, tt.premium, res.PremiumMultiplier, 1e-12)
			assert.InDelta(t, base.PreRoundingPrice*tt.premium, res.PreRoundingPrice, 1e-6)

			var premiumEntries int
			for _, f := range res.Factors {
				if f.Stage == StagePremium {
					premiumEntries++
					assert.Equal(t, res.PremiumMultiplier, f.Value)
				}
			}
			if tt.premium == 1.0 {
				assert.Zero(t, premiumEntries)
			} else {
				assert.Equal(t, 1, premiumEntries)
			}
		})
	}
}

func TestPriceFor_LargeAccountRounding(t *testing.T) {
	profile, err := NewClientProfile(ClientProfile{
		Industry: "fintech", CompanySize: 50_000, AnnualRevenue: 3_000_000_000,
		UrgencyScore: 9, CompetitionLevel: 2, StrategicValue: 9, PaymentHistoryScore: 9, RelationshipStrength: 9,
	})
	require.NoError(t, err)
	require.Equal(t, SegmentEnterprise, profile.Segment)

	res, err := PriceFor(profile, valueBased(t), DefaultMarketSnapshot(), nil)
	require.NoError(t, err)
	assert.Zero(t, int64(res.FinalPrice)%1000)
}

func TestPriceFor_ValidationErrors(t *testing.T) {
	model := valueBased(t)

	t.Run("negative revenue", func(t *testing.T) {
		p := scenarioProfile(t)
		p.AnnualRevenue = -1
		_, err := PriceFor(p, model, nil, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("score out of range", func(t *testing.T) {
		p := scenarioProfile(t)
		p.UrgencyScore = 11
		_, err := PriceFor(p, model, nil, nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "urgency_score", ve.Field)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := PriceFor(scenarioProfile(t), nil, nil, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unclassified profile", func(t *testing.T) {
		p := scenarioProfile(t)
		p.Segment = ""
		_, err := PriceFor(p, model, nil, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCalculator_Quote(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	res, err := calc.Quote(scenarioProfile(t), "value_based", scenarioSnapshot(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 16899.0, res.FinalPrice)

	_, err = calc.Quote(scenarioProfile(t), "nope", scenarioSnapshot(t), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFoundKind(err, NotFoundModel))
	assert.False(t, IsNotFoundKind(err, NotFoundClient))
}

func TestFold_StageByStage(t *testing.T) {
	stages := []Stage{
		MultiplierStage("missing", 3, false),
		MultiplierStage("identity", 1, true),
		MultiplierStage("double", 2, true),
		DiscountStage("none", 0),
		DiscountStage("half", 0.5),
		AuditedStage("flat", 1),
	}
	price, log := Fold(100, stages)
	assert.Equal(t, 100.0, price)
	assert.Equal(t, []FactorEntry{
		{Stage: "double", Value: 2},
		{Stage: "half", Value: 0.5},
		{Stage: "flat", Value: 1},
	}, log)
}

func TestRelationshipDiscount(t *testing.T) {
	tests := []struct {
		strength int
		want     float64
	}{
		{1, 0}, {4, 0}, {5, 0.05}, {6, 0.05}, {7, 0.10}, {8, 0.10}, {9, 0.15}, {10, 0.15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelationshipDiscount(tt.strength), "strength %d", tt.strength)
	}
}
