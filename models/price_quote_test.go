package models

import (
	"testing"
	"time"

	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorLog_ScanValue(t *testing.T) {
	log := FactorLog{{Stage: pricing.StageIndustry, Value: 0.7}, {Stage: pricing.StageVolumeDiscount, Value: 0.05}}
	raw, err := log.Value()
	require.NoError(t, err)

	var back FactorLog
	require.NoError(t, back.Scan(raw))
	assert.Equal(t, log, back)

	empty, err := FactorLog(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), empty)

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
	assert.Error(t, back.Scan(3.14))
}

func TestPriceQuote_Verify(t *testing.T) {
	model, err := pricing.DefaultRegistry().Get("value_based")
	require.NoError(t, err)
	profile, err := pricing.NewClientProfile(pricing.ClientProfile{
		Industry: "SaaS", CompanySize: 250, AnnualRevenue: 2_000_000,
		UrgencyScore: 9, CompetitionLevel: 5, StrategicValue: 7, PaymentHistoryScore: 8, RelationshipStrength: 6,
	})
	require.NoError(t, err)
	res, err := pricing.PriceFor(profile, model, pricing.DefaultMarketSnapshot(), map[string]bool{"rush_delivery": true})
	require.NoError(t, err)

	q := &PriceQuote{
		Segment:         res.Segment,
		BasePrice:       decimal.NewFromFloat(res.BasePrice),
		CalculatedPrice: decimal.NewFromFloat(res.FinalPrice).Round(2),
		FactorsApplied:  res.Factors,
	}
	assert.True(t, q.Verify())

	q.CalculatedPrice = q.CalculatedPrice.Add(decimal.NewFromInt(1))
	assert.False(t, q.Verify())
}

func TestPriceQuote_IsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q := &PriceQuote{Status: QuoteStatusSent, ValidUntil: now.Add(-time.Second)}
	assert.True(t, q.IsDue(now))

	q.ValidUntil = now
	assert.False(t, q.IsDue(now))

	q.Status = QuoteStatusDraft
	q.ValidUntil = now.Add(-time.Hour)
	assert.False(t, q.IsDue(now))
}
