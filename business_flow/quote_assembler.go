package businessflow

import (
	"time"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteAssembler turns a price calculation into a storable draft quote.
type QuoteAssembler struct {
	validity time.Duration
	now      func() time.Time
	newID    func() uuid.UUID
}

// AssemblerOption customises a QuoteAssembler
type AssemblerOption func(*QuoteAssembler)

// WithClock replaces the assembler's clock
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *QuoteAssembler) { a.now = now }
}

// WithIDGenerator replaces the assembler's quote id generator
func WithIDGenerator(newID func() uuid.UUID) AssemblerOption {
	return func(a *QuoteAssembler) { a.newID = newID }
}

// NewQuoteAssembler creates an assembler issuing quotes valid for validity,
// utils.QuoteValidity when validity is not positive
func NewQuoteAssembler(validity time.Duration, opts ...AssemblerOption) *QuoteAssembler {
	if validity <= 0 {
		validity = utils.QuoteValidity
	}
	a := &QuoteAssembler{
		validity: validity,
		now:      utils.UTCNow,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Now returns the assembler clock's current time
func (a *QuoteAssembler) Now() time.Time {
	return a.now()
}

// Assemble builds a draft quote for client. Money is rounded to cents only after
// psychological rounding has produced the final price.
func (a *QuoteAssembler) Assemble(client *models.ClientProfile, productService string, res pricing.Result) *models.PriceQuote {
	now := a.now().UTC()
	return &models.PriceQuote{
		UUID:               a.newID(),
		ClientID:           client.ID,
		ClientUUID:         client.UUID,
		ProductService:     productService,
		PricingModel:       res.ModelName,
		Segment:            res.Segment,
		BasePrice:          money(res.BasePrice),
		CalculatedPrice:    money(res.FinalPrice),
		DiscountPercentage: money(res.DiscountPercentage),
		PremiumMultiplier:  res.PremiumMultiplier,
		FactorsApplied:     models.FactorLog(append([]pricing.FactorEntry{}, res.Factors...)),
		MarketSnapshotID:   res.SnapshotID,
		Status:             models.QuoteStatusDraft,
		ValidUntil:         now.Add(a.validity),
		CreatedAt:          now,
	}
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(utils.MoneyScale)
}
