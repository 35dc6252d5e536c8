package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/app/services"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteFlowHarness struct {
	flow    QuoteFlow
	clients *fakeClientRepo
	quotes  *fakeQuoteRepo
	events  *fakeEventRepo
	now     time.Time
}

func newQuoteFlowHarness(t *testing.T, market services.MarketConditionsProvider) *quoteFlowHarness {
	t.Helper()
	h := &quoteFlowHarness{
		clients: &fakeClientRepo{},
		quotes:  &fakeQuoteRepo{},
		events:  &fakeEventRepo{},
		now:     time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	if market == nil {
		market = services.NewStaticMarketProvider(pricing.DefaultMarketSnapshot())
	}
	assembler := NewQuoteAssembler(utils.QuoteValidity, WithClock(func() time.Time { return h.now }))
	calc := pricing.NewCalculator(pricing.DefaultRegistry())
	h.flow = NewQuoteFlow(h.clients, h.quotes, h.events, calc, market, assembler, nil, nil)
	return h
}

func (h *quoteFlowHarness) addClient(t *testing.T) *models.ClientProfile {
	t.Helper()
	profile, err := pricing.NewClientProfile(testProfile())
	require.NoError(t, err)
	c := models.ClientProfileFromPricing(profile)
	require.NoError(t, h.clients.Save(context.Background(), c))
	return c
}

func (h *quoteFlowHarness) createQuote(t *testing.T, client *models.ClientProfile) *dto.QuoteDTO {
	t.Helper()
	q, err := h.flow.CalculateQuote(context.Background(), &dto.CreateQuoteRequest{
		ClientID:       client.UUID.String(),
		ProductService: "support platform",
		PricingModel:   "value_based",
		PremiumFlags:   map[string]bool{"rush_delivery": true},
	}, nil)
	require.NoError(t, err)
	return q
}

func (h *quoteFlowHarness) setStatus(t *testing.T, id string, status models.QuoteStatus) {
	t.Helper()
	_, err := h.flow.TransitionStatus(context.Background(), id, &dto.UpdateQuoteStatusRequest{Status: string(status)}, nil)
	require.NoError(t, err)
}

func testProfile() pricing.ClientProfile {
	return pricing.ClientProfile{
		CompanyName:          "Acme Corp",
		Industry:             "SaaS",
		CompanySize:          250,
		AnnualRevenue:        2_000_000,
		FundingStage:         "series_b",
		UrgencyScore:         9,
		CompetitionLevel:     5,
		StrategicValue:       6,
		PaymentHistoryScore:  8,
		RelationshipStrength: 6,
	}
}

type failingMarket struct{}

func (failingMarket) Current(ctx context.Context) (*pricing.MarketSnapshot, error) {
	return nil, errors.New("redis down")
}

func (failingMarket) Publish(ctx context.Context, s *pricing.MarketSnapshot) error {
	return errors.New("redis down")
}

func TestQuoteFlow_CalculateQuote(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	client := h.addClient(t)

	q := h.createQuote(t, client)

	want, err := pricing.PriceFor(client.ToPricing(), mustModel(t, "value_based"), pricing.DefaultMarketSnapshot(), map[string]bool{"rush_delivery": true})
	require.NoError(t, err)

	assert.Equal(t, "draft", q.Status)
	assert.Equal(t, client.UUID.String(), q.ClientID)
	assert.Equal(t, "value_based", q.PricingModel)
	assert.Equal(t, string(pricing.SegmentSMB), q.Segment)
	assert.Equal(t, want.FinalPrice, q.CalculatedPrice)
	assert.Equal(t, 1.25, q.PremiumMultiplier)
	assert.Equal(t, pricing.DefaultMarketSnapshot().ID(), q.MarketSnapshotID)
	assert.Len(t, q.FactorsApplied, len(want.Factors))
	assert.Equal(t, h.now.Add(utils.QuoteValidity).Format(time.RFC3339), q.ValidUntil)
	require.Len(t, h.quotes.quotes, 1)
}

func TestQuoteFlow_CalculateQuote_Failures(t *testing.T) {
	t.Run("unknown client", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		_, err := h.flow.CalculateQuote(context.Background(), &dto.CreateQuoteRequest{
			ClientID: "f47ac10b-58cc-4372-a567-0e02b2c3d479", ProductService: "x", PricingModel: "value_based",
		}, nil)
		assert.True(t, IsClientNotFound(err))
		assert.Equal(t, "CLIENT_NOT_FOUND", ErrorCode(err))
		var nf *pricing.NotFoundError
		assert.ErrorAs(t, err, &nf)
		assert.Empty(t, h.quotes.quotes)
	})

	t.Run("unknown model", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		client := h.addClient(t)
		_, err := h.flow.CalculateQuote(context.Background(), &dto.CreateQuoteRequest{
			ClientID: client.UUID.String(), ProductService: "x", PricingModel: "premium_plus",
		}, nil)
		assert.True(t, IsPricingModelNotFound(err))
		assert.Equal(t, "PRICING_MODEL_NOT_FOUND", ErrorCode(err))
		assert.Empty(t, h.quotes.quotes)
	})

	t.Run("market unavailable", func(t *testing.T) {
		h := newQuoteFlowHarness(t, failingMarket{})
		client := h.addClient(t)
		_, err := h.flow.CalculateQuote(context.Background(), &dto.CreateQuoteRequest{
			ClientID: client.UUID.String(), ProductService: "x", PricingModel: "value_based",
		}, nil)
		assert.True(t, IsMarketUnavailable(err))
		assert.Empty(t, h.quotes.quotes)
	})

	t.Run("store failure", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		client := h.addClient(t)
		h.quotes.saveErr = errors.New("disk full")
		_, err := h.flow.CalculateQuote(context.Background(), &dto.CreateQuoteRequest{
			ClientID: client.UUID.String(), ProductService: "x", PricingModel: "value_based",
		}, nil)
		assert.Equal(t, "QUOTE_SAVE_FAILED", ErrorCode(err))
	})
}

func TestQuoteFlow_PreviewQuote_StoresNothing(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	p := testProfile()
	preview, err := h.flow.PreviewQuote(context.Background(), &dto.PreviewQuoteRequest{
		Client: dto.CreateClientRequest{
			CompanyName: p.CompanyName, Industry: p.Industry, CompanySize: p.CompanySize, AnnualRevenue: p.AnnualRevenue,
			UrgencyScore: p.UrgencyScore, CompetitionLevel: p.CompetitionLevel, StrategicValue: p.StrategicValue,
			PaymentHistoryScore: p.PaymentHistoryScore, RelationshipStrength: p.RelationshipStrength,
		},
		PricingModel: "competitive",
	})
	require.NoError(t, err)
	assert.Equal(t, "competitive", preview.PricingModel)
	assert.NotEmpty(t, preview.FactorsApplied)
	assert.Empty(t, h.quotes.quotes)

	_, err = h.flow.PreviewQuote(context.Background(), &dto.PreviewQuoteRequest{
		Client:       dto.CreateClientRequest{Industry: "x", UrgencyScore: 11, CompetitionLevel: 1, StrategicValue: 1, PaymentHistoryScore: 1, RelationshipStrength: 1},
		PricingModel: "competitive",
	})
	assert.True(t, IsPricingValidation(err))
}

func TestQuoteFlow_PreviewMatchesStoredClient_SubCentRevenue(t *testing.T) {
	tests := []struct {
		name        string
		revenue     float64
		wantRevenue float64
		wantSegment string
	}{
		{"crosses volume discount threshold", 99_999.996, 100_000, "startup"},
		{"crosses smb revenue threshold", 9_999_999.996, 10_000_000, "smb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newQuoteFlowHarness(t, nil)
			req := dto.CreateClientRequest{
				CompanyName: "Edge Co", Industry: "SaaS", CompanySize: 10, AnnualRevenue: tt.revenue,
				UrgencyScore: 5, CompetitionLevel: 5, StrategicValue: 5, PaymentHistoryScore: 5, RelationshipStrength: 3,
			}

			client, err := NewClientProfileFlow(h.clients, nil).CreateClient(context.Background(), &req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRevenue, client.AnnualRevenue)
			assert.Equal(t, tt.wantSegment, client.Segment)

			stored, err := h.flow.CalculateQuote(context.Background(), &dto.CreateQuoteRequest{
				ClientID: client.ID, ProductService: "support platform", PricingModel: "value_based",
			}, nil)
			require.NoError(t, err)

			preview, err := h.flow.PreviewQuote(context.Background(), &dto.PreviewQuoteRequest{
				Client: req, PricingModel: "value_based",
			})
			require.NoError(t, err)

			assert.Equal(t, stored.Segment, preview.Segment)
			assert.Equal(t, stored.CalculatedPrice, preview.CalculatedPrice)
			assert.Equal(t, stored.FactorsApplied, preview.FactorsApplied)
		})
	}
}

func TestQuoteFlow_TransitionStatus(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	q := h.createQuote(t, h.addClient(t))
	ctx := context.Background()
	meta := NewClientMetadata("10.0.0.1", "test")
	meta.SetRequestID("req-1")

	sent, err := h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "sent", Note: "emailed"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "sent", sent.Status)

	_, err = h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "accepted"}, nil)
	require.NoError(t, err)

	_, err = h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "declined"}, nil)
	assert.True(t, IsInvalidStatusTransition(err))
	assert.Equal(t, "INVALID_STATUS_TRANSITION", ErrorCode(err))

	history, err := h.flow.History(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "draft", history[0].FromStatus)
	assert.Equal(t, "sent", history[0].ToStatus)
	assert.Equal(t, models.QuoteEventActorAPI, history[0].Actor)
	require.NotNil(t, history[0].RequestID)
	assert.Equal(t, "req-1", *history[0].RequestID)
	require.NotNil(t, history[0].Note)
	assert.Equal(t, "emailed", *history[0].Note)
	assert.Equal(t, "accepted", history[1].ToStatus)
}

func TestQuoteFlow_TransitionStatus_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("draft cannot be accepted", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		q := h.createQuote(t, h.addClient(t))
		_, err := h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "accepted"}, nil)
		assert.True(t, IsInvalidStatusTransition(err))
		assert.Empty(t, h.events.events)
	})

	t.Run("nothing returns to draft", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		q := h.createQuote(t, h.addClient(t))
		h.setStatus(t, q.ID, models.QuoteStatusSent)
		_, err := h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "draft"}, nil)
		assert.Error(t, err)
	})

	t.Run("expiry before validity ends", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		q := h.createQuote(t, h.addClient(t))
		h.setStatus(t, q.ID, models.QuoteStatusSent)
		_, err := h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "expired"}, nil)
		assert.True(t, IsQuoteNotExpired(err))
		assert.Equal(t, "QUOTE_NOT_EXPIRED", ErrorCode(err))
	})

	t.Run("acceptance after validity ends", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		q := h.createQuote(t, h.addClient(t))
		h.setStatus(t, q.ID, models.QuoteStatusSent)
		h.now = h.now.Add(utils.QuoteValidity + time.Second)
		_, err := h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "accepted"}, nil)
		assert.True(t, IsInvalidStatusTransition(err))
		assert.ErrorIs(t, err, ErrQuoteValidityEnded)
	})

	t.Run("lost race", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		q := h.createQuote(t, h.addClient(t))
		h.quotes.updateMiss = true
		_, err := h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "sent"}, nil)
		assert.ErrorIs(t, err, ErrConcurrentStatusChange)
		assert.Empty(t, h.events.events)
	})

	t.Run("unknown quote", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		_, err := h.flow.TransitionStatus(ctx, "0b0e5c1e-8a3e-4f43-9d0a-1f2a3b4c5d6e", &dto.UpdateQuoteStatusRequest{Status: "sent"}, nil)
		assert.True(t, IsQuoteNotFound(err))
		_, err = h.flow.TransitionStatus(ctx, "not-a-uuid", &dto.UpdateQuoteStatusRequest{Status: "sent"}, nil)
		assert.True(t, IsQuoteNotFound(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		h := newQuoteFlowHarness(t, nil)
		q := h.createQuote(t, h.addClient(t))
		_, err := h.flow.TransitionStatus(ctx, q.ID, &dto.UpdateQuoteStatusRequest{Status: "archived"}, nil)
		assert.ErrorIs(t, err, ErrInvalidQuoteStatus)
	})
}

func TestQuoteFlow_GetQuote(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	q := h.createQuote(t, h.addClient(t))
	ctx := context.Background()

	got, err := h.flow.GetQuote(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
	require.NotNil(t, got.Verified)
	assert.True(t, *got.Verified)

	// drafts never expire
	h.now = h.now.Add(utils.QuoteValidity + time.Hour)
	got, err = h.flow.GetQuote(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
}

func TestQuoteFlow_GetQuote_ExpiresOnRead(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	q := h.createQuote(t, h.addClient(t))
	ctx := context.Background()
	h.setStatus(t, q.ID, models.QuoteStatusSent)

	h.now = h.now.Add(utils.QuoteValidity + time.Minute)
	got, err := h.flow.GetQuote(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)
	assert.True(t, *got.Verified)

	history, err := h.flow.History(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.QuoteEventActorReader, history[1].Actor)
	assert.Equal(t, "sent", history[1].FromStatus)

	_, err = h.flow.GetQuote(ctx, "0b0e5c1e-8a3e-4f43-9d0a-1f2a3b4c5d6e", nil)
	assert.True(t, IsQuoteNotFound(err))
}

func TestQuoteFlow_ExpireDue(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	client := h.addClient(t)
	ctx := context.Background()

	sent := h.createQuote(t, client)
	h.setStatus(t, sent.ID, models.QuoteStatusSent)
	accepted := h.createQuote(t, client)
	h.setStatus(t, accepted.ID, models.QuoteStatusSent)
	h.setStatus(t, accepted.ID, models.QuoteStatusAccepted)
	draft := h.createQuote(t, client)

	n, err := h.flow.ExpireDue(ctx, models.QuoteEventActorSweeper)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.now = h.now.Add(utils.QuoteValidity + time.Second)
	n, err = h.flow.ExpireDue(ctx, models.QuoteEventActorSweeper)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for id, from := range map[string]string{sent.ID: "sent", accepted.ID: "accepted"} {
		history, err := h.flow.History(ctx, id)
		require.NoError(t, err)
		last := history[len(history)-1]
		assert.Equal(t, from, last.FromStatus)
		assert.Equal(t, "expired", last.ToStatus)
		assert.Equal(t, models.QuoteEventActorSweeper, last.Actor)
	}

	got, err := h.flow.GetQuote(ctx, draft.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)

	n, err = h.flow.ExpireDue(ctx, models.QuoteEventActorSweeper)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQuoteFlow_ListQuotes(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	client := h.addClient(t)
	other := h.addClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		h.createQuote(t, client)
	}
	sent := h.createQuote(t, other)
	h.setStatus(t, sent.ID, models.QuoteStatusSent)

	all, err := h.flow.ListQuotes(ctx, &dto.ListQuotesRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all.Quotes, 2)
	assert.Equal(t, int64(4), all.Pagination.Total)
	assert.Equal(t, 2, all.Pagination.TotalPages)
	assert.Equal(t, sent.ID, all.Quotes[0].ID)

	mine, err := h.flow.ListQuotes(ctx, &dto.ListQuotesRequest{ClientID: client.UUID.String()})
	require.NoError(t, err)
	assert.Len(t, mine.Quotes, 3)
	assert.Equal(t, utils.DefaultPageSize, mine.Pagination.Limit)

	onlySent, err := h.flow.ListQuotes(ctx, &dto.ListQuotesRequest{Status: "sent"})
	require.NoError(t, err)
	require.Len(t, onlySent.Quotes, 1)
	assert.Equal(t, sent.ID, onlySent.Quotes[0].ID)

	_, err = h.flow.ListQuotes(ctx, &dto.ListQuotesRequest{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidQuoteStatus)
}

func mustModel(t *testing.T, name string) *pricing.PricingModel {
	t.Helper()
	m, err := pricing.DefaultRegistry().Get(name)
	require.NoError(t, err)
	return m
}
