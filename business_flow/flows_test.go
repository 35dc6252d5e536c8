package businessflow

import (
	"bytes"
	"context"
	"testing"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/app/services"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

func TestClientProfileFlow(t *testing.T) {
	repo := &fakeClientRepo{}
	flow := NewClientProfileFlow(repo, nil)
	ctx := context.Background()

	created, err := flow.CreateClient(ctx, &dto.CreateClientRequest{
		CompanyName: "Globex", Industry: "Financial Services", CompanySize: 12_000, AnnualRevenue: 3_000_000_000,
		UrgencyScore: 5, CompetitionLevel: 5, StrategicValue: 5, PaymentHistoryScore: 5, RelationshipStrength: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, string(pricing.SegmentEnterprise), created.Segment)
	assert.NotEmpty(t, created.ID)

	got, err := flow.GetClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.CompanyName, got.CompanyName)

	_, err = flow.GetClient(ctx, "f47ac10b-58cc-4372-a567-0e02b2c3d479")
	assert.True(t, IsClientNotFound(err))
	_, err = flow.GetClient(ctx, "nope")
	assert.True(t, IsClientNotFound(err))

	_, err = flow.CreateClient(ctx, &dto.CreateClientRequest{
		CompanyName: "Bad", Industry: "x", CompanySize: -1,
		UrgencyScore: 5, CompetitionLevel: 5, StrategicValue: 5, PaymentHistoryScore: 5, RelationshipStrength: 5,
	})
	assert.True(t, IsPricingValidation(err))
	assert.Len(t, repo.clients, 1)
}

func TestPricingModelFlow(t *testing.T) {
	flow := NewPricingModelFlow(pricing.DefaultRegistry())
	ctx := context.Background()

	list, err := flow.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, list.Models, 3)
	assert.Equal(t, "competitive", list.Models[0].Name)

	m, err := flow.GetModel(ctx, "value_based")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, m.BasePrice)
	assert.Equal(t, 1.5, m.PremiumMultipliers["exclusive_access"])

	_, err = flow.GetModel(ctx, "nope")
	assert.True(t, IsPricingModelNotFound(err))
}

func TestMarketFlow(t *testing.T) {
	provider := services.NewStaticMarketProvider(pricing.DefaultMarketSnapshot())
	flow := NewMarketFlow(provider, nil)
	ctx := context.Background()

	current, err := flow.Current(ctx)
	require.NoError(t, err)
	assert.Len(t, current.Factors, 5)
	assert.Equal(t, "demand_index", current.Factors[0].Name)

	published, err := flow.Publish(ctx, &dto.PublishMarketConditionsRequest{Factors: []dto.MarketFactorDTO{
		{Name: "seasonal_factor", Multiplier: 1.1},
		{Name: "demand_index", Multiplier: 0.9},
	}})
	require.NoError(t, err)
	assert.NotEqual(t, current.SnapshotID, published.SnapshotID)

	current, err = flow.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, published.SnapshotID, current.SnapshotID)
	assert.Equal(t, "seasonal_factor", current.Factors[0].Name)

	_, err = flow.Publish(ctx, &dto.PublishMarketConditionsRequest{})
	assert.ErrorIs(t, err, ErrMarketConditionsRequired)

	_, err = flow.Publish(ctx, &dto.PublishMarketConditionsRequest{Factors: []dto.MarketFactorDTO{{Name: "x", Multiplier: 0}}})
	assert.True(t, IsPricingValidation(err))

	_, err = NewMarketFlow(failingMarket{}, nil).Current(ctx)
	assert.True(t, IsMarketUnavailable(err))
}

func TestROIFlow(t *testing.T) {
	flow := NewROIFlow()
	p, err := flow.Project(context.Background(), &dto.ROIRequest{
		TicketsPerMonth: 5000, CurrentMonthlyCost: 15000, ResponseTimeHours: 4, SatisfactionScore: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, p.SolutionMonthlyCost)
	assert.InDelta(t, 200.0, p.ROIPercentage, 1e-9)

	_, err = flow.Project(context.Background(), &dto.ROIRequest{SatisfactionScore: 0})
	assert.True(t, IsPricingValidation(err))
}

func TestPricingReportFlow(t *testing.T) {
	repo := &fakeQuoteRepo{
		summary: &models.QuoteSummary{TotalQuotes: 8, AcceptedQuotes: 2, AveragePrice: 12000, AverageDiscount: 3.5},
		breakdown: []models.SegmentBreakdown{
			{Segment: pricing.SegmentSMB, TotalQuotes: 5, AcceptedQuotes: 2, AveragePrice: 9000},
			{Segment: pricing.SegmentEnterprise, TotalQuotes: 3, AcceptedQuotes: 0, AveragePrice: 17000},
		},
	}
	flow := NewPricingReportFlow(repo, nil)

	report, err := flow.PricingReport(context.Background(), &dto.ReportRangeRequest{Start: "2025-01-01", End: "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), report.TotalQuotes)
	assert.InDelta(t, 0.25, report.ConversionRate, 1e-12)
	require.Len(t, report.Segments, 2)
	assert.InDelta(t, 0.4, report.Segments[0].ConversionRate, 1e-12)
	assert.Zero(t, report.Segments[1].ConversionRate)
	assert.Equal(t, "2025-01-01T00:00:00Z", repo.lastFrom.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, "2025-02-01T00:00:00Z", repo.lastTo.Format("2006-01-02T15:04:05Z07:00"))
}

func TestPricingReportFlow_DateRange(t *testing.T) {
	flow := NewPricingReportFlow(&fakeQuoteRepo{}, nil)
	tests := []struct {
		name       string
		start, end string
	}{
		{"end before start", "2025-02-01", "2025-01-01"},
		{"empty range", "2025-01-01", "2025-01-01"},
		{"bad start", "01/01/2025", "2025-02-01"},
		{"bad end", "2025-01-01", "tomorrow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.PricingReport(context.Background(), &dto.ReportRangeRequest{Start: tt.start, End: tt.end})
			assert.True(t, IsInvalidDateRange(err))
			assert.Equal(t, "INVALID_DATE_RANGE", ErrorCode(err))
		})
	}
}

func TestPricingReportFlow_Optimization(t *testing.T) {
	repo := &fakeQuoteRepo{points: []pricing.PerformancePoint{
		{FinalPrice: 999, Converted: true},
		{FinalPrice: 999, Converted: false},
	}}
	flow := NewPricingReportFlow(repo, nil)

	report, err := flow.OptimizationReport(context.Background(), &dto.OptimizationReportRequest{Model: "value_based", Start: "2025-01-01", End: "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, "value_based", repo.lastModel)
	require.Len(t, report.Ranges, 1)
	assert.Equal(t, pricing.IncreasePrice, report.Ranges[0].Recommendation)
}

func TestPricingReportFlow_ExportQuotes(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	client := h.addClient(t)
	q := h.createQuote(t, client)

	flow := NewPricingReportFlow(h.quotes, nil)
	name, data, err := flow.ExportQuotes(context.Background(), &dto.ReportRangeRequest{Start: "2025-01-01", End: "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, "quotes_2025-01-01_2025-02-01.xlsx", name)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows("quotes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, q.ID, rows[1][0])
	assert.Equal(t, "value_based", rows[1][3])
	assert.Contains(t, rows[1][13], pricing.StageUrgency+"=")
}

func TestPricingReportFlow_ExportQuotes_RowLimit(t *testing.T) {
	h := newQuoteFlowHarness(t, nil)
	client := h.addClient(t)
	h.createQuote(t, client)
	h.createQuote(t, client)

	flow := NewPricingReportFlow(h.quotes, nil).(*PricingReportFlowImpl)
	assert.Equal(t, excelize.TotalRows-1, flow.maxExportRows)

	flow.maxExportRows = 1
	_, _, err := flow.ExportQuotes(context.Background(), &dto.ReportRangeRequest{Start: "2025-01-01", End: "2025-02-01"})
	require.Error(t, err)
	assert.True(t, IsInvalidDateRange(err))
	assert.Equal(t, "INVALID_DATE_RANGE", ErrorCode(err))

	flow.maxExportRows = 2
	_, data, err := flow.ExportQuotes(context.Background(), &dto.ReportRangeRequest{Start: "2025-01-01", End: "2025-02-01"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFormatFactorLog(t *testing.T) {
	assert.Equal(t, "industry_multiplier=1.3, volume_discount=0.05", FormatFactorLog([]pricing.FactorEntry{
		{Stage: "industry_multiplier", Value: 1.3},
		{Stage: "volume_discount", Value: 0.05},
	}))
	assert.Empty(t, FormatFactorLog(nil))
}

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	ts, err := services.NewTokenService(utils.AccessTokenTTL, utils.RefreshTokenTTL, "pricing", "pricing-admin", false, "", "", "test-secret")
	require.NoError(t, err)
	return ts
}

func TestAdminAuthFlow(t *testing.T) {
	repo := &fakeAdminRepo{}
	tokens := newTestTokenService(t)
	flow := NewAdminAuthFlow(repo, tokens, nil)
	ctx := context.Background()

	require.NoError(t, flow.EnsureAdmin(ctx, "admin", "s3cret-pass"))
	require.NoError(t, flow.EnsureAdmin(ctx, "admin", "other-pass"))
	require.Len(t, repo.admins, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.admins[0].PasswordHash), []byte("s3cret-pass")))

	resp, err := flow.Login(ctx, &dto.AdminLoginRequest{Username: "admin", Password: "s3cret-pass"}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Admin.Username)
	assert.Equal(t, "Bearer", resp.Session.TokenType)
	assert.Equal(t, int(utils.AccessTokenTTL.Seconds()), resp.Session.ExpiresIn)
	assert.NotNil(t, repo.admins[0].LastLoginAt)

	claims, err := tokens.ValidateAdminToken(resp.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin.ID, claims.AdminID)

	session, err := flow.Refresh(ctx, &dto.AdminRefreshRequest{RefreshToken: resp.Session.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)

	_, err = flow.Refresh(ctx, &dto.AdminRefreshRequest{RefreshToken: resp.Session.RefreshToken})
	assert.Equal(t, "TOKEN_REVOKED", ErrorCode(err))
}

func TestAdminAuthFlow_LoginRejections(t *testing.T) {
	repo := &fakeAdminRepo{}
	flow := NewAdminAuthFlow(repo, newTestTokenService(t), nil)
	ctx := context.Background()
	require.NoError(t, flow.EnsureAdmin(ctx, "admin", "s3cret-pass"))
	require.NoError(t, repo.Save(ctx, &models.Admin{Username: "retired", PasswordHash: repo.admins[0].PasswordHash, IsActive: utils.ToPtr(false)}))

	_, err := flow.Login(ctx, &dto.AdminLoginRequest{Username: "admin", Password: "wrong-pass"}, nil)
	assert.True(t, IsIncorrectPassword(err))

	_, err = flow.Login(ctx, &dto.AdminLoginRequest{Username: "ghost", Password: "s3cret-pass"}, nil)
	assert.True(t, IsAdminNotFound(err))

	_, err = flow.Login(ctx, &dto.AdminLoginRequest{Username: "retired", Password: "s3cret-pass"}, nil)
	assert.True(t, IsAdminInactive(err))

	assert.Error(t, flow.EnsureAdmin(ctx, " ", "x"))
}
