package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/repository"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientMetadata holds caller information recorded with status events
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func (cm *ClientMetadata) requestID() *string {
	if cm == nil || cm.RequestID == "" {
		return nil
	}
	id := cm.RequestID
	return &id
}

// txRunner runs fn inside a transaction carried by ctx
type txRunner func(ctx context.Context, fn func(context.Context) error) error

func newTxRunner(db *gorm.DB) txRunner {
	if db == nil {
		return func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	}
	return func(ctx context.Context, fn func(context.Context) error) error {
		return repository.WithTransaction(ctx, db, fn)
	}
}

// ToClientDTO converts a stored client profile to its wire form
func ToClientDTO(c models.ClientProfile) dto.ClientDTO {
	return dto.ClientDTO{
		ID:                   c.UUID.String(),
		CompanyName:          c.CompanyName,
		Industry:             c.Industry,
		CompanySize:          c.CompanySize,
		AnnualRevenue:        c.AnnualRevenue.InexactFloat64(),
		FundingStage:         c.FundingStage,
		GeographicLocation:   c.GeographicLocation,
		UrgencyScore:         c.UrgencyScore,
		CompetitionLevel:     c.CompetitionLevel,
		StrategicValue:       c.StrategicValue,
		PaymentHistoryScore:  c.PaymentHistoryScore,
		RelationshipStrength: c.RelationshipStrength,
		Segment:              string(c.Segment),
		CreatedAt:            c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToPricingProfile converts a client request into a validated pricing profile.
// Revenue is rounded to the stored money scale before the segment is fixed, so a
// preview and a stored profile classify and price identically.
func ToPricingProfile(req dto.CreateClientRequest) (pricing.ClientProfile, error) {
	return pricing.NewClientProfile(pricing.ClientProfile{
		CompanyName:          req.CompanyName,
		Industry:             req.Industry,
		CompanySize:          req.CompanySize,
		AnnualRevenue:        decimal.NewFromFloat(req.AnnualRevenue).Round(utils.MoneyScale).InexactFloat64(),
		FundingStage:         req.FundingStage,
		GeographicLocation:   req.GeographicLocation,
		UrgencyScore:         req.UrgencyScore,
		CompetitionLevel:     req.CompetitionLevel,
		StrategicValue:       req.StrategicValue,
		PaymentHistoryScore:  req.PaymentHistoryScore,
		RelationshipStrength: req.RelationshipStrength,
	})
}

// ToFactorDTOs converts a factor log to its wire form
func ToFactorDTOs(factors []pricing.FactorEntry) []dto.FactorDTO {
	out := make([]dto.FactorDTO, len(factors))
	for i, f := range factors {
		out[i] = dto.FactorDTO{Stage: f.Stage, Value: f.Value}
	}
	return out
}

// ToQuoteDTO converts a stored quote to its wire form
func ToQuoteDTO(q models.PriceQuote) dto.QuoteDTO {
	return dto.QuoteDTO{
		ID:                 q.UUID.String(),
		ClientID:           q.ClientUUID.String(),
		ProductService:     q.ProductService,
		PricingModel:       q.PricingModel,
		Segment:            string(q.Segment),
		BasePrice:          q.BasePrice.InexactFloat64(),
		CalculatedPrice:    q.CalculatedPrice.InexactFloat64(),
		DiscountPercentage: q.DiscountPercentage.InexactFloat64(),
		PremiumMultiplier:  q.PremiumMultiplier,
		FactorsApplied:     ToFactorDTOs(q.FactorsApplied),
		MarketSnapshotID:   q.MarketSnapshotID,
		ValidUntil:         q.ValidUntil.UTC().Format(time.RFC3339),
		Status:             string(q.Status),
		CreatedDate:        q.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToQuoteStatusEventDTO converts a status event to its wire form
func ToQuoteStatusEventDTO(e models.QuoteStatusEvent) dto.QuoteStatusEventDTO {
	return dto.QuoteStatusEventDTO{
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		Actor:      e.Actor,
		RequestID:  e.RequestID,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToMarketConditionsDTO converts a snapshot to its wire form
func ToMarketConditionsDTO(s *pricing.MarketSnapshot) dto.MarketConditionsDTO {
	out := dto.MarketConditionsDTO{SnapshotID: s.ID(), Factors: []dto.MarketFactorDTO{}}
	if !s.TakenAt().IsZero() {
		out.TakenAt = s.TakenAt().Format(time.RFC3339)
	}
	for _, f := range s.Factors() {
		out.Factors = append(out.Factors, dto.MarketFactorDTO{Name: f.Name, Multiplier: f.Multiplier})
	}
	return out
}

// ToAdminDTO converts an admin to its wire form
func ToAdminDTO(a models.Admin) dto.AdminDTO {
	return dto.AdminDTO{
		ID:        a.ID,
		UUID:      a.UUID.String(),
		Username:  a.Username,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
