// Package models contains the persisted entities of the pricing service
package models

import (
	"time"

	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientProfile is a prospective or existing client. Segment is fixed when the
// profile is created.
type ClientProfile struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	UUID                 uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_client_profiles_uuid" json:"uuid"`
	CompanyName          string          `gorm:"size:255;not null;index:idx_client_profiles_company_name" json:"company_name"`
	Industry             string          `gorm:"size:100;not null;index:idx_client_profiles_industry" json:"industry"`
	CompanySize          int             `gorm:"not null" json:"company_size"`
	AnnualRevenue        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"annual_revenue"`
	FundingStage         string          `gorm:"size:50" json:"funding_stage"`
	GeographicLocation   string          `gorm:"size:100" json:"geographic_location"`
	UrgencyScore         int             `gorm:"not null" json:"urgency_score"`
	CompetitionLevel     int             `gorm:"not null" json:"competition_level"`
	StrategicValue       int             `gorm:"not null" json:"strategic_value"`
	PaymentHistoryScore  int             `gorm:"not null" json:"payment_history_score"`
	RelationshipStrength int             `gorm:"not null" json:"relationship_strength"`
	Segment              pricing.Segment `gorm:"type:client_segment;not null;index:idx_client_profiles_segment" json:"segment"`
	CreatedAt            time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_client_profiles_created_at" json:"created_at"`
}

func (ClientProfile) TableName() string {
	return "client_profiles"
}

// BeforeCreate is called before creating a new record
func (c *ClientProfile) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ToPricing returns the pricing view of the profile.
func (c *ClientProfile) ToPricing() pricing.ClientProfile {
	return pricing.ClientProfile{
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
		Segment:              c.Segment,
	}
}

// ClientProfileFromPricing builds a storable profile from a validated pricing profile.
func ClientProfileFromPricing(p pricing.ClientProfile) *ClientProfile {
	return &ClientProfile{
		CompanyName:          p.CompanyName,
		Industry:             p.Industry,
		CompanySize:          p.CompanySize,
		AnnualRevenue:        decimal.NewFromFloat(p.AnnualRevenue).Round(utils.MoneyScale),
		FundingStage:         p.FundingStage,
		GeographicLocation:   p.GeographicLocation,
		UrgencyScore:         p.UrgencyScore,
		CompetitionLevel:     p.CompetitionLevel,
		StrategicValue:       p.StrategicValue,
		PaymentHistoryScore:  p.PaymentHistoryScore,
		RelationshipStrength: p.RelationshipStrength,
		Segment:              p.Segment,
	}
}

// ClientProfileFilter represents filter criteria for client profile queries
type ClientProfileFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CompanyName   *string
	Industry      *string
	Segment       *pricing.Segment
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
