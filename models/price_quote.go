package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FactorLog is the ordered list of stages that moved a quote's price.
type FactorLog []pricing.FactorEntry

// Value implements the driver.Valuer interface for FactorLog
func (f FactorLog) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

// Scan implements the sql.Scanner interface for FactorLog
func (f *FactorLog) Scan(value any) error {
	if value == nil {
		*f = FactorLog{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FactorLog", value)
	}

	return json.Unmarshal(bytes, f)
}

// PriceQuote is an issued quote. Every column except status is written once.
type PriceQuote struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	UUID               uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_price_quotes_uuid" json:"uuid"`
	ClientID           uint            `gorm:"not null;index:idx_price_quotes_client_id" json:"client_id"`
	ClientUUID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_quotes_client_uuid" json:"client_uuid"`
	ProductService     string          `gorm:"size:255;not null" json:"product_service"`
	PricingModel       string          `gorm:"size:100;not null;index:idx_price_quotes_pricing_model" json:"pricing_model"`
	Segment            pricing.Segment `gorm:"type:client_segment;not null;index:idx_price_quotes_segment" json:"segment"`
	BasePrice          decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"base_price"`
	CalculatedPrice    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"calculated_price"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(7,2);not null" json:"discount_percentage"`
	PremiumMultiplier  float64         `gorm:"type:double precision;not null;default:1" json:"premium_multiplier"`
	FactorsApplied     FactorLog       `gorm:"type:jsonb;not null" json:"factors_applied"`
	MarketSnapshotID   string          `gorm:"size:64;not null;index:idx_price_quotes_market_snapshot_id" json:"market_snapshot_id"`
	Status             QuoteStatus     `gorm:"type:quote_status;not null;default:'draft';index:idx_price_quotes_status" json:"status"`
	ValidUntil         time.Time       `gorm:"not null;index:idx_price_quotes_valid_until" json:"valid_until"`
	CreatedAt          time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_price_quotes_created_at" json:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Client *ClientProfile `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
}

func (PriceQuote) TableName() string {
	return "price_quotes"
}

// BeforeCreate is called before creating a new record
func (q *PriceQuote) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QuoteStatusDraft
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = utils.UTCNow()
	}
	if q.FactorsApplied == nil {
		q.FactorsApplied = FactorLog{}
	}
	return nil
}

// IsDue reports whether the quote should be expired at now.
func (q *PriceQuote) IsDue(now time.Time) bool {
	return q.Status.Expirable() && now.After(q.ValidUntil)
}

// Verify re-folds the factor log over the base price and reports whether it
// reproduces the stored calculated price.
func (q *PriceQuote) Verify() bool {
	rebuilt := pricing.Reconstruct(q.BasePrice.InexactFloat64(), q.FactorsApplied, q.Segment)
	return decimal.NewFromFloat(rebuilt).Round(utils.MoneyScale).Equal(q.CalculatedPrice)
}

// PriceQuoteFilter represents filter criteria for price quote queries
type PriceQuoteFilter struct {
	ID               *uint
	UUID             *uuid.UUID
	ClientID         *uint
	ClientUUID       *uuid.UUID
	PricingModel     *string
	Segment          *pricing.Segment
	Status           *QuoteStatus
	MarketSnapshotID *string
	CreatedAfter     *time.Time
	CreatedBefore    *time.Time
	ValidBefore      *time.Time
}
