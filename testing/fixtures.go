package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TestAdminPassword is the plain-text password of admins made by CreateTestAdmin
const TestAdminPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestClient stores a mid-sized SaaS client with the given revenue
func (tf *TestFixtures) CreateTestClient(annualRevenue float64) (*models.ClientProfile, error) {
	p, err := pricing.NewClientProfile(pricing.ClientProfile{
		CompanyName:          fmt.Sprintf("Test Company %d", rand.Intn(1_000_000)),
		Industry:             "SaaS",
		CompanySize:          250,
		AnnualRevenue:        annualRevenue,
		FundingStage:         "series_b",
		GeographicLocation:   "north_america",
		UrgencyScore:         7,
		CompetitionLevel:     5,
		StrategicValue:       6,
		PaymentHistoryScore:  8,
		RelationshipStrength: 6,
	})
	if err != nil {
		return nil, err
	}

	client := models.ClientProfileFromPricing(p)
	if err := tf.DB.DB.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create test client: %w", err)
	}
	return client, nil
}

// CreateTestQuote stores a quote for client with the given price, status and
// validity end
func (tf *TestFixtures) CreateTestQuote(client *models.ClientProfile, price float64, status models.QuoteStatus, validUntil time.Time) (*models.PriceQuote, error) {
	quote := &models.PriceQuote{
		ClientID:           client.ID,
		ClientUUID:         client.UUID,
		ProductService:     "support platform",
		PricingModel:       "value_based",
		Segment:            client.Segment,
		BasePrice:          decimal.NewFromInt(10000),
		CalculatedPrice:    decimal.NewFromFloat(price).Round(utils.MoneyScale),
		DiscountPercentage: decimal.Zero,
		PremiumMultiplier:  1,
		FactorsApplied:     models.FactorLog{},
		MarketSnapshotID:   pricing.DefaultMarketSnapshot().ID(),
		Status:             status,
		ValidUntil:         validUntil,
	}
	if err := tf.DB.DB.Create(quote).Error; err != nil {
		return nil, fmt.Errorf("failed to create test quote: %w", err)
	}
	return quote, nil
}

// CreateTestAdmin stores an active admin whose password is TestAdminPassword
func (tf *TestFixtures) CreateTestAdmin(username string) (*models.Admin, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}
