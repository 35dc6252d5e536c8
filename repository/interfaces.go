package repository

import (
	"context"
	"time"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ClientProfileRepository defines operations for client profiles
type ClientProfileRepository interface {
	Repository[models.ClientProfile, models.ClientProfileFilter]
	ByUUID(ctx context.Context, uuid string) (*models.ClientProfile, error)
}

// ExpiredQuote identifies a quote moved to expired by ExpireDue.
type ExpiredQuote struct {
	ID         uint
	UUID       uuid.UUID
	FromStatus models.QuoteStatus
}

// PriceQuoteRepository defines operations for price quotes. Quotes are append-only
// apart from their status.
type PriceQuoteRepository interface {
	Repository[models.PriceQuote, models.PriceQuoteFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PriceQuote, error)
	ByUUIDForUpdate(ctx context.Context, uuid string) (*models.PriceQuote, error)
	UpdateStatus(ctx context.Context, id uint, to models.QuoteStatus, now time.Time) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) ([]ExpiredQuote, error)
	ListByCreatedRange(ctx context.Context, from, to time.Time) ([]*models.PriceQuote, error)
	Summary(ctx context.Context, from, to time.Time) (*models.QuoteSummary, error)
	SegmentBreakdown(ctx context.Context, from, to time.Time) ([]models.SegmentBreakdown, error)
	PerformancePoints(ctx context.Context, modelName string, from, to time.Time) ([]pricing.PerformancePoint, error)
}

// QuoteStatusEventRepository defines operations for quote status history
type QuoteStatusEventRepository interface {
	Repository[models.QuoteStatusEvent, models.QuoteStatusEventFilter]
	ListByQuoteID(ctx context.Context, quoteID uint) ([]*models.QuoteStatusEvent, error)
}

// AdminRepository defines operations for admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}
