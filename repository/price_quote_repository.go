package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/pricing"
	"github.com/amirphl/dynamic-pricing/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PriceQuoteRepositoryImpl implements PriceQuoteRepository interface
type PriceQuoteRepositoryImpl struct {
	*BaseRepository[models.PriceQuote, models.PriceQuoteFilter]
}

// NewPriceQuoteRepository creates a new price quote repository
func NewPriceQuoteRepository(db *gorm.DB) PriceQuoteRepository {
	return &PriceQuoteRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceQuote, models.PriceQuoteFilter](db),
	}
}

// ByUUID retrieves a price quote by UUID
func (r *PriceQuoteRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.PriceQuote, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	quotes, err := r.ByFilter(ctx, models.PriceQuoteFilter{UUID: &parsedUUID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, nil
	}
	return quotes[0], nil
}

// ByUUIDForUpdate locks the quote row for the rest of the surrounding transaction.
func (r *PriceQuoteRepositoryImpl) ByUUIDForUpdate(ctx context.Context, uuid string) (*models.PriceQuote, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	var quote models.PriceQuote
	err = r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("uuid = ?", parsedUUID).
		First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// UpdateStatus moves a quote to status `to` only if its current status is an
// allowed predecessor. Expiry additionally requires valid_until < now. It reports
// whether a row changed.
func (r *PriceQuoteRepositoryImpl) UpdateStatus(ctx context.Context, id uint, to models.QuoteStatus, now time.Time) (applied bool, err error) {
	from := to.AllowedPredecessors()
	if len(from) == 0 {
		return false, nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				err = db.Commit().Error
			}
		}()
	}

	query := db.Model(&models.PriceQuote{}).
		Where("id = ?", id).
		Where("status IN ?", from)
	if to == models.QuoteStatusExpired {
		query = query.Where("valid_until < ?", now)
	}

	res := query.Updates(map[string]any{
		"status":     to,
		"updated_at": now,
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update quote status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ExpireDue expires every expirable quote whose validity ended before now in one
// statement and returns the quotes it touched with their previous status.
func (r *PriceQuoteRepositoryImpl) ExpireDue(ctx context.Context, now time.Time) (expired []ExpiredQuote, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return nil, err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				err = db.Commit().Error
			}
		}()
	}

	err = db.Raw(`
		WITH due AS (
			SELECT id, status FROM price_quotes
			WHERE status IN ? AND valid_until < ?
			FOR UPDATE SKIP LOCKED
		)
		UPDATE price_quotes q
		SET status = ?, updated_at = ?
		FROM due
		WHERE q.id = due.id
		RETURNING q.id AS id, q.uuid AS uuid, due.status AS from_status`,
		models.QuoteStatusExpired.AllowedPredecessors(), now, models.QuoteStatusExpired, now,
	).Scan(&expired).Error
	if err != nil {
		return nil, fmt.Errorf("failed to expire due quotes: %w", err)
	}
	return expired, nil
}

// ListByCreatedRange returns quotes created in [from, to) oldest first
func (r *PriceQuoteRepositoryImpl) ListByCreatedRange(ctx context.Context, from, to time.Time) ([]*models.PriceQuote, error) {
	filter := models.PriceQuoteFilter{CreatedAfter: &from, CreatedBefore: &to}
	return r.ByFilter(ctx, filter, "created_at ASC, id ASC", 0, 0)
}

// Summary aggregates quotes created in [from, to)
func (r *PriceQuoteRepositoryImpl) Summary(ctx context.Context, from, to time.Time) (*models.QuoteSummary, error) {
	var summary models.QuoteSummary
	err := r.getDB(ctx).Model(&models.PriceQuote{}).
		Select(`COUNT(*) AS total_quotes,
			COUNT(*) FILTER (WHERE status = ?) AS accepted_quotes,
			COALESCE(AVG(calculated_price), 0)::float8 AS average_price,
			COALESCE(AVG(discount_percentage), 0)::float8 AS average_discount`, models.QuoteStatusAccepted).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarise quotes: %w", err)
	}
	return &summary, nil
}

// SegmentBreakdown aggregates quotes created in [from, to) per client segment
func (r *PriceQuoteRepositoryImpl) SegmentBreakdown(ctx context.Context, from, to time.Time) ([]models.SegmentBreakdown, error) {
	var rows []models.SegmentBreakdown
	err := r.getDB(ctx).Model(&models.PriceQuote{}).
		Select(`segment,
			COUNT(*) AS total_quotes,
			COUNT(*) FILTER (WHERE status = ?) AS accepted_quotes,
			AVG(calculated_price)::float8 AS average_price`, models.QuoteStatusAccepted).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("segment").
		Order("segment").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to break quotes down by segment: %w", err)
	}
	return rows, nil
}

// PerformancePoints returns the final price and acceptance of every quote priced
// with modelName in [from, to)
func (r *PriceQuoteRepositoryImpl) PerformancePoints(ctx context.Context, modelName string, from, to time.Time) ([]pricing.PerformancePoint, error) {
	type row struct {
		FinalPrice float64
		Converted  bool
	}
	var rows []row
	err := r.getDB(ctx).Model(&models.PriceQuote{}).
		Select("calculated_price::float8 AS final_price, status = ? AS converted", models.QuoteStatusAccepted).
		Where("pricing_model = ?", modelName).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load performance points: %w", err)
	}

	points := make([]pricing.PerformancePoint, len(rows))
	for i, p := range rows {
		points[i] = pricing.PerformancePoint{FinalPrice: p.FinalPrice, Converted: p.Converted}
	}
	return points, nil
}

func (r *PriceQuoteRepositoryImpl) applyFilter(query *gorm.DB, filter models.PriceQuoteFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ClientUUID != nil {
		query = query.Where("client_uuid = ?", *filter.ClientUUID)
	}
	if filter.PricingModel != nil {
		query = query.Where("pricing_model = ?", *filter.PricingModel)
	}
	if filter.Segment != nil {
		query = query.Where("segment = ?", *filter.Segment)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MarketSnapshotID != nil {
		query = query.Where("market_snapshot_id = ?", *filter.MarketSnapshotID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ValidBefore != nil {
		query = query.Where("valid_until < ?", *filter.ValidBefore)
	}
	return query
}

// ByFilter retrieves price quotes based on filter criteria
func (r *PriceQuoteRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceQuoteFilter, orderBy string, limit, offset int) ([]*models.PriceQuote, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.PriceQuote{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var quotes []*models.PriceQuote
	if err := query.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// Count returns the number of price quotes matching the filter
func (r *PriceQuoteRepositoryImpl) Count(ctx context.Context, filter models.PriceQuoteFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.PriceQuote{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any price quote matching the filter exists
func (r *PriceQuoteRepositoryImpl) Exists(ctx context.Context, filter models.PriceQuoteFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
