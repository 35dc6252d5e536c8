package repository

import (
	"context"

	"github.com/amirphl/dynamic-pricing/models"
	"gorm.io/gorm"
)

// QuoteStatusEventRepositoryImpl implements QuoteStatusEventRepository interface
type QuoteStatusEventRepositoryImpl struct {
	*BaseRepository[models.QuoteStatusEvent, models.QuoteStatusEventFilter]
}

// NewQuoteStatusEventRepository creates a new quote status event repository
func NewQuoteStatusEventRepository(db *gorm.DB) QuoteStatusEventRepository {
	return &QuoteStatusEventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.QuoteStatusEvent, models.QuoteStatusEventFilter](db),
	}
}

// ListByQuoteID returns a quote's status history oldest first
func (r *QuoteStatusEventRepositoryImpl) ListByQuoteID(ctx context.Context, quoteID uint) ([]*models.QuoteStatusEvent, error) {
	return r.ByFilter(ctx, models.QuoteStatusEventFilter{QuoteID: &quoteID}, "id ASC", 0, 0)
}

func (r *QuoteStatusEventRepositoryImpl) applyFilter(query *gorm.DB, filter models.QuoteStatusEventFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.QuoteID != nil {
		query = query.Where("quote_id = ?", *filter.QuoteID)
	}
	if filter.ToStatus != nil {
		query = query.Where("to_status = ?", *filter.ToStatus)
	}
	if filter.Actor != nil {
		query = query.Where("actor = ?", *filter.Actor)
	}
	if filter.RequestID != nil {
		query = query.Where("request_id = ?", *filter.RequestID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves status events based on filter criteria
func (r *QuoteStatusEventRepositoryImpl) ByFilter(ctx context.Context, filter models.QuoteStatusEventFilter, orderBy string, limit, offset int) ([]*models.QuoteStatusEvent, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.QuoteStatusEvent{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var events []*models.QuoteStatusEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of status events matching the filter
func (r *QuoteStatusEventRepositoryImpl) Count(ctx context.Context, filter models.QuoteStatusEventFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.QuoteStatusEvent{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any status event matching the filter exists
func (r *QuoteStatusEventRepositoryImpl) Exists(ctx context.Context, filter models.QuoteStatusEventFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
