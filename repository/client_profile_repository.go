package repository

import (
	"context"

	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/utils"
	"gorm.io/gorm"
)

// ClientProfileRepositoryImpl implements ClientProfileRepository interface
type ClientProfileRepositoryImpl struct {
	*BaseRepository[models.ClientProfile, models.ClientProfileFilter]
}

// NewClientProfileRepository creates a new client profile repository
func NewClientProfileRepository(db *gorm.DB) ClientProfileRepository {
	return &ClientProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ClientProfile, models.ClientProfileFilter](db),
	}
}

// ByUUID retrieves a client profile by UUID
func (r *ClientProfileRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.ClientProfile, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	profiles, err := r.ByFilter(ctx, models.ClientProfileFilter{UUID: &parsedUUID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

func (r *ClientProfileRepositoryImpl) applyFilter(query *gorm.DB, filter models.ClientProfileFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyName != nil {
		query = query.Where("company_name ILIKE ?", "%"+*filter.CompanyName+"%")
	}
	if filter.Industry != nil {
		query = query.Where("industry = ?", *filter.Industry)
	}
	if filter.Segment != nil {
		query = query.Where("segment = ?", *filter.Segment)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves client profiles based on filter criteria
func (r *ClientProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.ClientProfileFilter, orderBy string, limit, offset int) ([]*models.ClientProfile, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.ClientProfile{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var profiles []*models.ClientProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Count returns the number of client profiles matching the filter
func (r *ClientProfileRepositoryImpl) Count(ctx context.Context, filter models.ClientProfileFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.ClientProfile{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any client profile matching the filter exists
func (r *ClientProfileRepositoryImpl) Exists(ctx context.Context, filter models.ClientProfileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
