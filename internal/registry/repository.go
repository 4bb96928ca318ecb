package registry

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
)

// Repository is the read-only persistence surface of the query side.
type Repository interface {
	FindRegion(ctx context.Context, regionID string) (*models.Region, error)
	FindState(ctx context.Context, regionID string, index int) (*models.ParcelState, error)
	// ListStates returns every stored state row for a region. Parcels with
	// no row are unclaimed and do not appear here.
	ListStates(ctx context.Context, regionID string) ([]models.ParcelState, error)
	// ListStatesRange returns the stored rows whose grid index falls in
	// [lo, hi), so page reads never pull the whole region.
	ListStatesRange(ctx context.Context, regionID string, lo, hi int) ([]models.ParcelState, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindRegion(ctx context.Context, regionID string) (*models.Region, error) {
	var region models.Region
	err := r.db.WithContext(ctx).Where("id = ?", regionID).First(&region).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &region, nil
}

func (r *repository) FindState(ctx context.Context, regionID string, index int) (*models.ParcelState, error) {
	var state models.ParcelState
	err := r.db.WithContext(ctx).
		Where("region_id = ? AND grid_index = ?", regionID, index).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *repository) ListStates(ctx context.Context, regionID string) ([]models.ParcelState, error) {
	var states []models.ParcelState
	err := r.db.WithContext(ctx).
		Where("region_id = ?", regionID).
		Order("grid_index ASC").
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) ListStatesRange(ctx context.Context, regionID string, lo, hi int) ([]models.ParcelState, error) {
	var states []models.ParcelState
	err := r.db.WithContext(ctx).
		Where("region_id = ? AND grid_index >= ? AND grid_index < ?", regionID, lo, hi).
		Order("grid_index ASC").
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}
