package regions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateWorld(ctx context.Context, world *models.World) error
	FindWorld(ctx context.Context, worldID string) (*models.World, error)
	SaveWorld(ctx context.Context, world *models.World) error

	CreateRegion(ctx context.Context, region *models.Region) error
	FindRegion(ctx context.Context, regionID string) (*models.Region, error)
	SaveRegion(ctx context.Context, region *models.Region) error
	ListRegions(ctx context.Context, worldID string) ([]models.Region, error)

	CreateCampaign(ctx context.Context, campaign *models.ExpansionCampaign) error
	FindCampaign(ctx context.Context, campaignID uuid.UUID) (*models.ExpansionCampaign, error)
	FindActiveCampaign(ctx context.Context, regionID string) (*models.ExpansionCampaign, error)
	ListExpiredActiveCampaigns(ctx context.Context, now time.Time) ([]models.ExpansionCampaign, error)
	SaveCampaign(ctx context.Context, campaign *models.ExpansionCampaign) error

	CreateAllocation(ctx context.Context, allocation *models.CampaignAllocation) error
	CountWalletAllocations(ctx context.Context, campaignID uuid.UUID, wallet string) (int64, error)

	CreateParcelState(ctx context.Context, state *models.ParcelState) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateWorld(ctx context.Context, world *models.World) error {
	return r.db.WithContext(ctx).Create(world).Error
}

func (r *repository) FindWorld(ctx context.Context, worldID string) (*models.World, error) {
	var world models.World
	err := r.db.WithContext(ctx).Where("id = ?", worldID).First(&world).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &world, nil
}

func (r *repository) SaveWorld(ctx context.Context, world *models.World) error {
	return r.db.WithContext(ctx).Save(world).Error
}

func (r *repository) CreateRegion(ctx context.Context, region *models.Region) error {
	return r.db.WithContext(ctx).Create(region).Error
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

func (r *repository) SaveRegion(ctx context.Context, region *models.Region) error {
	return r.db.WithContext(ctx).Save(region).Error
}

func (r *repository) ListRegions(ctx context.Context, worldID string) ([]models.Region, error) {
	var regions []models.Region
	err := r.db.WithContext(ctx).
		Where("world_id = ?", worldID).
		Order("created_at ASC").
		Find(&regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *repository) CreateCampaign(ctx context.Context, campaign *models.ExpansionCampaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *repository) FindCampaign(ctx context.Context, campaignID uuid.UUID) (*models.ExpansionCampaign, error) {
	var campaign models.ExpansionCampaign
	err := r.db.WithContext(ctx).Where("id = ?", campaignID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) FindActiveCampaign(ctx context.Context, regionID string) (*models.ExpansionCampaign, error) {
	var campaign models.ExpansionCampaign
	err := r.db.WithContext(ctx).
		Where("region_id = ? AND status = ?", regionID, enums.CampaignStatusActive).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) ListExpiredActiveCampaigns(ctx context.Context, now time.Time) ([]models.ExpansionCampaign, error) {
	var campaigns []models.ExpansionCampaign
	err := r.db.WithContext(ctx).
		Where("status = ? AND ends_at < ?", enums.CampaignStatusActive, now).
		Order("ends_at ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repository) SaveCampaign(ctx context.Context, campaign *models.ExpansionCampaign) error {
	return r.db.WithContext(ctx).Save(campaign).Error
}

func (r *repository) CreateAllocation(ctx context.Context, allocation *models.CampaignAllocation) error {
	return r.db.WithContext(ctx).Create(allocation).Error
}

func (r *repository) CountWalletAllocations(ctx context.Context, campaignID uuid.UUID, wallet string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CampaignAllocation{}).
		Where("campaign_id = ? AND wallet = ?", campaignID, wallet).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateParcelState(ctx context.Context, state *models.ParcelState) error {
	return r.db.WithContext(ctx).Create(state).Error
}
