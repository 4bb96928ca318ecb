package ledger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// Repository persists the locally cached parcel state plus its append-only
// history rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindState(ctx context.Context, regionID string, index int) (*models.ParcelState, error)
	CreateState(ctx context.Context, state *models.ParcelState) error
	SaveState(ctx context.Context, state *models.ParcelState) error
	// TransferOwnership is a compare-and-swap: it succeeds only if the row is
	// still listed for sale, and reports whether a row was updated.
	TransferOwnership(ctx context.Context, regionID string, index int, update OwnershipUpdate) (bool, error)
	AppendTransfer(ctx context.Context, transfer *models.OwnershipTransfer) error
	AppendRevenue(ctx context.Context, event *models.RevenueEvent) error
	ListTransfers(ctx context.Context, regionID string, index int) ([]models.OwnershipTransfer, error)
	FindRegion(ctx context.Context, regionID string) (*models.Region, error)
}

// OwnershipUpdate carries the fields a successful purchase writes.
type OwnershipUpdate struct {
	Owner         string
	LastSalePrice int64
	AcquiredAt    time.Time
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

func (r *repository) CreateState(ctx context.Context, state *models.ParcelState) error {
	return r.db.WithContext(ctx).Create(state).Error
}

func (r *repository) SaveState(ctx context.Context, state *models.ParcelState) error {
	return r.db.WithContext(ctx).Save(state).Error
}

func (r *repository) TransferOwnership(ctx context.Context, regionID string, index int, update OwnershipUpdate) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.ParcelState{}).
		Where("region_id = ? AND grid_index = ? AND status = ?", regionID, index, enums.ParcelStatusForSale).
		Updates(map[string]any{
			"owner":           update.Owner,
			"status":          enums.ParcelStatusOwned,
			"sale_price":      nil,
			"last_sale_price": update.LastSalePrice,
			"acquired_at":     update.AcquiredAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) AppendTransfer(ctx context.Context, transfer *models.OwnershipTransfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

func (r *repository) AppendRevenue(ctx context.Context, event *models.RevenueEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListTransfers(ctx context.Context, regionID string, index int) ([]models.OwnershipTransfer, error) {
	var transfers []models.OwnershipTransfer
	err := r.db.WithContext(ctx).
		Where("region_id = ? AND grid_index = ?", regionID, index).
		Order("created_at ASC").
		Order("id ASC").
		Find(&transfers).Error
	return transfers, err
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
