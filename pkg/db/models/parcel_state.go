package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// ParcelState holds the mutable ownership fields of one parcel, cached from
// the authoritative ledger. Derived attributes (tier, district, price) are
// never stored here; they are recomputed from coordinates on every read.
// A parcel with no row is unclaimed: for sale, no owner, base price.
type ParcelState struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegionID        string                `gorm:"column:region_id;not null;uniqueIndex:ux_parcel_states_region_index,priority:1;index:ix_parcel_states_region_status"`
	GridIndex       int                   `gorm:"column:grid_index;not null;uniqueIndex:ux_parcel_states_region_index,priority:2"`
	Owner           *string               `gorm:"column:owner;index"`
	Status          enums.ParcelStatus    `gorm:"column:status;type:parcel_status_enum;not null;default:for_sale;index:ix_parcel_states_region_status"`
	SalePrice       *int64                `gorm:"column:sale_price"`
	LastSalePrice   *int64                `gorm:"column:last_sale_price"`
	HasHouse        bool                  `gorm:"column:has_house;not null;default:false"`
	BusinessLicense enums.BusinessLicense `gorm:"column:business_license;type:business_license_enum;not null;default:none"`
	BusinessRevenue int64                 `gorm:"column:business_revenue;not null;default:0"`
	AcquiredAt      *time.Time            `gorm:"column:acquired_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
