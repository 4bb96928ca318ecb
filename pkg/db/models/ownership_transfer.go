package models

import (
	"time"

	"github.com/google/uuid"
)

// OwnershipTransfer is one immutable entry of a parcel's ownership history.
// FromOwner is nil for the initial claim of an unclaimed parcel.
type OwnershipTransfer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegionID  string    `gorm:"column:region_id;not null;index:ix_ownership_transfers_parcel,priority:1"`
	GridIndex int       `gorm:"column:grid_index;not null;index:ix_ownership_transfers_parcel,priority:2"`
	FromOwner *string   `gorm:"column:from_owner"`
	ToOwner   string    `gorm:"column:to_owner;not null"`
	Price     int64     `gorm:"column:price;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
