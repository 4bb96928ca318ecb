package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignAllocation records one parcel granted through an expansion
// campaign. The unique index keeps a parcel from being allocated twice.
type CampaignAllocation struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID uuid.UUID `gorm:"column:campaign_id;type:uuid;not null;uniqueIndex:ux_campaign_allocations_parcel,priority:1;index:ix_campaign_allocations_wallet,priority:1"`
	Wallet     string    `gorm:"column:wallet;not null;index:ix_campaign_allocations_wallet,priority:2"`
	GridIndex  int       `gorm:"column:grid_index;not null;uniqueIndex:ux_campaign_allocations_parcel,priority:2"`
	Price      int64     `gorm:"column:price;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
