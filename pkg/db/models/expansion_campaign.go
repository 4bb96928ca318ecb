package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// ExpansionCampaign gates how many parcels of a newly opened region may be
// acquired, at what price curve, inside a fixed time window.
type ExpansionCampaign struct {
	ID           uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegionID     string                     `gorm:"column:region_id;not null;index"`
	PricingModel enums.CampaignPricingModel `gorm:"column:pricing_model;type:campaign_pricing_model_enum;not null"`
	Status       enums.CampaignStatus       `gorm:"column:status;type:campaign_status_enum;not null;default:active"`
	MaxPerWallet int                        `gorm:"column:max_per_wallet;not null"`
	BasePrice    int64                      `gorm:"column:base_price;not null"`
	PriceStep    int64                      `gorm:"column:price_step;not null;default:0"`
	StartsAt     time.Time                  `gorm:"column:starts_at;not null"`
	EndsAt       time.Time                  `gorm:"column:ends_at;not null"`
	Allocated    int                        `gorm:"column:allocated;not null;default:0"`
	CreatedAt    time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
