package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// World is the governance container for one or more regions. Royalty
// percentages always sum to exactly 100.
type World struct {
	ID                  string               `gorm:"column:id;primaryKey"`
	Name                string               `gorm:"column:name;not null"`
	Owner               string               `gorm:"column:owner;not null"`
	OwnerType           enums.WorldOwnerType `gorm:"column:owner_type;type:world_owner_type_enum;not null"`
	RoyaltyEcosystemPct decimal.Decimal      `gorm:"column:royalty_ecosystem_pct;type:numeric(5,2);not null"`
	RoyaltyOwnerPct     decimal.Decimal      `gorm:"column:royalty_owner_pct;type:numeric(5,2);not null"`
	RoyaltyCreatorPct   decimal.Decimal      `gorm:"column:royalty_creator_pct;type:numeric(5,2);not null"`
	NextRegionSlot      int                  `gorm:"column:next_region_slot;not null;default:0"`
	Regions             []Region             `gorm:"foreignKey:WorldID;constraint:OnDelete:RESTRICT"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
