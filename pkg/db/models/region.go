package models

import (
	"encoding/json"
	"time"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// Region is a fixed-size rectangular grid of parcels placed at a unique
// world-space offset. Width, height, founder plot count, and the offset are
// immutable after creation; only the status changes.
type Region struct {
	ID             string             `gorm:"column:id;primaryKey"`
	WorldID        string             `gorm:"column:world_id;not null;index"`
	Name           string             `gorm:"column:name;not null"`
	Width          int                `gorm:"column:width;not null"`
	Height         int                `gorm:"column:height;not null"`
	FounderPlots   int                `gorm:"column:founder_plots;not null;default:0"`
	OffsetX        int64              `gorm:"column:offset_x;not null"`
	OffsetZ        int64              `gorm:"column:offset_z;not null"`
	Status         enums.RegionStatus `gorm:"column:status;type:region_status_enum;not null;default:active"`
	Creator        *string            `gorm:"column:creator"`
	ZoneBasePrices json.RawMessage    `gorm:"column:zone_base_prices;type:jsonb"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// ParcelCount returns the number of addressable parcels in the region.
func (r Region) ParcelCount() int {
	return r.Width * r.Height
}

var defaultZoneBasePrices = map[enums.Zone]int64{
	enums.ZoneCommerce: 150,
	enums.ZoneLeisure:  120,
	enums.ZoneHousing:  100,
	enums.ZoneCivic:    80,
}

// ZoneBasePrice resolves the zone's base price for this region, preferring a
// per-region override stored in zone_base_prices over the global defaults.
func (r Region) ZoneBasePrice(zone enums.Zone) int64 {
	if len(r.ZoneBasePrices) > 0 {
		var overrides map[enums.Zone]int64
		if err := json.Unmarshal(r.ZoneBasePrices, &overrides); err == nil {
			if price, ok := overrides[zone]; ok && price >= 0 {
				return price
			}
		}
	}
	return defaultZoneBasePrices[zone]
}
