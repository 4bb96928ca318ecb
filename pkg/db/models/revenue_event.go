package models

import (
	"time"

	"github.com/google/uuid"
)

// RevenueEvent is one monotonic increment of a parcel's accumulated
// business revenue. Amounts are never negative.
type RevenueEvent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegionID  string    `gorm:"column:region_id;not null;index:ix_revenue_events_parcel,priority:1"`
	GridIndex int       `gorm:"column:grid_index;not null;index:ix_revenue_events_parcel,priority:2"`
	Amount    int64     `gorm:"column:amount;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
