package registry

import (
	"time"

	"github.com/arcadialabs/landgrid-backend/internal/attributes"
	"github.com/arcadialabs/landgrid-backend/internal/grid"
	"github.com/arcadialabs/landgrid-backend/internal/pricing"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
)

// Parcel is the flat record the query surface returns: identity and derived
// attributes recomputed from coordinates, ownership fields overlaid from the
// ledger adapter's state. This is also the cached shape.
type Parcel struct {
	ParcelID  string `json:"parcelId"`
	RegionID  string `json:"regionId"`
	WorldID   string `json:"worldId"`
	GridIndex int    `json:"gridIndex"`
	GridX     int    `json:"gridX"`
	GridY     int    `json:"gridY"`
	WorldX    int64  `json:"worldX"`
	WorldY    int64  `json:"worldY"`
	WorldZ    int64  `json:"worldZ"`

	Tier              enums.Tier     `json:"tier"`
	District          enums.District `json:"district"`
	Zone              enums.Zone     `json:"zone"`
	IsCornerLot       bool           `json:"isCornerLot"`
	IsMainStreet      bool           `json:"isMainStreet"`
	IsFounderPlot     bool           `json:"isFounderPlot"`
	MaxBuildingHeight int            `json:"maxBuildingHeight"`
	BasePrice         int64          `json:"basePrice"`

	Status          enums.ParcelStatus    `json:"status"`
	Owner           *string               `json:"owner"`
	SalePrice       *int64                `json:"salePrice"`
	LastSalePrice   *int64                `json:"lastSalePrice"`
	CurrentPrice    int64                 `json:"currentPrice"`
	HasHouse        bool                  `json:"hasHouse"`
	BusinessLicense enums.BusinessLicense `json:"businessLicense"`
	BusinessRevenue int64                 `json:"businessRevenue"`
	AcquiredAt      *time.Time            `json:"acquiredAt"`
}

// assembleParcel computes the derived half of a parcel and overlays the
// mutable half. state may be nil: an unclaimed parcel reads as FOR_SALE at
// its base price with no owner.
func assembleParcel(region *models.Region, index int, state *models.ParcelState, parcelSize int64) (Parcel, error) {
	size := grid.Size{Width: region.Width, Height: region.Height}
	coords, err := grid.CoordsFromIndex(size, index)
	if err != nil {
		return Parcel{}, err
	}
	attrs, err := attributes.Compute(size, coords, region.FounderPlots)
	if err != nil {
		return Parcel{}, err
	}
	basePrice, err := pricing.Compute(region.ZoneBasePrice(attrs.Zone), attrs)
	if err != nil {
		return Parcel{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute base price")
	}
	pos := grid.WorldPosition(coords, grid.Offset{X: region.OffsetX, Z: region.OffsetZ}, int(parcelSize))

	parcel := Parcel{
		ParcelID:  grid.FormatParcelID(region.ID, index),
		RegionID:  region.ID,
		WorldID:   region.WorldID,
		GridIndex: index,
		GridX:     coords.X,
		GridY:     coords.Y,
		WorldX:    pos.X,
		WorldY:    pos.Y,
		WorldZ:    pos.Z,

		Tier:              attrs.Tier,
		District:          attrs.District,
		Zone:              attrs.Zone,
		IsCornerLot:       attrs.IsCornerLot,
		IsMainStreet:      attrs.IsMainStreet,
		IsFounderPlot:     attrs.IsFounderPlot,
		MaxBuildingHeight: attrs.MaxBuildingHeight,
		BasePrice:         basePrice,

		Status:          enums.ParcelStatusForSale,
		CurrentPrice:    basePrice,
		BusinessLicense: enums.BusinessLicenseNone,
	}

	if state != nil {
		parcel.Status = state.Status
		parcel.Owner = state.Owner
		parcel.SalePrice = state.SalePrice
		parcel.LastSalePrice = state.LastSalePrice
		parcel.HasHouse = state.HasHouse
		parcel.BusinessLicense = state.BusinessLicense
		parcel.BusinessRevenue = state.BusinessRevenue
		parcel.AcquiredAt = state.AcquiredAt
		if state.SalePrice != nil {
			parcel.CurrentPrice = *state.SalePrice
		}
	}
	return parcel, nil
}
