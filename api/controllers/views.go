package controllers

import (
	"time"

	"github.com/arcadialabs/landgrid-backend/internal/grid"
	"github.com/arcadialabs/landgrid-backend/internal/regions"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
)

// View structs keep the wire shape stable and camelCased regardless of how
// the gorm models evolve.

type parcelStateView struct {
	ParcelID        string     `json:"parcelId"`
	RegionID        string     `json:"regionId"`
	GridIndex       int        `json:"gridIndex"`
	Owner           *string    `json:"owner"`
	Status          string     `json:"status"`
	SalePrice       *int64     `json:"salePrice"`
	LastSalePrice   *int64     `json:"lastSalePrice"`
	HasHouse        bool       `json:"hasHouse"`
	BusinessLicense string     `json:"businessLicense"`
	BusinessRevenue int64      `json:"businessRevenue"`
	AcquiredAt      *time.Time `json:"acquiredAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func parcelStateViewOf(state *models.ParcelState) *parcelStateView {
	if state == nil {
		return nil
	}
	return &parcelStateView{
		ParcelID:        grid.FormatParcelID(state.RegionID, state.GridIndex),
		RegionID:        state.RegionID,
		GridIndex:       state.GridIndex,
		Owner:           state.Owner,
		Status:          string(state.Status),
		SalePrice:       state.SalePrice,
		LastSalePrice:   state.LastSalePrice,
		HasHouse:        state.HasHouse,
		BusinessLicense: string(state.BusinessLicense),
		BusinessRevenue: state.BusinessRevenue,
		AcquiredAt:      state.AcquiredAt,
		UpdatedAt:       state.UpdatedAt,
	}
}

type transferView struct {
	ParcelID   string    `json:"parcelId"`
	FromOwner  *string   `json:"fromOwner"`
	ToOwner    string    `json:"toOwner"`
	Price      int64     `json:"price"`
	OccurredAt time.Time `json:"occurredAt"`
}

func transferViewsOf(transfers []models.OwnershipTransfer) []transferView {
	views := make([]transferView, 0, len(transfers))
	for _, t := range transfers {
		views = append(views, transferView{
			ParcelID:   grid.FormatParcelID(t.RegionID, t.GridIndex),
			FromOwner:  t.FromOwner,
			ToOwner:    t.ToOwner,
			Price:      t.Price,
			OccurredAt: t.CreatedAt,
		})
	}
	return views
}

type worldView struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Owner               string    `json:"owner"`
	OwnerType           string    `json:"ownerType"`
	RoyaltyEcosystemPct string    `json:"royaltyEcosystemPct"`
	RoyaltyOwnerPct     string    `json:"royaltyOwnerPct"`
	RoyaltyCreatorPct   string    `json:"royaltyCreatorPct"`
	NextRegionSlot      int       `json:"nextRegionSlot"`
	CreatedAt           time.Time `json:"createdAt"`
}

func worldViewOf(world *models.World) *worldView {
	if world == nil {
		return nil
	}
	return &worldView{
		ID:                  world.ID,
		Name:                world.Name,
		Owner:               world.Owner,
		OwnerType:           string(world.OwnerType),
		RoyaltyEcosystemPct: world.RoyaltyEcosystemPct.String(),
		RoyaltyOwnerPct:     world.RoyaltyOwnerPct.String(),
		RoyaltyCreatorPct:   world.RoyaltyCreatorPct.String(),
		NextRegionSlot:      world.NextRegionSlot,
		CreatedAt:           world.CreatedAt,
	}
}

type regionView struct {
	ID           string    `json:"id"`
	WorldID      string    `json:"worldId"`
	Name         string    `json:"name"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	FounderPlots int       `json:"founderPlots"`
	OffsetX      int64     `json:"offsetX"`
	OffsetZ      int64     `json:"offsetZ"`
	Status       string    `json:"status"`
	Creator      *string   `json:"creator"`
	CreatedAt    time.Time `json:"createdAt"`
}

func regionViewOf(region *models.Region) *regionView {
	if region == nil {
		return nil
	}
	return &regionView{
		ID:           region.ID,
		WorldID:      region.WorldID,
		Name:         region.Name,
		Width:        region.Width,
		Height:       region.Height,
		FounderPlots: region.FounderPlots,
		OffsetX:      region.OffsetX,
		OffsetZ:      region.OffsetZ,
		Status:       string(region.Status),
		Creator:      region.Creator,
		CreatedAt:    region.CreatedAt,
	}
}

func regionViewsOf(list []models.Region) []regionView {
	views := make([]regionView, 0, len(list))
	for i := range list {
		views = append(views, *regionViewOf(&list[i]))
	}
	return views
}

type campaignView struct {
	ID           string    `json:"id"`
	RegionID     string    `json:"regionId"`
	PricingModel string    `json:"pricingModel"`
	Status       string    `json:"status"`
	MaxPerWallet int       `json:"maxPerWallet"`
	BasePrice    int64     `json:"basePrice"`
	PriceStep    int64     `json:"priceStep"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	Allocated    int       `json:"allocated"`
}

func campaignViewOf(campaign *models.ExpansionCampaign) *campaignView {
	if campaign == nil {
		return nil
	}
	return &campaignView{
		ID:           campaign.ID.String(),
		RegionID:     campaign.RegionID,
		PricingModel: string(campaign.PricingModel),
		Status:       string(campaign.Status),
		MaxPerWallet: campaign.MaxPerWallet,
		BasePrice:    campaign.BasePrice,
		PriceStep:    campaign.PriceStep,
		StartsAt:     campaign.StartsAt,
		EndsAt:       campaign.EndsAt,
		Allocated:    campaign.Allocated,
	}
}

type allocationView struct {
	ParcelID string `json:"parcelId"`
	Price    int64  `json:"price"`
	Sequence int    `json:"sequence"`
}

func allocationViewOf(result *regions.AllocationResult) *allocationView {
	if result == nil {
		return nil
	}
	return &allocationView{
		ParcelID: result.ParcelID,
		Price:    result.Price,
		Sequence: result.Sequence,
	}
}
