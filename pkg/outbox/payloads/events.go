package payloads

import (
	"time"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// ParcelPurchasedEvent is emitted after a purchase settles against the ledger.
type ParcelPurchasedEvent struct {
	ParcelID   string    `json:"parcelId"`
	RegionID   string    `json:"regionId"`
	GridIndex  int       `json:"gridIndex"`
	FromOwner  *string   `json:"fromOwner,omitempty"`
	ToOwner    string    `json:"toOwner"`
	Price      int64     `json:"price"`
	PurchaseAt time.Time `json:"purchaseAt"`
}

// ParcelListedEvent signals an owner putting a parcel up for sale.
type ParcelListedEvent struct {
	ParcelID  string `json:"parcelId"`
	Owner     string `json:"owner"`
	SalePrice int64  `json:"salePrice"`
}

// ParcelDelistedEvent signals a listing being withdrawn.
type ParcelDelistedEvent struct {
	ParcelID string `json:"parcelId"`
	Owner    string `json:"owner"`
}

// ParcelHouseBuiltEvent is emitted when a house is placed on a parcel.
type ParcelHouseBuiltEvent struct {
	ParcelID string `json:"parcelId"`
	Owner    string `json:"owner"`
}

// ParcelLicensedEvent carries a business license grant.
type ParcelLicensedEvent struct {
	ParcelID string                 `json:"parcelId"`
	Owner    string                 `json:"owner"`
	License  enums.BusinessLicense  `json:"license"`
	Previous *enums.BusinessLicense `json:"previous,omitempty"`
}

// ParcelLicenseRemovedEvent is emitted when a license is surrendered.
type ParcelLicenseRemovedEvent struct {
	ParcelID string                `json:"parcelId"`
	Owner    string                `json:"owner"`
	Previous enums.BusinessLicense `json:"previous"`
}

// ParcelRevenueRecordedEvent reports business revenue booked on a parcel.
type ParcelRevenueRecordedEvent struct {
	ParcelID     string `json:"parcelId"`
	Owner        string `json:"owner"`
	Amount       int64  `json:"amount"`
	TotalRevenue int64  `json:"totalRevenue"`
}

// RegionCreatedEvent announces a newly placed region grid.
type RegionCreatedEvent struct {
	RegionID     string  `json:"regionId"`
	WorldID      string  `json:"worldId"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	OffsetX      int64   `json:"offsetX"`
	OffsetZ      int64   `json:"offsetZ"`
	FounderPlots int     `json:"founderPlots"`
	Creator      *string `json:"creator,omitempty"`
}

// WorldCreatedEvent announces a world and its royalty split.
type WorldCreatedEvent struct {
	WorldID      string               `json:"worldId"`
	Owner        string               `json:"owner"`
	OwnerType    enums.WorldOwnerType `json:"ownerType"`
	EcosystemPct string               `json:"ecosystemPct"`
	OwnerPct     string               `json:"ownerPct"`
	CreatorPct   string               `json:"creatorPct"`
}

// CampaignOpenedEvent signals an expansion campaign accepting allocations.
type CampaignOpenedEvent struct {
	CampaignID   string                     `json:"campaignId"`
	RegionID     string                     `json:"regionId"`
	PricingModel enums.CampaignPricingModel `json:"pricingModel"`
	BasePrice    int64                      `json:"basePrice"`
	StartsAt     time.Time                  `json:"startsAt"`
	EndsAt       time.Time                  `json:"endsAt"`
}

// CampaignClosedEvent signals a campaign no longer accepting allocations.
type CampaignClosedEvent struct {
	CampaignID string `json:"campaignId"`
	RegionID   string `json:"regionId"`
	Allocated  int    `json:"allocated"`
}

// CampaignAllocatedEvent reports a parcel allocated through a campaign.
type CampaignAllocatedEvent struct {
	CampaignID string `json:"campaignId"`
	ParcelID   string `json:"parcelId"`
	Wallet     string `json:"wallet"`
	Price      int64  `json:"price"`
	Sequence   int    `json:"sequence"`
}
