package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateParcel   OutboxAggregateType = "parcel"
	AggregateRegion   OutboxAggregateType = "region"
	AggregateWorld    OutboxAggregateType = "world"
	AggregateCampaign OutboxAggregateType = "campaign"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateParcel,
	AggregateRegion,
	AggregateWorld,
	AggregateCampaign,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventParcelPurchased       OutboxEventType = "parcel_purchased"
	EventParcelListed          OutboxEventType = "parcel_listed"
	EventParcelDelisted        OutboxEventType = "parcel_delisted"
	EventParcelHouseBuilt      OutboxEventType = "parcel_house_built"
	EventParcelLicensed        OutboxEventType = "parcel_licensed"
	EventParcelLicenseRemoved  OutboxEventType = "parcel_license_removed"
	EventParcelRevenueRecorded OutboxEventType = "parcel_revenue_recorded"
	EventRegionCreated         OutboxEventType = "region_created"
	EventWorldCreated          OutboxEventType = "world_created"
	EventCampaignOpened        OutboxEventType = "campaign_opened"
	EventCampaignClosed        OutboxEventType = "campaign_closed"
	EventCampaignAllocated     OutboxEventType = "campaign_allocated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventParcelPurchased,
	EventParcelListed,
	EventParcelDelisted,
	EventParcelHouseBuilt,
	EventParcelLicensed,
	EventParcelLicenseRemoved,
	EventParcelRevenueRecorded,
	EventRegionCreated,
	EventWorldCreated,
	EventCampaignOpened,
	EventCampaignClosed,
	EventCampaignAllocated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
