package ledger

import (
	"context"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// ParcelRecord is the authoritative ledger's view of one parcel. A nil record
// from GetParcelRecord means the parcel has never been claimed.
type ParcelRecord struct {
	RegionID  string
	Index     int
	X         int
	Y         int
	Owner     *string
	SalePrice *int64
	Zone      enums.Zone
	HasHouse  bool
	License   enums.BusinessLicense
	Revenue   int64
}

// Client is the contract the external ownership ledger exposes. Every call
// honors context cancellation; the adapter wraps each call in a deadline so
// a hung ledger surfaces as a timeout instead of blocking the caller.
type Client interface {
	GetParcelRecord(ctx context.Context, regionID string, index int) (*ParcelRecord, error)
	GetOwnerParcels(ctx context.Context, regionID, owner string) ([]int, error)
	SubmitPurchase(ctx context.Context, regionID string, index int, buyer string, payment int64) error
	SubmitLicensePurchase(ctx context.Context, regionID string, index int, owner string, license enums.BusinessLicense) error
	SubmitBuildHouse(ctx context.Context, regionID string, index int, owner string) error
	SubmitRevenueRecord(ctx context.Context, regionID string, index int, amount int64) error
}
