package pricing

import (
	"github.com/arcadialabs/landgrid-backend/internal/attributes"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	"github.com/arcadialabs/landgrid-backend/pkg/errors"
)

// All multipliers are expressed as integer percentages and composed before a
// single division, so the result is identical on every platform. The scale
// factor is 100 per percentage table: district x corner x street = 10^6.
const scale = 1_000_000

// Tier multipliers are whole numbers.
var tierMultipliers = map[enums.Tier]int64{
	enums.TierCore:     3,
	enums.TierRing:     2,
	enums.TierFrontier: 1,
}

// District multipliers as percentages.
var districtPct = map[enums.District]int64{
	enums.DistrictDefi:        130,
	enums.DistrictBusiness:    120,
	enums.DistrictGaming:      110,
	enums.DistrictSocial:      105,
	enums.DistrictResidential: 100,
	enums.DistrictDAO:         90,
	enums.DistrictPublic:      80,
}

// Scarcity bonuses as percentages; both apply when both flags are set.
const (
	cornerLotPct  = 120
	mainStreetPct = 115
	neutralPct    = 100
)

// Compute returns the canonical base price for a parcel. zoneBasePrice is the
// region's configured price for the parcel's zone, in integer currency units.
func Compute(zoneBasePrice int64, attrs attributes.Attributes) (int64, error) {
	if zoneBasePrice < 0 {
		return 0, errors.New(errors.CodeValidation, "zone base price must be non-negative")
	}
	tierMult, ok := tierMultipliers[attrs.Tier]
	if !ok {
		return 0, errors.New(errors.CodeValidation, "unknown tier "+string(attrs.Tier))
	}
	distPct, ok := districtPct[attrs.District]
	if !ok {
		return 0, errors.New(errors.CodeValidation, "unknown district "+string(attrs.District))
	}

	corner := int64(neutralPct)
	if attrs.IsCornerLot {
		corner = cornerLotPct
	}
	street := int64(neutralPct)
	if attrs.IsMainStreet {
		street = mainStreetPct
	}

	return zoneBasePrice * tierMult * distPct * corner * street / scale, nil
}
