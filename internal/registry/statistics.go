package registry

import (
	"strings"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// Statistics aggregates any parcel subset, so it composes with filtering:
// stats over a filtered slice describe exactly that slice.
type Statistics struct {
	Total       int                `json:"total"`
	ForSale     int                `json:"forSale"`
	Owned       int                `json:"owned"`
	DAOOwned    int                `json:"daoOwned"`
	WithHouse   int                `json:"withHouse"`
	WithLicense int                `json:"withLicense"`
	// TotalValue sums each parcel's current price: the listing price when
	// for sale, the computed base price otherwise.
	TotalValue int64              `json:"totalValue"`
	ByZone     map[enums.Zone]int `json:"byZone"`
}

// StatisticsOf computes aggregates over the given subset. A parcel is
// DAO-owned when its status says so or when its owner is the treasury
// wallet; daoWallet may be empty, in which case only the status counts.
func StatisticsOf(parcels []Parcel, daoWallet string) Statistics {
	stats := Statistics{ByZone: make(map[enums.Zone]int)}
	for _, p := range parcels {
		stats.Total++
		switch p.Status {
		case enums.ParcelStatusForSale:
			stats.ForSale++
		case enums.ParcelStatusOwned:
			stats.Owned++
		case enums.ParcelStatusDAOOwned:
			stats.DAOOwned++
		}
		if p.Status != enums.ParcelStatusDAOOwned &&
			daoWallet != "" && p.Owner != nil && strings.EqualFold(*p.Owner, daoWallet) {
			stats.DAOOwned++
		}
		if p.HasHouse {
			stats.WithHouse++
		}
		if p.BusinessLicense != enums.BusinessLicenseNone {
			stats.WithLicense++
		}
		stats.TotalValue += p.CurrentPrice
		stats.ByZone[p.Zone]++
	}
	return stats
}
