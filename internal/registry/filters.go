package registry

import (
	"strings"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// Filters is a set of independent predicates combined with AND. Nil or
// zero-valued fields are inactive.
type Filters struct {
	Zone       *enums.Zone
	District   *enums.District
	Tier       *enums.Tier
	Status     *enums.ParcelStatus
	Owner      *string
	Search     string
	HasHouse   *bool
	HasLicense *bool
}

func (f Filters) matches(p Parcel) bool {
	if f.Zone != nil && p.Zone != *f.Zone {
		return false
	}
	if f.District != nil && p.District != *f.District {
		return false
	}
	if f.Tier != nil && p.Tier != *f.Tier {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.Owner != nil {
		if p.Owner == nil || !strings.EqualFold(*p.Owner, *f.Owner) {
			return false
		}
	}
	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	if f.HasHouse != nil && p.HasHouse != *f.HasHouse {
		return false
	}
	if f.HasLicense != nil {
		licensed := p.BusinessLicense != enums.BusinessLicenseNone
		if licensed != *f.HasLicense {
			return false
		}
	}
	return true
}

func matchesSearch(p Parcel, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.ParcelID), term) {
		return true
	}
	if p.Owner != nil && strings.Contains(strings.ToLower(*p.Owner), term) {
		return true
	}
	return strings.Contains(strings.ToLower(string(p.District)), term)
}

// Apply filters a parcel slice, preserving order.
func (f Filters) Apply(parcels []Parcel) []Parcel {
	out := make([]Parcel, 0, len(parcels))
	for _, p := range parcels {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}
