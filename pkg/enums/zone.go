package enums

import "fmt"

// Zone is the coarse economic classification that carries a base price.
// Each district belongs to exactly one zone.
type Zone string

const (
	ZoneCommerce Zone = "commerce"
	ZoneLeisure  Zone = "leisure"
	ZoneHousing  Zone = "housing"
	ZoneCivic    Zone = "civic"
)

var validZones = []Zone{
	ZoneCommerce,
	ZoneLeisure,
	ZoneHousing,
	ZoneCivic,
}

// IsValid reports whether the value matches the canonical zone enum.
func (z Zone) IsValid() bool {
	for _, candidate := range validZones {
		if candidate == z {
			return true
		}
	}
	return false
}

// ParseZone converts the raw string to Zone.
func ParseZone(value string) (Zone, error) {
	for _, candidate := range validZones {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid zone %q", value)
}

// ZoneForDistrict maps a district to its zone.
func ZoneForDistrict(d District) Zone {
	switch d {
	case DistrictBusiness, DistrictDefi:
		return ZoneCommerce
	case DistrictGaming, DistrictSocial:
		return ZoneLeisure
	case DistrictResidential:
		return ZoneHousing
	default:
		return ZoneCivic
	}
}
