package enums

import "fmt"

// District is the economic theme assigned to a coordinate. Quadrant
// districts cover the interior; the perimeter, inner ring, and central
// intersection carry the overlay districts.
type District string

const (
	DistrictGaming      District = "gaming"
	DistrictBusiness    District = "business"
	DistrictSocial      District = "social"
	DistrictDefi        District = "defi"
	DistrictResidential District = "residential"
	DistrictDAO         District = "dao"
	DistrictPublic      District = "public"
)

var validDistricts = []District{
	DistrictGaming,
	DistrictBusiness,
	DistrictSocial,
	DistrictDefi,
	DistrictResidential,
	DistrictDAO,
	DistrictPublic,
}

// IsValid reports whether the value matches the canonical district enum.
func (d District) IsValid() bool {
	for _, candidate := range validDistricts {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDistrict converts the raw string to District.
func ParseDistrict(value string) (District, error) {
	for _, candidate := range validDistricts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid district %q", value)
}
