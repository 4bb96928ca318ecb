package enums

import "fmt"

// WorldOwnerType designates who governs a world.
type WorldOwnerType string

const (
	WorldOwnerEcosystem WorldOwnerType = "ecosystem"
	WorldOwnerPartner   WorldOwnerType = "partner"
	WorldOwnerCreator   WorldOwnerType = "creator"
)

var validWorldOwnerTypes = []WorldOwnerType{
	WorldOwnerEcosystem,
	WorldOwnerPartner,
	WorldOwnerCreator,
}

// IsValid reports whether the value matches the canonical owner type enum.
func (w WorldOwnerType) IsValid() bool {
	for _, candidate := range validWorldOwnerTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWorldOwnerType converts the raw string to WorldOwnerType.
func ParseWorldOwnerType(value string) (WorldOwnerType, error) {
	for _, candidate := range validWorldOwnerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid world owner type %q", value)
}
