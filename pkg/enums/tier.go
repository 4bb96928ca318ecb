package enums

import "fmt"

// Tier is the distance-based parcel classification measured from the
// geometric center of a region.
type Tier string

const (
	TierCore     Tier = "core"
	TierRing     Tier = "ring"
	TierFrontier Tier = "frontier"
)

var validTiers = []Tier{
	TierCore,
	TierRing,
	TierFrontier,
}

// IsValid reports whether the value matches the canonical tier enum.
func (t Tier) IsValid() bool {
	for _, candidate := range validTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTier converts the raw string to Tier.
func ParseTier(value string) (Tier, error) {
	for _, candidate := range validTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier %q", value)
}
