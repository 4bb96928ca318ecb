package enums

import "fmt"

// RegionStatus tracks the trading lifecycle of a region. Retired regions
// stay addressable for historical queries.
type RegionStatus string

const (
	RegionStatusActive  RegionStatus = "active"
	RegionStatusMinting RegionStatus = "minting"
	RegionStatusRetired RegionStatus = "retired"
)

var validRegionStatuses = []RegionStatus{
	RegionStatusActive,
	RegionStatusMinting,
	RegionStatusRetired,
}

// IsValid reports whether the value matches the canonical region status enum.
func (s RegionStatus) IsValid() bool {
	for _, candidate := range validRegionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRegionStatus converts the raw string to RegionStatus.
func ParseRegionStatus(value string) (RegionStatus, error) {
	for _, candidate := range validRegionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid region status %q", value)
}
