package enums

import "fmt"

// ParcelStatus maps to the parcel_status enum in Postgres.
type ParcelStatus string

const (
	ParcelStatusForSale    ParcelStatus = "for_sale"
	ParcelStatusOwned      ParcelStatus = "owned"
	ParcelStatusNotForSale ParcelStatus = "not_for_sale"
	ParcelStatusDAOOwned   ParcelStatus = "dao_owned"
	ParcelStatusRestricted ParcelStatus = "restricted"
)

var validParcelStatuses = []ParcelStatus{
	ParcelStatusForSale,
	ParcelStatusOwned,
	ParcelStatusNotForSale,
	ParcelStatusDAOOwned,
	ParcelStatusRestricted,
}

// IsValid reports whether the value matches the canonical parcel status enum.
func (s ParcelStatus) IsValid() bool {
	for _, candidate := range validParcelStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseParcelStatus converts the raw string to ParcelStatus.
func ParseParcelStatus(value string) (ParcelStatus, error) {
	for _, candidate := range validParcelStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid parcel status %q", value)
}
