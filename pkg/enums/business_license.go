package enums

import "fmt"

// BusinessLicense is the commercial license attached to an owned parcel.
type BusinessLicense string

const (
	BusinessLicenseNone          BusinessLicense = "none"
	BusinessLicenseRetail        BusinessLicense = "retail"
	BusinessLicenseEntertainment BusinessLicense = "entertainment"
	BusinessLicenseServices      BusinessLicense = "services"
	BusinessLicenseGaming        BusinessLicense = "gaming"
)

var validBusinessLicenses = []BusinessLicense{
	BusinessLicenseNone,
	BusinessLicenseRetail,
	BusinessLicenseEntertainment,
	BusinessLicenseServices,
	BusinessLicenseGaming,
}

// IsValid reports whether the value matches the canonical license enum.
func (b BusinessLicense) IsValid() bool {
	for _, candidate := range validBusinessLicenses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBusinessLicense converts the raw string to BusinessLicense.
func ParseBusinessLicense(value string) (BusinessLicense, error) {
	for _, candidate := range validBusinessLicenses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid business license %q", value)
}
