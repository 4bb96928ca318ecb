package enums

import "fmt"

// CampaignPricingModel selects the price curve of an expansion campaign.
type CampaignPricingModel string

const (
	CampaignPricingFlat    CampaignPricingModel = "flat"
	CampaignPricingLinear  CampaignPricingModel = "linear"
	CampaignPricingBonding CampaignPricingModel = "bonding"
)

var validCampaignPricingModels = []CampaignPricingModel{
	CampaignPricingFlat,
	CampaignPricingLinear,
	CampaignPricingBonding,
}

// IsValid reports whether the value matches the canonical pricing model enum.
func (m CampaignPricingModel) IsValid() bool {
	for _, candidate := range validCampaignPricingModels {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseCampaignPricingModel converts the raw string to CampaignPricingModel.
func ParseCampaignPricingModel(value string) (CampaignPricingModel, error) {
	for _, candidate := range validCampaignPricingModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign pricing model %q", value)
}

// CampaignStatus tracks whether a campaign still gates allocations.
type CampaignStatus string

const (
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusClosed CampaignStatus = "closed"
)

var validCampaignStatuses = []CampaignStatus{
	CampaignStatusActive,
	CampaignStatusClosed,
}

// IsValid reports whether the value matches the canonical campaign status enum.
func (s CampaignStatus) IsValid() bool {
	for _, candidate := range validCampaignStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCampaignStatus converts the raw string to CampaignStatus.
func ParseCampaignStatus(value string) (CampaignStatus, error) {
	for _, candidate := range validCampaignStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign status %q", value)
}
