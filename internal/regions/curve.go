package regions

import (
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
)

// allocationPrice returns the price of the next allocation given how many
// have already been granted. Flat ignores the step; linear grows by one step
// per allocation; bonding grows by the square of the allocation count.
func allocationPrice(campaign *models.ExpansionCampaign) (int64, error) {
	n := int64(campaign.Allocated)
	switch campaign.PricingModel {
	case enums.CampaignPricingFlat:
		return campaign.BasePrice, nil
	case enums.CampaignPricingLinear:
		return campaign.BasePrice + campaign.PriceStep*n, nil
	case enums.CampaignPricingBonding:
		return campaign.BasePrice + campaign.PriceStep*n*n, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown campaign pricing model")
	}
}
