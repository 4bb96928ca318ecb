package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arcadialabs/landgrid-backend/api/middleware"
	"github.com/arcadialabs/landgrid-backend/api/responses"
	"github.com/arcadialabs/landgrid-backend/api/validators"
	"github.com/arcadialabs/landgrid-backend/internal/regions"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
)

type worldCreateRequest struct {
	WorldID             string `json:"world_id" validate:"required,min=2,max=64"`
	Name                string `json:"name" validate:"required,min=2,max=128"`
	Owner               string `json:"owner" validate:"required"`
	OwnerType           string `json:"owner_type" validate:"required"`
	RoyaltyEcosystemPct string `json:"royalty_ecosystem_pct" validate:"required"`
	RoyaltyOwnerPct     string `json:"royalty_owner_pct" validate:"required"`
	RoyaltyCreatorPct   string `json:"royalty_creator_pct" validate:"required"`
}

type regionCreateRequest struct {
	WorldID        string          `json:"world_id" validate:"required"`
	RegionID       string          `json:"region_id" validate:"required,min=2,max=64"`
	Name           string          `json:"name" validate:"required,min=2,max=128"`
	Width          int             `json:"width" validate:"required,min=4"`
	Height         int             `json:"height" validate:"required,min=4"`
	FounderPlots   int             `json:"founder_plots"`
	Creator        *string         `json:"creator"`
	ZoneBasePrices json.RawMessage `json:"zone_base_prices" validate:"required"`
}

type campaignOpenRequest struct {
	RegionID     string    `json:"region_id" validate:"required"`
	PricingModel string    `json:"pricing_model" validate:"required"`
	MaxPerWallet int       `json:"max_per_wallet"`
	BasePrice    int64     `json:"base_price" validate:"required,gt=0"`
	PriceStep    int64     `json:"price_step"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
}

type allocateRequest struct {
	GridIndex *int `json:"grid_index" validate:"required"`
}

// WorldCreate registers a new world shell.
func WorldCreate(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		var body worldCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ownerType, err := enums.ParseWorldOwnerType(body.OwnerType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner type"))
			return
		}

		world, err := svc.CreateWorld(r.Context(), regions.CreateWorldInput{
			WorldID:             body.WorldID,
			Name:                body.Name,
			Owner:               body.Owner,
			OwnerType:           ownerType,
			RoyaltyEcosystemPct: body.RoyaltyEcosystemPct,
			RoyaltyOwnerPct:     body.RoyaltyOwnerPct,
			RoyaltyCreatorPct:   body.RoyaltyCreatorPct,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, worldViewOf(world))
	}
}

// WorldGet fetches one world by identifier.
func WorldGet(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		world, err := svc.GetWorld(r.Context(), chi.URLParam(r, "worldID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, worldViewOf(world))
	}
}

// RegionCreate places a region on the world's spiral and opens its grid.
func RegionCreate(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		var body regionCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		region, err := svc.CreateRegion(r.Context(), regions.CreateRegionInput{
			WorldID:        body.WorldID,
			RegionID:       body.RegionID,
			Name:           body.Name,
			Width:          body.Width,
			Height:         body.Height,
			FounderPlots:   body.FounderPlots,
			Creator:        body.Creator,
			ZoneBasePrices: body.ZoneBasePrices,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, regionViewOf(region))
	}
}

// RegionGet fetches one region by identifier.
func RegionGet(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		region, err := svc.GetRegion(r.Context(), chi.URLParam(r, "regionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, regionViewOf(region))
	}
}

// RegionList lists the regions of a world.
func RegionList(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		list, err := svc.ListRegions(r.Context(), chi.URLParam(r, "worldID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := regionViewsOf(list)
		responses.WriteSuccess(w, map[string]any{"regions": views, "totalItems": len(views)})
	}
}

// CampaignOpen starts an expansion campaign and flips the region to minting.
func CampaignOpen(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		var body campaignOpenRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := enums.ParseCampaignPricingModel(body.PricingModel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pricing model"))
			return
		}

		campaign, err := svc.OpenCampaign(r.Context(), regions.OpenCampaignInput{
			RegionID:     body.RegionID,
			PricingModel: model,
			MaxPerWallet: body.MaxPerWallet,
			BasePrice:    body.BasePrice,
			PriceStep:    body.PriceStep,
			StartsAt:     body.StartsAt,
			EndsAt:       body.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, campaignViewOf(campaign))
	}
}

// CampaignAllocate grants one parcel to the caller at the curve price.
func CampaignAllocate(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid campaign id"))
			return
		}

		var body allocateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Allocate(r.Context(), regions.AllocateInput{
			CampaignID: campaignID,
			Wallet:     wallet,
			GridIndex:  *body.GridIndex,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, allocationViewOf(result))
	}
}

// CampaignClose ends a campaign and reopens its region for trading.
func CampaignClose(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "regions service unavailable"))
			return
		}

		campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid campaign id"))
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"campaign_id": campaignID.String(),
				"wallet":      middleware.WalletFromContext(r.Context()),
			})
			logg.Info(ctx, "campaign.close.requested")
		}

		campaign, err := svc.CloseCampaign(r.Context(), campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, campaignViewOf(campaign))
	}
}
