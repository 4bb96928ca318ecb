package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arcadialabs/landgrid-backend/api/responses"
	"github.com/arcadialabs/landgrid-backend/api/validators"
	"github.com/arcadialabs/landgrid-backend/internal/registry"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
)

// ParcelGet resolves one parcel by its composite identifier.
func ParcelGet(svc registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registry service unavailable"))
			return
		}

		parcelID := chi.URLParam(r, "parcelID")
		parcel, err := svc.Get(r.Context(), parcelID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcel)
	}
}

// RegionParcels pages through every parcel in a region. Filter parameters
// switch the request onto the filtered, unpaginated path.
func RegionParcels(svc registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registry service unavailable"))
			return
		}

		regionID := chi.URLParam(r, "regionID")

		filters, filtered, err := parseParcelFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if filtered {
			parcels, err := svc.Filter(r.Context(), registry.FilterInput{RegionID: regionID, Filters: filters})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, map[string]any{"parcels": parcels, "totalItems": len(parcels)})
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), registry.ListInput{
			RegionID: regionID,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// RegionStatistics aggregates counts and value over a region, honouring the
// same filter parameters as the parcel listing.
func RegionStatistics(svc registry.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registry service unavailable"))
			return
		}

		regionID := chi.URLParam(r, "regionID")
		filters, _, err := parseParcelFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Statistics(r.Context(), registry.StatisticsInput{RegionID: regionID, Filters: filters})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func parseParcelFilters(r *http.Request) (registry.Filters, bool, error) {
	var filters registry.Filters
	filtered := false
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("zone")); raw != "" {
		zone, err := enums.ParseZone(raw)
		if err != nil {
			return filters, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid zone filter")
		}
		filters.Zone = &zone
		filtered = true
	}
	if raw := strings.TrimSpace(q.Get("district")); raw != "" {
		district, err := enums.ParseDistrict(raw)
		if err != nil {
			return filters, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid district filter")
		}
		filters.District = &district
		filtered = true
	}
	if raw := strings.TrimSpace(q.Get("tier")); raw != "" {
		tier, err := enums.ParseTier(raw)
		if err != nil {
			return filters, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier filter")
		}
		filters.Tier = &tier
		filtered = true
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseParcelStatus(raw)
		if err != nil {
			return filters, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
		filtered = true
	}
	if raw := strings.TrimSpace(q.Get("owner")); raw != "" {
		filters.Owner = &raw
		filtered = true
	}
	if raw := strings.TrimSpace(q.Get("search")); raw != "" {
		filters.Search = raw
		filtered = true
	}
	if raw := strings.TrimSpace(q.Get("hasHouse")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, false, pkgerrors.New(pkgerrors.CodeValidation, "hasHouse must be a boolean").WithDetails(map[string]any{"field": "hasHouse"})
		}
		filters.HasHouse = &value
		filtered = true
	}
	if raw := strings.TrimSpace(q.Get("hasLicense")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, false, pkgerrors.New(pkgerrors.CodeValidation, "hasLicense must be a boolean").WithDetails(map[string]any{"field": "hasLicense"})
		}
		filters.HasLicense = &value
		filtered = true
	}

	return filters, filtered, nil
}
