package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arcadialabs/landgrid-backend/api/middleware"
	"github.com/arcadialabs/landgrid-backend/api/responses"
	"github.com/arcadialabs/landgrid-backend/api/validators"
	"github.com/arcadialabs/landgrid-backend/internal/ledger"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
)

// A never-sold parcel can price at zero, so the offer bound is gte, not gt.
type purchaseRequest struct {
	OfferedPrice int64 `json:"offered_price" validate:"gte=0"`
}

type listForSaleRequest struct {
	Price int64 `json:"price" validate:"required,gt=0"`
}

type licenseRequest struct {
	License string `json:"license" validate:"required"`
}

// Zero-amount revenue is a valid heartbeat record, only negatives are out.
type revenueRequest struct {
	Amount int64 `json:"amount" validate:"gte=0"`
}

func callerWallet(r *http.Request) (string, error) {
	wallet := middleware.WalletFromContext(r.Context())
	if wallet == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "wallet missing from session")
	}
	return wallet, nil
}

// ParcelPurchase buys a parcel at its current price, claiming it when it has
// never been owned.
func ParcelPurchase(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body purchaseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Purchase(r.Context(), ledger.PurchaseInput{
			ParcelID:     chi.URLParam(r, "parcelID"),
			Buyer:        wallet,
			OfferedPrice: body.OfferedPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}

// ParcelListForSale marks an owned parcel for sale at the given price.
func ParcelListForSale(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body listForSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.ListForSale(r.Context(), ledger.ListForSaleInput{
			ParcelID: chi.URLParam(r, "parcelID"),
			Wallet:   wallet,
			Price:    body.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}

// ParcelDelist withdraws a parcel from the resale market.
func ParcelDelist(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Delist(r.Context(), ledger.DelistInput{
			ParcelID: chi.URLParam(r, "parcelID"),
			Wallet:   wallet,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}

// ParcelBuildHouse records a house on an owned parcel.
func ParcelBuildHouse(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.BuildHouse(r.Context(), ledger.BuildHouseInput{
			ParcelID: chi.URLParam(r, "parcelID"),
			Wallet:   wallet,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}

// ParcelPurchaseLicense attaches a business license to an owned parcel.
func ParcelPurchaseLicense(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body licenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		license, err := enums.ParseBusinessLicense(body.License)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid license"))
			return
		}

		state, err := svc.PurchaseLicense(r.Context(), ledger.PurchaseLicenseInput{
			ParcelID: chi.URLParam(r, "parcelID"),
			Wallet:   wallet,
			License:  license,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}

// ParcelRemoveLicense drops the business license from an owned parcel.
func ParcelRemoveLicense(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.RemoveLicense(r.Context(), ledger.RemoveLicenseInput{
			ParcelID: chi.URLParam(r, "parcelID"),
			Wallet:   wallet,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}

// ParcelRecordRevenue adds business revenue to a licensed parcel.
func ParcelRecordRevenue(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		wallet, err := callerWallet(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body revenueRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.RecordRevenue(r.Context(), ledger.RecordRevenueInput{
			ParcelID: chi.URLParam(r, "parcelID"),
			Wallet:   wallet,
			Amount:   body.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}

// ParcelOwnershipHistory lists ownership transfers, most recent first.
func ParcelOwnershipHistory(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		transfers, err := svc.OwnershipHistory(r.Context(), chi.URLParam(r, "parcelID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := transferViewsOf(transfers)
		responses.WriteSuccess(w, map[string]any{"transfers": views, "totalItems": len(views)})
	}
}

// WalletParcels lists every parcel a wallet holds inside one region,
// straight from the ledger's owner index.
func WalletParcels(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		states, err := svc.OwnerParcels(r.Context(), chi.URLParam(r, "regionID"), chi.URLParam(r, "wallet"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]*parcelStateView, 0, len(states))
		for i := range states {
			views = append(views, parcelStateViewOf(&states[i]))
		}
		responses.WriteSuccess(w, map[string]any{"parcels": views, "totalItems": len(views)})
	}
}

// ParcelReconcile forces a resync of one parcel from the ledger record.
func ParcelReconcile(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		state, err := svc.Reconcile(r.Context(), chi.URLParam(r, "parcelID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, parcelStateViewOf(state))
	}
}
