package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/api/responses"
	"github.com/autolenis/autolenis-backend/api/validators"
	"github.com/autolenis/autolenis-backend/internal/offers"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/logger"
	"github.com/autolenis/autolenis-backend/pkg/pagination"
)

type submitOfferRequest struct {
	InventoryItemID  uuid.UUID                     `json:"inventory_item_id" validate:"required"`
	CashOtdCents     int64                         `json:"cash_otd_cents" validate:"required"`
	FeeBreakdown     dbtypes.FeeBreakdown          `json:"fee_breakdown"`
	FinancingOptions []offers.FinancingOptionInput `json:"financing_options" validate:"dive"`
	Notes            *string                       `json:"notes,omitempty"`
}

// SubmitOffer accepts a dealer's offer for an auction they were invited to.
func SubmitOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dealerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notes := body.Notes
		if notes != nil {
			clean := validators.SanitizeString(*notes, 2000)
			notes = &clean
		}

		result, err := svc.SubmitOffer(r.Context(), offers.SubmitOfferInput{
			AuctionID:        auctionID,
			DealerID:         dealerID,
			InventoryItemID:  body.InventoryItemID,
			CashOtdCents:     body.CashOtdCents,
			FeeBreakdown:     body.FeeBreakdown,
			FinancingOptions: body.FinancingOptions,
			Notes:            notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"offer":  result.Offer,
			"issues": result.Issues,
		})
	}
}

// WithdrawOffer pulls a dealer's own offer while the auction is still open.
func WithdrawOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offerID, err := uuidParam(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dealerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.WithdrawOffer(r.Context(), offers.WithdrawOfferInput{
			OfferID:  offerID,
			DealerID: dealerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

type overrideValidityRequest struct {
	IsValid bool   `json:"is_valid"`
	Note    string `json:"note" validate:"required"`
}

// OverrideOfferValidity is the admin escape hatch for validator mistakes.
func OverrideOfferValidity(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offerID, err := uuidParam(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body overrideValidityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.OverrideValidity(r.Context(), offers.OverrideValidityInput{
			OfferID: offerID,
			IsValid: body.IsValid,
			AdminID: adminID,
			Note:    validators.SanitizeString(body.Note, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// ListOffers returns a cursor page of offers for one auction.
func ListOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		list, err := svc.ListOffers(r.Context(), auctionID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"offers":      list.Offers,
			"next_cursor": list.NextCursor,
		})
	}
}

// GetOffer returns one offer by id.
func GetOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offerID, err := uuidParam(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offer, err := svc.GetOffer(r.Context(), offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}
