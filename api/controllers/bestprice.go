package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/api/responses"
	"github.com/autolenis/autolenis-backend/api/validators"
	"github.com/autolenis/autolenis-backend/internal/bestprice"
	"github.com/autolenis/autolenis-backend/pkg/logger"
)

// ComputeBestPrice triggers a full re-ranking for a closed auction.
func ComputeBestPrice(svc bestprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		options, err := svc.ComputeBestPrice(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"options": options})
	}
}

// GetBestPrice returns the persisted rankings grouped per category.
func GetBestPrice(svc bestprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		grouped, err := svc.GetBestPrice(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grouped)
	}
}

// DeclineOption declines one ranked recommendation and returns the next one
// in the same category.
func DeclineOption(svc bestprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		optionID, err := uuidParam(r, "optionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		buyerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeclineOption(r.Context(), bestprice.DeclineOptionInput{
			AuctionID: auctionID,
			OptionID:  optionID,
			BuyerID:   buyerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeclineOffer declines by raw offer id for surfaces that show offers rather
// than ranked options.
func DeclineOffer(svc bestprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := uuidParam(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		buyerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeclineOffer(r.Context(), bestprice.DeclineOfferInput{
			AuctionID: auctionID,
			OfferID:   offerID,
			BuyerID:   buyerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type selectDealRequest struct {
	OptionID          *uuid.UUID `json:"option_id,omitempty"`
	OfferID           *uuid.UUID `json:"offer_id,omitempty"`
	FinancingOptionID *uuid.UUID `json:"financing_option_id,omitempty"`
}

// SelectDeal accepts an offer and opens the deal.
func SelectDeal(svc bestprice.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		buyerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body selectDealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.SelectDeal(r.Context(), bestprice.SelectDealInput{
			AuctionID:         auctionID,
			BuyerID:           buyerID,
			OptionID:          body.OptionID,
			OfferID:           body.OfferID,
			FinancingOptionID: body.FinancingOptionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}
