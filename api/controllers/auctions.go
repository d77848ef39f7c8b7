package controllers

import (
	"net/http"

	"github.com/autolenis/autolenis-backend/api/responses"
	"github.com/autolenis/autolenis-backend/internal/auctions"
	"github.com/autolenis/autolenis-backend/pkg/logger"
)

// GetAuction returns one auction by id.
func GetAuction(svc auctions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		auction, err := svc.GetAuction(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, auction)
	}
}

// CloseAuction flips an open auction past its deadline. The cron sweeper does
// this automatically; the endpoint lets admins close early.
func CloseAuction(svc auctions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuidParam(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		auction, err := svc.CloseAuction(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, auction)
	}
}
