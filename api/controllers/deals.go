package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/api/responses"
	"github.com/autolenis/autolenis-backend/api/validators"
	"github.com/autolenis/autolenis-backend/internal/deals"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/logger"
)

// GetDeal returns one deal with its status history.
func GetDeal(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := uuidParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deal, err := svc.GetDeal(r.Context(), dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// ListDeals returns the authenticated buyer's deals.
func ListDeals(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListDeals(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deals": list})
	}
}

type choosePaymentRequest struct {
	PaymentType       string     `json:"payment_type" validate:"required"`
	FinancingOptionID *uuid.UUID `json:"financing_option_id,omitempty"`
}

// ChoosePayment sets the buyer's payment path on a pending deal.
func ChoosePayment(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, actor, err := dealActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body choosePaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.ChoosePayment(r.Context(), deals.ChoosePaymentInput{
			DealID:            dealID,
			PaymentType:       enums.PaymentType(body.PaymentType),
			FinancingOptionID: body.FinancingOptionID,
			Actor:             actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

type substatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateConciergeFee records concierge fee progress on a deal.
func UpdateConciergeFee(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, actor, err := dealActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body substatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.UpdateConciergeFee(r.Context(), deals.UpdateConciergeFeeInput{
			DealID: dealID,
			Status: enums.ConciergeFeeStatus(body.Status),
			Actor:  actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// UpdateInsurance records insurance progress on a deal.
func UpdateInsurance(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, actor, err := dealActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body substatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.UpdateInsurance(r.Context(), deals.UpdateInsuranceInput{
			DealID: dealID,
			Status: enums.InsuranceStatus(body.Status),
			Actor:  actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

type dealTransition func(deals.Service) func(r *http.Request, dealID uuid.UUID, actor deals.Actor) (any, error)

// transitionHandler shares the parse-then-call shape of the four explicit
// milestone endpoints.
func transitionHandler(svc deals.Service, logg *logger.Logger, call dealTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, actor, err := dealActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deal, err := call(svc)(r, dealID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// MarkContractPassed records a successful contract review.
func MarkContractPassed(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s deals.Service) func(*http.Request, uuid.UUID, deals.Actor) (any, error) {
		return func(r *http.Request, dealID uuid.UUID, actor deals.Actor) (any, error) {
			return s.MarkContractPassed(r.Context(), dealID, actor)
		}
	})
}

// MarkSigned records the signed contract.
func MarkSigned(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s deals.Service) func(*http.Request, uuid.UUID, deals.Actor) (any, error) {
		return func(r *http.Request, dealID uuid.UUID, actor deals.Actor) (any, error) {
			return s.MarkSigned(r.Context(), dealID, actor)
		}
	})
}

// SchedulePickup records the pickup appointment.
func SchedulePickup(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s deals.Service) func(*http.Request, uuid.UUID, deals.Actor) (any, error) {
		return func(r *http.Request, dealID uuid.UUID, actor deals.Actor) (any, error) {
			return s.SchedulePickup(r.Context(), dealID, actor)
		}
	})
}

// CompleteDeal closes out the deal and marks the vehicle sold.
func CompleteDeal(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s deals.Service) func(*http.Request, uuid.UUID, deals.Actor) (any, error) {
		return func(r *http.Request, dealID uuid.UUID, actor deals.Actor) (any, error) {
			return s.CompleteDeal(r.Context(), dealID, actor)
		}
	})
}

type cancelDealRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CancelDeal terminates a deal and releases the vehicle.
func CancelDeal(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, actor, err := dealActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelDealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Cancel(r.Context(), deals.CancelInput{
			DealID: dealID,
			Reason: validators.SanitizeString(body.Reason, 500),
			Actor:  actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

type overrideStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"required"`
}

// OverrideDealStatus is the admin-only jump outside the transition table.
func OverrideDealStatus(svc deals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealID, err := uuidParam(r, "dealId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body overrideStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.DealStatus(body.Status)
		if !status.IsValid() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown deal status"))
			return
		}

		deal, err := svc.AdminOverrideStatus(r.Context(), deals.OverrideStatusInput{
			DealID:   dealID,
			ToStatus: status,
			AdminID:  adminID,
			Note:     validators.SanitizeString(body.Note, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

func dealActor(r *http.Request) (uuid.UUID, deals.Actor, error) {
	dealID, err := uuidParam(r, "dealId")
	if err != nil {
		return uuid.Nil, deals.Actor{}, err
	}
	actorID, role, err := actorFromContext(r)
	if err != nil {
		return uuid.Nil, deals.Actor{}, err
	}
	return dealID, deals.Actor{ID: actorID, Role: role}, nil
}
