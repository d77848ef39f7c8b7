package deals

import (
	"testing"

	"github.com/autolenis/autolenis-backend/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from enums.DealStatus
		to   enums.DealStatus
		want bool
	}{
		{enums.DealStatusPendingFinancing, enums.DealStatusFinancingChosen, true},
		{enums.DealStatusFinancingChosen, enums.DealStatusInsuranceReady, true},
		{enums.DealStatusFinancingChosen, enums.DealStatusContractPending, true},
		{enums.DealStatusInsuranceReady, enums.DealStatusContractPending, true},
		{enums.DealStatusContractPending, enums.DealStatusContractPassed, true},
		{enums.DealStatusContractPassed, enums.DealStatusSigned, true},
		{enums.DealStatusSigned, enums.DealStatusPickupScheduled, true},
		{enums.DealStatusPickupScheduled, enums.DealStatusCompleted, true},

		{enums.DealStatusPendingFinancing, enums.DealStatusContractPending, false},
		{enums.DealStatusPendingFinancing, enums.DealStatusSigned, false},
		{enums.DealStatusContractPassed, enums.DealStatusContractPending, false},
		{enums.DealStatusSigned, enums.DealStatusCompleted, false},

		{enums.DealStatusPendingFinancing, enums.DealStatusCancelled, true},
		{enums.DealStatusSigned, enums.DealStatusCancelled, true},
		{enums.DealStatusPickupScheduled, enums.DealStatusCancelled, true},
		{enums.DealStatusCompleted, enums.DealStatusCancelled, false},
		{enums.DealStatusCancelled, enums.DealStatusCancelled, false},
		{enums.DealStatusCancelled, enums.DealStatusPendingFinancing, false},
		{enums.DealStatusCompleted, enums.DealStatusPendingFinancing, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %t, want %t", tc.from, tc.to, got, tc.want)
		}
	}
}
