package deals

import "github.com/autolenis/autolenis-backend/pkg/enums"

// allowedTransitions is the closing-flow state machine. CANCELLED is reachable
// from every non-terminal status and is handled separately in CanTransition;
// admin overrides bypass this table entirely and are flagged on the history row.
var allowedTransitions = map[enums.DealStatus][]enums.DealStatus{
	enums.DealStatusPendingFinancing: {enums.DealStatusFinancingChosen},
	enums.DealStatusFinancingChosen:  {enums.DealStatusInsuranceReady, enums.DealStatusContractPending},
	enums.DealStatusInsuranceReady:   {enums.DealStatusContractPending},
	enums.DealStatusContractPending:  {enums.DealStatusContractPassed},
	enums.DealStatusContractPassed:   {enums.DealStatusSigned},
	enums.DealStatusSigned:           {enums.DealStatusPickupScheduled},
	enums.DealStatusPickupScheduled:  {enums.DealStatusCompleted},
}

// CanTransition reports whether the closing flow permits moving from one
// status to another.
func CanTransition(from, to enums.DealStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == enums.DealStatusCancelled {
		return true
	}
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
