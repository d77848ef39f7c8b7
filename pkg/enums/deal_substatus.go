package enums

import "fmt"

// PaymentType is the buyer's chosen way to pay for the vehicle.
type PaymentType string

const (
	PaymentTypeNotSelected         PaymentType = "not_selected"
	PaymentTypeCash                PaymentType = "cash"
	PaymentTypeFinanced            PaymentType = "financed"
	PaymentTypeExternalPreApproval PaymentType = "external_preapproval"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeNotSelected,
	PaymentTypeCash,
	PaymentTypeFinanced,
	PaymentTypeExternalPreApproval,
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsChosen reports whether the buyer has recorded a payment type.
func (p PaymentType) IsChosen() bool {
	return p.IsValid() && p != PaymentTypeNotSelected
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}

// ConciergeFeeStatus tracks settlement of the platform's concierge fee.
type ConciergeFeeStatus string

const (
	ConciergeFeePending        ConciergeFeeStatus = "pending"
	ConciergeFeePaid           ConciergeFeeStatus = "paid"
	ConciergeFeeIncludedInLoan ConciergeFeeStatus = "included_in_loan"
)

var validConciergeFeeStatuses = []ConciergeFeeStatus{
	ConciergeFeePending,
	ConciergeFeePaid,
	ConciergeFeeIncludedInLoan,
}

// IsValid reports whether the value is a known ConciergeFeeStatus.
func (c ConciergeFeeStatus) IsValid() bool {
	for _, candidate := range validConciergeFeeStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the fee sub-process has finished.
func (c ConciergeFeeStatus) IsTerminal() bool {
	return c == ConciergeFeePaid || c == ConciergeFeeIncludedInLoan
}

// ParseConciergeFeeStatus converts raw input into a ConciergeFeeStatus.
func ParseConciergeFeeStatus(value string) (ConciergeFeeStatus, error) {
	for _, candidate := range validConciergeFeeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid concierge fee status %q", value)
}

// InsuranceStatus tracks proof of insurance for the deal.
type InsuranceStatus string

const (
	InsuranceNotSelected           InsuranceStatus = "not_selected"
	InsuranceSelectedAutolenis     InsuranceStatus = "selected_autolenis"
	InsuranceExternalProofUploaded InsuranceStatus = "external_proof_uploaded"
	InsuranceBound                 InsuranceStatus = "bound"
)

var validInsuranceStatuses = []InsuranceStatus{
	InsuranceNotSelected,
	InsuranceSelectedAutolenis,
	InsuranceExternalProofUploaded,
	InsuranceBound,
}

// IsValid reports whether the value is a known InsuranceStatus.
func (i InsuranceStatus) IsValid() bool {
	for _, candidate := range validInsuranceStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the insurance sub-process has finished.
func (i InsuranceStatus) IsTerminal() bool {
	switch i {
	case InsuranceSelectedAutolenis, InsuranceExternalProofUploaded, InsuranceBound:
		return true
	default:
		return false
	}
}

// ParseInsuranceStatus converts raw input into an InsuranceStatus.
func ParseInsuranceStatus(value string) (InsuranceStatus, error) {
	for _, candidate := range validInsuranceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid insurance status %q", value)
}
