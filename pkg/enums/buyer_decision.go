package enums

// BuyerDecision records how a buyer reacted to an offer or ranked option.
type BuyerDecision string

const (
	BuyerDecisionAccepted BuyerDecision = "accepted"
	BuyerDecisionDeclined BuyerDecision = "declined"
)

// IsValid reports whether the value is a known BuyerDecision.
func (b BuyerDecision) IsValid() bool {
	return b == BuyerDecisionAccepted || b == BuyerDecisionDeclined
}
