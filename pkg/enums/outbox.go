package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateAuction      OutboxAggregateType = "auction"
	AggregateOffer        OutboxAggregateType = "offer"
	AggregateRankedOption OutboxAggregateType = "ranked_option"
	AggregateDeal         OutboxAggregateType = "deal"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateAuction,
	AggregateOffer,
	AggregateRankedOption,
	AggregateDeal,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOfferSubmitted          OutboxEventType = "offer_submitted"
	EventOfferWithdrawn          OutboxEventType = "offer_withdrawn"
	EventOfferValidityOverridden OutboxEventType = "offer_validity_overridden"
	EventAuctionClosed           OutboxEventType = "auction_closed"
	EventBestPriceComputed       OutboxEventType = "bestprice_computed"
	EventOptionDeclined          OutboxEventType = "option_declined"
	EventDealCreated             OutboxEventType = "deal_created"
	EventDealStatusChanged       OutboxEventType = "deal_status_changed"
	EventDealCancelled           OutboxEventType = "deal_cancelled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOfferSubmitted,
	EventOfferWithdrawn,
	EventOfferValidityOverridden,
	EventAuctionClosed,
	EventBestPriceComputed,
	EventOptionDeclined,
	EventDealCreated,
	EventDealStatusChanged,
	EventDealCancelled,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
