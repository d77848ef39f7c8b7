package enums

import "fmt"

// AuctionStatus tracks the lifecycle of a buyer auction. Transitions are
// monotonic: a closed auction never reopens.
type AuctionStatus string

const (
	AuctionStatusOpen      AuctionStatus = "open"
	AuctionStatusClosed    AuctionStatus = "closed"
	AuctionStatusNoOffers  AuctionStatus = "no_offers"
	AuctionStatusCompleted AuctionStatus = "completed"
)

var validAuctionStatuses = []AuctionStatus{
	AuctionStatusOpen,
	AuctionStatusClosed,
	AuctionStatusNoOffers,
	AuctionStatusCompleted,
}

// String implements fmt.Stringer.
func (a AuctionStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuctionStatus.
func (a AuctionStatus) IsValid() bool {
	for _, candidate := range validAuctionStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsRankable reports whether the auction can feed the best-price ranker.
func (a AuctionStatus) IsRankable() bool {
	return a == AuctionStatusClosed || a == AuctionStatusNoOffers
}

// ParseAuctionStatus converts raw input into an AuctionStatus.
func ParseAuctionStatus(value string) (AuctionStatus, error) {
	for _, candidate := range validAuctionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auction status %q", value)
}
