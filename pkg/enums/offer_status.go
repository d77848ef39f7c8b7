package enums

// OfferStatus distinguishes live offers from withdrawn ones. A withdrawn
// offer frees the dealer's exactly-once submission slot for the auction.
type OfferStatus string

const (
	OfferStatusActive    OfferStatus = "active"
	OfferStatusWithdrawn OfferStatus = "withdrawn"
)

// IsValid reports whether the value is a known OfferStatus.
func (o OfferStatus) IsValid() bool {
	return o == OfferStatusActive || o == OfferStatusWithdrawn
}
