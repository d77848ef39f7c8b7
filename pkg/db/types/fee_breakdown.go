package dbtypes

// AddOn is a single dealer-installed accessory or package line.
type AddOn struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// FeeBreakdown itemizes an out-the-door price. All amounts are integer cents;
// the sum of the fields must match the declared OTD within the configured
// tolerance.
type FeeBreakdown struct {
	BasePriceCents         int64   `json:"base_price_cents"`
	TaxCents               int64   `json:"tax_cents"`
	TitleRegistrationCents int64   `json:"title_registration_cents"`
	DocFeeCents            int64   `json:"doc_fee_cents"`
	DealerFeesCents        int64   `json:"dealer_fees_cents"`
	AddOns                 []AddOn `json:"add_ons,omitempty"`
	OtherFeesCents         int64   `json:"other_fees_cents"`
}

// Total returns the sum of every itemized component.
func (f FeeBreakdown) Total() int64 {
	total := f.BasePriceCents + f.TaxCents + f.TitleRegistrationCents +
		f.DocFeeCents + f.DealerFeesCents + f.OtherFeesCents
	for _, addOn := range f.AddOns {
		total += addOn.PriceCents
	}
	return total
}

// JunkFeeCents returns the doc, dealer, and add-on portion of the breakdown,
// the fees the buyer-facing UI flags as non-essential.
func (f FeeBreakdown) JunkFeeCents() int64 {
	junk := f.DocFeeCents + f.DealerFeesCents
	for _, addOn := range f.AddOns {
		junk += addOn.PriceCents
	}
	return junk
}
