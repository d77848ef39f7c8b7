package dbtypes

// FinancingSnapshot freezes the financing terms a ranked option was scored
// with. Nil when the option was ranked on a cash basis.
type FinancingSnapshot struct {
	Lender              string  `json:"lender"`
	Apr                 float64 `json:"apr"`
	TermMonths          int     `json:"term_months"`
	DownPaymentCents    int64   `json:"down_payment_cents"`
	MonthlyPaymentCents int64   `json:"monthly_payment_cents"`
	Promoted            bool    `json:"promoted,omitempty"`
}

// OptionSnapshot captures everything the buyer sees on a ranked option at the
// moment the ranking ran. Later edits to the offer or inventory never mutate
// an already-presented option.
type OptionSnapshot struct {
	OfferID       string             `json:"offer_id"`
	DealerID      string             `json:"dealer_id"`
	DealerName    string             `json:"dealer_name"`
	VehicleYear   int                `json:"vehicle_year"`
	VehicleMake   string             `json:"vehicle_make"`
	VehicleModel  string             `json:"vehicle_model"`
	VehicleTrim   string             `json:"vehicle_trim,omitempty"`
	Mileage       int                `json:"mileage"`
	IsNew         bool               `json:"is_new"`
	OtdPriceCents int64              `json:"otd_price_cents"`
	FeeBreakdown  FeeBreakdown       `json:"fee_breakdown"`
	JunkFeeCents  int64              `json:"junk_fee_cents"`
	Financing     *FinancingSnapshot `json:"financing,omitempty"`
}
