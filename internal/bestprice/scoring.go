package bestprice

import (
	"math"
	"sort"
	"strings"

	"github.com/autolenis/autolenis-backend/pkg/config"
	"github.com/autolenis/autolenis-backend/pkg/db/models"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

const (
	defaultDealerIntegrity = 0.8
	vehicleYearFloor       = 2015
	balancedTermMin        = 60
	balancedTermMax        = 72
)

// candidate is one valid offer joined to its inventory and dealer facts.
// Offers whose inventory cannot be resolved never become candidates.
type candidate struct {
	offer        models.Offer
	inventory    models.InventoryItem
	dealerName   string
	integrity    float64
	junkFeeCents int64
	junkFeeRatio float64
}

func newCandidate(offer models.Offer, item models.InventoryItem, dealer *models.DealerProfile) candidate {
	junk := offer.FeeBreakdown.JunkFeeCents()
	ratio := 0.0
	if offer.CashOtdCents > 0 {
		ratio = float64(junk) / float64(offer.CashOtdCents)
	}
	c := candidate{
		offer:        offer,
		inventory:    item,
		integrity:    defaultDealerIntegrity,
		junkFeeCents: junk,
		junkFeeRatio: ratio,
	}
	if dealer != nil {
		c.dealerName = dealer.Name
		if dealer.IntegrityScore != nil {
			c.integrity = *dealer.IntegrityScore
		}
	}
	return c
}

// filterByPreferredMakes applies the buyer's brand preference as a hard
// filter. An empty intersection falls back to the full universe rather than
// producing an empty ranking.
func filterByPreferredMakes(cands []candidate, preferred []string) []candidate {
	if len(preferred) == 0 {
		return cands
	}
	wanted := make(map[string]struct{}, len(preferred))
	for _, make_ := range preferred {
		wanted[normalizeMake(make_)] = struct{}{}
	}
	var matched []candidate
	for _, c := range cands {
		if _, ok := wanted[normalizeMake(c.inventory.Make)]; ok {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return cands
	}
	return matched
}

func normalizeMake(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// scoreBestCash favors the lowest out-the-door price, discounts junk fees and
// mileage, rewards newer vehicles, and penalizes over-budget offers in
// proportion to the overage.
func scoreBestCash(c candidate, maxOtdCents *int64) float64 {
	if c.offer.CashOtdCents <= 0 {
		return 0
	}
	score := 1e9 / float64(c.offer.CashOtdCents)
	score -= c.junkFeeRatio * 1000
	score += float64(c.inventory.Year-vehicleYearFloor) * 10
	score -= float64(c.inventory.Mileage) / 10000
	if maxOtdCents != nil && *maxOtdCents > 0 && c.offer.CashOtdCents > *maxOtdCents {
		overBudgetRatio := float64(c.offer.CashOtdCents-*maxOtdCents) / float64(*maxOtdCents)
		score -= overBudgetRatio * 5000
	}
	return score
}

// lowestMonthlyOption picks the display financing option for the cash
// ranking. Nil when the offer carries no options.
func lowestMonthlyOption(offer models.Offer) *models.FinancingOption {
	var best *models.FinancingOption
	for i := range offer.FinancingOptions {
		option := &offer.FinancingOptions[i]
		if best == nil || option.MonthlyPaymentCents < best.MonthlyPaymentCents {
			best = option
		}
	}
	return best
}

// scoreMonthlyOption scores one (offer, financing option) pair for the
// monthly ranking. The second return is false for pairs outside the rankable
// envelope (non-positive monthly, out-of-range term or APR).
func scoreMonthlyOption(option models.FinancingOption, cfg config.BestPriceConfig, maxMonthlyCents *int64) (float64, bool) {
	if option.MonthlyPaymentCents <= 0 {
		return 0, false
	}
	if option.TermMonths < 12 || option.TermMonths > 96 {
		return 0, false
	}
	if option.Apr < 0 || option.Apr > 40 {
		return 0, false
	}
	score := 1e6 / float64(option.MonthlyPaymentCents)
	score += float64(96-option.TermMonths) / 96 * cfg.ShorterTermWeight * 100
	score -= option.Apr / 40 * cfg.AprWeight * 100
	if maxMonthlyCents != nil && *maxMonthlyCents > 0 && option.MonthlyPaymentCents > *maxMonthlyCents {
		overRatio := float64(option.MonthlyPaymentCents-*maxMonthlyCents) / float64(*maxMonthlyCents)
		score -= overRatio * cfg.MonthlyBudgetWeight * 100
	}
	return score, true
}

// bestMonthlyOption returns the offer's single best-scoring financing option
// for the monthly ranking, or false when none qualifies.
func bestMonthlyOption(c candidate, cfg config.BestPriceConfig, maxMonthlyCents *int64) (*models.FinancingOption, float64, bool) {
	var best *models.FinancingOption
	bestScore := math.Inf(-1)
	for i := range c.offer.FinancingOptions {
		option := &c.offer.FinancingOptions[i]
		score, ok := scoreMonthlyOption(*option, cfg, maxMonthlyCents)
		if !ok {
			continue
		}
		if score > bestScore {
			best = option
			bestScore = score
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best, bestScore, true
}

// representativeOption picks the financing option the balanced ranking scores
// an offer with: a promoted option wins, else the cheapest option with a
// mainstream 60-72 month term, else the cheapest option overall.
func representativeOption(offer models.Offer) *models.FinancingOption {
	var promoted, mainstream, cheapest *models.FinancingOption
	for i := range offer.FinancingOptions {
		option := &offer.FinancingOptions[i]
		if option.Promoted && promoted == nil {
			promoted = option
		}
		if option.TermMonths >= balancedTermMin && option.TermMonths <= balancedTermMax {
			if mainstream == nil || option.MonthlyPaymentCents < mainstream.MonthlyPaymentCents {
				mainstream = option
			}
		}
		if cheapest == nil || option.MonthlyPaymentCents < cheapest.MonthlyPaymentCents {
			cheapest = option
		}
	}
	if promoted != nil {
		return promoted
	}
	if mainstream != nil {
		return mainstream
	}
	return cheapest
}

// vehicleQuality blends year recency, inverse mileage, and a new-vehicle
// bonus into a 0..1 sub-score.
func vehicleQuality(item models.InventoryItem) float64 {
	yearScore := clamp01(float64(item.Year-2010) / 15)
	mileageScore := 1 - math.Min(1, float64(item.Mileage)/150000)
	newBonus := 0.0
	if item.IsNew {
		newBonus = 1.0
	}
	return 0.5*yearScore + 0.4*mileageScore + 0.1*newBonus
}

// scoreBalanced computes the weighted blend for one candidate given min-max
// normalization bounds over the selected universe. The raw blend takes flat
// penalties for busting either budget by more than the configured percent,
// then scales to an integer 0..100 style score.
func scoreBalanced(
	c candidate,
	rep *models.FinancingOption,
	minOtd, maxOtd int64,
	minMonthly, maxMonthly int64,
	buyer *models.BuyerProfile,
	cfg config.BestPriceConfig,
) float64 {
	otdNorm := normalizeInverse(c.offer.CashOtdCents, minOtd, maxOtd)

	monthlyNorm := 1.0
	if rep != nil {
		monthlyNorm = normalizeInverse(rep.MonthlyPaymentCents, minMonthly, maxMonthly)
	}

	junkScore := 1 - math.Min(1, c.junkFeeRatio*5)

	raw := cfg.OtdWeight*otdNorm +
		cfg.MonthlyWeight*monthlyNorm +
		cfg.VehicleWeight*vehicleQuality(c.inventory) +
		cfg.DealerWeight*c.integrity +
		cfg.JunkFeeWeight*junkScore

	penaltyThreshold := 1 + cfg.BudgetPenaltyPercent/100
	if buyer != nil {
		if buyer.MaxOtdCents != nil && *buyer.MaxOtdCents > 0 &&
			float64(c.offer.CashOtdCents) > float64(*buyer.MaxOtdCents)*penaltyThreshold {
			raw -= 0.2
		}
		if rep != nil && buyer.MaxMonthlyCents != nil && *buyer.MaxMonthlyCents > 0 &&
			float64(rep.MonthlyPaymentCents) > float64(*buyer.MaxMonthlyCents)*penaltyThreshold {
			raw -= 0.3
		}
	}

	return math.Round(raw * 100)
}

// normalizeInverse maps the lowest value in [min, max] to 1 and the highest
// to 0. A degenerate range scores 1 for everyone.
func normalizeInverse(value, min, max int64) float64 {
	if max <= min {
		return 1
	}
	return 1 - float64(value-min)/float64(max-min)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scored pairs a candidate with its category score and display financing.
type scored struct {
	candidate candidate
	score     float64
	financing *models.FinancingOption
}

// topN sorts scored entries descending and truncates. Ties break by ascending
// OTD so reruns over the same data produce the same order.
func topN(entries []scored, n int) []scored {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].candidate.offer.CashOtdCents < entries[j].candidate.offer.CashOtdCents
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// buildSnapshot freezes the buyer-visible facts for one ranked option.
func buildSnapshot(c candidate, fin *models.FinancingOption) dbtypes.OptionSnapshot {
	snapshot := dbtypes.OptionSnapshot{
		OfferID:       c.offer.ID.String(),
		DealerID:      c.offer.DealerID.String(),
		DealerName:    c.dealerName,
		VehicleYear:   c.inventory.Year,
		VehicleMake:   c.inventory.Make,
		VehicleModel:  c.inventory.Model,
		Mileage:       c.inventory.Mileage,
		IsNew:         c.inventory.IsNew,
		OtdPriceCents: c.offer.CashOtdCents,
		FeeBreakdown:  c.offer.FeeBreakdown,
		JunkFeeCents:  c.junkFeeCents,
	}
	if c.inventory.Trim != nil {
		snapshot.VehicleTrim = *c.inventory.Trim
	}
	if fin != nil {
		snapshot.Financing = &dbtypes.FinancingSnapshot{
			Lender:              fin.Lender,
			Apr:                 fin.Apr,
			TermMonths:          fin.TermMonths,
			DownPaymentCents:    fin.DownPaymentCents,
			MonthlyPaymentCents: fin.MonthlyPaymentCents,
			Promoted:            fin.Promoted,
		}
	}
	return snapshot
}

// rankCategories produces the full ranked option set for one auction from an
// already-filtered candidate universe.
func rankCategories(cands []candidate, buyer *models.BuyerProfile, cfg config.BestPriceConfig) []models.RankedOption {
	topCount := cfg.TopN
	if topCount <= 0 {
		topCount = 5
	}

	var maxOtdCents, maxMonthlyCents *int64
	if buyer != nil {
		maxOtdCents = buyer.MaxOtdCents
		maxMonthlyCents = buyer.MaxMonthlyCents
	}

	var options []models.RankedOption
	appendCategory := func(category enums.OptionCategory, entries []scored) {
		for i, entry := range topN(entries, topCount) {
			option := models.RankedOption{
				AuctionID: entry.candidate.offer.AuctionID,
				Category:  category,
				Rank:      i + 1,
				Score:     entry.score,
				OfferID:   entry.candidate.offer.ID,
				Snapshot:  buildSnapshot(entry.candidate, entry.financing),
			}
			if entry.financing != nil {
				finID := entry.financing.ID
				option.FinancingOptionID = &finID
			}
			options = append(options, option)
		}
	}

	cash := make([]scored, 0, len(cands))
	for _, c := range cands {
		cash = append(cash, scored{
			candidate: c,
			score:     scoreBestCash(c, maxOtdCents),
			financing: lowestMonthlyOption(c.offer),
		})
	}
	appendCategory(enums.CategoryBestCash, cash)

	var monthly []scored
	for _, c := range cands {
		option, score, ok := bestMonthlyOption(c, cfg, maxMonthlyCents)
		if !ok {
			continue
		}
		monthly = append(monthly, scored{candidate: c, score: score, financing: option})
	}
	appendCategory(enums.CategoryBestMonthly, monthly)

	appendCategory(enums.CategoryBalanced, balancedEntries(cands, buyer, cfg))

	return options
}

func balancedEntries(cands []candidate, buyer *models.BuyerProfile, cfg config.BestPriceConfig) []scored {
	if len(cands) == 0 {
		return nil
	}

	reps := make([]*models.FinancingOption, len(cands))
	minOtd, maxOtd := cands[0].offer.CashOtdCents, cands[0].offer.CashOtdCents
	var minMonthly, maxMonthly int64
	monthlySeen := false
	for i, c := range cands {
		if c.offer.CashOtdCents < minOtd {
			minOtd = c.offer.CashOtdCents
		}
		if c.offer.CashOtdCents > maxOtd {
			maxOtd = c.offer.CashOtdCents
		}
		reps[i] = representativeOption(c.offer)
		if reps[i] == nil {
			continue
		}
		monthly := reps[i].MonthlyPaymentCents
		if !monthlySeen {
			minMonthly, maxMonthly = monthly, monthly
			monthlySeen = true
			continue
		}
		if monthly < minMonthly {
			minMonthly = monthly
		}
		if monthly > maxMonthly {
			maxMonthly = monthly
		}
	}

	entries := make([]scored, 0, len(cands))
	for i, c := range cands {
		entries = append(entries, scored{
			candidate: c,
			score:     scoreBalanced(c, reps[i], minOtd, maxOtd, minMonthly, maxMonthly, buyer, cfg),
			financing: reps[i],
		})
	}
	return entries
}
