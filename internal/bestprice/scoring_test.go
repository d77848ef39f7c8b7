package bestprice

import (
	"testing"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/config"
	"github.com/autolenis/autolenis-backend/pkg/db/models"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
)

func defaultRankingConfig() config.BestPriceConfig {
	return config.BestPriceConfig{
		OtdWeight:            0.35,
		MonthlyWeight:        0.35,
		VehicleWeight:        0.15,
		DealerWeight:         0.10,
		JunkFeeWeight:        0.05,
		ShorterTermWeight:    1.0,
		AprWeight:            1.0,
		MonthlyBudgetWeight:  1.0,
		BudgetPenaltyPercent: 10,
		TopN:                 5,
	}
}

func makeCandidate(auctionID uuid.UUID, otdCents int64, year, mileage int, make_ string, options ...models.FinancingOption) candidate {
	offer := models.Offer{
		ID:           uuid.New(),
		AuctionID:    auctionID,
		DealerID:     uuid.New(),
		CashOtdCents: otdCents,
		FeeBreakdown: dbtypes.FeeBreakdown{
			BasePriceCents: otdCents - 100_000,
			TaxCents:       100_000,
		},
		FinancingOptions: options,
	}
	item := models.InventoryItem{
		ID:      uuid.New(),
		Year:    year,
		Make:    make_,
		Model:   "Test",
		Mileage: mileage,
	}
	return newCandidate(offer, item, nil)
}

func financing(monthlyCents int64, term int, apr float64, promoted bool) models.FinancingOption {
	return models.FinancingOption{
		ID:                  uuid.New(),
		Lender:              "Test Lender",
		Apr:                 apr,
		TermMonths:          term,
		MonthlyPaymentCents: monthlyCents,
		Promoted:            promoted,
	}
}

func TestBestCashOrdersByPriceWithBudgetPenalty(t *testing.T) {
	auctionID := uuid.New()
	maxOtd := int64(3_000_000)
	// Same vehicle facts, only price differs; one busts the $30,000 budget.
	cheap := makeCandidate(auctionID, 2_800_000, 2021, 30000, "Toyota")
	mid := makeCandidate(auctionID, 2_950_000, 2021, 30000, "Toyota")
	over := makeCandidate(auctionID, 3_100_000, 2021, 30000, "Toyota")

	sCheap := scoreBestCash(cheap, &maxOtd)
	sMid := scoreBestCash(mid, &maxOtd)
	sOver := scoreBestCash(over, &maxOtd)

	if !(sCheap > sMid && sMid > sOver) {
		t.Fatalf("expected descending scores by price, got %.2f %.2f %.2f", sCheap, sMid, sOver)
	}
}

func TestBestCashBudgetPenaltyGrowsWithOverage(t *testing.T) {
	auctionID := uuid.New()
	maxOtd := int64(3_000_000)
	slightly := makeCandidate(auctionID, 3_050_000, 2021, 30000, "Honda")
	badly := makeCandidate(auctionID, 3_500_000, 2021, 30000, "Honda")

	if scoreBestCash(slightly, &maxOtd) <= scoreBestCash(badly, &maxOtd) {
		t.Fatal("larger budget overage must score lower")
	}

	// No known ceiling means no penalty at all.
	if scoreBestCash(badly, nil) <= scoreBestCash(badly, &maxOtd) {
		t.Fatal("penalty must only apply when a ceiling is known")
	}
}

func TestBestCashIsDeterministic(t *testing.T) {
	auctionID := uuid.New()
	c := makeCandidate(auctionID, 2_800_000, 2022, 15000, "Mazda")
	maxOtd := int64(3_000_000)
	first := scoreBestCash(c, &maxOtd)
	for i := 0; i < 10; i++ {
		if got := scoreBestCash(c, &maxOtd); got != first {
			t.Fatalf("score drifted across runs: %.6f vs %.6f", first, got)
		}
	}
}

func TestMonthlyScoringFiltersEnvelope(t *testing.T) {
	cfg := defaultRankingConfig()
	cases := []struct {
		name   string
		option models.FinancingOption
		want   bool
	}{
		{"valid", financing(48_000, 60, 6.5, false), true},
		{"zero monthly", financing(0, 60, 6.5, false), false},
		{"term too short", financing(48_000, 10, 6.5, false), false},
		{"term too long", financing(48_000, 120, 6.5, false), false},
		{"apr too high", financing(48_000, 60, 41, false), false},
	}
	for _, tc := range cases {
		if _, ok := scoreMonthlyOption(tc.option, cfg, nil); ok != tc.want {
			t.Fatalf("%s: rankable=%t, want %t", tc.name, ok, tc.want)
		}
	}
}

func TestMonthlyPrefersCheaperAndShorter(t *testing.T) {
	cfg := defaultRankingConfig()

	cheap, _ := scoreMonthlyOption(financing(40_000, 60, 6.0, false), cfg, nil)
	expensive, _ := scoreMonthlyOption(financing(60_000, 60, 6.0, false), cfg, nil)
	if cheap <= expensive {
		t.Fatal("lower monthly must score higher")
	}

	short, _ := scoreMonthlyOption(financing(48_000, 48, 6.0, false), cfg, nil)
	long, _ := scoreMonthlyOption(financing(48_000, 84, 6.0, false), cfg, nil)
	if short <= long {
		t.Fatal("shorter term must score higher at equal payment")
	}

	lowApr, _ := scoreMonthlyOption(financing(48_000, 60, 4.0, false), cfg, nil)
	highApr, _ := scoreMonthlyOption(financing(48_000, 60, 12.0, false), cfg, nil)
	if lowApr <= highApr {
		t.Fatal("lower APR must score higher at equal payment")
	}
}

func TestMonthlyBudgetPenaltyGrowsWithOverage(t *testing.T) {
	cfg := defaultRankingConfig()
	maxMonthly := int64(45_000)

	within, _ := scoreMonthlyOption(financing(45_000, 60, 6.0, false), cfg, &maxMonthly)
	slightly, _ := scoreMonthlyOption(financing(47_000, 60, 6.0, false), cfg, &maxMonthly)
	badly, _ := scoreMonthlyOption(financing(55_000, 60, 6.0, false), cfg, &maxMonthly)
	if !(within > slightly && slightly > badly) {
		t.Fatalf("expected descending scores past the monthly ceiling, got %.2f %.2f %.2f",
			within, slightly, badly)
	}

	// No known ceiling means no penalty at all.
	noCeiling, _ := scoreMonthlyOption(financing(55_000, 60, 6.0, false), cfg, nil)
	if badly >= noCeiling {
		t.Fatal("penalty must only apply when a ceiling is known")
	}
}

func TestBestMonthlyKeepsSingleBestOptionPerOffer(t *testing.T) {
	auctionID := uuid.New()
	cfg := defaultRankingConfig()
	c := makeCandidate(auctionID, 2_800_000, 2021, 30000, "Toyota",
		financing(55_000, 72, 8.0, false),
		financing(42_000, 60, 5.5, false),
		financing(0, 60, 5.0, false),
	)

	option, _, ok := bestMonthlyOption(c, cfg, nil)
	if !ok {
		t.Fatal("expected a rankable option")
	}
	if option.MonthlyPaymentCents != 42_000 {
		t.Fatalf("expected the cheapest valid option, got %d", option.MonthlyPaymentCents)
	}
}

func TestRepresentativeOptionPreference(t *testing.T) {
	promoted := financing(50_000, 48, 7.0, true)
	mainstream := financing(46_000, 66, 6.0, false)
	cheapest := financing(40_000, 84, 5.0, false)

	offer := models.Offer{FinancingOptions: []models.FinancingOption{cheapest, mainstream, promoted}}
	if got := representativeOption(offer); got.ID != promoted.ID {
		t.Fatal("promoted option must win")
	}

	offer = models.Offer{FinancingOptions: []models.FinancingOption{cheapest, mainstream}}
	if got := representativeOption(offer); got.ID != mainstream.ID {
		t.Fatal("cheapest 60-72 month option must win when nothing is promoted")
	}

	offer = models.Offer{FinancingOptions: []models.FinancingOption{cheapest}}
	if got := representativeOption(offer); got.ID != cheapest.ID {
		t.Fatal("cheapest overall is the fallback")
	}

	if representativeOption(models.Offer{}) != nil {
		t.Fatal("no options means no representative")
	}
}

func TestNormalizeInverseDegenerateRange(t *testing.T) {
	if got := normalizeInverse(2_800_000, 2_800_000, 2_800_000); got != 1 {
		t.Fatalf("min==max must normalize to 1, got %f", got)
	}
	if got := normalizeInverse(2_800_000, 2_800_000, 3_000_000); got != 1 {
		t.Fatalf("the lowest value must normalize to 1, got %f", got)
	}
	if got := normalizeInverse(3_000_000, 2_800_000, 3_000_000); got != 0 {
		t.Fatalf("the highest value must normalize to 0, got %f", got)
	}
}

func TestFilterByPreferredMakes(t *testing.T) {
	auctionID := uuid.New()
	toyota := makeCandidate(auctionID, 2_800_000, 2021, 30000, "Toyota")
	honda := makeCandidate(auctionID, 2_900_000, 2021, 30000, "Honda")
	ford := makeCandidate(auctionID, 2_700_000, 2021, 30000, "Ford")
	universe := []candidate{toyota, honda, ford}

	// Case and whitespace on either side never matter.
	filtered := filterByPreferredMakes(universe, []string{"  toyota ", "HONDA"})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 preferred-make candidates, got %d", len(filtered))
	}
	for _, c := range filtered {
		if c.inventory.Make == "Ford" {
			t.Fatal("hard filter must drop non-preferred makes")
		}
	}

	// No intersection falls back to the full universe.
	filtered = filterByPreferredMakes(universe, []string{"Tesla"})
	if len(filtered) != 3 {
		t.Fatalf("expected full-universe fallback, got %d", len(filtered))
	}

	// No preference at all means no filtering.
	if got := filterByPreferredMakes(universe, nil); len(got) != 3 {
		t.Fatalf("expected untouched universe, got %d", len(got))
	}
}

func TestBalancedDegenerateUniverseScoresEveryoneEqually(t *testing.T) {
	auctionID := uuid.New()
	cfg := defaultRankingConfig()
	a := makeCandidate(auctionID, 2_800_000, 2021, 30000, "Toyota", financing(48_000, 60, 6.0, false))
	b := makeCandidate(auctionID, 2_800_000, 2021, 30000, "Toyota", financing(48_000, 60, 6.0, false))

	entries := balancedEntries([]candidate{a, b}, nil, cfg)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].score != entries[1].score {
		t.Fatalf("identical candidates must tie, got %.0f vs %.0f", entries[0].score, entries[1].score)
	}
}

func TestBalancedBudgetPenalties(t *testing.T) {
	auctionID := uuid.New()
	cfg := defaultRankingConfig()
	buyer := &models.BuyerProfile{
		UserID:          uuid.New(),
		MaxOtdCents:     int64Ptr(3_000_000),
		MaxMonthlyCents: int64Ptr(50_000),
	}

	within := makeCandidate(auctionID, 2_900_000, 2021, 30000, "Toyota", financing(48_000, 60, 6.0, false))
	// 20% over the OTD ceiling and 30% over the monthly ceiling.
	busted := makeCandidate(auctionID, 3_600_000, 2021, 30000, "Toyota", financing(65_000, 60, 6.0, false))

	repWithin := representativeOption(within.offer)
	repBusted := representativeOption(busted.offer)

	// Degenerate single-candidate bounds isolate the penalty term.
	base := scoreBalanced(within, repWithin, within.offer.CashOtdCents, within.offer.CashOtdCents,
		repWithin.MonthlyPaymentCents, repWithin.MonthlyPaymentCents, buyer, cfg)
	penalized := scoreBalanced(busted, repBusted, busted.offer.CashOtdCents, busted.offer.CashOtdCents,
		repBusted.MonthlyPaymentCents, repBusted.MonthlyPaymentCents, buyer, cfg)

	// Both flat penalties apply: -0.2 and -0.3 raw, -50 after scaling.
	if base-penalized != 50 {
		t.Fatalf("expected a 50 point spread from the flat penalties, got %.0f", base-penalized)
	}
}

func TestRankCategoriesDenseRanksAndTopN(t *testing.T) {
	auctionID := uuid.New()
	cfg := defaultRankingConfig()
	cfg.TopN = 3

	var cands []candidate
	for i := 0; i < 6; i++ {
		cands = append(cands, makeCandidate(auctionID, 2_700_000+int64(i)*50_000, 2021, 30000, "Toyota",
			financing(45_000+int64(i)*1_000, 60, 6.0, false)))
	}

	options := rankCategories(cands, nil, cfg)

	counts := map[enums.OptionCategory][]int{}
	for _, option := range options {
		counts[option.Category] = append(counts[option.Category], option.Rank)
	}
	for _, category := range enums.AllOptionCategories() {
		ranks := counts[category]
		if len(ranks) != 3 {
			t.Fatalf("%s: expected top 3, got %d", category, len(ranks))
		}
		for i, rank := range ranks {
			if rank != i+1 {
				t.Fatalf("%s: expected dense ranks starting at 1, got %v", category, ranks)
			}
		}
	}
}

func TestRankCategoriesSnapshotsFreezeFacts(t *testing.T) {
	auctionID := uuid.New()
	cfg := defaultRankingConfig()
	c := makeCandidate(auctionID, 2_800_000, 2022, 12000, "Mazda", financing(48_000, 60, 6.0, false))

	options := rankCategories([]candidate{c}, nil, cfg)
	if len(options) == 0 {
		t.Fatal("expected options")
	}
	for _, option := range options {
		if option.Snapshot.OtdPriceCents != 2_800_000 {
			t.Fatalf("snapshot OTD mismatch: %d", option.Snapshot.OtdPriceCents)
		}
		if option.Snapshot.VehicleMake != "Mazda" || option.Snapshot.VehicleYear != 2022 {
			t.Fatalf("snapshot vehicle facts mismatch: %+v", option.Snapshot)
		}
		if option.Snapshot.JunkFeeCents != c.junkFeeCents {
			t.Fatalf("snapshot junk fee mismatch: %d", option.Snapshot.JunkFeeCents)
		}
	}
}

func int64Ptr(v int64) *int64 { return &v }
