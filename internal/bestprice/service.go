package bestprice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/internal/auctions"
	"github.com/autolenis/autolenis-backend/internal/deals"
	"github.com/autolenis/autolenis-backend/pkg/config"
	"github.com/autolenis/autolenis-backend/pkg/db"
	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/logger"
	"github.com/autolenis/autolenis-backend/pkg/metrics"
	"github.com/autolenis/autolenis-backend/pkg/outbox"
	"github.com/autolenis/autolenis-backend/pkg/outbox/payloads"
)

const activeDealConstraint = "ux_deals_auction_active"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type offerSource interface {
	ListRankableByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Offer, error)
	FindOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
}

type inventoryService interface {
	Find(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
	Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
}

type dealCreator interface {
	CreateFromSelection(ctx context.Context, tx *gorm.DB, input deals.CreateInput) (*models.Deal, error)
}

// Service computes and serves the three best-price rankings and drives the
// buyer's decline/select decisions against them.
type Service interface {
	ComputeBestPrice(ctx context.Context, auctionID uuid.UUID) ([]models.RankedOption, error)
	GetBestPrice(ctx context.Context, auctionID uuid.UUID) (*GroupedOptions, error)
	DeclineOption(ctx context.Context, input DeclineOptionInput) (*DeclineResult, error)
	DeclineOffer(ctx context.Context, input DeclineOfferInput) (*DeclineResult, error)
	SelectDeal(ctx context.Context, input SelectDealInput) (*models.Deal, error)
}

type service struct {
	repo      Repository
	offers    offerSource
	auctions  auctions.Repository
	inventory inventoryService
	deals     dealCreator
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.RankingMetrics
	cfg       config.BestPriceConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the best-price service with the required dependencies.
func NewService(
	repo Repository,
	offerSrc offerSource,
	auctionsRepo auctions.Repository,
	inventory inventoryService,
	dealSvc dealCreator,
	tx txRunner,
	ob outboxPublisher,
	rankingMetrics *metrics.RankingMetrics,
	cfg config.BestPriceConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bestprice repository required")
	}
	if offerSrc == nil {
		return nil, fmt.Errorf("offer source required")
	}
	if auctionsRepo == nil {
		return nil, fmt.Errorf("auctions repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if dealSvc == nil {
		return nil, fmt.Errorf("deals service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		offers:    offerSrc,
		auctions:  auctionsRepo,
		inventory: inventory,
		deals:     dealSvc,
		tx:        tx,
		outbox:    ob,
		metrics:   rankingMetrics,
		cfg:       cfg,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// ComputeBestPrice recomputes the three rankings for a closed auction and
// atomically replaces the persisted option set. A run over zero qualifying
// offers replaces with the empty set and still logs the run.
func (s *service) ComputeBestPrice(ctx context.Context, auctionID uuid.UUID) ([]models.RankedOption, error) {
	auction, err := s.loadAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != enums.AuctionStatusClosed && auction.Status != enums.AuctionStatusNoOffers {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("auction is %s, rankings require a closed auction", auction.Status))
	}

	start := s.now()
	options, offerCount, validCount, err := s.computeOptions(ctx, auction)
	if err != nil {
		s.metrics.IncFailure("all")
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).ReplaceOptions(ctx, auctionID, options); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace ranked options")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBestPriceComputed,
			AggregateType: enums.AggregateAuction,
			AggregateID:   auctionID,
			Version:       1,
			Data: payloads.BestPriceComputedEvent{
				AuctionID:       auctionID,
				OfferCount:      offerCount,
				ValidOfferCount: validCount,
				OptionCount:     len(options),
			},
		})
	})
	if err != nil {
		s.metrics.IncFailure("all")
		return nil, err
	}

	duration := s.now().Sub(start)
	s.logRun(ctx, auctionID, offerCount, validCount, len(options), duration)
	s.observeRun(options, duration)
	return options, nil
}

func (s *service) computeOptions(ctx context.Context, auction *models.Auction) ([]models.RankedOption, int, int, error) {
	rankable, err := s.offers.ListRankableByAuction(ctx, auction.ID)
	if err != nil {
		return nil, 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rankable offers")
	}

	buyer, err := s.auctions.FindBuyerProfile(ctx, auction.BuyerID)
	if err != nil {
		return nil, 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer profile")
	}
	if buyer != nil && buyer.MaxOtdCents == nil {
		buyer.MaxOtdCents = auction.MaxOtdCents
	}
	if buyer == nil && auction.MaxOtdCents != nil {
		buyer = &models.BuyerProfile{UserID: auction.BuyerID, MaxOtdCents: auction.MaxOtdCents}
	}

	dealerCache := map[uuid.UUID]*models.DealerProfile{}
	cands := make([]candidate, 0, len(rankable))
	for _, offer := range rankable {
		item, err := s.inventory.Find(ctx, offer.InventoryItemID)
		if err != nil {
			return nil, 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
		}
		if item == nil {
			if s.logg != nil {
				logCtx := s.logg.WithAuctionID(ctx, auction.ID.String())
				s.logg.Warn(s.logg.WithField(logCtx, "offer_id", offer.ID.String()),
					"skipping offer with unresolvable inventory")
			}
			continue
		}
		dealer, cached := dealerCache[offer.DealerID]
		if !cached {
			dealer, err = s.auctions.FindDealerProfile(ctx, offer.DealerID)
			if err != nil {
				return nil, 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer profile")
			}
			dealerCache[offer.DealerID] = dealer
		}
		cands = append(cands, newCandidate(offer, *item, dealer))
	}

	var preferred []string
	if buyer != nil {
		preferred = buyer.PreferredMakes
	}
	universe := filterByPreferredMakes(cands, preferred)
	options := rankCategories(universe, buyer, s.cfg)
	return options, len(rankable), len(cands), nil
}

// logRun persists the ranking run record. Failures are logged and swallowed;
// a lost run log never fails the ranking.
func (s *service) logRun(ctx context.Context, auctionID uuid.UUID, offerCount, validCount, optionCount int, duration time.Duration) {
	weights, err := json.Marshal(map[string]float64{
		"otd":      s.cfg.OtdWeight,
		"monthly":  s.cfg.MonthlyWeight,
		"vehicle":  s.cfg.VehicleWeight,
		"dealer":   s.cfg.DealerWeight,
		"junk_fee": s.cfg.JunkFeeWeight,
	})
	if err != nil {
		weights = nil
	}
	run := &models.RankingRun{
		AuctionID:       auctionID,
		OfferCount:      offerCount,
		ValidOfferCount: validCount,
		OptionCount:     optionCount,
		Weights:         weights,
		DurationMs:      duration.Milliseconds(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithAuctionID(ctx, auctionID.String()), "ranking run log write failed")
	}
}

func (s *service) observeRun(options []models.RankedOption, duration time.Duration) {
	s.metrics.ObserveDuration("all", duration)
	s.metrics.IncSuccess("all")
	counts := map[enums.OptionCategory]int{}
	for _, option := range options {
		counts[option.Category]++
	}
	for _, category := range enums.AllOptionCategories() {
		s.metrics.ObserveOptionCount(string(category), counts[category])
	}
}

// GetBestPrice returns the persisted rankings grouped per category with the
// first non-declined option as primary.
func (s *service) GetBestPrice(ctx context.Context, auctionID uuid.UUID) (*GroupedOptions, error) {
	if _, err := s.loadAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	options, err := s.repo.ListOptions(ctx, auctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ranked options")
	}

	grouped := &GroupedOptions{AuctionID: auctionID}
	for _, category := range enums.AllOptionCategories() {
		group := CategoryGroup{Category: category, Alternatives: []models.RankedOption{}}
		for i := range options {
			option := options[i]
			if option.Category != category {
				continue
			}
			if group.Primary == nil && !option.Declined {
				group.Primary = &option
				continue
			}
			group.Alternatives = append(group.Alternatives, option)
		}
		grouped.Categories = append(grouped.Categories, group)
	}
	return grouped, nil
}

// DeclineOption marks one recommendation declined and surfaces the next one
// in the same category.
func (s *service) DeclineOption(ctx context.Context, input DeclineOptionInput) (*DeclineResult, error) {
	auction, err := s.loadAuction(ctx, input.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.BuyerID != input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "auction belongs to a different buyer")
	}

	option, err := s.repo.FindOption(ctx, input.OptionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ranked option")
	}
	if option == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ranked option not found")
	}
	if option.AuctionID != input.AuctionID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option does not belong to this auction")
	}
	if option.Declined {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "option is already declined")
	}

	declinedAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		flipped, err := repo.MarkDeclined(ctx, option.ID, declinedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark option declined")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "option is already declined")
		}
		optionID := option.ID
		if err := repo.CreateDecision(ctx, &models.BuyerDecisionEvent{
			AuctionID:      input.AuctionID,
			BuyerID:        input.BuyerID,
			OfferID:        option.OfferID,
			RankedOptionID: &optionID,
			Decision:       enums.BuyerDecisionDeclined,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record decision")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOptionDeclined,
			AggregateType: enums.AggregateRankedOption,
			AggregateID:   option.ID,
			Actor:         &outbox.ActorRef{UserID: input.BuyerID, Role: enums.RoleBuyer},
			Version:       1,
			Data: payloads.OptionDeclinedEvent{
				AuctionID:      input.AuctionID,
				RankedOptionID: option.ID,
				OfferID:        option.OfferID,
				Category:       option.Category,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	option.Declined = true
	option.DeclinedAt = &declinedAt

	next, err := s.repo.NextUndeclined(ctx, input.AuctionID, option.Category, option.Rank)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load next option")
	}
	return &DeclineResult{Declined: option, Next: next}, nil
}

// DeclineOffer declines by raw offer id. When the offer still holds a ranked
// placement the decline goes through it; otherwise the decision is recorded
// directly and the rankings are recomputed.
func (s *service) DeclineOffer(ctx context.Context, input DeclineOfferInput) (*DeclineResult, error) {
	auction, err := s.loadAuction(ctx, input.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.BuyerID != input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "auction belongs to a different buyer")
	}

	option, err := s.repo.FindUndeclinedByOffer(ctx, input.AuctionID, input.OfferID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up ranked option")
	}
	if option != nil {
		return s.DeclineOption(ctx, DeclineOptionInput{
			AuctionID: input.AuctionID,
			OptionID:  option.ID,
			BuyerID:   input.BuyerID,
		})
	}

	offer, err := s.offers.FindOffer(ctx, input.OfferID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil || offer.AuctionID != input.AuctionID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found for this auction")
	}

	if err := s.repo.CreateDecision(ctx, &models.BuyerDecisionEvent{
		AuctionID: input.AuctionID,
		BuyerID:   input.BuyerID,
		OfferID:   input.OfferID,
		Decision:  enums.BuyerDecisionDeclined,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record decision")
	}

	if _, err := s.ComputeBestPrice(ctx, input.AuctionID); err != nil {
		return nil, err
	}
	return &DeclineResult{}, nil
}

// SelectDeal is the buyer accepting an offer: a deal opens, the acceptance is
// recorded, the auction completes, and the vehicle is reserved, all in one
// transaction.
func (s *service) SelectDeal(ctx context.Context, input SelectDealInput) (*models.Deal, error) {
	if (input.OptionID == nil) == (input.OfferID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of option id and offer id is required")
	}

	auction, err := s.loadAuction(ctx, input.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.BuyerID != input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "auction belongs to a different buyer")
	}
	// COMPLETED is allowed so a buyer can switch to a different offer after a
	// first selection; CreateFromSelection supersedes the prior deal.
	if auction.Status != enums.AuctionStatusClosed && auction.Status != enums.AuctionStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("auction is %s, selection requires a closed auction", auction.Status))
	}

	offerID := uuid.Nil
	financingOptionID := input.FinancingOptionID
	var rankedOptionID *uuid.UUID
	if input.OptionID != nil {
		option, err := s.repo.FindOption(ctx, *input.OptionID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ranked option")
		}
		if option == nil || option.AuctionID != input.AuctionID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ranked option not found")
		}
		offerID = option.OfferID
		optionID := option.ID
		rankedOptionID = &optionID
		if financingOptionID == nil {
			financingOptionID = option.FinancingOptionID
		}
	} else {
		offerID = *input.OfferID
	}

	offer, err := s.offers.FindOffer(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil || offer.AuctionID != input.AuctionID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found for this auction")
	}
	if offer.Status == enums.OfferStatusWithdrawn {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has been withdrawn")
	}
	if !offer.IsValid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is not valid")
	}
	if financingOptionID != nil && !offerHasFinancingOption(offer, *financingOptionID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "financing option does not belong to this offer")
	}

	var deal *models.Deal
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.deals.CreateFromSelection(ctx, tx, deals.CreateInput{
			AuctionID:         input.AuctionID,
			BuyerID:           input.BuyerID,
			DealerID:          offer.DealerID,
			OfferID:           offer.ID,
			InventoryItemID:   offer.InventoryItemID,
			FinancingOptionID: financingOptionID,
			AgreedOtdCents:    offer.CashOtdCents,
			TaxCents:          offer.FeeBreakdown.TaxCents,
			FeeBreakdown:      offer.FeeBreakdown,
		})
		if err != nil {
			return err
		}
		deal = created

		if err := s.repo.WithTx(tx).CreateDecision(ctx, &models.BuyerDecisionEvent{
			AuctionID:      input.AuctionID,
			BuyerID:        input.BuyerID,
			OfferID:        offer.ID,
			RankedOptionID: rankedOptionID,
			Decision:       enums.BuyerDecisionAccepted,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record decision")
		}

		if auction.Status == enums.AuctionStatusClosed {
			// A lost flip means a concurrent selection already completed the
			// auction; this deal still supersedes the prior one, so the flip
			// result is informational only.
			if _, err := s.auctions.WithTx(tx).UpdateAuctionStatus(ctx, input.AuctionID,
				enums.AuctionStatusClosed, enums.AuctionStatusCompleted); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete auction")
			}
		}

		return s.inventory.Reserve(ctx, tx, offer.InventoryItemID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, activeDealConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "auction already has an active deal")
		}
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithAuctionID(ctx, input.AuctionID.String())
		logCtx = s.logg.WithDealID(logCtx, deal.ID.String())
		s.logg.Info(logCtx, "deal selected")
	}
	return deal, nil
}

func offerHasFinancingOption(offer *models.Offer, financingOptionID uuid.UUID) bool {
	for _, option := range offer.FinancingOptions {
		if option.ID == financingOptionID {
			return true
		}
	}
	return false
}

func (s *service) loadAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	if auctionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction id required")
	}
	auction, err := s.auctions.FindAuction(ctx, auctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auction")
	}
	if auction == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
	}
	return auction, nil
}
