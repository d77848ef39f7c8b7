package offers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/internal/auctions"
	"github.com/autolenis/autolenis-backend/internal/audit"
	"github.com/autolenis/autolenis-backend/pkg/db"
	"github.com/autolenis/autolenis-backend/pkg/db/models"
	dbtypes "github.com/autolenis/autolenis-backend/pkg/db/types"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/logger"
	"github.com/autolenis/autolenis-backend/pkg/outbox"
	"github.com/autolenis/autolenis-backend/pkg/outbox/payloads"
	"github.com/autolenis/autolenis-backend/pkg/pagination"
)

const offerUniqueConstraint = "ux_offers_auction_dealer"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type inventoryFinder interface {
	Find(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
}

type auditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service owns the offer lifecycle: dealer submission with full validation,
// withdrawal while the auction is open, and the admin validity override.
type Service interface {
	SubmitOffer(ctx context.Context, input SubmitOfferInput) (*SubmitOfferResult, error)
	WithdrawOffer(ctx context.Context, input WithdrawOfferInput) (*models.Offer, error)
	OverrideValidity(ctx context.Context, input OverrideValidityInput) (*models.Offer, error)
	GetOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
	ListOffers(ctx context.Context, auctionID uuid.UUID, params pagination.Params) (*OfferList, error)
}

type service struct {
	repo      Repository
	auctions  auctions.Repository
	inventory inventoryFinder
	validator *Validator
	tx        txRunner
	outbox    outboxPublisher
	audit     auditRecorder
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the offers service with the required dependencies.
func NewService(
	repo Repository,
	auctionsRepo auctions.Repository,
	inventory inventoryFinder,
	validator *Validator,
	tx txRunner,
	ob outboxPublisher,
	auditSvc auditRecorder,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	if auctionsRepo == nil {
		return nil, fmt.Errorf("auctions repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory finder required")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		auctions:  auctionsRepo,
		inventory: inventory,
		validator: validator,
		tx:        tx,
		outbox:    ob,
		audit:     auditSvc,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// SubmitOffer validates a dealer submission against the auction, inventory,
// fee, financing and budget rules. Any error-severity issue rejects the whole
// submission with the full issue list; warning-only submissions persist as
// valid offers carrying their warnings.
func (s *service) SubmitOffer(ctx context.Context, input SubmitOfferInput) (*SubmitOfferResult, error) {
	vc, err := s.loadValidationContext(ctx, input)
	if err != nil {
		return nil, err
	}

	ok, issues := s.validator.Validate(vc, input)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer failed validation").
			WithDetails(map[string]any{"issues": issues})
	}

	offer := &models.Offer{
		AuctionID:       input.AuctionID,
		DealerID:        input.DealerID,
		InventoryItemID: input.InventoryItemID,
		CashOtdCents:    input.CashOtdCents,
		FeeBreakdown:    input.FeeBreakdown,
		IsValid:         true,
		Issues:          issues,
		Status:          enums.OfferStatusActive,
		Notes:           input.Notes,
		SubmittedAt:     vc.Now,
	}
	for _, option := range input.FinancingOptions {
		offer.FinancingOptions = append(offer.FinancingOptions, models.FinancingOption{
			Lender:              option.Lender,
			Apr:                 option.Apr,
			TermMonths:          option.TermMonths,
			DownPaymentCents:    option.DownPaymentCents,
			MonthlyPaymentCents: option.MonthlyPaymentCents,
			Promoted:            option.Promoted,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOffer(ctx, offer); err != nil {
			if db.IsUniqueViolation(err, offerUniqueConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "dealer already has an offer for this auction").
					WithDetails(map[string]any{"code": enums.IssueAlreadySubmitted})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist offer")
		}
		if err := s.auctions.WithTx(tx).MarkParticipantResponded(ctx, input.AuctionID, input.DealerID, vc.Now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark participant responded")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferSubmitted,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offer.ID,
			Actor:         &outbox.ActorRef{UserID: input.DealerID, Role: enums.RoleDealer},
			Version:       1,
			Data: payloads.OfferSubmittedEvent{
				OfferID:      offer.ID,
				AuctionID:    input.AuctionID,
				DealerID:     input.DealerID,
				CashOtdCents: input.CashOtdCents,
				IsValid:      true,
				WarningCount: len(issues),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithAuctionID(ctx, input.AuctionID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]interface{}{
			"offer_id":  offer.ID.String(),
			"dealer_id": input.DealerID.String(),
			"warnings":  len(issues),
		})
		s.logg.Info(logCtx, "offer submitted")
	}
	return &SubmitOfferResult{Offer: offer, Issues: issues}, nil
}

func (s *service) loadValidationContext(ctx context.Context, input SubmitOfferInput) (ValidationContext, error) {
	vc := ValidationContext{Now: s.now().UTC()}

	auction, err := s.auctions.FindAuction(ctx, input.AuctionID)
	if err != nil {
		return vc, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auction")
	}
	vc.Auction = auction

	if auction != nil {
		participant, err := s.auctions.FindParticipant(ctx, input.AuctionID, input.DealerID)
		if err != nil {
			return vc, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
		}
		vc.Participant = participant

		existing, err := s.repo.FindActiveByAuctionAndDealer(ctx, input.AuctionID, input.DealerID)
		if err != nil {
			return vc, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing offer")
		}
		vc.ExistingOffer = existing

		buyer, err := s.auctions.FindBuyerProfile(ctx, auction.BuyerID)
		if err != nil {
			return vc, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer profile")
		}
		vc.Buyer = buyer
	}

	item, err := s.inventory.Find(ctx, input.InventoryItemID)
	if err != nil {
		return vc, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	vc.Inventory = item

	return vc, nil
}

// WithdrawOffer pulls a dealer's active offer while its auction is still open.
func (s *service) WithdrawOffer(ctx context.Context, input WithdrawOfferInput) (*models.Offer, error) {
	offer, err := s.GetOffer(ctx, input.OfferID)
	if err != nil {
		return nil, err
	}
	if offer.DealerID != input.DealerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to a different dealer")
	}

	auction, err := s.auctions.FindAuction(ctx, offer.AuctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auction")
	}
	if auction == nil || auction.Status != enums.AuctionStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offers can only be withdrawn while the auction is open")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		flipped, err := repo.WithdrawOffer(ctx, input.OfferID, input.DealerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "withdraw offer")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is not active")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferWithdrawn,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offer.ID,
			Actor:         &outbox.ActorRef{UserID: input.DealerID, Role: enums.RoleDealer},
			Version:       1,
			Data: payloads.OfferWithdrawnEvent{
				OfferID:   offer.ID,
				AuctionID: offer.AuctionID,
				DealerID:  offer.DealerID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	offer.Status = enums.OfferStatusWithdrawn
	if s.logg != nil {
		logCtx := s.logg.WithAuctionID(ctx, offer.AuctionID.String())
		s.logg.Info(s.logg.WithField(logCtx, "offer_id", offer.ID.String()), "offer withdrawn")
	}
	return offer, nil
}

// OverrideValidity is the admin escape hatch for miscategorized offers. The
// original validation findings stay on the record; the override is appended
// as its own issue so the history reads in order.
func (s *service) OverrideValidity(ctx context.Context, input OverrideValidityInput) (*models.Offer, error) {
	offer, err := s.GetOffer(ctx, input.OfferID)
	if err != nil {
		return nil, err
	}
	if offer.Status == enums.OfferStatusWithdrawn {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "withdrawn offers cannot be overridden")
	}

	wasValid := offer.IsValid
	issues := append(dbtypes.Issues{}, offer.Issues...)
	issues = append(issues, dbtypes.Issue{
		Code:     enums.IssueAdminOverride,
		Message:  fmt.Sprintf("validity set to %t by admin: %s", input.IsValid, input.Note),
		Severity: enums.SeverityWarning,
	})

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updates := map[string]any{
			"is_valid": input.IsValid,
			"issues":   issues,
		}
		if err := repo.UpdateOffer(ctx, offer.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "override offer validity")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferValidityOverridden,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offer.ID,
			Actor:         &outbox.ActorRef{UserID: input.AdminID, Role: enums.RoleAdmin},
			Version:       1,
			Data: payloads.OfferValidityOverriddenEvent{
				OfferID:   offer.ID,
				AuctionID: offer.AuctionID,
				WasValid:  wasValid,
				IsValid:   input.IsValid,
				Note:      input.Note,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Entry{
			ActorID:    &input.AdminID,
			ActorRole:  enums.RoleAdmin,
			Action:     "offer.validity_overridden",
			EntityType: "offer",
			EntityID:   offer.ID,
			Before:     map[string]any{"is_valid": wasValid},
			After:      map[string]any{"is_valid": input.IsValid, "note": input.Note},
		})
	}

	offer.IsValid = input.IsValid
	offer.Issues = issues
	if s.logg != nil {
		logCtx := s.logg.WithUserID(ctx, input.AdminID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]interface{}{
			"offer_id": offer.ID.String(),
			"is_valid": input.IsValid,
		})
		s.logg.Info(logCtx, "offer validity overridden")
	}
	return offer, nil
}

func (s *service) GetOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	if offerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	offer, err := s.repo.FindOffer(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return offer, nil
}

func (s *service) ListOffers(ctx context.Context, auctionID uuid.UUID, params pagination.Params) (*OfferList, error) {
	if auctionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction id required")
	}
	list, err := s.repo.ListByAuction(ctx, auctionID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return list, nil
}
