package auctions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/logger"
	"github.com/autolenis/autolenis-backend/pkg/outbox"
	"github.com/autolenis/autolenis-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type offerCounter interface {
	CountActiveByAuction(ctx context.Context, auctionID uuid.UUID) (int64, error)
}

// Service exposes auction reads and the close transition used by the
// external expiry sweeper.
type Service interface {
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	CloseAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
}

type service struct {
	repo   Repository
	offers offerCounter
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds the auctions service with the required dependencies.
func NewService(repo Repository, offers offerCounter, tx txRunner, ob outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auctions repository required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer counter required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, offers: offers, tx: tx, outbox: ob, logg: logg}, nil
}

func (s *service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	if auctionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction id required")
	}
	auction, err := s.repo.FindAuction(ctx, auctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auction")
	}
	if auction == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
	}
	return auction, nil
}

// CloseAuction flips OPEN to CLOSED, or to NO_OFFERS when no active offers
// exist. Closing an already-closed auction is a state conflict, not a no-op.
func (s *service) CloseAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	auction, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != enums.AuctionStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("auction is %s, only open auctions can be closed", auction.Status))
	}

	count, err := s.offers.CountActiveByAuction(ctx, auctionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count auction offers")
	}
	target := enums.AuctionStatusClosed
	if count == 0 {
		target = enums.AuctionStatusNoOffers
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		flipped, err := repo.UpdateAuctionStatus(ctx, auctionID, enums.AuctionStatusOpen, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close auction")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auction already closed")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAuctionClosed,
			AggregateType: enums.AggregateAuction,
			AggregateID:   auctionID,
			Version:       1,
			Data: payloads.AuctionClosedEvent{
				AuctionID:  auctionID,
				Status:     target,
				OfferCount: int(count),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	auction.Status = target
	if s.logg != nil {
		logCtx := s.logg.WithAuctionID(ctx, auctionID.String())
		s.logg.Info(s.logg.WithField(logCtx, "status", string(target)), "auction closed")
	}
	return auction, nil
}
