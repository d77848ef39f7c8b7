package auctions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/outbox"
)

type stubRepo struct {
	auction     *models.Auction
	flips       []enums.AuctionStatus
	flipSucceed bool
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) FindAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	return r.auction, nil
}

func (r *stubRepo) ListExpiredOpen(ctx context.Context, cutoff time.Time, limit int) ([]models.Auction, error) {
	return nil, nil
}

func (r *stubRepo) FindParticipant(ctx context.Context, auctionID, dealerID uuid.UUID) (*models.AuctionParticipant, error) {
	return nil, nil
}

func (r *stubRepo) MarkParticipantResponded(ctx context.Context, auctionID, dealerID uuid.UUID, at time.Time) error {
	return nil
}

func (r *stubRepo) UpdateAuctionStatus(ctx context.Context, auctionID uuid.UUID, from, to enums.AuctionStatus) (bool, error) {
	r.flips = append(r.flips, to)
	return r.flipSucceed, nil
}

func (r *stubRepo) FindBuyerProfile(ctx context.Context, buyerID uuid.UUID) (*models.BuyerProfile, error) {
	return nil, nil
}

func (r *stubRepo) FindDealerProfile(ctx context.Context, dealerID uuid.UUID) (*models.DealerProfile, error) {
	return nil, nil
}

type stubOfferCounter struct {
	count int64
}

func (s *stubOfferCounter) CountActiveByAuction(ctx context.Context, auctionID uuid.UUID) (int64, error) {
	return s.count, nil
}

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type fixture struct {
	svc       Service
	repo      *stubRepo
	offers    *stubOfferCounter
	outbox    *stubOutbox
	auctionID uuid.UUID
}

func newFixture(t *testing.T, status enums.AuctionStatus, offerCount int64) *fixture {
	t.Helper()
	auctionID := uuid.New()
	repo := &stubRepo{
		auction: &models.Auction{
			ID:      auctionID,
			BuyerID: uuid.New(),
			Status:  status,
			EndsAt:  time.Now().Add(-time.Hour),
		},
		flipSucceed: true,
	}
	offers := &stubOfferCounter{count: offerCount}
	ob := &stubOutbox{}
	svc, err := NewService(repo, offers, &stubTxRunner{}, ob, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, offers: offers, outbox: ob, auctionID: auctionID}
}

func TestCloseAuctionWithOffers(t *testing.T) {
	f := newFixture(t, enums.AuctionStatusOpen, 3)

	auction, err := f.svc.CloseAuction(context.Background(), f.auctionID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if auction.Status != enums.AuctionStatusClosed {
		t.Fatalf("expected CLOSED, got %s", auction.Status)
	}
	if len(f.repo.flips) != 1 || f.repo.flips[0] != enums.AuctionStatusClosed {
		t.Fatalf("expected guarded flip to CLOSED, got %v", f.repo.flips)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventAuctionClosed {
		t.Fatalf("expected auction_closed event, got %v", f.outbox.events)
	}
}

func TestCloseAuctionWithoutOffers(t *testing.T) {
	f := newFixture(t, enums.AuctionStatusOpen, 0)

	auction, err := f.svc.CloseAuction(context.Background(), f.auctionID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if auction.Status != enums.AuctionStatusNoOffers {
		t.Fatalf("expected NO_OFFERS, got %s", auction.Status)
	}
	if len(f.repo.flips) != 1 || f.repo.flips[0] != enums.AuctionStatusNoOffers {
		t.Fatalf("expected flip to NO_OFFERS, got %v", f.repo.flips)
	}
}

func TestCloseAuctionRejectsNonOpen(t *testing.T) {
	for _, status := range []enums.AuctionStatus{
		enums.AuctionStatusClosed,
		enums.AuctionStatusNoOffers,
		enums.AuctionStatusCompleted,
	} {
		f := newFixture(t, status, 2)
		_, err := f.svc.CloseAuction(context.Background(), f.auctionID)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("status %s: expected STATE_CONFLICT, got %v", status, err)
		}
		if len(f.repo.flips) != 0 {
			t.Fatalf("status %s: no flip expected", status)
		}
	}
}

func TestCloseAuctionLostRace(t *testing.T) {
	f := newFixture(t, enums.AuctionStatusOpen, 1)
	f.repo.flipSucceed = false

	_, err := f.svc.CloseAuction(context.Background(), f.auctionID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT on lost guarded update, got %v", err)
	}
	if len(f.outbox.events) != 0 {
		t.Fatal("no event may be emitted when the flip loses")
	}
}

func TestGetAuctionNotFound(t *testing.T) {
	f := newFixture(t, enums.AuctionStatusOpen, 0)
	f.repo.auction = nil

	_, err := f.svc.GetAuction(context.Background(), f.auctionID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
