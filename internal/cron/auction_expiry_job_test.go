package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/logger"
)

type fakeExpiredReader struct {
	expired    []models.Auction
	lastCutoff time.Time
	lastLimit  int
	err        error
}

func (f *fakeExpiredReader) ListExpiredOpen(ctx context.Context, cutoff time.Time, limit int) ([]models.Auction, error) {
	f.lastCutoff = cutoff
	f.lastLimit = limit
	return f.expired, f.err
}

type fakeCloser struct {
	closedTo map[uuid.UUID]enums.AuctionStatus
	errs     map[uuid.UUID]error
	calls    []uuid.UUID
}

func (f *fakeCloser) CloseAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	f.calls = append(f.calls, auctionID)
	if err := f.errs[auctionID]; err != nil {
		return nil, err
	}
	status := enums.AuctionStatusClosed
	if f.closedTo != nil {
		if to, ok := f.closedTo[auctionID]; ok {
			status = to
		}
	}
	return &models.Auction{ID: auctionID, Status: status}, nil
}

type fakeRanker struct {
	ranked []uuid.UUID
	err    error
}

func (f *fakeRanker) ComputeBestPrice(ctx context.Context, auctionID uuid.UUID) ([]models.RankedOption, error) {
	f.ranked = append(f.ranked, auctionID)
	return nil, f.err
}

func newExpiryJob(t *testing.T, reader *fakeExpiredReader, closer *fakeCloser, ranker *fakeRanker) *auctionExpiryJob {
	t.Helper()
	jobIface, err := NewAuctionExpiryJob(AuctionExpiryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Auctions: reader,
		Closer:   closer,
		Ranker:   ranker,
	})
	if err != nil {
		t.Fatalf("NewAuctionExpiryJob: %v", err)
	}
	job, ok := jobIface.(*auctionExpiryJob)
	if !ok {
		t.Fatalf("expected auctionExpiryJob, got %T", jobIface)
	}
	return job
}

func TestAuctionExpiryJobClosesAndRanks(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	reader := &fakeExpiredReader{expired: []models.Auction{{ID: first}, {ID: second}}}
	closer := &fakeCloser{
		closedTo: map[uuid.UUID]enums.AuctionStatus{
			first:  enums.AuctionStatusClosed,
			second: enums.AuctionStatusNoOffers,
		},
	}
	ranker := &fakeRanker{}
	job := newExpiryJob(t, reader, closer, ranker)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reader.lastCutoff.Equal(now) {
		t.Fatalf("expected cutoff %s, got %s", now, reader.lastCutoff)
	}
	if reader.lastLimit != defaultSweepBatchSize {
		t.Fatalf("expected default batch size, got %d", reader.lastLimit)
	}
	if len(closer.calls) != 2 {
		t.Fatalf("expected both auctions closed, got %v", closer.calls)
	}
	// Only the auction that closed with offers gets a ranking pass.
	if len(ranker.ranked) != 1 || ranker.ranked[0] != first {
		t.Fatalf("expected only %s ranked, got %v", first, ranker.ranked)
	}
}

func TestAuctionExpiryJobSkipsLostRaces(t *testing.T) {
	lost := uuid.New()
	reader := &fakeExpiredReader{expired: []models.Auction{{ID: lost}}}
	closer := &fakeCloser{
		errs: map[uuid.UUID]error{
			lost: pkgerrors.New(pkgerrors.CodeStateConflict, "auction already closed"),
		},
	}
	job := newExpiryJob(t, reader, closer, &fakeRanker{})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("a lost guarded flip is not a job failure: %v", err)
	}
}

func TestAuctionExpiryJobAggregatesFailures(t *testing.T) {
	broken := uuid.New()
	fine := uuid.New()
	reader := &fakeExpiredReader{expired: []models.Auction{{ID: broken}, {ID: fine}}}
	closer := &fakeCloser{
		errs: map[uuid.UUID]error{broken: errors.New("db down")},
	}
	ranker := &fakeRanker{}
	job := newExpiryJob(t, reader, closer, ranker)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	// The failure on one auction must not stop the sweep.
	if len(closer.calls) != 2 {
		t.Fatalf("expected sweep to continue past failures, got %v", closer.calls)
	}
	if len(ranker.ranked) != 1 || ranker.ranked[0] != fine {
		t.Fatalf("expected surviving auction ranked, got %v", ranker.ranked)
	}
}
