package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/autolenis/autolenis-backend/pkg/db/models"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	pkgerrors "github.com/autolenis/autolenis-backend/pkg/errors"
	"github.com/autolenis/autolenis-backend/pkg/logger"
)

const defaultSweepBatchSize = 100

// AuctionExpiryJobParams configure the expiry sweeper.
type AuctionExpiryJobParams struct {
	Logger    *logger.Logger
	Auctions  expiredAuctionReader
	Closer    auctionCloser
	Ranker    bestPriceComputer
	BatchSize int
}

type expiredAuctionReader interface {
	ListExpiredOpen(ctx context.Context, cutoff time.Time, limit int) ([]models.Auction, error)
}

type auctionCloser interface {
	CloseAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
}

type bestPriceComputer interface {
	ComputeBestPrice(ctx context.Context, auctionID uuid.UUID) ([]models.RankedOption, error)
}

// NewAuctionExpiryJob builds the job that closes auctions past their deadline
// and triggers the first ranking pass for the ones that received offers.
func NewAuctionExpiryJob(params AuctionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Auctions == nil {
		return nil, fmt.Errorf("auctions reader required")
	}
	if params.Closer == nil {
		return nil, fmt.Errorf("auction closer required")
	}
	if params.Ranker == nil {
		return nil, fmt.Errorf("best price computer required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &auctionExpiryJob{
		logg:      params.Logger,
		auctions:  params.Auctions,
		closer:    params.Closer,
		ranker:    params.Ranker,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type auctionExpiryJob struct {
	logg      *logger.Logger
	auctions  expiredAuctionReader
	closer    auctionCloser
	ranker    bestPriceComputer
	batchSize int
	now       func() time.Time
}

func (j *auctionExpiryJob) Name() string { return "auction-expiry" }

func (j *auctionExpiryJob) Run(ctx context.Context) error {
	expired, err := j.auctions.ListExpiredOpen(ctx, j.now().UTC(), j.batchSize)
	if err != nil {
		return fmt.Errorf("query expired auctions: %w", err)
	}

	closed := 0
	var errs []error
	for _, auction := range expired {
		if err := j.closeAndRank(ctx, auction.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		closed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"expired": len(expired),
		"closed":  closed,
	})
	j.logg.Info(logCtx, "auction expiry sweep complete")
	return multierr.Combine(errs...)
}

func (j *auctionExpiryJob) closeAndRank(ctx context.Context, auctionID uuid.UUID) error {
	auction, err := j.closer.CloseAuction(ctx, auctionID)
	if err != nil {
		// A state conflict means another replica won the guarded flip.
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
			return nil
		}
		return fmt.Errorf("close auction %s: %w", auctionID, err)
	}
	if auction.Status != enums.AuctionStatusClosed {
		return nil
	}
	if _, err := j.ranker.ComputeBestPrice(ctx, auctionID); err != nil {
		return fmt.Errorf("rank auction %s: %w", auctionID, err)
	}
	return nil
}
